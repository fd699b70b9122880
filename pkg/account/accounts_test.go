package account

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/ioaccount/pkg/storage"
	"github.com/uhyunpark/ioaccount/pkg/util"
)

func TestAccounts(t *testing.T) {
	acts := NewAccounts()

	act1, err := acts.Create()
	require.NoError(t, err)
	act2, err := acts.Create()
	require.NoError(t, err)
	assert.False(t, act1.Equal(act2))
	assert.Equal(t, 2, acts.Len())

	got, err := acts.Get(act1.Address())
	require.NoError(t, err)
	assert.True(t, got.PrivateKey().Equal(act1.PrivateKey()))

	act3, err := FromPrivateKeyHex(testPrivateKey)
	require.NoError(t, err)
	require.NoError(t, acts.Add(act3))

	act4, err := acts.Get(act3.Address())
	require.NoError(t, err)
	assert.True(t, act3.Equal(act4))

	require.NoError(t, acts.Remove(act4.Address()))
	_, err = acts.Get(act3.Address())
	require.ErrorIs(t, err, ErrAccountNotExist)
	assert.Equal(t, 2, acts.Len())
}

func TestAccountsAddDuplicate(t *testing.T) {
	acts := NewAccounts()

	act, err := FromPrivateKeyHex(testPrivateKey)
	require.NoError(t, err)
	require.NoError(t, acts.Add(act))

	// a second import of the same key must not overwrite
	dup, err := FromPrivateKeyHex(testPrivateKey)
	require.NoError(t, err)
	err = acts.Add(dup)
	require.ErrorIs(t, err, ErrAccountExist)
	assert.Contains(t, err.Error(), testAddress)

	got, err := acts.Get(act.Address())
	require.NoError(t, err)
	assert.Same(t, act, got)
}

func TestAccountsRemoveMissing(t *testing.T) {
	acts := NewAccounts()
	act, err := New()
	require.NoError(t, err)

	require.ErrorIs(t, acts.Remove(act.Address()), ErrAccountNotExist)
}

func TestAccountsList(t *testing.T) {
	acts := NewAccounts()
	for i := 0; i < 5; i++ {
		_, err := acts.Create()
		require.NoError(t, err)
	}

	list := acts.List()
	require.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Address().String(), list[i].Address().String())
	}
}

func TestAccountsDirectoryMirror(t *testing.T) {
	dir, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })

	now := time.UnixMilli(1730000000000)
	acts := NewAccounts(WithDirectory(dir), WithClock(util.FixedClock{T: now}))

	act, err := FromPrivateKeyHex(testPrivateKey)
	require.NoError(t, err)
	require.NoError(t, acts.Add(act))

	rec, err := dir.Get(testAddress)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, testPublicKey, rec.PublicKey)
	assert.Equal(t, now.UnixMilli(), rec.CreatedAt)

	require.NoError(t, acts.Remove(act.Address()))
	rec, err = dir.Get(testAddress)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

type failingDirectory struct{}

func (failingDirectory) Put(storage.Record) error { return errors.New("disk full") }
func (failingDirectory) Delete(string) error      { return errors.New("disk full") }

func TestAccountsDirectoryFailure(t *testing.T) {
	acts := NewAccounts(WithDirectory(failingDirectory{}))

	_, err := acts.Create()
	require.Error(t, err)
	assert.Equal(t, 0, acts.Len())
}

func TestAccountsMetrics(t *testing.T) {
	acts := NewAccounts()
	okAdds := testutil.ToFloat64(registryOps.WithLabelValues("add", "ok"))
	failedAdds := testutil.ToFloat64(registryOps.WithLabelValues("add", "error"))

	act, err := New()
	require.NoError(t, err)
	require.NoError(t, acts.Add(act))
	require.Error(t, acts.Add(act))

	assert.Equal(t, okAdds+1, testutil.ToFloat64(registryOps.WithLabelValues("add", "ok")))
	assert.Equal(t, failedAdds+1, testutil.ToFloat64(registryOps.WithLabelValues("add", "error")))
}

func TestAccountsGetMetrics(t *testing.T) {
	acts := NewAccounts()
	okGets := testutil.ToFloat64(registryOps.WithLabelValues("get", "ok"))
	missedGets := testutil.ToFloat64(registryOps.WithLabelValues("get", "error"))

	act, err := acts.Create()
	require.NoError(t, err)
	_, err = acts.Get(act.Address())
	require.NoError(t, err)

	other, err := New()
	require.NoError(t, err)
	_, err = acts.Get(other.Address())
	require.ErrorIs(t, err, ErrAccountNotExist)

	assert.Equal(t, okGets+1, testutil.ToFloat64(registryOps.WithLabelValues("get", "ok")))
	assert.Equal(t, missedGets+1, testutil.ToFloat64(registryOps.WithLabelValues("get", "error")))
}

func TestAccountsConcurrent(t *testing.T) {
	acts := NewAccounts()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				act, err := acts.Create()
				if !assert.NoError(t, err) {
					return
				}
				_, err = acts.Get(act.Address())
				assert.NoError(t, err)
				acts.List()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 64, acts.Len())
}
