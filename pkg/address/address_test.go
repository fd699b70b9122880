package address

import (
	"crypto/rand"
	"strings"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/ioaccount/pkg/crypto"
)

const (
	testPrivateKey = "0806c458b262edd333a191e92f561aff338211ee3e18ab315a074a2d82aa343f"
	testAddress    = "io187wzp08vnhjjpkydnr97qlh8kh0dpkkytfam8j"
)

// resetNetwork re-arms the one-time guard; tests only
func resetNetwork(t *testing.T) {
	t.Helper()
	networkOnce = sync.Once{}
	network = Mainnet
	t.Cleanup(func() {
		networkOnce = sync.Once{}
		network = Mainnet
	})
}

func encodeRaw(t *testing.T, hrp string, payload []byte) string {
	t.Helper()
	grouped, err := bech32.ConvertBits(payload, 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.Encode(hrp, grouped)
	require.NoError(t, err)
	return s
}

func TestZeroAddress(t *testing.T) {
	codec := NewCodec(Mainnet)
	assert.Equal(t, ZeroAddress, codec.Encode(crypto.Hash160{}))

	h, err := codec.Decode(ZeroAddress)
	require.NoError(t, err)
	assert.True(t, h.IsZero())
}

func TestAddressFromPrivateKeyVector(t *testing.T) {
	key, err := crypto.HexToPrivateKey(testPrivateKey)
	require.NoError(t, err)

	addr := FromPublicKey(key.PublicKey())
	assert.Equal(t, testAddress, addr.Encode(Mainnet))

	decoded, err := NewCodec(Mainnet).FromString(testAddress)
	require.NoError(t, err)
	assert.True(t, addr.Equal(decoded))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, n := range []Network{Mainnet, Testnet} {
		codec := NewCodec(n)
		for i := 0; i < 64; i++ {
			var h crypto.Hash160
			_, err := rand.Read(h[:])
			require.NoError(t, err)

			encoded := codec.Encode(h)
			assert.True(t, strings.HasPrefix(encoded, n.Prefix()+"1"))

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, h, decoded)
		}
	}
}

func TestDecodePrefixMismatch(t *testing.T) {
	testnetAddr := NewCodec(Testnet).Encode(crypto.Hash160{1, 2, 3})

	_, err := NewCodec(Mainnet).Decode(testnetAddr)
	require.ErrorIs(t, err, ErrAddrPrefixNotMatch)

	_, err = NewCodec(Testnet).Decode(testAddress)
	require.ErrorIs(t, err, ErrAddrPrefixNotMatch)

	// foreign prefixes are rejected the same way
	_, err = NewCodec(Mainnet).Decode(encodeRaw(t, "bc", make([]byte, 20)))
	require.ErrorIs(t, err, ErrAddrPrefixNotMatch)
}

func TestDecodeInvalidLength(t *testing.T) {
	for _, n := range []int{0, 1, 19, 21, 32} {
		encoded := encodeRaw(t, MainnetPrefix, make([]byte, n))

		_, err := NewCodec(Mainnet).Decode(encoded)
		require.ErrorIs(t, err, ErrInvalidAddrLen)

		var lenErr *InvalidAddrLenError
		require.ErrorAs(t, err, &lenErr)
		assert.Equal(t, n, lenErr.Len)
	}
}

func TestDecodeChecksumFailure(t *testing.T) {
	last := testAddress[len(testAddress)-1]
	swap := byte('q')
	if last == 'q' {
		swap = 'p'
	}
	corrupted := testAddress[:len(testAddress)-1] + string(swap)

	_, err := NewCodec(Mainnet).Decode(corrupted)
	require.ErrorIs(t, err, ErrBech)

	_, err = NewCodec(Mainnet).Decode("not an address")
	require.ErrorIs(t, err, ErrBech)

	// same hrp and payload under the bech32m constant is not an address
	payload := crypto.Hash160{1, 2, 3, 4}
	grouped, err := bech32.ConvertBits(payload[:], 8, 5, true)
	require.NoError(t, err)
	withM, err := bech32.EncodeM(MainnetPrefix, grouped)
	require.NoError(t, err)
	require.NotEqual(t, NewCodec(Mainnet).Encode(payload), withM)

	_, err = NewCodec(Mainnet).Decode(withM)
	require.ErrorIs(t, err, ErrBech)
}

func TestUnknownNetworkCodec(t *testing.T) {
	codec := NewCodec(Network(7))
	assert.Equal(t, "", Network(7).Prefix())

	_, err := codec.Decode(testAddress)
	require.ErrorIs(t, err, ErrUnknownNetwork)

	assert.Panics(t, func() { codec.Encode(crypto.Hash160{}) })
	require.ErrorIs(t, SetNetwork(Network(7)), ErrUnknownNetwork)
}

func TestFromBytes(t *testing.T) {
	payload := make([]byte, AddressLength)
	payload[19] = 0x42

	addr, err := FromBytes(payload)
	require.NoError(t, err)
	// FromBytes wraps without hashing
	assert.Equal(t, payload, addr.Bytes())

	_, err = FromBytes(payload[:10])
	var lenErr *InvalidAddrLenError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 10, lenErr.Len)

	_, err = FromBytes(append(payload, 0))
	require.ErrorIs(t, err, ErrInvalidAddrLen)
}

func TestSetNetworkOnce(t *testing.T) {
	resetNetwork(t)

	require.NoError(t, SetNetwork(Testnet))
	assert.Equal(t, Testnet, ActiveNetwork())

	// same value is idempotent, a different one is refused
	require.NoError(t, SetNetwork(Testnet))
	require.ErrorIs(t, SetNetwork(Mainnet), ErrNetworkFinalized)
	assert.Equal(t, Testnet, ActiveNetwork())

	addr := FromHash160(crypto.Hash160{9})
	assert.True(t, strings.HasPrefix(addr.String(), "it1"))

	decoded, err := FromString(addr.String())
	require.NoError(t, err)
	assert.True(t, addr.Equal(decoded))

	_, err = FromString(ZeroAddress)
	require.ErrorIs(t, err, ErrAddrPrefixNotMatch)
}

func TestActiveNetworkFreezesDefault(t *testing.T) {
	resetNetwork(t)

	assert.Equal(t, Mainnet, ActiveNetwork())
	require.ErrorIs(t, SetNetwork(Testnet), ErrNetworkFinalized)
	require.ErrorIs(t, SetNetwork(Network(7)), ErrUnknownNetwork)
}

func TestActiveNetworkConcurrentReads(t *testing.T) {
	resetNetwork(t)
	require.NoError(t, SetNetwork(Mainnet))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := FromString(testAddress)
			assert.NoError(t, err)
			assert.Equal(t, testAddress, addr.String())
		}()
	}
	wg.Wait()
}

func TestParseNetwork(t *testing.T) {
	tests := map[string]Network{
		"mainnet": Mainnet,
		"io":      Mainnet,
		"":        Mainnet,
		"TESTNET": Testnet,
		"it":      Testnet,
	}
	for in, want := range tests {
		got, err := ParseNetwork(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseNetwork("devnet")
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestAddressText(t *testing.T) {
	resetNetwork(t)

	var addr Address
	require.NoError(t, addr.UnmarshalText([]byte(testAddress)))
	text, err := addr.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, testAddress, string(text))

	require.Error(t, addr.UnmarshalText([]byte("io1invalid")))
}
