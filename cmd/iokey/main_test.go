package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "0806c458b262edd333a191e92f561aff338211ee3e18ab315a074a2d82aa343f"
	testPublicKey  = "044e18306ae9ef4ec9d07bf6e705442d4d1a75e6cdf750330ca2d880f2cc54607c9c33deb9eae9c06e06e04fe9ce3d43962cc67d5aa34fbeb71270d4bad3d648d9"
	testAddress    = "io187wzp08vnhjjpkydnr97qlh8kh0dpkkytfam8j"
	testText       = "IoTeX is the auto-scalable and privacy-centric blockchain."
	testTextSig    = "482da72c8faa48ee1ac2cf9a5f9ecd42ee3258be5ddd8d6b496c7171dc7bfe8e75e5d16e7129c88d99a21a912e5c082fa1baab6ba87d2688ebd7d27bb1ab090701"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"iokey", "--network", "mainnet"}, args...))
	return out.String(), err
}

func TestImport(t *testing.T) {
	out, err := run(t, "import", testPrivateKey)
	require.NoError(t, err)
	assert.Contains(t, out, "Address: "+testAddress)
	assert.Contains(t, out, "Public Key: "+testPublicKey)
	assert.NotContains(t, out, testPrivateKey)

	_, err = run(t, "import", "--key", "00")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	out, err := run(t, "new")
	require.NoError(t, err)
	assert.Contains(t, out, "Address: io1")
	assert.Contains(t, out, "KEEP SECRET")
}

func TestSignVerify(t *testing.T) {
	out, err := run(t, "sign", "--key", testPrivateKey, "--text", testText)
	require.NoError(t, err)
	assert.Equal(t, testTextSig, strings.TrimSpace(out))

	out, err = run(t, "verify", "--text", testText, "--sig", testTextSig, "--pubkey", testPublicKey)
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(out))

	out, err = run(t, "verify", "--text", "something else", "--sig", testTextSig, "--pubkey", testPublicKey)
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))
}

func TestSignDigestAndRecover(t *testing.T) {
	const digest = "aada23f93a5ed1829ebf1c0693988dc3d2d879f703c7d3f54dcc1b473b27d015"

	_, err := run(t, "sign", "--key", testPrivateKey, "--digest", "abcd")
	require.Error(t, err)

	out, err := run(t, "sign", "--key", testPrivateKey, "--digest", digest)
	require.NoError(t, err)
	sig := strings.TrimSpace(out)
	assert.Len(t, sig, 130)

	out, err = run(t, "recover", "--digest", digest, "--sig", sig)
	require.NoError(t, err)
	assert.Contains(t, out, "Address: "+testAddress)
	assert.Contains(t, out, "Public Key: "+testPublicKey)
}

func TestEncodeDecode(t *testing.T) {
	out, err := run(t, "decode", testAddress)
	require.NoError(t, err)
	payload := strings.TrimSpace(out)
	assert.Len(t, payload, 40)

	out, err = run(t, "encode", payload)
	require.NoError(t, err)
	assert.Equal(t, testAddress, strings.TrimSpace(out))

	out, err = run(t, "encode", strings.Repeat("00", 20))
	require.NoError(t, err)
	assert.Equal(t, "io1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqd39ym7", strings.TrimSpace(out))

	_, err = run(t, "encode", "0011")
	require.Error(t, err)

	_, err = run(t, "decode", "it187wzp08vnhjjpkydnr97qlh8kh0dpkkytfam8j")
	require.Error(t, err)
}

func TestConvert(t *testing.T) {
	out, err := run(t, "convert", testAddress)
	require.NoError(t, err)
	hexAddr := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(hexAddr, "0x"))

	out, err = run(t, "convert", hexAddr)
	require.NoError(t, err)
	assert.Equal(t, testAddress, strings.TrimSpace(out))

	out, err = run(t, "convert", "0x"+strings.Repeat("00", 20))
	require.NoError(t, err)
	assert.Equal(t, "io1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqd39ym7", strings.TrimSpace(out))
}
