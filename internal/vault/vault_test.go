package vault_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yijian0905/erp-einvoice/internal/vault"
)

func testKey() []byte {
	return bytes.Repeat([]byte("k"), vault.MinKeyLen)
}

func TestNew_RejectsShortKey(t *testing.T) {
	_, err := vault.New([]byte("too short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestNew_TruncatesLongKey(t *testing.T) {
	long := bytes.Repeat([]byte("k"), 48)

	a, err := vault.New(long)
	require.NoError(t, err)
	b, err := vault.New(testKey())
	require.NoError(t, err)

	// Same leading 32 bytes means the vaults are interchangeable.
	sealed, err := a.Encrypt("secret")
	require.NoError(t, err)
	got, err := b.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	v, err := vault.New(testKey())
	require.NoError(t, err)

	sealed, err := v.Encrypt("client-secret-value")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "client-secret-value")

	got, err := v.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "client-secret-value", got)
}

func TestEncrypt_UniqueNonce(t *testing.T) {
	v, err := vault.New(testKey())
	require.NoError(t, err)

	a, err := v.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := v.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecrypt_RejectsTamperedCiphertext(t *testing.T) {
	v, err := vault.New(testKey())
	require.NoError(t, err)

	sealed, err := v.Encrypt("secret")
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = v.Decrypt(sealed)
	assert.Error(t, err)
}

func TestDecrypt_RejectsWrongKey(t *testing.T) {
	a, err := vault.New(testKey())
	require.NoError(t, err)
	b, err := vault.New(bytes.Repeat([]byte("x"), vault.MinKeyLen))
	require.NoError(t, err)

	sealed, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(sealed)
	assert.Error(t, err)
}

func TestDecrypt_RejectsTruncatedInput(t *testing.T) {
	v, err := vault.New(testKey())
	require.NoError(t, err)

	_, err = v.Decrypt([]byte{1, 2, 3})
	assert.Error(t, err)
}
