package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, keyLen)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSymmetricRoundtrip(t *testing.T) {
	key := randomKey(t)
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	encrypted, err := EncryptSymmetric(key, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)

	decrypted, err := DecryptSymmetric(key, encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestSymmetricRoundtripEmptyPlaintext(t *testing.T) {
	key := randomKey(t)
	encrypted, err := EncryptSymmetric(key, nil)
	require.NoError(t, err)

	decrypted, err := DecryptSymmetric(key, encrypted)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestSymmetricRejectsWrongKeyLength(t *testing.T) {
	_, err := EncryptSymmetric([]byte("too short"), []byte("data"))
	assert.Error(t, err)
}

func TestDecryptSymmetricRejectsBufferNotLongerThanNonce(t *testing.T) {
	key := randomKey(t)
	// A 12-byte buffer equals the GCM nonce size exactly, leaving nothing
	// for ciphertext+tag, so it must be rejected rather than panicking.
	_, err := DecryptSymmetric(key, make([]byte, 12))
	assert.Error(t, err)
}

func TestDecryptSymmetricRejectsTamperedCiphertext(t *testing.T) {
	key := randomKey(t)
	encrypted, err := EncryptSymmetric(key, []byte("hello wallet"))
	require.NoError(t, err)

	encrypted[0] ^= 0xFF
	_, err = DecryptSymmetric(key, encrypted)
	assert.Error(t, err)
}

func TestSymmetricRejectsWrongKeyOnDecrypt(t *testing.T) {
	key := randomKey(t)
	other := randomKey(t)
	encrypted, err := EncryptSymmetric(key, []byte("hello wallet"))
	require.NoError(t, err)

	_, err = DecryptSymmetric(other, encrypted)
	assert.Error(t, err)
}
