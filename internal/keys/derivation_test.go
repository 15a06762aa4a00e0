package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecretProducesValidMnemonic(t *testing.T) {
	secret, err := GenerateSecret("")
	require.NoError(t, err)
	assert.Len(t, secret.Mnemonic, 24)

	_, err = MnemonicToSecret(secret.Mnemonic, "")
	assert.NoError(t, err)
}

func TestMnemonicToSecretRejectsInvalidPhrase(t *testing.T) {
	_, err := MnemonicToSecret([]string{"not", "a", "real", "mnemonic"}, "")
	assert.Error(t, err)
}

func TestWordsByPrefix(t *testing.T) {
	matches := WordsByPrefix("aban")
	assert.Contains(t, matches, "abandon")
}

func TestDerivePersistenceEncryptionKeyIsDeterministic(t *testing.T) {
	secret, err := GenerateSecret("")
	require.NoError(t, err)

	key1, err := DerivePersistenceEncryptionKey(secret)
	require.NoError(t, err)
	key2, err := DerivePersistenceEncryptionKey(secret)
	require.NoError(t, err)

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)
}

func TestDeriveKeyPairDiffersByPath(t *testing.T) {
	secret, err := GenerateSecret("")
	require.NoError(t, err)

	pair1, err := DeriveKeyPair(secret, PersistenceEncryptionKeyPath)
	require.NoError(t, err)
	pair2, err := DeriveKeyPair(secret, LspRegistrationKeyPath)
	require.NoError(t, err)

	assert.NotEqual(t, pair1.PrivateKey.Serialize(), pair2.PrivateKey.Serialize())
}

func TestParseDerivationPathRejectsMalformedPath(t *testing.T) {
	_, err := parseDerivationPath("44'/0'/1")
	assert.Error(t, err)
}
