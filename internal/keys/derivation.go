// Package keys implements BIP-39 mnemonic handling and BIP-32 key
// derivation for the wallet's internal purposes (persistence encryption,
// LSP registration, lightning-address auth), grounded on
// original_source/src/key_derivation.rs and src/secret.rs.
package keys

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// PersistenceEncryptionKeyPath is the fixed derivation path used to derive
// the symmetric key that encrypts the local backup blob. The constant
// matches original_source/src/key_derivation.rs's
// PERSISTENCE_ENCRYPTION_KEY path exactly, so a wallet restored from a
// mnemonic recovers the same backup key deterministically.
const PersistenceEncryptionKeyPath = "m/76738065'/0'/1"

// LspRegistrationKeyPath derives the key pair registered with the LSP for
// authenticating payment-info lookups.
const LspRegistrationKeyPath = "m/76738065'/0'/2"

// AuthKeyPath derives the key pair backend services authenticate the
// wallet by, via the challenge/response handshake in internal/auth.
const AuthKeyPath = "m/76738065'/0'/3"

// Secret bundles the mnemonic with its BIP-39 passphrase. The mnemonic is
// the only thing ever shown to (or backed up by) the user; the seed is not
// stored here but derived from both whenever a key is derived.
type Secret struct {
	Mnemonic []string
	Passphrase string
}

// GenerateSecret creates a new 24-word BIP-39 mnemonic (256 bits of
// entropy), mirroring original_source/src/secret.rs's generate_secret.
func GenerateSecret(passphrase string) (*Secret, error) {
	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to derive mnemonic from entropy: %w", err)
	}
	return &Secret{Mnemonic: strings.Fields(mnemonic), Passphrase: passphrase}, nil
}

// MnemonicToSecret validates a user-supplied mnemonic (12 or 24 words) and
// wraps it in a Secret, mirroring mnemonic_to_secret.
func MnemonicToSecret(words []string, passphrase string) (*Secret, error) {
	joined := strings.Join(words, " ")
	if !bip39.IsMnemonicValid(joined) {
		return nil, fmt.Errorf("mnemonic is not a valid BIP-39 phrase")
	}
	return &Secret{Mnemonic: words, Passphrase: passphrase}, nil
}

// WordsByPrefix returns every word in the BIP-39 English wordlist that
// starts with prefix, used to drive mnemonic input autocomplete
// (original_source/src/secret.rs's words_by_prefix).
func WordsByPrefix(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var matches []string
	for _, word := range bip39.GetWordList() {
		if strings.HasPrefix(word, prefix) {
			matches = append(matches, word)
		}
	}
	return matches
}

// seed derives the BIP-39 seed from the secret's mnemonic and passphrase.
func (s *Secret) seed() []byte {
	return bip39.NewSeed(strings.Join(s.Mnemonic, " "), s.Passphrase)
}

// DerivedKeyPair is a secp256k1 key pair produced by walking a BIP-32 path
// from the wallet's master seed.
type DerivedKeyPair struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  *btcec.PublicKey
}

// DeriveKeyPair walks path (a string like "m/76738065'/0'/1") from the
// secret's seed and returns the resulting key pair, mirroring
// original_source/src/key_derivation.rs's derive_key_pair.
func DeriveKeyPair(secret *Secret, path string) (*DerivedKeyPair, error) {
	segments, err := parseDerivationPath(path)
	if err != nil {
		return nil, err
	}

	master, err := hdkeychain.NewMaster(secret.seed(), &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}

	key := master
	for _, segment := range segments {
		key, err = key.Derive(segment)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child at segment %d: %w", segment, err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}

	return &DerivedKeyPair{PrivateKey: privKey, PublicKey: privKey.PubKey()}, nil
}

// DerivePersistenceEncryptionKey derives the 32-byte symmetric key used to
// encrypt the local backup blob, mirroring
// derive_persistence_encryption_key. The private key's serialized bytes
// are used directly as the AES-256 key.
func DerivePersistenceEncryptionKey(secret *Secret) ([]byte, error) {
	pair, err := DeriveKeyPair(secret, PersistenceEncryptionKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to derive persistence encryption key: %w", err)
	}
	return pair.PrivateKey.Serialize(), nil
}

// parseDerivationPath parses a BIP-32 path string ("m/44'/0'/0") into a
// slice of ChildNum-compatible uint32s, applying the hardened-derivation
// offset for segments suffixed with '.
func parseDerivationPath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("derivation path %q must start with \"m\"", path)
	}

	segments := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'")
		part = strings.TrimSuffix(part, "'")

		var index uint32
		if _, err := fmt.Sscanf(part, "%d", &index); err != nil {
			return nil, fmt.Errorf("invalid derivation path segment %q: %w", part, err)
		}
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}
		segments = append(segments, index)
	}
	return segments, nil
}
