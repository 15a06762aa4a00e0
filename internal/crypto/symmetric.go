// Package crypto implements the two encryption schemes the wallet needs:
// symmetric AES-256-GCM for the local backup blob, and an asymmetric
// ECIES-like envelope for registering payment information with the LSP.
// Grounded on original_source/src/backup.rs (symmetric) and
// src/encryption.rs + src/lsp.rs (asymmetric).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// keyLen is the AES-256 key size in bytes.
const keyLen = 32

// EncryptSymmetric encrypts plaintext with AES-256-GCM under key, producing
// ciphertext||nonce (nonce appended, not prepended, matching the original
// crate's wire format so a byte-identical backup blob can be produced from
// the same key and plaintext modulo the random nonce).
func EncryptSymmetric(key, plaintext []byte) ([]byte, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("symmetric key must be %d bytes, got %d", keyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build aes cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to build gcm mode: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return append(ciphertext, nonce...), nil
}

// DecryptSymmetric is the inverse of EncryptSymmetric. It rejects any
// buffer that is not strictly longer than the nonce, since such a buffer
// cannot contain both a nonce and a (possibly empty) ciphertext+tag.
func DecryptSymmetric(key, encrypted []byte) ([]byte, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("symmetric key must be %d bytes, got %d", keyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build aes cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to build gcm mode: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(encrypted) <= nonceSize {
		return nil, fmt.Errorf("encrypted buffer too short: need more than %d bytes, got %d", nonceSize, len(encrypted))
	}

	ciphertext := encrypted[:len(encrypted)-nonceSize]
	nonce := encrypted[len(encrypted)-nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
