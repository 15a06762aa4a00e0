package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// envelope layout: IV(16) || ephemeral-pubkey-x(32) || ephemeral-pubkey-y(32) || ciphertext || HMAC-SHA256(32)
const (
	ivLen       = 16
	coordLen    = 32
	macLen      = 32
	envelopeMinLen = ivLen + coordLen + coordLen + macLen
)

// EncryptPaymentInfo encrypts plaintext (the payment-information payload
// sent to the LSP when registering a just-in-time channel open) to the
// LSP's public key using an ECIES-like scheme: ECDH(secp256k1) + SHA-512
// to derive an encryption key and a MAC key, AES-256-CBC with PKCS7
// padding for confidentiality, and HMAC-SHA256 over IV||ephemeral
// pubkey||ciphertext for integrity. Grounded on
// original_source/src/encryption.rs's encrypt().
func EncryptPaymentInfo(recipientPubKey *btcec.PublicKey, plaintext []byte) ([]byte, error) {
	ephemeralPriv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}
	ephemeralPub := ephemeralPriv.PubKey()

	encKey, macKey, err := generateSharedSecret(ephemeralPriv, recipientPubKey)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext, err := encryptCBC(encKey, iv, pkcs7Pad(plaintext, aes.BlockSize))
	if err != nil {
		return nil, err
	}

	ephemeralX, ephemeralY := coordBytes(ephemeralPub)

	envelope := make([]byte, 0, ivLen+coordLen*2+len(ciphertext)+macLen)
	envelope = append(envelope, iv...)
	envelope = append(envelope, ephemeralX...)
	envelope = append(envelope, ephemeralY...)
	envelope = append(envelope, ciphertext...)

	mac := hmac256(macKey, envelope)
	envelope = append(envelope, mac...)

	return envelope, nil
}

// DecryptPaymentInfo reverses EncryptPaymentInfo given the recipient's
// private key. It verifies the HMAC before attempting decryption.
func DecryptPaymentInfo(recipientPriv *btcec.PrivateKey, envelope []byte) ([]byte, error) {
	if len(envelope) < envelopeMinLen {
		return nil, fmt.Errorf("envelope too short: need at least %d bytes, got %d", envelopeMinLen, len(envelope))
	}

	iv := envelope[:ivLen]
	ephemeralX := envelope[ivLen : ivLen+coordLen]
	ephemeralY := envelope[ivLen+coordLen : ivLen+coordLen*2]
	body := envelope[:len(envelope)-macLen]
	ciphertext := envelope[ivLen+coordLen*2 : len(envelope)-macLen]
	receivedMAC := envelope[len(envelope)-macLen:]

	ephemeralPub, err := pubKeyFromCoords(ephemeralX, ephemeralY)
	if err != nil {
		return nil, fmt.Errorf("invalid ephemeral public key in envelope: %w", err)
	}

	encKey, macKey, err := generateSharedSecret(recipientPriv, ephemeralPub)
	if err != nil {
		return nil, err
	}

	expectedMAC := hmac256(macKey, body)
	if !hmac.Equal(expectedMAC, receivedMAC) {
		return nil, fmt.Errorf("envelope authentication failed")
	}

	padded, err := decryptCBC(encKey, iv, ciphertext)
	if err != nil {
		return nil, err
	}

	return pkcs7Unpad(padded)
}

// generateSharedSecret performs ECDH between priv and pub, then stretches
// the resulting shared point's x-coordinate through SHA-512 to derive
// independent 32-byte encryption and MAC keys, mirroring
// original_source/src/encryption.rs's generate_shared_secret.
func generateSharedSecret(priv *btcec.PrivateKey, pub *btcec.PublicKey) (encKey, macKey []byte, err error) {
	// btcec.GenerateSharedSecret performs the ECDH scalar multiplication
	// and returns the raw 32-byte x-coordinate of the shared point. We
	// stretch it through SHA-512 to derive two independent 32-byte keys,
	// mirroring
	// original_source/src/encryption.rs's use of SHA-512 over the raw ECDH
	// x-coordinate for the same purpose.
	shared := btcec.GenerateSharedSecret(priv, pub)
	digest := sha512.Sum512(shared)
	return digest[:32], digest[32:], nil
}

func hmac256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func encryptCBC(key, iv, padded []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build aes cipher: %w", err)
	}
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func decryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext is not a multiple of the block size")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build aes cipher: %w", err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := make([]byte, padLen)
	for i := range padding {
		padding[i] = byte(padLen)
	}
	return append(data, padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unpad empty buffer")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("invalid pkcs7 padding")
	}
	return data[:len(data)-padLen], nil
}

func coordBytes(pub *btcec.PublicKey) (x, y []byte) {
	xBytes := pub.X().Bytes()
	yBytes := pub.Y().Bytes()
	x = make([]byte, coordLen)
	y = make([]byte, coordLen)
	copy(x[coordLen-len(xBytes):], xBytes[:])
	copy(y[coordLen-len(yBytes):], yBytes[:])
	return x, y
}

func pubKeyFromCoords(x, y []byte) (*btcec.PublicKey, error) {
	var fx, fy btcec.FieldVal
	fx.SetByteSlice(x)
	fy.SetByteSlice(y)
	return btcec.NewPublicKey(&fx, &fy), nil
}
