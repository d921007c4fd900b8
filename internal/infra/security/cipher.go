package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrEncryption indicates a staged password could not be encrypted.
	// Staging must fail loudly in this case so the shopper is not silently
	// left without an account.
	ErrEncryption = errors.New("security: encrypt staged password")
	// ErrDecryption indicates stored ciphertext could not be recovered,
	// typically after key rotation or data corruption.
	ErrDecryption = errors.New("security: decrypt staged password")
)

// AESCipher encrypts checkout passwords with AES-GCM using a process-wide key.
// Output is base64 so ciphertext can live in a text column.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher constructs a cipher from a raw 16, 24, or 32 byte key.
func NewAESCipher(key []byte) (*AESCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &AESCipher{aead: aead}, nil
}

// NewAESCipherFromBase64 constructs a cipher from a base64-encoded key, the
// form the key takes in configuration.
func NewAESCipherFromBase64(encoded string) (*AESCipher, error) {
	if encoded == "" {
		return nil, errors.New("encryption key is required")
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}

	return NewAESCipher(key)
}

// Encrypt seals the plaintext and returns base64(nonce || ciphertext).
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: generate nonce: %v", ErrEncryption, err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt recovers the plaintext from base64(nonce || ciphertext).
func (c *AESCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", ErrDecryption, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return string(plaintext), nil
}
