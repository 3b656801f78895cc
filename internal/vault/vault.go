// Package vault encrypts and decrypts per-tenant API secrets at rest with
// AES-256-GCM. Plaintext secrets exist only in memory and are never logged.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// MinKeyLen is the minimum accepted encryption key length in bytes.
const MinKeyLen = 32

// Vault seals and opens credential secrets with a process-wide key sourced
// from configuration at start-up.
type Vault struct {
	aead cipher.AEAD
}

// New creates a Vault from a raw key. Keys shorter than MinKeyLen are
// rejected; longer keys are truncated to the AES-256 size.
func New(key []byte) (*Vault, error) {
	if len(key) < MinKeyLen {
		return nil, fmt.Errorf("encryption key must be at least %d bytes, got %d", MinKeyLen, len(key))
	}
	block, err := aes.NewCipher(key[:MinKeyLen])
	if err != nil {
		return nil, fmt.Errorf("cannot create AES cipher from given key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cannot create GCM: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals a plaintext secret. The random nonce is prepended to the
// ciphertext.
func (v *Vault) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cannot generate nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a sealed secret produced by Encrypt.
func (v *Vault) Decrypt(sealed []byte) (string, error) {
	if len(sealed) < v.aead.NonceSize() {
		return "", fmt.Errorf("sealed secret too short")
	}
	nonce, ciphertext := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("cannot decrypt secret: %w", err)
	}
	return string(plaintext), nil
}
