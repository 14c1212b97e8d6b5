// Package service implements the PII primitives the delivery engine consumes.
// Guest contact values arrive pre-encrypted from the producers; the engine
// decrypts them only at the provider boundary and never persists plaintext
// back into an outbox row.
package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// ContactCipher encrypts and decrypts guest contact values and derives a
// deterministic search hash for equality lookups over encrypted columns.
type ContactCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	DeriveSearchHash(plaintext string) string
}

// Ciphertext format: "v<version>:<base64(nonce || sealed)>". The version
// prefix carries the key version so keys can rotate without re-encrypting
// every stored contact at once.
const ciphertextVersion = 1

var (
	// ErrInvalidCiphertext indicates the stored value is not a well-formed
	// versioned ciphertext or fails authentication.
	ErrInvalidCiphertext = errors.New("invalid contact ciphertext")

	// ErrUnknownKeyVersion indicates the ciphertext was produced with a key
	// version this process does not hold.
	ErrUnknownKeyVersion = errors.New("unknown contact key version")
)

// AESGCMContactCipher implements ContactCipher with AES-256-GCM for
// encryption and an HKDF-derived HMAC-SHA256 key for search hashing, keeping
// encryption and hashing key usage separate.
//
// The cipher is stateless and safe for concurrent use; each encryption
// generates a fresh random nonce.
type AESGCMContactCipher struct {
	aead      cipher.AEAD
	searchKey []byte
}

// NewAESGCMContactCipher creates a cipher from a 32-byte key.
func NewAESGCMContactCipher(key []byte) (*AESGCMContactCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	searchKey, err := deriveSearchKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to derive search key: %w", err)
	}

	return &AESGCMContactCipher{aead: aead, searchKey: searchKey}, nil
}

// NewAESGCMContactCipherFromBase64 creates a cipher from a base64-encoded
// 32-byte key, as carried in configuration.
func NewAESGCMContactCipherFromBase64(encoded string) (*AESGCMContactCipher, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	return NewAESGCMContactCipher(key)
}

// deriveSearchKey uses HKDF-SHA256 to derive a 32-byte hashing key from the
// encryption key. Info parameter is versioned for future algorithm changes.
func deriveSearchKey(key []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, key, nil, []byte("contact-search-hash-v1"))

	searchKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, searchKey); err != nil {
		return nil, err
	}
	return searchKey, nil
}

// Encrypt seals the plaintext and returns a versioned ciphertext.
func (c *AESGCMContactCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return fmt.Sprintf("v%d:%s", ciphertextVersion, base64.StdEncoding.EncodeToString(sealed)), nil
}

// Decrypt opens a versioned ciphertext produced by Encrypt.
func (c *AESGCMContactCipher) Decrypt(ciphertext string) (string, error) {
	version, encoded, ok := strings.Cut(ciphertext, ":")
	if !ok {
		return "", ErrInvalidCiphertext
	}
	if version != fmt.Sprintf("v%d", ciphertextVersion) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKeyVersion, version)
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, data := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	return string(plaintext), nil
}

// DeriveSearchHash returns a deterministic keyed hash of the plaintext,
// normalized for case, suitable for equality search over encrypted columns.
func (c *AESGCMContactCipher) DeriveSearchHash(plaintext string) string {
	mac := hmac.New(sha256.New, c.searchKey)
	mac.Write([]byte(strings.ToLower(strings.TrimSpace(plaintext))))
	return hex.EncodeToString(mac.Sum(nil))
}
