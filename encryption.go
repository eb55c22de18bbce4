// encryption.go: Authenticated encryption and blob codec using AES-256-GCM.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

const (
	// KeySize is the required key size for AES-256 encryption in bytes.
	KeySize = 32

	// NonceSize is the nonce length in bytes. A fresh random nonce is
	// generated for every encryption; reuse under the same key is a hard
	// correctness violation.
	NonceSize = 16

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// Global cipher cache - avoids aes.NewCipher + cipher.NewGCM overhead on
// every call. Keyed by key fingerprint.
var (
	cipherCacheMu sync.RWMutex
	cipherCache   = make(map[string]cipher.AEAD)
)

// getCachedGCM returns a cached GCM cipher for the key, creating it if needed.
func getCachedGCM(key []byte) (cipher.AEAD, error) {
	keyFingerprint := GetKeyFingerprint(key)

	// Try read-only first
	cipherCacheMu.RLock()
	if gcm, exists := cipherCache[keyFingerprint]; exists {
		cipherCacheMu.RUnlock()
		return gcm, nil
	}
	cipherCacheMu.RUnlock()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	cipherCacheMu.Lock()
	cipherCache[keyFingerprint] = gcm
	cipherCacheMu.Unlock()

	return gcm, nil
}

// Public standard errors for use with errors.Is().
var (
	// ErrInvalidKeySize is returned when the provided key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrEncryptionFailed is returned for catastrophic local failures during
	// encryption, such as an unavailable entropy source. It is rare and
	// never retried internally.
	ErrEncryptionFailed = errors.New("crypto: encryption failed")

	// ErrDecryptionFailed is returned whenever decryption cannot produce the
	// original plaintext: authentication-tag mismatch (tampering or wrong
	// key), a truncated blob, or a malformed encoding. No partial plaintext
	// is ever surfaced alongside this error.
	ErrDecryptionFailed = errors.New("crypto: decryption failed")

	// ErrEmptyBlob is returned when trying to decrypt an empty string.
	ErrEmptyBlob = errors.New("crypto: encrypted blob cannot be empty")
)

// Error codes for rich error handling
const (
	ErrCodeInvalidKey = "CRYPTO_INVALID_KEY"
	ErrCodeEmptyBlob  = "CRYPTO_EMPTY_BLOB"
	ErrCodeCipherInit = "CRYPTO_CIPHER_INIT"
	ErrCodeNonceGen   = "CRYPTO_NONCE_GEN"
	ErrCodeBlobDecode = "CRYPTO_BLOB_DECODE"
	ErrCodeBlobShort  = "CRYPTO_BLOB_SHORT"
	ErrCodeAuthFailed = "CRYPTO_AUTH_FAILED"
)

// sealBlob performs the shared AEAD encryption: fresh nonce, GCM seal, then
// the external blob layout nonce || tag || ciphertext, base64-encoded.
func sealBlob(plaintext, key, aad []byte) (string, error) {
	if len(key) != KeySize {
		richErr := goerrors.New(ErrCodeInvalidKey, fmt.Sprintf("invalid key size: must be %d bytes for AES-256 (got %d)", KeySize, len(key)))
		return "", fmt.Errorf("%w: %w", ErrInvalidKeySize, richErr)
	}

	gcm, err := getCachedGCM(key)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeCipherInit, "failed to get cached cipher")
		return "", fmt.Errorf("%w: %w", ErrEncryptionFailed, richErr)
	}

	// Pooled buffer for the nonce to reduce allocations
	nonceBuffer := getBuffer(NonceSize)
	defer putBuffer(nonceBuffer)
	nonce := (*nonceBuffer)[:NonceSize]

	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeNonceGen, "failed to generate nonce")
		return "", fmt.Errorf("%w: %w", ErrEncryptionFailed, richErr)
	}

	// Seal produces ciphertext || tag; the external layout is
	// nonce || tag || ciphertext, so the tag moves to the front.
	sealed := gcm.Seal(nil, nonce, plaintext, aad) // #nosec G407 -- nonce is generated from crypto/rand, not hardcoded
	ctLen := len(sealed) - TagSize

	blob := make([]byte, 0, NonceSize+len(sealed))
	blob = append(blob, nonce...)
	blob = append(blob, sealed[ctLen:]...)
	blob = append(blob, sealed[:ctLen]...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// openBlob reverses sealBlob. The authentication tag is verified by GCM
// before any plaintext is returned; every failure mode wraps
// ErrDecryptionFailed.
func openBlob(encryptedText string, key, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		richErr := goerrors.New(ErrCodeInvalidKey, fmt.Sprintf("invalid key size: must be %d bytes for AES-256 (got %d)", KeySize, len(key)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeySize, richErr)
	}
	if encryptedText == "" {
		richErr := goerrors.New(ErrCodeEmptyBlob, "encrypted blob cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrEmptyBlob, richErr)
	}

	raw, err := base64.StdEncoding.DecodeString(encryptedText)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeBlobDecode, "failed to decode base64 blob")
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr)
	}
	if len(raw) < NonceSize+TagSize {
		richErr := goerrors.New(ErrCodeBlobShort, "blob too short to contain nonce and tag")
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr)
	}

	gcm, err := getCachedGCM(key)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeCipherInit, "failed to get cached cipher")
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr)
	}

	nonce := raw[:NonceSize]
	tag := raw[NonceSize : NonceSize+TagSize]
	ciphertext := raw[NonceSize+TagSize:]

	// Rebuild the ciphertext || tag layout GCM expects
	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeAuthFailed, "GCM authentication failed (wrong key, tampered data, or AAD mismatch)")
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, richErr)
	}

	return plaintext, nil
}

// EncryptBytes encrypts a plaintext byte slice using AES-256-GCM under an
// explicit key.
//
// The returned string is base64-encoded and contains the nonce,
// authentication tag, and ciphertext in that order. Empty plaintext is
// supported and yields a valid blob containing only nonce and tag.
//
// Parameters:
//   - plaintext: The byte slice to encrypt (can be empty)
//   - key: The 32-byte encryption key (must be exactly KeySize bytes)
//
// Returns:
//   - A base64-encoded string containing the encrypted blob
//   - An error if encryption fails
func EncryptBytes(plaintext, key []byte) (string, error) {
	return sealBlob(plaintext, key, nil)
}

// EncryptBytesWithAAD encrypts a plaintext byte slice using AES-256-GCM with
// Additional Authenticated Data.
//
// The AAD is authenticated but not encrypted; binding context metadata this
// way prevents a blob from being replayed in a different context. Decryption
// must present the exact same AAD.
func EncryptBytesWithAAD(plaintext, key, aad []byte) (string, error) {
	return sealBlob(plaintext, key, aad)
}

// DecryptBytes decrypts a blob produced by EncryptBytes.
//
// The authentication tag embedded in the blob is verified before any
// plaintext is returned. The function returns an error satisfying
// errors.Is(err, ErrDecryptionFailed) if:
//   - The base64 decoding fails
//   - The blob is too short
//   - Authentication fails (tampering or wrong key)
func DecryptBytes(encryptedText string, key []byte) ([]byte, error) {
	return openBlob(encryptedText, key, nil)
}

// DecryptBytesWithAAD decrypts a blob produced by EncryptBytesWithAAD,
// verifying both the ciphertext and the supplied AAD.
func DecryptBytesWithAAD(encryptedText string, key, aad []byte) ([]byte, error) {
	return openBlob(encryptedText, key, aad)
}

// Encrypt encrypts plaintext bytes under the master key.
func (c *Core) Encrypt(plaintext []byte) (string, error) {
	return sealBlob(plaintext, c.masterKey, nil)
}

// EncryptWithAAD encrypts plaintext bytes under the master key, binding the
// associated data into the authentication tag.
func (c *Core) EncryptWithAAD(plaintext, aad []byte) (string, error) {
	return sealBlob(plaintext, c.masterKey, aad)
}

// Decrypt decrypts a blob under the master key.
func (c *Core) Decrypt(encryptedText string) ([]byte, error) {
	return openBlob(encryptedText, c.masterKey, nil)
}

// DecryptWithAAD decrypts a blob under the master key, verifying the
// associated data supplied at encryption time.
func (c *Core) DecryptWithAAD(encryptedText string, aad []byte) ([]byte, error) {
	return openBlob(encryptedText, c.masterKey, aad)
}

// EncryptString is a convenience wrapper around Encrypt for string values.
func (c *Core) EncryptString(plaintext string) (string, error) {
	return c.Encrypt([]byte(plaintext))
}

// DecryptString is a convenience wrapper around Decrypt for string values.
func (c *Core) DecryptString(encryptedText string) (string, error) {
	plaintext, err := c.Decrypt(encryptedText)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
