// keyutils.go: Key utilities for generation, import/export, zeroization, and fingerprinting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// GenerateKey generates a cryptographically secure random key of KeySize
// bytes, suitable as an AES-256 master key.
//
// Example:
//
//	key, err := crypto.GenerateKey()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(crypto.KeyToBase64(key)) // store in configuration
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, goerrors.Wrap(err, "CRYPTO_KEY_GEN", "failed to generate key")
	}
	return key, nil
}

// GenerateSigningSecret generates a cryptographically secure random signing
// secret of SigningSecretMinSize bytes, independent from any master key.
func GenerateSigningSecret() ([]byte, error) {
	secret := make([]byte, SigningSecretMinSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, goerrors.Wrap(err, "CRYPTO_KEY_GEN", "failed to generate signing secret")
	}
	return secret, nil
}

// KeyToBase64 encodes a key as a base64 string for text-based storage.
func KeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// KeyFromBase64 decodes a base64 string to a key.
func KeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, goerrors.Wrap(err, "CRYPTO_KEY_DECODE", "failed to decode base64 key")
	}
	return key, nil
}

// KeyToHex encodes a key as a lowercase hexadecimal string.
func KeyToHex(key []byte) string {
	return hex.EncodeToString(key)
}

// KeyFromHex decodes a hexadecimal string to a key.
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, goerrors.Wrap(err, "CRYPTO_KEY_DECODE", "failed to decode hex key")
	}
	return key, nil
}

// Zeroize securely wipes a byte slice in place. Call it on key material as
// soon as it is no longer needed.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetKeyFingerprint generates a short non-cryptographic identifier for a
// key: the first 8 bytes of its SHA-256 hash, hex-encoded. Useful for
// logging and cache keys without exposing key material. Returns an empty
// string for an empty key.
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	hash := sha256.Sum256(key)
	return fmt.Sprintf("%016x", hash[:8])
}

// ValidateKey checks that a key has the correct size for AES-256.
func ValidateKey(key []byte) error {
	if len(key) != KeySize {
		return goerrors.New(ErrCodeInvalidKey, fmt.Sprintf("key size must be %d bytes for AES-256, got %d", KeySize, len(key)))
	}
	return nil
}
