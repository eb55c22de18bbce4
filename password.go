// password.go: Slow password hashing and constant-time verification.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"io"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. The iteration count is a package constant
// rather than an input so that a caller can never be tricked into a
// downgraded hash.
const (
	// PasswordHashIterations is the PBKDF2 iteration count.
	PasswordHashIterations = 100_000

	// PasswordHashSize is the PBKDF2 output length in bytes. The stored
	// hash is this, hex-encoded.
	PasswordHashSize = 64

	// PasswordSaltSize is the random salt length in bytes. The stored salt
	// is this, hex-encoded.
	PasswordSaltSize = 32
)

// Error codes for password hashing failures
const (
	ErrCodeEmptyPassword = "CRYPTO_EMPTY_PASSWORD"
	ErrCodeEmptySalt     = "CRYPTO_EMPTY_SALT"
	ErrCodeSaltGen       = "CRYPTO_SALT_GEN"
)

// PasswordRecord is the storable result of hashing a password: the
// hex-encoded PBKDF2-SHA512 hash and the hex-encoded salt it was computed
// with. This package never persists records itself.
type PasswordRecord struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

// HashPassword hashes a password with a freshly generated random salt.
//
// Two calls with the same password produce different salts and therefore
// different hashes. The password cannot be empty.
func HashPassword(password string) (PasswordRecord, error) {
	if password == "" {
		return PasswordRecord{}, goerrors.New(ErrCodeEmptyPassword, "password cannot be empty")
	}

	salt := make([]byte, PasswordSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return PasswordRecord{}, goerrors.Wrap(err, ErrCodeSaltGen, "failed to generate salt")
	}

	return HashPasswordWithSalt(password, hex.EncodeToString(salt))
}

// HashPasswordWithSalt hashes a password with an explicitly supplied salt,
// typically during verification. The salt is treated as an opaque string;
// it keys the derivation exactly as stored.
func HashPasswordWithSalt(password, salt string) (PasswordRecord, error) {
	if password == "" {
		return PasswordRecord{}, goerrors.New(ErrCodeEmptyPassword, "password cannot be empty")
	}
	if salt == "" {
		return PasswordRecord{}, goerrors.New(ErrCodeEmptySalt, "salt cannot be empty")
	}

	hash := pbkdf2.Key([]byte(password), []byte(salt), PasswordHashIterations, PasswordHashSize, sha512.New)
	return PasswordRecord{
		Hash: hex.EncodeToString(hash),
		Salt: salt,
	}, nil
}

// VerifyPassword reports whether password hashes to the stored hash under
// the stored salt. The comparison is constant-time; it never short-circuits
// on the first differing byte.
//
// Any malformed input (empty password, empty salt) verifies as false rather
// than erroring: a login check has exactly two outcomes.
func VerifyPassword(password, hash, salt string) bool {
	record, err := HashPasswordWithSalt(password, salt)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(record.Hash), []byte(hash))
}
