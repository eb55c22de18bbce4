// kdf.go: Key derivation for master-key bootstrap and subkey expansion.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/argon2"
)

// Default Argon2id parameters for passphrase-based key derivation.
const (
	// DefaultTime is the default number of Argon2id iterations.
	DefaultTime = 3

	// DefaultMemory is the default Argon2id memory usage in MB.
	DefaultMemory = 64

	// DefaultThreads is the default Argon2id parallelism.
	DefaultThreads = 4
)

// KDFParams defines custom parameters for Argon2id key derivation. Zero
// fields fall back to the package defaults.
type KDFParams struct {
	// Time is the number of iterations. If zero, DefaultTime is used.
	Time uint32 `json:"time,omitempty"`

	// Memory is the memory usage in MB. If zero, DefaultMemory is used.
	Memory uint32 `json:"memory,omitempty"`

	// Threads is the parallelism. If zero, DefaultThreads is used.
	Threads uint8 `json:"threads,omitempty"`
}

// DeriveKey derives a key from a passphrase and salt using Argon2id.
//
// This is the supported path for turning an operator passphrase into a
// master key (see ConfigFromPassphrase). It is NOT the password-hashing
// routine for user credentials; that is HashPassword, whose parameters are
// fixed by the stored-record format.
//
// Parameters:
//   - password: The passphrase to derive the key from (cannot be empty)
//   - salt: The salt to use for key derivation (cannot be empty, should be random)
//   - keyLen: The desired length of the derived key in bytes (must be positive)
//   - params: Custom Argon2id parameters (nil to use the defaults)
func DeriveKey(password, salt []byte, keyLen int, params *KDFParams) ([]byte, error) {
	if len(password) == 0 {
		return nil, goerrors.New(ErrCodeEmptyPassword, "password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, goerrors.New(ErrCodeEmptySalt, "salt cannot be empty")
	}
	if keyLen <= 0 {
		return nil, goerrors.New("CRYPTO_INVALID_KEYLEN", "key length must be positive")
	}

	time := uint32(DefaultTime)
	memory := uint32(DefaultMemory * 1024)
	threads := uint8(DefaultThreads)

	if params != nil {
		if params.Time > 0 {
			time = params.Time
		}
		if params.Memory > 0 {
			memory = params.Memory * 1024
		}
		if params.Threads > 0 {
			threads = params.Threads
		}
	}

	// Type conversions are safe due to parameter validation above
	key := argon2.IDKey(password, salt, time, memory, threads, uint32(keyLen)) // #nosec G115
	return key, nil
}

// DeriveKeyHKDF derives a subkey from high-entropy keying material using
// HKDF-SHA256 (RFC 5869). The info label provides domain separation so the
// same master key can yield independent subkeys for different purposes.
//
// Security: HKDF is designed for high-entropy inputs such as randomly
// generated keys. For passphrase-based derivation use DeriveKey instead.
func DeriveKeyHKDF(masterKey, salt, info []byte, keyLen int) ([]byte, error) {
	if len(masterKey) == 0 {
		return nil, goerrors.New("CRYPTO_INVALID_MASTER_KEY", "master key cannot be empty")
	}
	if keyLen <= 0 {
		return nil, goerrors.New("CRYPTO_INVALID_KEYLEN", "key length must be positive")
	}
	if keyLen > 255*sha256.Size {
		return nil, goerrors.New("CRYPTO_INVALID_KEYLEN", "key length too large for HKDF-SHA256")
	}

	h := sha256.New
	if salt == nil {
		salt = make([]byte, sha256.Size)
	}

	prk := hkdfExtract(h, salt, masterKey)
	return hkdfExpand(h, prk, info, keyLen), nil
}

// hkdfExtract implements HKDF-Extract: PRK = HMAC(salt, IKM).
func hkdfExtract(h func() hash.Hash, salt, ikm []byte) []byte {
	mac := hmac.New(h, salt)
	mac.Write(ikm)
	return mac.Sum(nil)
}

// hkdfExpand implements HKDF-Expand over the pseudorandom key.
func hkdfExpand(h func() hash.Hash, prk, info []byte, length int) []byte {
	hashSize := h().Size()
	blocks := (length + hashSize - 1) / hashSize

	okm := make([]byte, 0, blocks*hashSize)
	var t []byte
	for i := 1; i <= blocks; i++ {
		mac := hmac.New(h, prk)
		mac.Write(t)
		mac.Write(info)
		mac.Write([]byte{byte(i)})
		t = mac.Sum(nil)
		okm = append(okm, t...)
	}

	return okm[:length]
}
