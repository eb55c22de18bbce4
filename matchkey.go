// matchkey.go: Deterministic per-pair key derivation for conversations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// MatchKey is a symmetric key bound to an unordered pair of user
// identifiers: DeriveMatchKey(a, b) == DeriveMatchKey(b, a). It is the
// hex-encoded HMAC-SHA256 digest of the sorted pair under the master key,
// so either party can recompute it locally without key exchange, while an
// attacker without the master key cannot predict it for any pair.
//
// Match keys are recomputed on demand and never stored by this package.
type MatchKey string

// matchKeySeparator joins the two sorted identifiers before hashing.
// Changing it changes every derived key.
const matchKeySeparator = ":"

// ErrInvalidMatchKey is returned when a MatchKey is too short to carry
// cipher key material.
var ErrInvalidMatchKey = errors.New("crypto: invalid match key")

// Error codes for match-key failures
const (
	ErrCodeEmptyIdentifier = "CRYPTO_EMPTY_IDENTIFIER"
	ErrCodeMatchKeyShort   = "CRYPTO_MATCH_KEY_SHORT"
)

// DeriveMatchKey derives the shared symmetric key for the unordered pair
// {idA, idB}. The identifiers are sorted lexicographically, joined with a
// fixed separator, and HMAC-SHA256'd under the master key; the result is
// hex-encoded.
//
// Both identifiers must be non-empty. The derivation is fully deterministic:
// every call with the same pair (in either order) yields the same key.
func (c *Core) DeriveMatchKey(idA, idB string) (MatchKey, error) {
	if idA == "" || idB == "" {
		return "", goerrors.New(ErrCodeEmptyIdentifier, "pair identifiers cannot be empty")
	}

	if idB < idA {
		idA, idB = idB, idA
	}

	mac := hmac.New(sha256.New, c.masterKey)
	mac.Write([]byte(idA))
	mac.Write([]byte(matchKeySeparator))
	mac.Write([]byte(idB))

	return MatchKey(hex.EncodeToString(mac.Sum(nil))), nil
}

// Bytes returns the raw digest the match key encodes.
func (k MatchKey) Bytes() ([]byte, error) {
	raw, err := hex.DecodeString(string(k))
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeMatchKeyShort, "match key is not valid hex")
		return nil, fmt.Errorf("%w: %w", ErrInvalidMatchKey, richErr)
	}
	return raw, nil
}

// cipherKey selects the AES-256 key material for the message cipher: the
// first KeySize bytes of the match key's text representation. The hex
// digest is 64 characters, so a well-formed key always has enough.
func (k MatchKey) cipherKey() ([]byte, error) {
	if len(k) < KeySize {
		richErr := goerrors.New(ErrCodeMatchKeyShort, fmt.Sprintf("match key must be at least %d characters (got %d)", KeySize, len(k)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidMatchKey, richErr)
	}
	return []byte(k)[:KeySize], nil
}
