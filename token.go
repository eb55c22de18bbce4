// token.go: Unpredictable tokens, numeric codes, and HMAC signing.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// Public errors for token verification.
var (
	// ErrTokenInvalid is returned when a timed token is malformed or its
	// signature does not verify.
	ErrTokenInvalid = errors.New("crypto: invalid token")

	// ErrTokenExpired is returned when a timed token's signature verifies
	// but its expiry has passed.
	ErrTokenExpired = errors.New("crypto: token expired")
)

// Error codes for token failures
const (
	ErrCodeTokenLength  = "CRYPTO_TOKEN_LENGTH"
	ErrCodeTokenRandom  = "CRYPTO_TOKEN_RANDOM"
	ErrCodeTokenFormat  = "CRYPTO_TOKEN_FORMAT"
	ErrCodeTokenSig     = "CRYPTO_TOKEN_SIGNATURE"
	ErrCodeTokenExpired = "CRYPTO_TOKEN_EXPIRED"
)

// GenerateSecureToken returns a URL-safe token carrying length bytes of
// cryptographically secure entropy. The encoding is unpadded base64url, so
// the token is safe in URLs, headers, and text columns.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", goerrors.New(ErrCodeTokenLength, "token length must be positive")
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", goerrors.Wrap(err, ErrCodeTokenRandom, "failed to generate token")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// GenerateNumericCode returns a string of length cryptographically secure
// decimal digits, suitable for one-time SMS or email codes. Digits are
// drawn from crypto/rand with rejection sampling, so every digit is
// uniform; no weaker PRNG is involved.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", goerrors.New(ErrCodeTokenLength, "code length must be positive")
	}

	var b strings.Builder
	b.Grow(length)

	buf := make([]byte, length)
	for b.Len() < length {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return "", goerrors.Wrap(err, ErrCodeTokenRandom, "failed to generate code")
		}
		for _, v := range buf {
			// Reject the top of the byte range to keep digits uniform
			if v >= 250 {
				continue
			}
			b.WriteByte('0' + v%10)
			if b.Len() == length {
				break
			}
		}
	}

	return b.String(), nil
}

// Sign computes the HMAC-SHA256 signature of data under key, hex-encoded.
func Sign(data, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the HMAC-SHA256 of data
// under key. The comparison is constant-time, the same discipline as
// password verification.
func VerifySignature(data []byte, signature string, key []byte) bool {
	expected := Sign(data, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignedValue pairs data with its signature under the Core's signing
// secret. Both parts are plain text, safe to store in a text column or
// transmit in JSON.
type SignedValue struct {
	Data      string `json:"data"`
	Signature string `json:"signature"`
}

// SignValue signs data under the configured signing secret, which is
// independent from the encryption master key.
func (c *Core) SignValue(data string) SignedValue {
	return SignedValue{
		Data:      data,
		Signature: Sign([]byte(data), c.signingSecret),
	}
}

// VerifyValue reports whether the signed value's signature was produced by
// this Core's signing secret over exactly these data bytes.
func (c *Core) VerifyValue(v SignedValue) bool {
	return VerifySignature([]byte(v.Data), v.Signature, c.signingSecret)
}

// IssueTimedToken issues a signed token that carries an opaque payload and
// expires after ttl, e.g. a password-reset token. The format is
//
//	base64url(payload) "." unix-expiry "." signature
//
// with the signature computed under the signing secret over the first two
// segments.
func (c *Core) IssueTimedToken(payload string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", goerrors.New(ErrCodeTokenFormat, "token ttl must be positive")
	}

	expiry := timecache.CachedTime().UTC().Add(ttl).Unix()
	body := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + strconv.FormatInt(expiry, 10)
	return body + "." + Sign([]byte(body), c.signingSecret), nil
}

// VerifyTimedToken verifies a token issued by IssueTimedToken and returns
// its payload. The signature is checked in constant time before the expiry
// is even parsed, so a forged token learns nothing from timing. Expired
// tokens fail with ErrTokenExpired; anything else fails with
// ErrTokenInvalid.
func (c *Core) VerifyTimedToken(token string) (string, error) {
	lastDot := strings.LastIndexByte(token, '.')
	if lastDot < 0 {
		richErr := goerrors.New(ErrCodeTokenFormat, "token has no signature segment")
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, richErr)
	}
	body, signature := token[:lastDot], token[lastDot+1:]

	if !VerifySignature([]byte(body), signature, c.signingSecret) {
		richErr := goerrors.New(ErrCodeTokenSig, "token signature mismatch")
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, richErr)
	}

	parts := strings.SplitN(body, ".", 2)
	if len(parts) != 2 {
		richErr := goerrors.New(ErrCodeTokenFormat, "token has no expiry segment")
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, richErr)
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeTokenFormat, "token expiry is not a unix timestamp")
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, richErr)
	}
	if timecache.CachedTime().UTC().Unix() >= expiry {
		richErr := goerrors.New(ErrCodeTokenExpired, "token expiry has passed")
		return "", fmt.Errorf("%w: %w", ErrTokenExpired, richErr)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeTokenFormat, "token payload is not valid base64url")
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, richErr)
	}

	return string(payload), nil
}
