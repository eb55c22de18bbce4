// core.go: Core configuration and construction for the cryptographic module.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
	"go.uber.org/zap"
)

// SigningSecretMinSize is the minimum accepted length for the HMAC signing
// secret in bytes. HMAC-SHA256 accepts keys of any length, but secrets
// shorter than the hash output weaken the construction.
const SigningSecretMinSize = 32

// ErrInvalidKeyConfiguration is returned by NewCore when the master key or
// signing secret is missing or the wrong length. The process must not start
// with cryptography in an undefined state; a malformed key is never padded
// or truncated.
var ErrInvalidKeyConfiguration = errors.New("crypto: invalid key configuration")

// Error codes for configuration failures
const (
	ErrCodeMasterKeySize     = "CRYPTO_MASTER_KEY_SIZE"
	ErrCodeSigningSecretSize = "CRYPTO_SIGNING_SECRET_SIZE"
)

// Config carries the secrets the Core needs. It is supplied once at process
// start by the caller's configuration loader; this package never reads the
// process environment itself.
type Config struct {
	// MasterKey is the 32-byte encryption master key. It keys the AEAD
	// cipher and the match-key HMAC.
	MasterKey []byte

	// SigningSecret is the default HMAC key for Sign/VerifySignature and
	// timed tokens. It must be at least SigningSecretMinSize bytes and
	// independent from MasterKey.
	SigningSecret []byte
}

// Core holds the immutable key material and is safe for concurrent use.
// All operations are synchronous, pure transformations of their inputs;
// the only shared resource is the read-only key material and the process
// entropy source.
type Core struct {
	masterKey     []byte
	signingSecret []byte
	logger        *zap.Logger
}

// Option configures a Core during construction.
type Option func(*Core)

// WithLogger sets the logger used by the degrade-gracefully field helpers.
// The default is a no-op logger. Key material is never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCore validates the configuration and returns an immutable Core.
//
// Validation is fail-fast: a master key that is not exactly KeySize bytes,
// or a signing secret shorter than SigningSecretMinSize bytes, yields an
// error satisfying errors.Is(err, ErrInvalidKeyConfiguration). The returned
// Core holds defensive copies, so the caller may zeroize its own slices
// after construction.
//
// Example:
//
//	core, err := crypto.NewCore(crypto.Config{
//		MasterKey:     masterKey,
//		SigningSecret: signingSecret,
//	}, crypto.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
func NewCore(cfg Config, opts ...Option) (*Core, error) {
	if len(cfg.MasterKey) != KeySize {
		richErr := goerrors.New(ErrCodeMasterKeySize, fmt.Sprintf("master key must be exactly %d bytes for AES-256 (got %d)", KeySize, len(cfg.MasterKey)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, richErr)
	}
	if len(cfg.SigningSecret) < SigningSecretMinSize {
		richErr := goerrors.New(ErrCodeSigningSecretSize, fmt.Sprintf("signing secret must be at least %d bytes (got %d)", SigningSecretMinSize, len(cfg.SigningSecret)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, richErr)
	}

	c := &Core{
		masterKey:     make([]byte, KeySize),
		signingSecret: make([]byte, len(cfg.SigningSecret)),
		logger:        zap.NewNop(),
	}
	copy(c.masterKey, cfg.MasterKey)
	copy(c.signingSecret, cfg.SigningSecret)

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MasterKeyFingerprint returns a short non-cryptographic identifier for the
// master key, suitable for logging and diagnostics without exposing key
// material.
func (c *Core) MasterKeyFingerprint() string {
	return GetKeyFingerprint(c.masterKey)
}

// ConfigFromBase64 decodes a Config from base64-encoded secrets, the format
// typically found in deployment configuration. Length validation happens in
// NewCore, not here.
func ConfigFromBase64(masterKey, signingSecret string) (Config, error) {
	mk, err := KeyFromBase64(masterKey)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, err)
	}
	ss, err := KeyFromBase64(signingSecret)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, err)
	}
	return Config{MasterKey: mk, SigningSecret: ss}, nil
}

// ConfigFromHex decodes a Config from hex-encoded secrets.
func ConfigFromHex(masterKey, signingSecret string) (Config, error) {
	mk, err := KeyFromHex(masterKey)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, err)
	}
	ss, err := KeyFromHex(signingSecret)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, err)
	}
	return Config{MasterKey: mk, SigningSecret: ss}, nil
}

// ConfigFromPassphrase bootstraps a Config from a single passphrase and a
// random salt. The master key is derived with Argon2id and the signing
// secret is expanded from it with HKDF under a distinct info label, so the
// two secrets are domain-separated even though they share one source.
//
// Intended for single-operator deployments; production systems should
// configure two independently generated secrets instead.
func ConfigFromPassphrase(passphrase, salt []byte) (Config, error) {
	masterKey, err := DeriveKey(passphrase, salt, KeySize, nil)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, err)
	}
	signingSecret, err := DeriveKeyHKDF(masterKey, nil, []byte("harmonia/signing/v1"), SigningSecretMinSize)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidKeyConfiguration, err)
	}
	return Config{MasterKey: masterKey, SigningSecret: signingSecret}, nil
}
