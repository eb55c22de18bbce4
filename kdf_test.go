// kdf_test.go: Test cases for key derivation utilities.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto_test

import (
	"bytes"
	"testing"

	crypto "github.com/agilira/harmonia"
)

// fastKDFParams keeps Argon2id cheap in tests.
func fastKDFParams() *crypto.KDFParams {
	return &crypto.KDFParams{Time: 1, Memory: 8, Threads: 1}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("operator passphrase")
	salt := []byte("deployment-salt-001")

	first, err := crypto.DeriveKey(password, salt, crypto.KeySize, fastKDFParams())
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	second, err := crypto.DeriveKey(password, salt, crypto.KeySize, fastKDFParams())
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("Same passphrase and salt produced different keys")
	}
	if len(first) != crypto.KeySize {
		t.Errorf("Expected %d-byte key, got %d", crypto.KeySize, len(first))
	}
}

func TestDeriveKey_SaltSensitivity(t *testing.T) {
	password := []byte("operator passphrase")

	k1, _ := crypto.DeriveKey(password, []byte("salt-one"), crypto.KeySize, fastKDFParams())
	k2, _ := crypto.DeriveKey(password, []byte("salt-two"), crypto.KeySize, fastKDFParams())

	if bytes.Equal(k1, k2) {
		t.Error("Different salts produced the same key")
	}
}

func TestDeriveKey_Validation(t *testing.T) {
	if _, err := crypto.DeriveKey(nil, []byte("salt"), 32, nil); err == nil {
		t.Error("Expected error for empty password")
	}
	if _, err := crypto.DeriveKey([]byte("pw"), nil, 32, nil); err == nil {
		t.Error("Expected error for empty salt")
	}
	if _, err := crypto.DeriveKey([]byte("pw"), []byte("salt"), 0, nil); err == nil {
		t.Error("Expected error for zero key length")
	}
}

func TestDeriveKeyHKDF(t *testing.T) {
	masterKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	k1, err := crypto.DeriveKeyHKDF(masterKey, nil, []byte("purpose-a"), 32)
	if err != nil {
		t.Fatalf("DeriveKeyHKDF failed: %v", err)
	}
	k2, err := crypto.DeriveKeyHKDF(masterKey, nil, []byte("purpose-b"), 32)
	if err != nil {
		t.Fatalf("DeriveKeyHKDF failed: %v", err)
	}

	if bytes.Equal(k1, k2) {
		t.Error("Distinct info labels produced the same subkey")
	}

	// Outputs longer than one hash block
	long, err := crypto.DeriveKeyHKDF(masterKey, nil, []byte("purpose-a"), 80)
	if err != nil {
		t.Fatalf("DeriveKeyHKDF failed for 80 bytes: %v", err)
	}
	if len(long) != 80 {
		t.Errorf("Expected 80-byte output, got %d", len(long))
	}
	// The shorter output must be a prefix of the longer one
	if !bytes.Equal(long[:32], k1) {
		t.Error("HKDF output is not length-consistent")
	}

	if _, err := crypto.DeriveKeyHKDF(nil, nil, nil, 32); err == nil {
		t.Error("Expected error for empty master key")
	}
	if _, err := crypto.DeriveKeyHKDF(masterKey, nil, nil, 0); err == nil {
		t.Error("Expected error for zero key length")
	}
	if _, err := crypto.DeriveKeyHKDF(masterKey, nil, nil, 255*32+1); err == nil {
		t.Error("Expected error for oversized key length")
	}
}

func TestConfigFromPassphrase(t *testing.T) {
	salt := []byte("deployment-salt-001")

	cfg, err := crypto.ConfigFromPassphrase([]byte("operator passphrase"), salt)
	if err != nil {
		t.Fatalf("ConfigFromPassphrase failed: %v", err)
	}

	core, err := crypto.NewCore(cfg)
	if err != nil {
		t.Fatalf("NewCore rejected bootstrapped config: %v", err)
	}

	// The two secrets must be domain-separated
	if bytes.Equal(cfg.MasterKey, cfg.SigningSecret[:crypto.KeySize]) {
		t.Error("Master key and signing secret are identical")
	}

	// Deterministic: the same passphrase and salt reopen the same data
	cfg2, err := crypto.ConfigFromPassphrase([]byte("operator passphrase"), salt)
	if err != nil {
		t.Fatalf("ConfigFromPassphrase failed: %v", err)
	}
	core2, _ := crypto.NewCore(cfg2)

	blob, err := core.EncryptString("survives restart")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	plaintext, err := core2.DecryptString(blob)
	if err != nil {
		t.Fatalf("Decrypt with re-derived config failed: %v", err)
	}
	if plaintext != "survives restart" {
		t.Errorf("Expected %q, got %q", "survives restart", plaintext)
	}

	if _, err := crypto.ConfigFromPassphrase(nil, salt); err == nil {
		t.Error("Expected error for empty passphrase")
	}
}
