// password_test.go: Test cases for password hashing and verification.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto_test

import (
	"testing"

	crypto "github.com/agilira/harmonia"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	record, err := crypto.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !crypto.VerifyPassword("correct horse battery staple", record.Hash, record.Salt) {
		t.Error("Correct password failed verification")
	}
	if crypto.VerifyPassword("correct horse battery stapl", record.Hash, record.Salt) {
		t.Error("Wrong password passed verification")
	}
	if crypto.VerifyPassword("", record.Hash, record.Salt) {
		t.Error("Empty password passed verification")
	}
}

func TestHashPassword_FreshSalts(t *testing.T) {
	first, err := crypto.HashPassword("same password")
	if err != nil {
		t.Fatalf("First HashPassword failed: %v", err)
	}
	second, err := crypto.HashPassword("same password")
	if err != nil {
		t.Fatalf("Second HashPassword failed: %v", err)
	}

	if first.Salt == second.Salt {
		t.Error("Two hashes of the same password reused a salt")
	}
	if first.Hash == second.Hash {
		t.Error("Two hashes of the same password produced identical hashes")
	}
}

func TestHashPasswordWithSalt_Deterministic(t *testing.T) {
	first, err := crypto.HashPasswordWithSalt("pw", "fixed-salt-value")
	if err != nil {
		t.Fatalf("HashPasswordWithSalt failed: %v", err)
	}
	second, err := crypto.HashPasswordWithSalt("pw", "fixed-salt-value")
	if err != nil {
		t.Fatalf("HashPasswordWithSalt failed: %v", err)
	}

	if first.Hash != second.Hash {
		t.Error("Same password and salt produced different hashes")
	}
	if first.Salt != "fixed-salt-value" {
		t.Errorf("Expected salt to be preserved, got %q", first.Salt)
	}
}

func TestHashPassword_RecordShape(t *testing.T) {
	record, err := crypto.HashPassword("shape check")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// 64-byte PBKDF2 output, hex-encoded
	if len(record.Hash) != crypto.PasswordHashSize*2 {
		t.Errorf("Expected %d-character hash, got %d", crypto.PasswordHashSize*2, len(record.Hash))
	}
	// 32-byte salt, hex-encoded
	if len(record.Salt) != crypto.PasswordSaltSize*2 {
		t.Errorf("Expected %d-character salt, got %d", crypto.PasswordSaltSize*2, len(record.Salt))
	}
}

func TestHashPassword_EmptyInputs(t *testing.T) {
	if _, err := crypto.HashPassword(""); err == nil {
		t.Error("Expected error for empty password")
	}
	if _, err := crypto.HashPasswordWithSalt("pw", ""); err == nil {
		t.Error("Expected error for empty salt")
	}
	if _, err := crypto.HashPasswordWithSalt("", "salt"); err == nil {
		t.Error("Expected error for empty password with explicit salt")
	}
}

func TestVerifyPassword_GarbageInputs(t *testing.T) {
	record, _ := crypto.HashPassword("pw")

	if crypto.VerifyPassword("pw", "not-a-hash", record.Salt) {
		t.Error("Garbage hash passed verification")
	}
	if crypto.VerifyPassword("pw", record.Hash, "") {
		t.Error("Empty salt passed verification")
	}
	if crypto.VerifyPassword("pw", "", record.Salt) {
		t.Error("Empty hash passed verification")
	}
}
