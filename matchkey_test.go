// matchkey_test.go: Test cases for per-pair key derivation.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto_test

import (
	"testing"

	crypto "github.com/agilira/harmonia"
)

func TestDeriveMatchKey_OrderIndependence(t *testing.T) {
	core := newTestCore(t)

	ab, err := core.DeriveMatchKey("alice", "bob")
	if err != nil {
		t.Fatalf("DeriveMatchKey(alice, bob) failed: %v", err)
	}
	ba, err := core.DeriveMatchKey("bob", "alice")
	if err != nil {
		t.Fatalf("DeriveMatchKey(bob, alice) failed: %v", err)
	}

	if ab != ba {
		t.Errorf("Expected order-independent derivation, got %q and %q", ab, ba)
	}
}

func TestDeriveMatchKey_DistinctPairs(t *testing.T) {
	core := newTestCore(t)

	ab, _ := core.DeriveMatchKey("alice", "bob")
	ac, _ := core.DeriveMatchKey("alice", "carol")
	bc, _ := core.DeriveMatchKey("bob", "carol")

	if ab == ac || ab == bc || ac == bc {
		t.Error("Different pairs derived the same match key")
	}
}

func TestDeriveMatchKey_Deterministic(t *testing.T) {
	core := newTestCore(t)

	first, _ := core.DeriveMatchKey("user-7401", "user-88")
	second, _ := core.DeriveMatchKey("user-7401", "user-88")

	if first != second {
		t.Error("Derivation is not deterministic for the same pair")
	}
}

func TestDeriveMatchKey_DependsOnMasterKey(t *testing.T) {
	core := newTestCore(t)

	otherCfg := testConfig()
	otherCfg.MasterKey[5] ^= 0xAA
	other, err := crypto.NewCore(otherCfg)
	if err != nil {
		t.Fatalf("Failed to construct second core: %v", err)
	}

	k1, _ := core.DeriveMatchKey("alice", "bob")
	k2, _ := other.DeriveMatchKey("alice", "bob")

	if k1 == k2 {
		t.Error("Different master keys derived the same match key")
	}
}

func TestDeriveMatchKey_Shape(t *testing.T) {
	core := newTestCore(t)

	key, err := core.DeriveMatchKey("alice", "bob")
	if err != nil {
		t.Fatalf("DeriveMatchKey failed: %v", err)
	}

	// HMAC-SHA256 digest, hex-encoded
	if len(key) != 64 {
		t.Errorf("Expected 64-character match key, got %d characters", len(key))
	}

	raw, err := key.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("Expected 32-byte digest, got %d bytes", len(raw))
	}
}

func TestDeriveMatchKey_EmptyIdentifiers(t *testing.T) {
	core := newTestCore(t)

	if _, err := core.DeriveMatchKey("", "bob"); err == nil {
		t.Error("Expected error for empty first identifier")
	}
	if _, err := core.DeriveMatchKey("alice", ""); err == nil {
		t.Error("Expected error for empty second identifier")
	}
}
