// keyutils_test.go: Test cases for key utilities.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"errors"
	"testing"
)

// failingReader simulates a broken secure random source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestGenerateKey_ValidLength(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	defer Zeroize(key) // Zero-out sensitive test data
	if len(key) != KeySize {
		t.Errorf("Expected key length %d, got %d", KeySize, len(key))
	}
}

func TestGenerateKey_Unique(t *testing.T) {
	a, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	b, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	if string(a) == string(b) {
		t.Error("Two generated keys must differ")
	}
}

func TestGenerateKey_RandomFailure(t *testing.T) {
	orig := randReader
	randReader = failingReader{}
	defer func() { randReader = orig }()

	if _, err := GenerateKey(); err == nil {
		t.Error("Expected error when the random source fails")
	}
	if _, err := GenerateIV(); !errors.Is(err, ErrIVGen) {
		t.Errorf("Expected ErrIVGen, got %v", err)
	}
}

func TestGenerateIV_Length(t *testing.T) {
	iv, err := GenerateIV()
	if err != nil {
		t.Fatalf("GenerateIV() error: %v", err)
	}
	if len(iv) != BlockSize {
		t.Errorf("Expected IV length %d, got %d", BlockSize, len(iv))
	}
}

func TestValidateKey(t *testing.T) {
	if err := ValidateKey(make([]byte, KeySize)); err != nil {
		t.Errorf("Expected valid key, got error: %v", err)
	}
	for _, n := range []int{0, 1, 16, 31, 33} {
		if err := ValidateKey(make([]byte, n)); !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("Expected ErrInvalidKeySize for %d bytes, got %v", n, err)
		}
	}
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zeroize(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("byte %d not zeroized", i)
		}
	}
	Zeroize(nil)
}

func TestGetKeyFingerprint(t *testing.T) {
	if fp := GetKeyFingerprint(nil); fp != "" {
		t.Errorf("Expected empty fingerprint for empty key, got %q", fp)
	}
	key := make([]byte, KeySize)
	fp := GetKeyFingerprint(key)
	if len(fp) != 16 {
		t.Errorf("Expected 16 hex characters, got %q", fp)
	}
	if fp != GetKeyFingerprint(key) {
		t.Error("Fingerprint must be deterministic")
	}
	key[0] = 1
	if fp == GetKeyFingerprint(key) {
		t.Error("Different keys must have different fingerprints")
	}
}
