// keyutils.go: Key and IV generation, validation, zeroization, and fingerprinting.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// randReader is the secure random source. Tests replace it to simulate an
// exhausted or broken source.
var randReader io.Reader = rand.Reader

// GenerateKey generates a cryptographically secure random key of KeySize bytes.
//
// A fresh key is produced for every benchmark run; keys are never persisted
// or reused.
//
// Example:
//
//	key, err := cov.GenerateKey()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Generated key length:", len(key)) // Output: 32
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(randReader, key); err != nil {
		return nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
	}
	return key, nil
}

// GenerateIV generates a random initialization vector of BlockSize bytes.
func GenerateIV() ([]byte, error) {
	iv := make([]byte, BlockSize)
	if _, err := io.ReadFull(randReader, iv); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeIVGen, "failed to generate IV")
		return nil, fmt.Errorf("%w: %w", ErrIVGen, richErr)
	}
	return iv, nil
}

// ValidateKey checks that a key has the correct size for AES-256.
func ValidateKey(key []byte) error {
	if len(key) != KeySize {
		richErr := goerrors.New(ErrCodeInvalidKey, fmt.Sprintf("key size must be %d bytes for AES-256, got %d", KeySize, len(key)))
		return fmt.Errorf("%w: %w", ErrInvalidKeySize, richErr)
	}
	return nil
}

// Zeroize overwrites b with zeros in place.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetKeyFingerprint returns the first 8 bytes of SHA-256(key) as 16 hex
// characters, or "" for an empty key. It identifies a key in logs without
// exposing the key material.
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	hash := sha256.Sum256(key)
	return fmt.Sprintf("%016x", hash[:8])
}
