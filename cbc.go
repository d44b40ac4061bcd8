// cbc.go: AES-256-CBC encryption with PKCS#7 padding and a prepended IV.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// KeySize is the required key size for AES-256 encryption in bytes.
const KeySize = 32

// BlockSize is the AES block width, which is also the IV size.
const BlockSize = aes.BlockSize

// CBCOutputLen returns the length of EncryptCBC's output for an n byte input:
// the IV plus the padded ciphertext. Padding always adds at least one byte.
func CBCOutputLen(n int) int {
	return BlockSize + (n/BlockSize+1)*BlockSize
}

// EncryptCBC encrypts plaintext with AES-256 in CBC mode and returns IV||ciphertext.
//
// A fresh random IV is generated on every call, so encrypting the same data
// twice under the same key gives different outputs. The plaintext is PKCS#7
// padded before encryption and is not modified.
//
// Parameters:
//   - plaintext: The bytes to encrypt (can be empty)
//   - key: The 32-byte encryption key (must be exactly KeySize bytes)
//
// Returns:
//   - CBCOutputLen(len(plaintext)) bytes: the clear IV followed by the ciphertext
//   - An error if the key is invalid or the IV cannot be generated
//
// Example:
//
//	key, _ := cov.GenerateKey()
//	out, err := cov.EncryptCBC([]byte("AB"), key)
//	// len(out) == 32
func EncryptCBC(plaintext []byte, key []byte) ([]byte, error) {
	iv, err := GenerateIV()
	if err != nil {
		return nil, err
	}
	return encryptCBCWithIV(plaintext, key, iv)
}

// encryptCBCWithIV is deterministic in (plaintext, key, iv).
func encryptCBCWithIV(plaintext, key, iv []byte) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeCipherInit, "failed to create AES cipher")
		return nil, fmt.Errorf("%w: %w", ErrCipherInit, richErr)
	}

	out := make([]byte, BlockSize, CBCOutputLen(len(plaintext)))
	copy(out, iv)
	out = Pad(out, plaintext, BlockSize)

	// #nosec G407 -- iv comes from GenerateIV, not hardcoded
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[BlockSize:], out[BlockSize:])
	return out, nil
}

// DecryptCBC reverses EncryptCBC: it reads the IV prefix, decrypts, and strips
// the PKCS#7 padding.
//
// The function will return an error if:
//   - The key size is incorrect
//   - The input is shorter than two blocks or not block aligned
//   - The padding is malformed (wrong key or corrupted data)
func DecryptCBC(data []byte, key []byte) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if len(data) < 2*BlockSize || len(data)%BlockSize != 0 {
		richErr := goerrors.New(ErrCodeCipherShort, fmt.Sprintf("ciphertext length %d is not IV plus whole blocks", len(data)))
		return nil, fmt.Errorf("%w: %w", ErrCiphertextShort, richErr)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeCipherInit, "failed to create AES cipher")
		return nil, fmt.Errorf("%w: %w", ErrCipherInit, richErr)
	}

	plain := make([]byte, len(data)-BlockSize)
	cipher.NewCBCDecrypter(block, data[:BlockSize]).CryptBlocks(plain, data[BlockSize:])
	return Unpad(plain, BlockSize)
}

// Pad appends data to dst followed by the PKCS#7 padding that brings
// len(data) to a multiple of blockSize. A full block of padding is added when
// data is already aligned.
func Pad(dst, data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	dst = append(dst, data...)
	for i := 0; i < n; i++ {
		dst = append(dst, byte(n))
	}
	return dst
}

// Unpad strips PKCS#7 padding from data.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		richErr := goerrors.New(ErrCodePadding, "padded data is not block aligned")
		return nil, fmt.Errorf("%w: %w", ErrInvalidPadding, richErr)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		richErr := goerrors.New(ErrCodePadding, fmt.Sprintf("invalid padding length %d", n))
		return nil, fmt.Errorf("%w: %w", ErrInvalidPadding, richErr)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			richErr := goerrors.New(ErrCodePadding, "inconsistent padding bytes")
			return nil, fmt.Errorf("%w: %w", ErrInvalidPadding, richErr)
		}
	}
	return data[:len(data)-n], nil
}
