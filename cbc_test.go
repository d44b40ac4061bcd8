// cbc_test.go: Test cases for AES-256-CBC encryption.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptCBC_OutputLength(t *testing.T) {
	key := testKey(t)
	for _, n := range []int{0, 1, 2, 15, 16, 17, 31, 32, 33, 1000} {
		out, err := EncryptCBC(make([]byte, n), key)
		require.NoError(t, err)

		want := BlockSize + ((n+1+BlockSize-1)/BlockSize)*BlockSize
		assert.Equal(t, want, len(out), "n=%d", n)
		assert.Equal(t, CBCOutputLen(n), len(out), "n=%d", n)
	}
}

func TestEncryptCBC_ExampleAB(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	defer Zeroize(key)

	data, err := DecodeBits("0100000101000010")
	require.NoError(t, err)

	out, err := EncryptCBC(data, key)
	require.NoError(t, err)
	assert.Len(t, out, 32)
	assert.Len(t, EncodeBits(out), 256)
}

func TestEncryptCBC_FreshIVPerCall(t *testing.T) {
	key := testKey(t)
	data := []byte("same data, same key")

	a, err := EncryptCBC(data, key)
	require.NoError(t, err)
	b, err := EncryptCBC(data, key)
	require.NoError(t, err)

	assert.NotEqual(t, a[:BlockSize], b[:BlockSize], "IV must differ between calls")
	assert.NotEqual(t, a, b)
}

func TestEncryptCBC_DeterministicGivenIV(t *testing.T) {
	key := testKey(t)
	iv := bytes.Repeat([]byte{0x5A}, BlockSize)
	data := []byte("deterministic")

	a, err := encryptCBCWithIV(data, key, iv)
	require.NoError(t, err)
	b, err := encryptCBCWithIV(data, key, iv)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, iv, a[:BlockSize], "IV is prepended in clear")
}

func TestEncryptCBC_MatchesStandardLibraryCBC(t *testing.T) {
	key := testKey(t)
	iv := bytes.Repeat([]byte{0x01}, BlockSize)
	data := []byte("0123456789abcdef0123")

	out, err := encryptCBCWithIV(data, key, iv)
	require.NoError(t, err)

	padded := append(append([]byte{}, data...), bytes.Repeat([]byte{12}, 12)...)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	want := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(want, padded)

	assert.Equal(t, want, out[BlockSize:])
}

func TestEncryptCBC_DoesNotModifyInput(t *testing.T) {
	data := []byte("leave me alone")
	orig := append([]byte{}, data...)
	_, err := EncryptCBC(data, testKey(t))
	require.NoError(t, err)
	assert.Equal(t, orig, data)
}

func TestEncryptCBC_InvalidKey(t *testing.T) {
	for _, key := range [][]byte{nil, {}, make([]byte, 16), make([]byte, 24), make([]byte, 64)} {
		out, err := EncryptCBC([]byte("x"), key)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Nil(t, out)
	}
}

func TestEncryptCBC_IVFailure(t *testing.T) {
	orig := randReader
	randReader = failingReader{}
	defer func() { randReader = orig }()

	_, err := EncryptCBC([]byte("x"), testKey(t))
	assert.ErrorIs(t, err, ErrIVGen)
}

func TestDecryptCBC_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	for _, n := range []int{0, 1, 16, 100} {
		data := bytes.Repeat([]byte{0xAB}, n)
		out, err := EncryptCBC(data, key)
		require.NoError(t, err)

		plain, err := DecryptCBC(out, key)
		require.NoError(t, err)
		assert.Equal(t, data, plain)
	}
}

func TestDecryptCBC_Errors(t *testing.T) {
	key := testKey(t)

	_, err := DecryptCBC(make([]byte, BlockSize), key)
	assert.ErrorIs(t, err, ErrCiphertextShort)

	_, err = DecryptCBC(make([]byte, 2*BlockSize+1), key)
	assert.ErrorIs(t, err, ErrCiphertextShort)

	_, err = DecryptCBC(make([]byte, 2*BlockSize), make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	out, err := EncryptCBC([]byte("payload"), key)
	require.NoError(t, err)
	wrong := testKey(t)
	wrong[0] ^= 0xFF
	_, err = DecryptCBC(out, wrong)
	// A wrong key yields random padding; it is rejected unless it happens to
	// end in a valid pad, which has probability below 1/16.
	if err != nil {
		assert.ErrorIs(t, err, ErrInvalidPadding)
	}
}

func TestPadUnpad(t *testing.T) {
	padded := Pad(nil, []byte{1, 2, 3}, 4)
	assert.Equal(t, []byte{1, 2, 3, 1}, padded)

	padded = Pad(nil, []byte{1, 2, 3, 4}, 4)
	assert.Equal(t, []byte{1, 2, 3, 4, 4, 4, 4, 4}, padded)

	plain, err := Unpad(padded, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, plain)

	_, err = Unpad([]byte{1, 2, 3, 0}, 4)
	assert.ErrorIs(t, err, ErrInvalidPadding)
	_, err = Unpad([]byte{1, 2, 3, 5}, 4)
	assert.ErrorIs(t, err, ErrInvalidPadding)
	_, err = Unpad([]byte{1, 3, 2, 2}, 4)
	assert.NoError(t, err)
	_, err = Unpad([]byte{1, 2, 3, 3}, 4)
	assert.ErrorIs(t, err, ErrInvalidPadding)
	_, err = Unpad(nil, 4)
	assert.ErrorIs(t, err, ErrInvalidPadding)
}
