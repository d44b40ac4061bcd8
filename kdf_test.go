// kdf_test.go: Test cases for PLCM parameter derivation.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePLCMKey_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, KeySize)

	a, err := DerivePLCMKey(seed, nil)
	require.NoError(t, err)
	b, err := DerivePLCMKey(seed, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDerivePLCMKey_SeedAndInfoSeparation(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, KeySize)
	other := bytes.Repeat([]byte{0x43}, KeySize)

	a, err := DerivePLCMKey(seed, nil)
	require.NoError(t, err)
	b, err := DerivePLCMKey(other, nil)
	require.NoError(t, err)
	c, err := DerivePLCMKey(seed, []byte("frame-2"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDerivePLCMKey_ParameterBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		seed, err := GenerateKey()
		require.NoError(t, err)
		key, err := DerivePLCMKey(seed, nil)
		require.NoError(t, err)

		for _, p := range []PLCMParams{key.Confusion, key.Diffusion} {
			assert.GreaterOrEqual(t, p.P, minControl)
			assert.LessOrEqual(t, p.P, maxControl)
			assert.Greater(t, p.X0, 0.0)
			assert.Less(t, p.X0, 1.0)
			assert.NotEqual(t, p.X0, p.P)
			assert.NotEqual(t, p.X0, 0.5)
		}
	}
}

func TestDerivePLCMKey_EmptySeed(t *testing.T) {
	_, err := DerivePLCMKey(nil, nil)
	assert.Error(t, err)
	_, err = DerivePLCMKey([]byte{}, []byte("info"))
	assert.Error(t, err)
}

func TestUnitInterval(t *testing.T) {
	zero := make([]byte, 8)
	ones := bytes.Repeat([]byte{0xFF}, 8)

	assert.Equal(t, 0.1, unitInterval(zero, 0.1, 0.2))
	got := unitInterval(ones, 0.1, 0.2)
	assert.LessOrEqual(t, got, 0.2)
	assert.Greater(t, got, 0.1999)
}
