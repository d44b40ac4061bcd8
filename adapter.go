// adapter.go: Drives a ChaoticEngine over an arbitrary byte buffer.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// ChaoticAdapter packs byte buffers into matrices, runs them through a
// ChaoticEngine and encodes the result as a bit sequence.
type ChaoticAdapter struct {
	engine ChaoticEngine
}

// NewChaoticAdapter wraps engine.
func NewChaoticAdapter(engine ChaoticEngine) *ChaoticAdapter {
	return &ChaoticAdapter{engine: engine}
}

// EncryptBuffer encrypts data with the wrapped engine and returns the
// ciphertext matrix, flattened row-major, as a '0'/'1' sequence.
//
// The steps are: Pack, Configure, Encrypt, a shape check of the result,
// Unpack and EncodeBits. Any error or panic in these steps is returned as an
// *EngineError naming the step and carrying the original diagnostic.
//
// The output covers the whole matrix, so it includes the encrypted padding
// cells: its length is 8*height*width, not 8*len(data).
func (a *ChaoticAdapter) EncryptBuffer(data []byte) (bits string, err error) {
	op := "pack"
	defer func() {
		if r := recover(); r != nil {
			bits = ""
			err = newEngineError(op, fmt.Errorf("panic: %v", r))
		}
	}()

	if a == nil || a.engine == nil {
		return "", newEngineError("configure", goerrors.New(ErrCodeEngine, "no engine attached"))
	}

	m := Pack(data)

	op = "configure"
	if err := a.engine.Configure(m); err != nil {
		return "", asEngineError(op, err)
	}

	op = "encrypt"
	out, err := a.engine.Encrypt()
	if err != nil {
		return "", asEngineError(op, err)
	}

	op = "verify"
	if err := out.Validate(); err != nil {
		return "", newEngineError(op, err)
	}
	if !out.SameShape(m) {
		richErr := goerrors.New(ErrCodeEngine, fmt.Sprintf("engine returned %dx%d matrix, want %dx%d", out.Height, out.Width, m.Height, m.Width))
		return "", newEngineError(op, richErr)
	}

	op = "encode"
	return EncodeBits(Unpack(out)), nil
}
