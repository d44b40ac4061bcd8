// errors.go: Sentinel errors and error codes shared by the benchmark pipelines.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"errors"
	"fmt"
)

// Public standard errors. All of them can be matched with errors.Is().
var (
	// ErrFormat is returned when a bit sequence contains a character other than '0' or '1'.
	ErrFormat = errors.New("cov: malformed bit sequence")

	// ErrInputNotFound is returned when the input bitstream file does not exist.
	ErrInputNotFound = errors.New("cov: input file not found")

	// ErrInputRead is returned when the input bitstream cannot be read.
	ErrInputRead = errors.New("cov: input read error")

	// ErrOutputWrite is returned when a result file cannot be written.
	ErrOutputWrite = errors.New("cov: output write error")

	// ErrMatrixShape is returned when a matrix has invalid dimensions or cell count.
	ErrMatrixShape = errors.New("cov: invalid matrix shape")

	// ErrEngineUnavailable is matched by every *EngineError. The chaotic-map
	// pipeline is skipped for the run when it is returned.
	ErrEngineUnavailable = errors.New("cov: chaotic engine unavailable")

	// ErrInvalidKeySize is returned when an AES key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.New("cov: invalid key size")

	// ErrCipherInit is returned when AES cipher initialization fails.
	ErrCipherInit = errors.New("cov: cipher initialization error")

	// ErrIVGen is returned when the initialization vector cannot be generated.
	ErrIVGen = errors.New("cov: IV generation error")

	// ErrCiphertextShort is returned when a CBC ciphertext is too short or not block aligned.
	ErrCiphertextShort = errors.New("cov: ciphertext too short")

	// ErrInvalidPadding is returned when PKCS#7 padding is malformed.
	ErrInvalidPadding = errors.New("cov: invalid padding")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("cov: invalid configuration")
)

// Error codes for rich error handling
const (
	ErrCodeFormat        = "COV_BITSTREAM_FORMAT"
	ErrCodeInputNotFound = "COV_INPUT_NOT_FOUND"
	ErrCodeInputRead     = "COV_INPUT_READ"
	ErrCodeOutputWrite   = "COV_OUTPUT_WRITE"
	ErrCodeMatrixShape   = "COV_MATRIX_SHAPE"
	ErrCodeEngine        = "COV_ENGINE"
	ErrCodeInvalidKey    = "COV_INVALID_KEY"
	ErrCodeCipherInit    = "COV_CIPHER_INIT"
	ErrCodeIVGen         = "COV_IV_GEN"
	ErrCodeCipherShort   = "COV_CIPHERTEXT_SHORT"
	ErrCodePadding       = "COV_PADDING"
	ErrCodeConfig        = "COV_CONFIG"
)

// EngineError reports a failure inside the chaotic-map engine or its adapter.
// Op names the adapter step that failed and Cause keeps the original diagnostic.
type EngineError struct {
	Op    string
	Cause error
}

func newEngineError(op string, cause error) *EngineError {
	return &EngineError{Op: op, Cause: cause}
}

// asEngineError returns err itself when it already is an *EngineError and
// wraps it under op otherwise.
func asEngineError(op string, err error) *EngineError {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee
	}
	return newEngineError(op, err)
}

func (e *EngineError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("chaotic engine %s failed", e.Op)
	}
	return fmt.Sprintf("chaotic engine %s failed: %v", e.Op, e.Cause)
}

// Unwrap exposes both ErrEngineUnavailable and the original cause to errors.Is/As.
func (e *EngineError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrEngineUnavailable}
	}
	return []error{ErrEngineUnavailable, e.Cause}
}
