// matrix.go: Near-square 2-D packing of flat byte buffers.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"
	"math/bits"

	goerrors "github.com/agilira/go-errors"
)

// Matrix is a row-major grid of single-byte cells. It is the unit of exchange
// with a ChaoticEngine.
//
// A Matrix does not record how many of its cells were real data: cells past
// the original buffer length are zero padding added by Pack, and Unpack
// returns them as well. Callers that need exact recovery must remember the
// original length themselves.
type Matrix struct {
	Height int
	Width  int
	Cells  []byte
}

// NewMatrix allocates a zero-valued height x width matrix.
func NewMatrix(height, width int) Matrix {
	return Matrix{Height: height, Width: width, Cells: make([]byte, height*width)}
}

// Dimensions returns the packing shape for n elements: height = floor(sqrt(n))
// and width = ceil(n/height). n below 1 is sized as 1 so the shape is never
// degenerate.
func Dimensions(n int) (height, width int) {
	if n < 1 {
		n = 1
	}
	height = isqrt(n)
	width = (n + height - 1) / height
	return height, width
}

// isqrt is floor(sqrt(n)) without float rounding.
func isqrt(n int) int {
	if n < 2 {
		return n
	}
	// Newton iteration starting above the root.
	x := 1 << uint((bits.Len(uint(n))+1)/2)
	for {
		y := (x + n/x) / 2
		if y >= x {
			return x
		}
		x = y
	}
}

// Pack copies data into a matrix shaped by Dimensions, appending zero bytes
// when height*width exceeds len(data). The input buffer is never aliased.
//
// Example:
//
//	m := cov.Pack([]byte{0x41, 0x42})
//	// m.Height == 1, m.Width == 2, m.Cells == []byte{0x41, 0x42}
func Pack(data []byte) Matrix {
	h, w := Dimensions(len(data))
	m := NewMatrix(h, w)
	copy(m.Cells, data)
	return m
}

// Unpack flattens m row-major into a new buffer of length Height*Width.
// Padding added by Pack is kept.
func Unpack(m Matrix) []byte {
	out := make([]byte, m.Height*m.Width)
	copy(out, m.Cells)
	return out
}

// Len returns the number of cells, padding included.
func (m Matrix) Len() int {
	return m.Height * m.Width
}

// At returns the cell at (row, col).
func (m Matrix) At(row, col int) byte {
	return m.Cells[row*m.Width+col]
}

// Row returns row i as a slice sharing the matrix storage.
func (m Matrix) Row(i int) []byte {
	return m.Cells[i*m.Width : (i+1)*m.Width]
}

// SameShape reports whether m and o have identical dimensions.
func (m Matrix) SameShape(o Matrix) bool {
	return m.Height == o.Height && m.Width == o.Width
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	c := Matrix{Height: m.Height, Width: m.Width, Cells: make([]byte, len(m.Cells))}
	copy(c.Cells, m.Cells)
	return c
}

// Validate checks that both dimensions are positive and that Cells holds
// exactly Height*Width bytes.
func (m Matrix) Validate() error {
	if m.Height < 1 || m.Width < 1 {
		richErr := goerrors.New(ErrCodeMatrixShape, fmt.Sprintf("dimensions must be positive (got %dx%d)", m.Height, m.Width))
		return fmt.Errorf("%w: %w", ErrMatrixShape, richErr)
	}
	if len(m.Cells) != m.Height*m.Width {
		richErr := goerrors.New(ErrCodeMatrixShape, fmt.Sprintf("%dx%d matrix holds %d cells", m.Height, m.Width, len(m.Cells)))
		return fmt.Errorf("%w: %w", ErrMatrixShape, richErr)
	}
	return nil
}
