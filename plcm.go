// plcm.go: Reference confusion/diffusion engine driven by a piecewise linear chaotic map.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"
	"sort"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

const (
	// plcmBurnIn iterations are discarded before an orbit is used.
	plcmBurnIn = 128

	// orbitReseed replaces an orbit value that collapsed onto 0 or 1.
	orbitReseed = 0.6180339887498949
)

// plcmStep is one application of the piecewise linear chaotic map with
// control parameter p in (0, 0.5). The map is symmetric around 0.5.
func plcmStep(x, p float64) float64 {
	if x >= 0.5 {
		x = 1 - x
	}
	if x < p {
		return x / p
	}
	return (x - p) / (0.5 - p)
}

type plcmOrbit struct {
	x, p float64
}

func newPLCMOrbit(params PLCMParams) *plcmOrbit {
	o := &plcmOrbit{x: params.X0, p: params.P}
	for i := 0; i < plcmBurnIn; i++ {
		o.next()
	}
	return o
}

func (o *plcmOrbit) next() float64 {
	o.x = plcmStep(o.x, o.p)
	if !(o.x > 0 && o.x < 1) {
		o.x = orbitReseed
	}
	return o.x
}

// keystreamByte quantizes an orbit value to one byte.
func keystreamByte(x float64) byte {
	return byte(uint64(x * (1 << 32)))
}

// chaoticPermutation ranks n orbit values. Cell perm[i] of the plain image
// moves to position i.
func chaoticPermutation(params PLCMParams, n int) []int {
	o := newPLCMOrbit(params)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = o.next()
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return vals[perm[a]] < vals[perm[b]]
	})
	return perm
}

// Common engine errors
var (
	ErrEngineNotConfigured = goerrors.New("ENGINE_001", "engine has no image configured")
	ErrEngineInvalidImage  = goerrors.New("ENGINE_002", "invalid image for engine")
)

// PLCMEngine is a ChaoticEngine that permutes the image by ranking one PLCM
// orbit (confusion) and then chains every cell with a keystream drawn from a
// second orbit (diffusion).
//
// The engine is stateful: Configure replaces the working image and resets the
// temp, confused and diffused frames to zero matrices of the same shape.
// A PLCMEngine is safe for concurrent use but calls serialize.
type PLCMEngine struct {
	mu  sync.Mutex
	key PLCMKey

	image    Matrix
	temp     Matrix // keystream of the last Encrypt
	confused Matrix
	diffused Matrix

	configured bool
}

// NewPLCMEngine creates an engine whose parameters are derived from seed.
func NewPLCMEngine(seed []byte) (*PLCMEngine, error) {
	key, err := DerivePLCMKey(seed, nil)
	if err != nil {
		return nil, err
	}
	return &PLCMEngine{key: *key}, nil
}

// NewRandomPLCMEngine creates an engine from a fresh random seed. The seed is
// zeroized once the parameters are derived.
func NewRandomPLCMEngine() (*PLCMEngine, error) {
	seed, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	defer Zeroize(seed)
	return NewPLCMEngine(seed)
}

// Key returns a copy of the derived map parameters.
func (e *PLCMEngine) Key() PLCMKey {
	return e.key
}

// Configure implements ChaoticEngine.
func (e *PLCMEngine) Configure(m Matrix) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineInvalidImage, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.image = m.Clone()
	e.temp = NewMatrix(m.Height, m.Width)
	e.confused = NewMatrix(m.Height, m.Width)
	e.diffused = NewMatrix(m.Height, m.Width)
	e.configured = true
	return nil
}

// Encrypt implements ChaoticEngine. The returned matrix has the configured
// dimensions and does not alias engine state.
func (e *PLCMEngine) Encrypt() (Matrix, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.configured {
		return Matrix{}, ErrEngineNotConfigured
	}

	n := e.image.Len()
	for i, src := range chaoticPermutation(e.key.Confusion, n) {
		e.confused.Cells[i] = e.image.Cells[src]
	}

	ks := newPLCMOrbit(e.key.Diffusion)
	prev := e.key.Chain
	for i := 0; i < n; i++ {
		k := keystreamByte(ks.next())
		e.temp.Cells[i] = k
		c := (e.confused.Cells[i] + k) ^ prev
		e.diffused.Cells[i] = c
		prev = c
	}

	return e.diffused.Clone(), nil
}

// Decrypt inverts Encrypt for a cipher matrix of any shape. It does not touch
// the configured image.
func (e *PLCMEngine) Decrypt(c Matrix) (Matrix, error) {
	if err := c.Validate(); err != nil {
		return Matrix{}, fmt.Errorf("%w: %w", ErrEngineInvalidImage, err)
	}

	n := c.Len()
	confused := make([]byte, n)
	ks := newPLCMOrbit(e.key.Diffusion)
	prev := e.key.Chain
	for i := 0; i < n; i++ {
		k := keystreamByte(ks.next())
		confused[i] = (c.Cells[i] ^ prev) - k
		prev = c.Cells[i]
	}

	plain := NewMatrix(c.Height, c.Width)
	for i, src := range chaoticPermutation(e.key.Confusion, n) {
		plain.Cells[src] = confused[i]
	}
	return plain, nil
}
