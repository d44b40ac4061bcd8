// kdf.go: Derivation of PLCM chaotic-map parameters from a random seed.
//
// The reference PLCM engine needs an initial condition x0 in (0,1) and a
// control parameter p in (0,0.5) for each of its two stages. Both are expanded
// from a high-entropy seed with HKDF-SHA256 so a single 32-byte seed fully
// determines the cipher.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/hkdf"
)

// Bounds applied to derived parameters. They keep the orbit away from the
// map's fixed points and from the breakpoints 0, p and 0.5.
const (
	minControl = 0.05
	maxControl = 0.45
	minInitial = 1e-6
)

// hkdfSalt is the domain-separation salt for PLCM parameter expansion.
var hkdfSalt = []byte("cov/plcm/v1")

// PLCMParams are the initial condition and control parameter of one map.
type PLCMParams struct {
	X0 float64 `json:"x0"`
	P  float64 `json:"p"`
}

// PLCMKey holds everything the reference engine derives from its seed.
type PLCMKey struct {
	Confusion PLCMParams `json:"confusion"`
	Diffusion PLCMParams `json:"diffusion"`
	// Chain is the value XORed into the first diffused cell.
	Chain byte `json:"chain"`
}

// DerivePLCMKey expands seed into a PLCMKey using HKDF-SHA256.
//
// Parameters:
//   - seed: Input keying material (KeySize random bytes recommended, must not be empty)
//   - info: Optional context string for domain separation (may be nil)
//
// Example:
//
//	seed, _ := cov.GenerateKey()
//	key, err := cov.DerivePLCMKey(seed, nil)
//
// Security: HKDF is designed for high-entropy inputs. Do not pass passwords.
func DerivePLCMKey(seed, info []byte) (*PLCMKey, error) {
	if len(seed) == 0 {
		return nil, goerrors.New("INVALID_SEED", "seed cannot be empty")
	}

	r := hkdf.New(sha256.New, seed, hkdfSalt, info)
	var okm [33]byte
	if _, err := io.ReadFull(r, okm[:]); err != nil {
		return nil, goerrors.Wrap(err, "HKDF_EXPAND_FAILED", "failed to expand seed")
	}

	key := &PLCMKey{
		Confusion: PLCMParams{
			X0: unitInterval(okm[0:8], minInitial, 1-minInitial),
			P:  unitInterval(okm[8:16], minControl, maxControl),
		},
		Diffusion: PLCMParams{
			X0: unitInterval(okm[16:24], minInitial, 1-minInitial),
			P:  unitInterval(okm[24:32], minControl, maxControl),
		},
		Chain: okm[32],
	}
	key.Confusion.X0 = avoidBreakpoints(key.Confusion)
	key.Diffusion.X0 = avoidBreakpoints(key.Diffusion)
	return key, nil
}

// unitInterval maps 8 bytes to a float in [lo, hi) using the top 53 bits.
func unitInterval(b []byte, lo, hi float64) float64 {
	u := binary.BigEndian.Uint64(b) >> 11
	f := float64(u) / float64(uint64(1)<<53)
	return lo + f*(hi-lo)
}

// avoidBreakpoints nudges x0 off values that send the orbit straight to 0.
func avoidBreakpoints(p PLCMParams) float64 {
	x := p.X0
	for x == p.P || x == 0.5 || x == 1-p.P {
		x += minInitial
	}
	return x
}
