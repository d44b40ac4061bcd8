// metrics.go: Throughput arithmetic for benchmark results.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import "time"

// bitsPerMegabit uses the binary megabit.
const bitsPerMegabit = 1024 * 1024

// Throughput returns bits per second. It is 0 when elapsed is not positive.
func Throughput(bits int, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 || bits <= 0 {
		return 0
	}
	return float64(bits) / secs
}

// BitsToMegabits converts bits (or bits per second) to Mb (Mb/s), 1 Mb being 2^20 bits.
func BitsToMegabits(bits float64) float64 {
	return bits / bitsPerMegabit
}

// SpeedRatio returns max(a,b)/min(a,b) and whether a is the faster rate.
// Ties report b as faster. ok is false when either rate is not positive.
func SpeedRatio(a, b float64) (ratio float64, aFaster bool, ok bool) {
	if a <= 0 || b <= 0 {
		return 0, false, false
	}
	if a > b {
		return a / b, true, true
	}
	return b / a, false, true
}
