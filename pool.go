// pool.go: Buffer pooling for chunked bitstream transfers
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"sync"
)

const (
	smallChunkSize = 64 * 1024
)

var (
	// Chunk pools keyed by the two sizes used in practice: the default 10MB
	// transfer and 64KB for tests and small inputs.
	smallChunkPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, smallChunkSize)
			return &buf
		},
	}

	defaultChunkPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, DefaultChunkSize)
			return &buf
		},
	}
)

// getChunkBuffer returns a buffer of exactly size bytes, pooled when size
// matches a pool class.
func getChunkBuffer(size int) *[]byte {
	switch size {
	case smallChunkSize:
		return smallChunkPool.Get().(*[]byte)
	case DefaultChunkSize:
		return defaultChunkPool.Get().(*[]byte)
	default:
		buf := make([]byte, size)
		return &buf
	}
}

// putChunkBuffer returns buf to its pool. Bitstream chunks are not secret,
// so buffers are not cleared.
func putChunkBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	switch cap(*buf) {
	case smallChunkSize:
		*buf = (*buf)[:smallChunkSize]
		smallChunkPool.Put(buf)
	case DefaultChunkSize:
		*buf = (*buf)[:DefaultChunkSize]
		defaultChunkPool.Put(buf)
		// Other sizes are left to the garbage collector
	}
}
