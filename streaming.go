// streaming.go: Chunked reading and writing of bitstream text.
//
// Bitstream files can be far larger than a comfortable single read, so input
// is consumed and output produced in bounded chunks. Peak memory is the
// bitstream itself plus one chunk.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// DefaultChunkSize is the default transfer size for file I/O (10MB).
const DefaultChunkSize = 10 * 1024 * 1024

func normalizeChunkSize(chunkSize int) (int, error) {
	if chunkSize == 0 {
		return DefaultChunkSize, nil
	}
	if chunkSize < 0 || chunkSize > MaxChunkSize {
		return 0, goerrors.New("INVALID_CHUNK_SIZE", fmt.Sprintf("chunk size must be between 1 and %d bytes", MaxChunkSize))
	}
	return chunkSize, nil
}

// ReadBitSequence reads r to EOF in chunks of chunkSize bytes (0 selects
// DefaultChunkSize) and returns the concatenated content with all whitespace
// removed. Characters are not validated here; DecodeBits does that.
func ReadBitSequence(r io.Reader, chunkSize int) (string, error) {
	chunkSize, err := normalizeChunkSize(chunkSize)
	if err != nil {
		return "", err
	}

	buf := getChunkBuffer(chunkSize)
	defer putChunkBuffer(buf)
	chunk := (*buf)[:chunkSize]

	var sb strings.Builder
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			sb.WriteString(StripWhitespace(string(chunk[:n])))
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			richErr := goerrors.Wrap(err, ErrCodeInputRead, "failed to read bitstream chunk")
			return "", fmt.Errorf("%w: %w", ErrInputRead, richErr)
		}
	}
}

// ReadBitFile opens path and reads it with ReadBitSequence. A missing file
// yields an error matching ErrInputNotFound.
func ReadBitFile(path string, chunkSize int) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the user-selected input
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			richErr := goerrors.Wrap(err, ErrCodeInputNotFound, fmt.Sprintf("bitstream file %s does not exist", path))
			return "", fmt.Errorf("%w: %w", ErrInputNotFound, richErr)
		}
		richErr := goerrors.Wrap(err, ErrCodeInputRead, "failed to open bitstream file")
		return "", fmt.Errorf("%w: %w", ErrInputRead, richErr)
	}
	defer func() { _ = f.Close() }()

	return ReadBitSequence(f, chunkSize)
}

// BitStreamWriter writes bit sequences to an io.Writer in bounded chunks.
type BitStreamWriter struct {
	writer       io.Writer
	chunkSize    int
	bytesWritten int64
}

// NewBitStreamWriter creates a writer with the given chunk size (0 selects
// DefaultChunkSize).
func NewBitStreamWriter(w io.Writer, chunkSize int) (*BitStreamWriter, error) {
	chunkSize, err := normalizeChunkSize(chunkSize)
	if err != nil {
		return nil, err
	}
	return &BitStreamWriter{writer: w, chunkSize: chunkSize}, nil
}

// WriteBits writes bits in slices of at most chunkSize bytes.
func (w *BitStreamWriter) WriteBits(bits string) error {
	for len(bits) > 0 {
		n := len(bits)
		if n > w.chunkSize {
			n = w.chunkSize
		}
		written, err := io.WriteString(w.writer, bits[:n])
		w.bytesWritten += int64(written)
		if err != nil {
			richErr := goerrors.Wrap(err, ErrCodeOutputWrite, "failed to write bitstream chunk")
			return fmt.Errorf("%w: %w", ErrOutputWrite, richErr)
		}
		bits = bits[n:]
	}
	return nil
}

// BytesWritten returns the number of characters written so far.
func (w *BitStreamWriter) BytesWritten() int64 {
	return w.bytesWritten
}
