// writer.go: Result files for benchmark outputs.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"
	"os"
	"path/filepath"

	goerrors "github.com/agilira/go-errors"
)

// Output file prefixes, prepended to the input file's base name.
const (
	PLCMOutputPrefix = "PLCM_re_encrypted_"
	AESOutputPrefix  = "AES_CBC_re_encrypted_"
)

// ResultWriter stores one pipeline output under an identifier.
type ResultWriter interface {
	WriteResult(bits string, name string) error
}

// OutputName returns prefix followed by the base name of inputPath.
func OutputName(prefix, inputPath string) string {
	return prefix + filepath.Base(inputPath)
}

// FileResultWriter writes each result to Dir/name in chunks.
type FileResultWriter struct {
	Dir       string
	ChunkSize int
}

// NewFileResultWriter creates a writer rooted at dir ("" means the working
// directory).
func NewFileResultWriter(dir string, chunkSize int) *FileResultWriter {
	return &FileResultWriter{Dir: dir, ChunkSize: chunkSize}
}

// WriteResult implements ResultWriter. An existing file is truncated.
func (w *FileResultWriter) WriteResult(bits string, name string) (err error) {
	path := filepath.Join(w.Dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304 -- name is derived from the input base name
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeOutputWrite, fmt.Sprintf("failed to create %s", path))
		return fmt.Errorf("%w: %w", ErrOutputWrite, richErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			richErr := goerrors.Wrap(cerr, ErrCodeOutputWrite, fmt.Sprintf("failed to close %s", path))
			err = fmt.Errorf("%w: %w", ErrOutputWrite, richErr)
		}
	}()

	bw, err := NewBitStreamWriter(f, w.ChunkSize)
	if err != nil {
		return err
	}
	return bw.WriteBits(bits)
}

// WriteReport writes the outputs of report for inputPath and returns the
// names written. The PLCM file is skipped unless that pipeline completed.
func WriteReport(report *Report, inputPath string, w ResultWriter) ([]string, error) {
	if report == nil {
		return nil, goerrors.New(ErrCodeOutputWrite, "nil report")
	}

	var names []string
	if report.Chaotic.Status == StatusCompleted {
		name := OutputName(PLCMOutputPrefix, inputPath)
		if err := w.WriteResult(report.Chaotic.Output, name); err != nil {
			return names, err
		}
		names = append(names, name)
	}

	if report.Block.Status == StatusCompleted {
		name := OutputName(AESOutputPrefix, inputPath)
		if err := w.WriteResult(report.Block.Output, name); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}
