// config.go: Benchmark run configuration.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// MaxChunkSize bounds a single read or write transfer (256MB).
const MaxChunkSize = 256 * 1024 * 1024

// Config controls a benchmark run. Zero fields fall back to the defaults of
// DefaultConfig.
type Config struct {
	ChunkSize      int    `json:"chunk_size"`      // Bytes per file read/write transfer
	OutputDir      string `json:"output_dir"`      // Directory receiving the result files
	EngineProvider string `json:"engine_provider"` // Name of the chaotic engine provider
	DisableChaotic bool   `json:"disable_chaotic"` // Run the block-cipher pipeline alone
	PluginConfig   string `json:"plugin_config"`   // go-plugins ManagerConfig JSON file for remote engines
}

// DefaultConfig returns the configuration used by the command line tool:
// 10MB chunks, output in the working directory, the built-in PLCM engine.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:      DefaultChunkSize,
		OutputDir:      ".",
		EngineProvider: PLCMProviderName,
	}
}

// Validate rejects settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 || c.ChunkSize > MaxChunkSize {
		richErr := goerrors.New(ErrCodeConfig, fmt.Sprintf("chunk size must be between 0 (default) and %d bytes (got %d)", MaxChunkSize, c.ChunkSize))
		return fmt.Errorf("%w: %w", ErrInvalidConfig, richErr)
	}
	return nil
}

// WithDefaults returns a copy of c with zero fields filled in.
func (c *Config) WithDefaults() Config {
	out := *DefaultConfig()
	if c == nil {
		return out
	}
	if c.ChunkSize > 0 {
		out.ChunkSize = c.ChunkSize
	}
	if c.OutputDir != "" {
		out.OutputDir = c.OutputDir
	}
	if c.EngineProvider != "" {
		out.EngineProvider = c.EngineProvider
	}
	out.DisableChaotic = c.DisableChaotic
	out.PluginConfig = c.PluginConfig
	return out
}
