// harness.go: Sequential benchmark of the chaotic-map and AES-CBC pipelines.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/rs/zerolog"
)

// Pipeline names used in results and reports.
const (
	PipelineChaotic = "PLCM"
	PipelineBlock   = "AES-CBC"
)

// PipelineStatus is the lifecycle state of one pipeline run.
type PipelineStatus int

const (
	StatusNotStarted PipelineStatus = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s PipelineStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText lets reports serialize statuses by name.
func (s PipelineStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CipherResult is the outcome of one pipeline run. A failed run has zero
// Elapsed and Throughput and no Output.
type CipherResult struct {
	Pipeline        string         `json:"pipeline"`
	Status          PipelineStatus `json:"status"`
	Output          string         `json:"-"`
	CiphertextBytes int            `json:"ciphertext_bytes"`
	Elapsed         time.Duration  `json:"elapsed"`
	Throughput      float64        `json:"throughput_bps"`
	Error           string         `json:"error,omitempty"`
	Err             error          `json:"-"`
}

// Available reports whether the pipeline produced output.
func (r CipherResult) Available() bool {
	return r.Status == StatusCompleted
}

// MegabitsPerSecond returns Throughput in Mb/s.
func (r CipherResult) MegabitsPerSecond() float64 {
	return BitsToMegabits(r.Throughput)
}

// Report compares the two pipelines over the same input.
type Report struct {
	InputBits int          `json:"input_bits"`
	Chaotic   CipherResult `json:"chaotic"`
	Block     CipherResult `json:"block"`

	// Ratio is max/min throughput, nil unless both pipelines completed with a
	// positive throughput. Faster names the pipeline with the higher rate.
	Ratio  *float64 `json:"ratio,omitempty"`
	Faster string   `json:"faster,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func newReport(inputBits int, chaotic, block CipherResult) *Report {
	r := &Report{
		InputBits: inputBits,
		Chaotic:   chaotic,
		Block:     block,
		CreatedAt: timecache.CachedTime().UTC(),
	}
	if chaotic.Available() && block.Available() {
		if ratio, chaoticFaster, ok := SpeedRatio(chaotic.Throughput, block.Throughput); ok {
			r.Ratio = &ratio
			r.Faster = PipelineBlock
			if chaoticFaster {
				r.Faster = PipelineChaotic
			}
		}
	}
	return r
}

// EngineFactory builds the chaotic engine for a run. Construction is timed
// as part of the chaotic pipeline.
type EngineFactory func() (ChaoticEngine, error)

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithLogger sets the progress logger. The default discards everything.
func WithLogger(logger zerolog.Logger) HarnessOption {
	return func(h *Harness) { h.logger = logger }
}

// WithEngineFactory sets the chaotic engine source. Without one the chaotic
// pipeline is reported as failed with ErrEngineUnavailable.
func WithEngineFactory(f EngineFactory) HarnessOption {
	return func(h *Harness) { h.newEngine = f }
}

// WithEngine uses a single pre-built engine for the run.
func WithEngine(engine ChaoticEngine) HarnessOption {
	return WithEngineFactory(func() (ChaoticEngine, error) { return engine, nil })
}

// Harness runs the chaotic-map pipeline to completion or failure, then the
// block-cipher pipeline, over the same bit sequence. The two runs share no
// mutable state: each decodes its own copy of the input.
type Harness struct {
	newEngine EngineFactory
	logger    zerolog.Logger
	now       func() time.Time
}

// NewHarness creates a harness.
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run benchmarks both pipelines over bits.
//
// A malformed bit sequence aborts the run with ErrFormat before any result is
// produced. A chaotic engine failure is recorded in Report.Chaotic and the
// run continues. A block-cipher failure is returned as the error.
func (h *Harness) Run(bits string) (*Report, error) {
	h.logger.Info().
		Int("bits", len(bits)).
		Float64("megabits", BitsToMegabits(float64(len(bits)))).
		Msg("starting benchmark")

	chaotic, err := h.runChaotic(bits)
	if err != nil {
		return nil, err
	}

	block, err := h.runBlock(bits)
	if err != nil {
		return nil, err
	}

	report := newReport(len(bits), chaotic, block)
	if report.Ratio != nil {
		h.logger.Info().
			Str("faster", report.Faster).
			Float64("ratio", *report.Ratio).
			Msg("comparison")
	}
	return report, nil
}

// runChaotic only returns an error for malformed input.
func (h *Harness) runChaotic(bits string) (CipherResult, error) {
	log := h.logger.With().Str("pipeline", PipelineChaotic).Logger()
	log.Info().Msg("starting encryption")

	start := h.now()

	data, err := DecodeBits(bits)
	if err != nil {
		return CipherResult{}, err
	}

	hgt, wdt := Dimensions(len(data))
	log.Debug().
		Int("bytes", len(data)).
		Int("height", hgt).
		Int("width", wdt).
		Int("padding", hgt*wdt-len(data)).
		Msg("packing buffer")

	engine, err := h.buildEngine()
	if err != nil {
		return h.chaoticFailed(log, err), nil
	}

	out, err := NewChaoticAdapter(engine).EncryptBuffer(data)
	if err != nil {
		return h.chaoticFailed(log, err), nil
	}

	elapsed := h.now().Sub(start)
	res := CipherResult{
		Pipeline:        PipelineChaotic,
		Status:          StatusCompleted,
		Output:          out,
		CiphertextBytes: len(out) / 8,
		Elapsed:         elapsed,
		Throughput:      Throughput(len(bits), elapsed),
	}
	log.Info().
		Dur("elapsed", elapsed).
		Float64("mbps", res.MegabitsPerSecond()).
		Msg("encryption completed")
	return res, nil
}

func (h *Harness) buildEngine() (engine ChaoticEngine, err error) {
	if h.newEngine == nil {
		return nil, newEngineError("init", goerrors.New(ErrCodeEngine, "no chaotic engine configured"))
	}
	defer func() {
		if r := recover(); r != nil {
			engine = nil
			err = newEngineError("init", fmt.Errorf("panic: %v", r))
		}
	}()
	engine, err = h.newEngine()
	if err != nil {
		return nil, asEngineError("init", err)
	}
	if engine == nil {
		return nil, newEngineError("init", goerrors.New(ErrCodeEngine, "engine factory returned nil"))
	}
	return engine, nil
}

func (h *Harness) chaoticFailed(log zerolog.Logger, err error) CipherResult {
	log.Error().Err(err).Msg("encryption failed, continuing with block cipher only")
	return CipherResult{
		Pipeline: PipelineChaotic,
		Status:   StatusFailed,
		Error:    err.Error(),
		Err:      err,
	}
}

func (h *Harness) runBlock(bits string) (CipherResult, error) {
	log := h.logger.With().Str("pipeline", PipelineBlock).Logger()
	log.Info().Msg("starting encryption")

	start := h.now()

	key, err := GenerateKey()
	if err != nil {
		return CipherResult{}, fmt.Errorf("%s key generation: %w", PipelineBlock, err)
	}
	defer Zeroize(key)

	data, err := DecodeBits(bits)
	if err != nil {
		return CipherResult{}, err
	}

	ciphertext, err := EncryptCBC(data, key)
	if err != nil {
		return CipherResult{}, fmt.Errorf("%s encryption: %w", PipelineBlock, err)
	}
	out := EncodeBits(ciphertext)

	elapsed := h.now().Sub(start)
	res := CipherResult{
		Pipeline:        PipelineBlock,
		Status:          StatusCompleted,
		Output:          out,
		CiphertextBytes: len(ciphertext),
		Elapsed:         elapsed,
		Throughput:      Throughput(len(bits), elapsed),
	}
	log.Info().
		Str("key_fingerprint", GetKeyFingerprint(key)).
		Dur("elapsed", elapsed).
		Float64("mbps", res.MegabitsPerSecond()).
		Msg("encryption completed")
	return res, nil
}
