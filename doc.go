// Package cov benchmarks a chaotic-map image cipher against AES-256-CBC over
// arbitrary-length bitstreams.
//
// The package provides:
//   - A codec between '0'/'1' text and bytes (DecodeBits, EncodeBits)
//   - Near-square matrix packing with zero padding (Pack, Unpack, Dimensions)
//   - An adapter that drives any ChaoticEngine over a byte buffer and turns
//     every engine failure into an *EngineError
//   - A reference PLCM (piecewise linear chaotic map) engine with HKDF
//     parameter derivation, managed through pluggable providers
//   - AES-256-CBC with PKCS#7 padding and a prepended random IV
//   - A harness that times both pipelines and compares their throughput
//   - Chunked reading and writing of bitstream files
//
// # Quick Start
//
//	bits, err := cov.ReadBitFile("stream.txt", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	engine, _ := cov.NewRandomPLCMEngine()
//	report, err := cov.NewHarness(cov.WithEngine(engine)).Run(bits)
//	if err != nil {
//		log.Fatal(err) // malformed input or block-cipher failure
//	}
//
//	fmt.Printf("PLCM %.2f Mb/s, AES-CBC %.2f Mb/s\n",
//		report.Chaotic.MegabitsPerSecond(), report.Block.MegabitsPerSecond())
//
//	names, err := cov.WriteReport(report, "stream.txt", cov.NewFileResultWriter(".", 0))
//
// # Matrix Packing
//
// A buffer of n bytes is packed into height = floor(sqrt(n)) rows of
// width = ceil(n/height) cells; an empty buffer is sized as one byte. Cells
// past n are zero. The Matrix type does not remember n, so Unpack returns the
// padding too:
//
//	m := cov.Pack([]byte{1, 2, 3})  // 1x3, no padding
//	m = cov.Pack(make([]byte, 5))   // 2x3, one padding cell
//	flat := cov.Unpack(m)           // len(flat) == 6
//
// # Graceful Degradation
//
// The chaotic engine is an external collaborator. When it cannot be built,
// rejects the matrix, panics, or returns a matrix of the wrong shape, the
// harness records the PLCM result as failed (zero elapsed time and
// throughput), skips its output file, and still runs AES-CBC:
//
//	if !report.Chaotic.Available() {
//		var ee *cov.EngineError
//		if errors.As(report.Chaotic.Err, &ee) {
//			log.Printf("PLCM skipped at %s: %v", ee.Op, ee.Cause)
//		}
//	}
//
// Block-cipher errors are never recovered. They indicate a broken environment,
// such as no secure random source.
//
// # Engine Providers
//
// Engines are built by providers registered with an EngineManager. The
// built-in PLCMProvider creates engines with a fresh random seed, or with a
// fixed hex seed for reproducible runs:
//
//	manager, _ := cov.NewEngineManager(&cov.EngineManagerConfig{
//		ProviderConfigs: map[string]map[string]interface{}{
//			"plcm": {"seed": "00112233..."},
//		},
//	}, nil)
//	_ = manager.RegisterProvider(cov.NewPLCMProvider())
//	engine, err := manager.NewEngine("plcm")
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0
package cov
