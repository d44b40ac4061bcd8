// main.go: Command line front end comparing PLCM and AES-CBC over a bitstream file.
//
// Usage:
//
//	cov [flags] <bitstream.txt>
//
// Without a path argument the tool prompts for one on stdin.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	goplugins "github.com/agilira/go-plugins"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/halinhhh/cov"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := cov.DefaultConfig()
	var verbose, jsonOut, help bool
	var seed string

	fs := flag.NewFlagSet("cov", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "Directory for the result files")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "Bytes per file read/write transfer")
	fs.StringVar(&cfg.EngineProvider, "engine", cfg.EngineProvider, "Chaotic engine provider")
	fs.BoolVar(&cfg.DisableChaotic, "no-plcm", false, "Skip the chaotic-map pipeline")
	fs.StringVar(&cfg.PluginConfig, "plugin-config", "", "go-plugins JSON config of remote engines (select one with --engine)")
	fs.StringVar(&seed, "seed", "", "Hex seed for a reproducible PLCM engine (default random)")
	fs.BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Log every pipeline stage")
	fs.BoolVarP(&help, "help", "h", false, "Show help and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if help {
		fmt.Fprintf(stderr, "Usage: cov [flags] <bitstream.txt>\n")
		fs.PrintDefaults()
		return 0
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid flags")
		return 2
	}
	*cfg = cfg.WithDefaults()

	path := fs.Arg(0)
	if path == "" {
		fmt.Fprint(stdout, "Bitstream file path (.txt): ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Error().Err(err).Msg("no input path")
			return 1
		}
		path = strings.TrimSpace(line)
	}

	logger.Info().Str("path", path).Msg("reading bitstream")
	bits, err := cov.ReadBitFile(path, cfg.ChunkSize)
	if err != nil {
		logger.Error().Err(err).Msg("cannot read input")
		return 1
	}

	var opts []cov.HarnessOption
	opts = append(opts, cov.WithLogger(logger))
	if !cfg.DisableChaotic {
		managerCfg := &cov.EngineManagerConfig{DefaultProvider: cfg.EngineProvider}
		if seed != "" {
			managerCfg.ProviderConfigs = map[string]map[string]interface{}{
				cov.PLCMProviderName: {"seed": seed},
			}
		}
		var plugins *goplugins.Manager[cov.EngineRequest, cov.EngineResponse]
		if cfg.PluginConfig != "" {
			pm, err := loadPlugins(cfg.PluginConfig, stderr)
			if err != nil {
				logger.Error().Err(err).Str("file", cfg.PluginConfig).Msg("cannot load engine plugins")
				return 1
			}
			defer shutdownPlugins(pm)
			plugins = pm
		}
		manager, err := cov.NewEngineManager(managerCfg, plugins)
		if err != nil {
			logger.Error().Err(err).Msg("engine manager")
			return 1
		}
		defer func() { _ = manager.Close() }()
		if err := manager.RegisterProvider(cov.NewPLCMProvider()); err != nil {
			logger.Error().Err(err).Msg("engine provider")
			return 1
		}
		opts = append(opts, cov.WithEngineFactory(func() (cov.ChaoticEngine, error) {
			return manager.NewEngine(cfg.EngineProvider)
		}))
	}

	report, err := cov.NewHarness(opts...).Run(bits)
	if err != nil {
		logger.Error().Err(err).Msg("benchmark aborted")
		return 1
	}

	if jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error().Err(err).Msg("encode report")
			return 1
		}
	} else {
		printSummary(stdout, report)
	}

	names, err := cov.WriteReport(report, path, cov.NewFileResultWriter(cfg.OutputDir, cfg.ChunkSize))
	for _, name := range names {
		logger.Info().Str("file", name).Msg("wrote result")
	}
	if err != nil {
		logger.Error().Err(err).Msg("cannot write results")
		return 1
	}
	return 0
}

// loadPlugins builds a plugin manager from a go-plugins JSON config. Plugin
// types "http", "grpc" and "unix" map to the go-plugins transports.
func loadPlugins(path string, stderr io.Writer) (*goplugins.Manager[cov.EngineRequest, cov.EngineResponse], error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a user flag
	if err != nil {
		return nil, err
	}
	var pcfg goplugins.ManagerConfig
	if err := pcfg.FromJSON(data); err != nil {
		return nil, err
	}

	slogger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	pm := goplugins.NewManager[cov.EngineRequest, cov.EngineResponse](slogger)
	factories := map[string]goplugins.PluginFactory[cov.EngineRequest, cov.EngineResponse]{
		"http": goplugins.NewHTTPPluginFactory[cov.EngineRequest, cov.EngineResponse](),
		"grpc": goplugins.NewGRPCPluginFactory[cov.EngineRequest, cov.EngineResponse](slogger),
		"unix": goplugins.NewUnixSocketPluginFactory[cov.EngineRequest, cov.EngineResponse](slogger),
	}
	for name, factory := range factories {
		if err := pm.RegisterFactory(name, factory); err != nil {
			return nil, err
		}
	}
	if err := pm.LoadFromConfig(pcfg); err != nil {
		shutdownPlugins(pm)
		return nil, err
	}
	return pm, nil
}

// shutdownPlugins closes every plugin without waiting out the health
// monitor's tick.
func shutdownPlugins(pm *goplugins.Manager[cov.EngineRequest, cov.EngineResponse]) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = pm.Shutdown(ctx)
}

func printSummary(w io.Writer, r *cov.Report) {
	fmt.Fprintf(w, "Input: %d bits (%.2f Mbit)\n", r.InputBits, cov.BitsToMegabits(float64(r.InputBits)))
	for _, res := range []cov.CipherResult{r.Chaotic, r.Block} {
		if !res.Available() {
			fmt.Fprintf(w, "%-8s unavailable: %s\n", res.Pipeline, res.Error)
			continue
		}
		fmt.Fprintf(w, "%-8s %10.2f s %10.2f Mb/s\n", res.Pipeline, res.Elapsed.Seconds(), res.MegabitsPerSecond())
	}
	if r.Ratio != nil {
		fmt.Fprintf(w, "%s is about %.2fx faster\n", r.Faster, *r.Ratio)
	}
}
