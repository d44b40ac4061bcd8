// main_test.go: Tests for the command line front end.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bits.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(stdin string, args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI("", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Usage: cov")
	assert.Contains(t, stderr, "--chunk-size")
}

func TestRun_BadFlags(t *testing.T) {
	code, _, _ := runCLI("", "--no-such-flag")
	assert.Equal(t, 2, code)

	code, _, stderr := runCLI("", "--chunk-size=-4", "x.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid flags")
}

func TestRun_MissingInput(t *testing.T) {
	code, _, stderr := runCLI("", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "cannot read input")
}

func TestRun_MalformedInput(t *testing.T) {
	in := writeInput(t, "01201\n")
	out := t.TempDir()
	code, _, stderr := runCLI("", "-o", out, in)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "benchmark aborted")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_WritesBothResults(t *testing.T) {
	in := writeInput(t, "0100000101000010\n")
	out := t.TempDir()

	code, stdout, _ := runCLI("", "-o", out, in)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "PLCM")
	assert.Contains(t, stdout, "AES-CBC")

	plcm, err := os.ReadFile(filepath.Join(out, "PLCM_re_encrypted_bits.txt"))
	require.NoError(t, err)
	assert.Len(t, plcm, 16)

	aes, err := os.ReadFile(filepath.Join(out, "AES_CBC_re_encrypted_bits.txt"))
	require.NoError(t, err)
	assert.Len(t, aes, 256)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	in := writeInput(t, strings.Repeat("01100001", 50))
	seed := strings.Repeat("0f", 32)

	var outputs []string
	for i := 0; i < 2; i++ {
		out := t.TempDir()
		code, _, _ := runCLI("", "--seed", seed, "-o", out, in)
		require.Equal(t, 0, code)
		data, err := os.ReadFile(filepath.Join(out, "PLCM_re_encrypted_bits.txt"))
		require.NoError(t, err)
		outputs = append(outputs, string(data))
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestRun_DegradesWithoutChaoticEngine(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"disabled", []string{"--no-plcm"}},
		{"unknown provider", []string{"--engine", "quantum"}},
		{"bad seed", []string{"--seed", "zz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := writeInput(t, "0100000101000010")
			out := t.TempDir()

			args := append(append([]string{}, tt.args...), "-o", out, in)
			code, stdout, _ := runCLI("", args...)
			require.Equal(t, 0, code)
			assert.Contains(t, stdout, "unavailable")

			_, err := os.Stat(filepath.Join(out, "PLCM_re_encrypted_bits.txt"))
			assert.True(t, os.IsNotExist(err))
			_, err = os.Stat(filepath.Join(out, "AES_CBC_re_encrypted_bits.txt"))
			assert.NoError(t, err)
		})
	}
}

func TestRun_PluginConfigErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "plugins.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"plugins": [`), 0o600))

	for _, cfg := range []string{filepath.Join(dir, "missing.json"), invalid} {
		in := writeInput(t, "0100000101000010")
		out := t.TempDir()

		code, _, stderr := runCLI("", "--plugin-config", cfg, "-o", out, in)
		assert.Equal(t, 1, code, cfg)
		assert.Contains(t, stderr, "cannot load engine plugins")

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestRun_PluginConfigIgnoredWithoutChaoticPipeline(t *testing.T) {
	in := writeInput(t, "0100000101000010")
	code, stdout, _ := runCLI("", "--no-plcm", "--plugin-config", filepath.Join(t.TempDir(), "missing.json"), "-o", t.TempDir(), in)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "unavailable")
}

func TestRun_JSONReport(t *testing.T) {
	in := writeInput(t, "0100000101000010")
	code, stdout, _ := runCLI("", "--json", "-o", t.TempDir(), in)
	require.Equal(t, 0, code)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, float64(16), report["input_bits"])
	assert.Contains(t, report, "chaotic")
	assert.Contains(t, report, "block")
}

func TestRun_PromptsForPath(t *testing.T) {
	in := writeInput(t, "01000001")
	out := t.TempDir()

	code, stdout, _ := runCLI(in+"\n", "-o", out)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Bitstream file path")

	_, err := os.Stat(filepath.Join(out, "AES_CBC_re_encrypted_bits.txt"))
	assert.NoError(t, err)
}

func TestRun_PromptWithoutAnswer(t *testing.T) {
	code, _, stderr := runCLI("")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no input path")
}
