// bitstream.go: Conversion between raw bytes and textual '0'/'1' bit sequences.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"fmt"
	"strings"

	goerrors "github.com/agilira/go-errors"
)

// DecodeBits converts a '0'/'1' sequence into bytes, eight characters per byte,
// most significant bit first.
//
// A trailing group shorter than eight characters is right-padded with '0'
// before it is parsed, so "101" decodes to 0xA0. Encoding the result again
// yields those padding bits as well: exact round-tripping is only guaranteed
// for byte-aligned input.
//
// Returns an error matching ErrFormat if text contains any other character.
// Empty input yields an empty, non-nil buffer.
//
// Example:
//
//	data, err := cov.DecodeBits("0100000101000010")
//	// data == []byte("AB")
func DecodeBits(text string) ([]byte, error) {
	out := make([]byte, (len(text)+7)/8)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '0' && c != '1' {
			richErr := goerrors.New(ErrCodeFormat, fmt.Sprintf("invalid character %q at offset %d", c, i))
			return nil, fmt.Errorf("%w: %w", ErrFormat, richErr)
		}
		if c == '1' {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out, nil
}

// EncodeBits renders every byte as its fixed-width 8-character binary form.
// The result is always exactly 8*len(data) characters long.
func EncodeBits(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 8)
	var group [8]byte
	for _, b := range data {
		for j := 0; j < 8; j++ {
			group[j] = '0' + (b>>uint(7-j))&1
		}
		sb.Write(group[:])
	}
	return sb.String()
}

// StripWhitespace removes the spaces, tabs and line breaks that may separate
// chunks of a bitstream file.
func StripWhitespace(text string) string {
	if strings.IndexAny(text, " \t\r\n") < 0 {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\r', '\n':
			continue
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}
