// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package zlib implements the ZLIB compressed container format,
// described in RFC 1950.
//
// Both operations work on whole buffers. Compress wraps a single-block
// DEFLATE payload in the two-byte header and the Adler-32 trailer;
// Decompress validates both before and after inflating the payload.
package zlib

import (
	"encoding/binary"

	"github.com/tolvek/zpress/flate"
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "zlib: " + string(e) }

var (
	ErrShortInput       error = Error("stream is too short")
	ErrBadHeader        error = Error("invalid stream header")
	ErrChecksumMismatch error = Error("checksum mismatch")
)

const (
	// Header byte 0: deflate method with a 32 KiB window.
	hdrCM    = 8
	hdrCINFO = 7
	hdrCMF   = hdrCINFO<<4 | hdrCM

	// Header byte 1: default compression level, no preset dictionary.
	// The low five bits are the check value keeping the header a
	// multiple of 31.
	hdrFLEVEL = 2
	hdrFDICT  = 1 << 5
)

// header returns the two header bytes, RFC 1950 section 2.2.
func header() (byte, byte) {
	flg := uint(hdrFLEVEL) << 6
	if rem := (hdrCMF<<8 | flg) % 31; rem != 0 {
		flg += 31 - rem
	}
	return hdrCMF, byte(flg)
}

// Compress produces a complete ZLIB stream: header, one dynamic prefix
// DEFLATE block, and the big-endian Adler-32 of input.
func Compress(input []byte) []byte {
	cmf, flg := header()
	out := make([]byte, 2, 2+len(input)/2+64)
	out[0], out[1] = cmf, flg
	out = append(out, flate.Encode(input)...)

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], adler32(input, adlerInit))
	return append(out, trailer[:]...)
}

// Decompress consumes a complete ZLIB stream and returns the inflated
// payload. No partial output is returned on error.
func Decompress(input []byte) ([]byte, error) {
	if len(input) < 6 {
		return nil, ErrShortInput
	}

	cmf, flg := uint(input[0]), uint(input[1])
	switch {
	case cmf&0x0f != hdrCM, cmf>>4 > hdrCINFO:
		return nil, ErrBadHeader
	case (cmf<<8|flg)%31 != 0:
		return nil, ErrBadHeader
	case flg&hdrFDICT != 0:
		// Preset dictionaries (RFC 1950 section 2.2) are not supported.
		return nil, ErrBadHeader
	}

	output, err := flate.Decode(input[2 : len(input)-4])
	if err != nil {
		if err == flate.ErrShortInput {
			return nil, ErrShortInput
		}
		return nil, err
	}

	trailer := binary.BigEndian.Uint32(input[len(input)-4:])
	if adler32(output, adlerInit) != trailer {
		return nil, ErrChecksumMismatch
	}
	return output, nil
}
