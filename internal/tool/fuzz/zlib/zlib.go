// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

package zlib

import (
	"bytes"
	"compress/flate"
	gzlib "compress/zlib"
	"io/ioutil"

	"github.com/tolvek/zpress/zlib"
)

// Fuzz decodes the input as a ZLIB stream and, if it is valid, re-encodes
// the payload and checks both decoders against each other.
func Fuzz(data []byte) int {
	output, err := zlib.Decompress(data)
	if err != nil {
		testEncoder(data) // Input is garbage; compress it instead
		return 0
	}
	testEncoder(output)

	// The standard library must agree that the input is valid.
	zr, err := gzlib.NewReader(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	want, err := ioutil.ReadAll(zr)
	if err != nil {
		if _, ok := err.(flate.CorruptInputError); ok {
			// Trailing data past the final block is tolerated here but
			// not by the standard library; that divergence is fine.
			return 1
		}
		panic(err)
	}
	if !bytes.Equal(output, want) {
		panic("mismatching outputs")
	}
	return 1 // Favor valid inputs
}

// testEncoder checks that compressing data round-trips through both this
// decoder and the standard library's.
func testEncoder(data []byte) {
	comp := zlib.Compress(data)

	output, err := zlib.Decompress(comp)
	if err != nil {
		panic(err)
	}
	if !bytes.Equal(output, data) {
		panic("round-trip mismatch")
	}

	zr, err := gzlib.NewReader(bytes.NewReader(comp))
	if err != nil {
		panic(err)
	}
	want, err := ioutil.ReadAll(zr)
	if err != nil {
		panic(err)
	}
	if !bytes.Equal(want, data) {
		panic("reference decoder mismatch")
	}
}
