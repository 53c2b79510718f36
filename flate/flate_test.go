// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"bytes"
	"compress/flate"
	"io/ioutil"
	"strings"
	"testing"

	kpflate "github.com/klauspost/compress/flate"

	"github.com/tolvek/zpress/internal/testutil"
)

// testVectors returns inputs spanning the interesting shapes: empty, tiny,
// highly repetitive, incompressible, text-like, and window-boundary sizes.
func testVectors() map[string][]byte {
	rng := testutil.NewRand(0)
	text := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 512))
	return map[string][]byte{
		"empty":      nil,
		"byte":       {0x55},
		"digits":     []byte("0123456789"),
		"zeros":      make([]byte, 1<<16),
		"run":        bytes.Repeat([]byte{0xa5}, 1<<16),
		"text":       text,
		"random":     rng.Bytes(1 << 16),
		"mixed":      testutil.ResizeData(append(text, rng.Bytes(1024)...), 1<<17),
		"window":     testutil.ResizeData(text, maxHistSize),
		"window+1":   testutil.ResizeData(text, maxHistSize+1),
		"window*2+7": testutil.ResizeData(text, 2*maxHistSize+7),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, input := range testVectors() {
		output, err := Decode(Encode(input))
		if err != nil {
			t.Errorf("%s: Decode error: got %v", name, err)
			continue
		}
		if !bytes.Equal(output, input) {
			t.Errorf("%s: round-trip output mismatch", name)
		}
	}
}

// TestEncodeStdlib checks that the standard library accepts every stream
// this encoder produces.
func TestEncodeStdlib(t *testing.T) {
	for name, input := range testVectors() {
		rd := flate.NewReader(bytes.NewReader(Encode(input)))
		output, err := ioutil.ReadAll(rd)
		if err != nil {
			t.Errorf("%s: reference read error: got %v", name, err)
			continue
		}
		if err := rd.Close(); err != nil {
			t.Errorf("%s: reference close error: got %v", name, err)
		}
		if !bytes.Equal(output, input) {
			t.Errorf("%s: reference output mismatch", name)
		}
	}
}

// TestDecodeStdlib checks that this decoder accepts raw, fixed, and dynamic
// block streams produced by the standard library at various levels.
func TestDecodeStdlib(t *testing.T) {
	levels := []int{flate.NoCompression, flate.BestSpeed, flate.DefaultCompression,
		flate.BestCompression, flate.HuffmanOnly}
	for name, input := range testVectors() {
		for _, lvl := range levels {
			var buf bytes.Buffer
			wr, err := flate.NewWriter(&buf, lvl)
			if err != nil {
				t.Fatalf("NewWriter(%d) error: %v", lvl, err)
			}
			if _, err := wr.Write(input); err != nil {
				t.Fatalf("%s: write error: %v", name, err)
			}
			if err := wr.Close(); err != nil {
				t.Fatalf("%s: close error: %v", name, err)
			}

			output, err := Decode(buf.Bytes())
			if err != nil {
				t.Errorf("%s (level %d): Decode error: got %v", name, lvl, err)
				continue
			}
			if !bytes.Equal(output, input) {
				t.Errorf("%s (level %d): output mismatch", name, lvl)
			}
		}
	}
}

// TestDecodeKlauspost runs the reverse interoperability check against the
// klauspost/compress encoder, whose block splitting differs from stdlib's.
func TestDecodeKlauspost(t *testing.T) {
	for name, input := range testVectors() {
		var buf bytes.Buffer
		wr, err := kpflate.NewWriter(&buf, kpflate.DefaultCompression)
		if err != nil {
			t.Fatalf("NewWriter error: %v", err)
		}
		if _, err := wr.Write(input); err != nil {
			t.Fatalf("%s: write error: %v", name, err)
		}
		if err := wr.Close(); err != nil {
			t.Fatalf("%s: close error: %v", name, err)
		}

		output, err := Decode(buf.Bytes())
		if err != nil {
			t.Errorf("%s: Decode error: got %v", name, err)
			continue
		}
		if !bytes.Equal(output, input) {
			t.Errorf("%s: output mismatch", name)
		}
	}
}

// TestCompressionRatio checks that trivially redundant input shrinks by a
// wide margin.
func TestCompressionRatio(t *testing.T) {
	input := bytes.Repeat([]byte{0x42}, 1<<16)
	output := Encode(input)
	if len(output) >= len(input)/10 {
		t.Errorf("compressed size: got %d, want < %d", len(output), len(input)/10)
	}
}

func BenchmarkEncode(b *testing.B) {
	input := testutil.ResizeData([]byte("the quick brown fox jumps over the lazy dog. "), 1<<20)
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		Encode(input)
	}
}

func BenchmarkDecode(b *testing.B) {
	input := testutil.ResizeData([]byte("the quick brown fox jumps over the lazy dog. "), 1<<20)
	comp := Encode(input)
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		if _, err := Decode(comp); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
