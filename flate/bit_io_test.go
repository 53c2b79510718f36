// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import (
	"bytes"
	"testing"

	"github.com/tolvek/zpress/internal/testutil"
)

// TestBitOrdering writes every (value, count) pair with count <= 16 and
// reads it back through the mirrored reader.
func TestBitOrdering(t *testing.T) {
	for nb := uint(0); nb <= 16; nb++ {
		var bw bitWriter
		bw.Init(nil)
		for v := uint32(0); v < 1<<nb; v++ {
			bw.WriteBits(v, nb)
		}

		var br bitReader
		br.Init(bw.Bytes())
		for v := uint32(0); v < 1<<nb; v++ {
			if got := br.ReadBits(nb); got != v {
				t.Fatalf("width %d: ReadBits: got %#x, want %#x", nb, got, v)
			}
		}
	}
}

func TestBitWriterPacking(t *testing.T) {
	var vectors = []struct {
		writes [][2]uint32 // (value, count) pairs
		align  bool
		output []byte
	}{{
		writes: nil,
		output: nil,
	}, {
		// First bit written lands in bit 0 of the first byte.
		writes: [][2]uint32{{1, 1}},
		align:  true,
		output: []byte{0x01},
	}, {
		// Nine single bits straddle a byte boundary.
		writes: [][2]uint32{{1, 1}, {0, 1}, {1, 1}, {1, 1}, {0, 1}, {0, 1}, {1, 1}, {1, 1}, {1, 1}},
		align:  true,
		output: []byte{0xcd, 0x01},
	}, {
		// Multi-bit writes emit their own bit 0 first.
		writes: [][2]uint32{{0x5, 3}, {0x3, 2}, {0x0, 3}},
		output: []byte{0x1d},
	}, {
		writes: [][2]uint32{{0xbeef, 16}, {0xcafe, 16}},
		output: []byte{0xef, 0xbe, 0xfe, 0xca},
	}}

	for i, v := range vectors {
		var bw bitWriter
		bw.Init(nil)
		for _, w := range v.writes {
			bw.WriteBits(w[0], uint(w[1]))
		}
		if v.align {
			bw.WritePads()
		}
		if got := bw.Bytes(); !bytes.Equal(got, v.output) {
			t.Errorf("test %d: output mismatch:\ngot  %x\nwant %x", i, got, v.output)
		}
	}
}

func TestBitReader(t *testing.T) {
	br := new(bitReader)
	br.Init([]byte{0xef, 0xbe, 0x35, 0x01, 0x02, 0x03})

	if got := br.ReadBits(16); got != 0xbeef {
		t.Fatalf("ReadBits(16): got %#x, want 0xbeef", got)
	}
	if got, avail := br.PeekBits(8); got != 0x35 || avail != 8 {
		t.Fatalf("PeekBits(8): got (%#x, %d), want (0x35, 8)", got, avail)
	}
	br.DropBits(3)
	if got := br.ReadBits(2); got != 0x2 { // Bits 3-4 of 0x35
		t.Fatalf("ReadBits(2): got %#x, want 0x2", got)
	}
	br.ReadPads()

	buf := make([]byte, 3)
	br.ReadBytes(buf)
	if want := []byte{0x01, 0x02, 0x03}; !bytes.Equal(buf, want) {
		t.Fatalf("ReadBytes: got %x, want %x", buf, want)
	}
}

// TestBitReaderPeekPadding checks that peeking past the end of input pads
// with zeros and reports the true number of available bits.
func TestBitReaderPeekPadding(t *testing.T) {
	br := new(bitReader)
	br.Init([]byte{0xff})

	got, avail := br.PeekBits(15)
	if got != 0x00ff || avail != 8 {
		t.Fatalf("PeekBits(15): got (%#x, %d), want (0xff, 8)", got, avail)
	}
}

// TestBitReaderAlignRewind checks that alignment hands back whole bytes
// the accumulator fetched ahead, leaving the byte cursor at the next
// unread byte.
func TestBitReaderAlignRewind(t *testing.T) {
	br := new(bitReader)
	br.Init([]byte{0x01, 0xaa, 0xbb, 0xcc})

	if got := br.ReadBits(1); got != 1 {
		t.Fatalf("ReadBits(1): got %d, want 1", got)
	}
	br.PeekBits(16) // Pulls two bytes beyond the current one
	br.ReadPads()
	if br.pos != 1 || br.numBits != 0 {
		t.Fatalf("after align: cursor at (%d, %d bits), want (1, 0 bits)", br.pos, br.numBits)
	}

	buf := make([]byte, 3)
	br.ReadBytes(buf)
	if want := []byte{0xaa, 0xbb, 0xcc}; !bytes.Equal(buf, want) {
		t.Fatalf("ReadBytes: got %x, want %x", buf, want)
	}
}

func TestBitReaderUnderrun(t *testing.T) {
	var err error
	func() {
		defer errRecover(&err)
		br := new(bitReader)
		br.Init([]byte{0xab})
		br.ReadBits(9)
	}()
	if err != ErrShortInput {
		t.Fatalf("mismatching error: got %v, want %v", err, ErrShortInput)
	}
}

// TestBitRoundTripRandom drives random write/read sequences through the
// writer and reader pair.
func TestBitRoundTripRandom(t *testing.T) {
	rng := testutil.NewRand(11)
	var widths []uint
	var values []uint32

	var bw bitWriter
	bw.Init(nil)
	for i := 0; i < 4096; i++ {
		nb := uint(rng.Intn(17))
		v := uint32(rng.Int()) & (1<<nb - 1)
		widths = append(widths, nb)
		values = append(values, v)
		bw.WriteBits(v, nb)
	}

	var br bitReader
	br.Init(bw.Bytes())
	for i, nb := range widths {
		if got := br.ReadBits(nb); got != values[i] {
			t.Fatalf("write %d: ReadBits(%d): got %#x, want %#x", i, nb, got, values[i])
		}
	}
}
