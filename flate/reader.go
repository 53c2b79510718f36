// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

// Decode decompresses a complete DEFLATE stream. Raw, fixed, and dynamic
// blocks are accepted, in any number. Trailing bytes beyond the final block
// are ignored.
func Decode(src []byte) (output []byte, err error) {
	defer errRecover(&err)
	zr := new(decoder)
	zr.br.Init(src)
	zr.inflate()
	return zr.out, nil
}

type decoder struct {
	br  bitReader
	out []byte // Decompressed output; doubles as the copy dictionary

	litTree  prefixDecoder // Literal and length symbol prefix decoder
	distTree prefixDecoder // Backward distance symbol prefix decoder
	clenTree prefixDecoder // Code lengths alphabet prefix decoder

	lens [maxNumLitSyms + maxNumDistSyms]uint
}

// inflate reads blocks until the final one, RFC section 3.2.3.
func (zr *decoder) inflate() {
	for {
		last := zr.br.ReadBits(1) == 1
		switch zr.br.ReadBits(2) {
		case 0:
			// Raw block (RFC section 3.2.4).
			zr.readRawBlock()
		case 1:
			// Fixed prefix block (RFC section 3.2.6).
			zr.readBlock(&litTree, &distTree)
		case 2:
			// Dynamic prefix block (RFC section 3.2.7).
			zr.readDynamicHeader()
			zr.readBlock(&zr.litTree, &zr.distTree)
		default:
			// Reserved block (RFC section 3.2.3).
			panic(ErrBadBlockType)
		}
		if last {
			return
		}
	}
}

func (zr *decoder) readRawBlock() {
	zr.br.ReadPads()
	n := uint16(zr.br.ReadBits(16))
	nn := uint16(zr.br.ReadBits(16))
	if n^nn != 0xffff {
		panic(ErrBadStoredBlock)
	}

	pos := len(zr.out)
	zr.out = append(zr.out, make([]byte, n)...)
	zr.br.ReadBytes(zr.out[pos:])
}

// readDynamicHeader reads the literal and distance code lengths according
// to RFC section 3.2.7 and builds their decoders.
func (zr *decoder) readDynamicHeader() {
	numLitSyms := int(zr.br.ReadBits(5)) + 257
	numDistSyms := int(zr.br.ReadBits(5)) + 1
	numCLenSyms := int(zr.br.ReadBits(4)) + 4
	if numLitSyms > maxNumLitSyms {
		panic(ErrBadLengthSymbol)
	}
	if numDistSyms > maxNumDistSyms {
		panic(ErrBadDistance)
	}

	var clens [maxNumCLenSyms]uint
	for _, sym := range clenOrder[:numCLenSyms] {
		clens[sym] = uint(zr.br.ReadBits(3))
	}
	zr.clenTree.Init(clens[:])

	maxSyms := numLitSyms + numDistSyms
	for i := 0; i < maxSyms; {
		sym := zr.br.ReadSymbol(&zr.clenTree)
		if sym < 16 {
			zr.lens[i] = uint(sym)
			i++
			continue
		}

		var clen uint
		var rep int
		switch sym {
		case 16:
			if i == 0 {
				panic(ErrBadHuffmanCode) // Nothing yet to repeat
			}
			clen = zr.lens[i-1]
			rep = 3 + int(zr.br.ReadBits(2))
		case 17:
			rep = 3 + int(zr.br.ReadBits(3))
		case 18:
			rep = 11 + int(zr.br.ReadBits(7))
		}
		if i+rep > maxSyms {
			panic(ErrBadHuffmanCode)
		}
		for ; rep > 0; rep-- {
			zr.lens[i] = clen
			i++
		}
	}

	zr.litTree.Init(zr.lens[:numLitSyms])
	zr.distTree.Init(zr.lens[numLitSyms:maxSyms])
}

// readBlock decodes the block body, RFC section 3.2.3.
func (zr *decoder) readBlock(lt, dt *prefixDecoder) {
	for {
		sym := zr.br.ReadSymbol(lt)
		switch {
		case sym < endBlockSym:
			zr.out = append(zr.out, byte(sym))
		case sym == endBlockSym:
			return
		case sym < maxNumLitSyms:
			l := zr.br.ReadOffset(sym-257, lenLUT[:])
			dsym := zr.br.ReadSymbol(dt)
			if dsym >= maxNumDistSyms {
				panic(ErrBadDistance)
			}
			d := zr.br.ReadOffset(dsym, distLUT[:])
			zr.copyMatch(int(d), int(l))
		default:
			panic(ErrBadLengthSymbol)
		}
	}
}

// copyMatch copies l bytes from d bytes behind the write cursor. The copy
// runs byte by byte so that it observes its own writes when l exceeds d,
// which is how run-length expansion is encoded.
func (zr *decoder) copyMatch(d, l int) {
	if d < 1 || d > len(zr.out) {
		panic(ErrBadDistance)
	}
	pos := len(zr.out) - d
	for i := 0; i < l; i++ {
		zr.out = append(zr.out, zr.out[pos+i])
	}
}
