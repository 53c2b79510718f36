// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

// Extra bit-widths of the repeat symbols in the code lengths alphabet,
// RFC section 3.2.7.
var clenRepBits = [maxNumCLenSyms]uint32{16: 2, 17: 3, 18: 7}

// Encode compresses src into a complete DEFLATE stream holding a single
// dynamic prefix block. The output is byte-aligned.
func Encode(src []byte) []byte {
	return new(encoder).encode(src)
}

type encoder struct {
	bw     bitWriter
	mf     matchFinder
	tokens []token

	litFreqs  [maxNumLitSyms]uint32
	distFreqs [maxNumDistSyms]uint32
	clenFreqs [maxNumCLenSyms]uint32

	litEnc  prefixEncoder // Literal and length codes
	distEnc prefixEncoder // Backward distance codes
	clenEnc prefixEncoder // Code lengths alphabet codes

	clenToks []clenToken
}

// A clenToken is one symbol of the run-length encoded code lengths
// sequence, together with the value of its extra bits field.
type clenToken struct {
	sym   uint32
	extra uint32
}

func (ze *encoder) encode(src []byte) []byte {
	ze.bw.Init(nil)
	ze.tokens = ze.mf.Tokenize(src, ze.tokens[:0])

	// Gather symbol frequencies. The end-of-block marker is counted once.
	for _, t := range ze.tokens {
		if t&matchType != 0 {
			ze.litFreqs[257+lenSym(t.length())]++
			ze.distFreqs[distSym(t.distance())]++
		} else {
			ze.litFreqs[t.literal()]++
		}
	}
	ze.litFreqs[endBlockSym]++

	ze.litEnc.Init(ze.litFreqs[:])
	ze.distEnc.Init(ze.distFreqs[:])

	// Block header (RFC section 3.2.3): final block, dynamic prefix codes.
	ze.bw.WriteBits(1, 1)
	ze.bw.WriteBits(2, 2)
	ze.writeDynamicHeader()

	for _, t := range ze.tokens {
		if t&matchType == 0 {
			ze.bw.WriteSymbol(uint32(t.literal()), &ze.litEnc)
			continue
		}
		l, d := t.length(), t.distance()
		lsym, dsym := lenSym(l), distSym(d)
		ze.bw.WriteSymbol(257+lsym, &ze.litEnc)
		ze.bw.WriteBits(l-lenLUT[lsym].base, uint(lenLUT[lsym].bits))
		ze.bw.WriteSymbol(dsym, &ze.distEnc)
		ze.bw.WriteBits(d-distLUT[dsym].base, uint(distLUT[dsym].bits))
	}
	ze.bw.WriteSymbol(endBlockSym, &ze.litEnc)

	return ze.bw.Bytes()
}

// writeDynamicHeader emits the HLIT/HDIST/HCLEN fields and the run-length
// encoded code lengths of both trees, RFC section 3.2.7. All 286 literal
// and 30 distance lengths are always transmitted.
func (ze *encoder) writeDynamicHeader() {
	var cl [maxNumLitSyms + maxNumDistSyms]uint32
	copy(cl[:], ze.litEnc.lens)
	copy(cl[maxNumLitSyms:], ze.distEnc.lens)

	ze.clenToks = ze.clenToks[:0]
	for i := 0; i < len(cl); {
		v := cl[i]
		r := 1
		for i+r < len(cl) && cl[i+r] == v {
			r++
		}
		i += r

		if v == 0 {
			for r >= 11 {
				n := r
				if n > 138 {
					n = 138
				}
				ze.emitCLen(18, uint32(n-11))
				r -= n
			}
			for r >= 3 {
				n := r
				if n > 10 {
					n = 10
				}
				ze.emitCLen(17, uint32(n-3))
				r -= n
			}
			for ; r > 0; r-- {
				ze.emitCLen(0, 0)
			}
		} else {
			ze.emitCLen(v, 0)
			r--
			for r >= 3 {
				n := r
				if n > 6 {
					n = 6
				}
				ze.emitCLen(16, uint32(n-3))
				r -= n
			}
			for ; r > 0; r-- {
				ze.emitCLen(v, 0)
			}
		}
	}
	ze.clenEnc.Init(ze.clenFreqs[:])

	// HCLEN counts the trailing all-zero entries of the fixed transmission
	// order out of the header. At least four lengths are always sent.
	k := len(clenOrder) - 1
	for k > 0 && ze.clenEnc.lens[clenOrder[k]] == 0 {
		k--
	}
	numCLens := k + 1
	if numCLens < 4 {
		numCLens = 4
	}

	ze.bw.WriteBits(maxNumLitSyms-257, 5)  // HLIT
	ze.bw.WriteBits(maxNumDistSyms-1, 5)   // HDIST
	ze.bw.WriteBits(uint32(numCLens-4), 4) // HCLEN
	for _, sym := range clenOrder[:numCLens] {
		ze.bw.WriteBits(ze.clenEnc.lens[sym], 3)
	}
	for _, t := range ze.clenToks {
		ze.bw.WriteSymbol(t.sym, &ze.clenEnc)
		ze.bw.WriteBits(t.extra, uint(clenRepBits[t.sym]))
	}
}

func (ze *encoder) emitCLen(sym, extra uint32) {
	ze.clenFreqs[sym]++
	ze.clenToks = append(ze.clenToks, clenToken{sym: sym, extra: extra})
}
