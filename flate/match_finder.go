// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

const (
	hashBits = 15
	hashSize = 1 << hashBits
	hashMask = hashSize - 1

	windowMask = maxHistSize - 1

	// Walking a hash chain stops after this many candidates, which bounds
	// the worst case on inputs with highly repetitive hash values.
	maxChainLen = 128
)

// A token is either a single literal byte or a backward copy.
type token uint32

const (
	matchType    token = 1 << 31
	lenShift           = 16
	tokenNoneIdx       = -1
)

func literalToken(lit byte) token {
	return token(lit)
}

// matchToken encodes a copy of length [3, 258] from distance [1, 32768].
func matchToken(length, dist uint32) token {
	return matchType | token(length-minMatchLen)<<lenShift | token(dist-1)
}

func (t token) literal() byte    { return byte(t) }
func (t token) length() uint32   { return uint32(t>>lenShift)&0xff + minMatchLen }
func (t token) distance() uint32 { return uint32(t&0xffff) + 1 }

// A matchFinder indexes every 3-byte sequence it has consumed.
// head[h] holds the most recent position whose sequence hashed to h, and
// prev[p&windowMask] holds the position that occupied head before p did,
// forming per-hash chains ordered from most to least recent. Links that
// fall out of the 32 KiB window are left in place and filtered by the
// distance check during traversal.
type matchFinder struct {
	head [hashSize]int32
	prev [maxHistSize]int32
}

func (mf *matchFinder) Init() {
	for i := range mf.head {
		mf.head[i] = tokenNoneIdx
	}
	for i := range mf.prev {
		mf.prev[i] = tokenNoneIdx
	}
}

func hash3(src []byte, pos int) uint32 {
	return (uint32(src[pos])<<10 ^ uint32(src[pos+1])<<5 ^ uint32(src[pos+2])) & hashMask
}

// insert records pos in the chain for its 3-byte hash.
func (mf *matchFinder) insert(src []byte, pos int) {
	h := hash3(src, pos)
	mf.prev[pos&windowMask] = mf.head[h]
	mf.head[h] = int32(pos)
}

// findMatch walks the chain starting at cand looking for the longest match
// against src[pos:]. On equal lengths the nearer candidate wins, which is
// always the one seen first.
func (mf *matchFinder) findMatch(src []byte, pos int, cand int32) (length, dist int) {
	maxLen := len(src) - pos
	if maxLen > maxMatchLen {
		maxLen = maxMatchLen
	}

	for chain := 0; cand >= 0 && chain < maxChainLen; chain++ {
		d := pos - int(cand)
		if d <= 0 || d > maxHistSize {
			break // The chain has left the window
		}

		n := matchLen(src, int(cand), pos, maxLen)
		if n > length {
			length, dist = n, d
			if length == maxMatchLen {
				break
			}
		}
		cand = mf.prev[int(cand)&windowMask]
	}
	return length, dist
}

// matchLen measures the common prefix of src[cand:] and src[pos:], up to max.
func matchLen(src []byte, cand, pos, max int) int {
	var n int
	for n < max && src[cand+n] == src[pos+n] {
		n++
	}
	return n
}

// Tokenize appends to tokens a literal/copy sequence that reproduces src
// exactly. The search is greedy: the longest match at the current position
// is taken and the skipped positions are still inserted into the index so
// that later positions can match into them.
func (mf *matchFinder) Tokenize(src []byte, tokens []token) []token {
	mf.Init()

	for pos := 0; pos < len(src); {
		if len(src)-pos < minMatchLen {
			tokens = append(tokens, literalToken(src[pos]))
			pos++
			continue
		}

		h := hash3(src, pos)
		cand := mf.head[h]
		mf.prev[pos&windowMask] = cand
		mf.head[h] = int32(pos)

		length, dist := mf.findMatch(src, pos, cand)
		if length < minMatchLen {
			tokens = append(tokens, literalToken(src[pos]))
			pos++
			continue
		}

		tokens = append(tokens, matchToken(uint32(length), uint32(dist)))
		for i := pos + 1; i < pos+length && i+minMatchLen <= len(src); i++ {
			mf.insert(src, i)
		}
		pos += length
	}
	return tokens
}
