// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand is a deterministic pseudo-random generator built on AES in counter
// mode. Unlike math/rand, a given seed produces the same output across Go
// releases, which keeps generated test corpora stable.
type Rand struct {
	blk cipher.Block
	ctr uint64
	out [aes.BlockSize]byte
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	blk, _ := aes.NewCipher(key[:])
	return &Rand{blk: blk}
}

// next encrypts the current counter value into the output block.
func (r *Rand) next() {
	var in [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(in[:], r.ctr)
	r.ctr++
	r.blk.Encrypt(r.out[:], in[:])
}

func (r *Rand) Int() int {
	r.next()
	return int(binary.LittleEndian.Uint64(r.out[:]) &^ (1 << 63))
}

func (r *Rand) Intn(n int) int {
	return r.Int() % n
}

func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	bb := b
	for len(bb) > 0 {
		r.next()
		bb = bb[copy(bb, r.out[:]):]
	}
	return b
}
