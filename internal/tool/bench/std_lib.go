// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_std_lib
// +build !no_std_lib

package bench

import (
	"compress/zlib"
	"io"
)

func init() {
	RegisterEncoder(FormatZlib, "std",
		func(w io.Writer, lvl int) io.WriteCloser {
			zw, err := zlib.NewWriterLevel(w, lvl)
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder(FormatZlib, "std",
		func(r io.Reader) io.ReadCloser {
			zr, err := zlib.NewReader(r)
			if err != nil {
				panic(err)
			}
			return zr
		})
}
