// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build cgo && !no_cgo_zstd
// +build cgo,!no_cgo_zstd

package bench

import (
	"io"

	"github.com/valyala/gozstd"
)

func init() {
	RegisterEncoder(FormatZstd, "cgo",
		func(w io.Writer, lvl int) io.WriteCloser {
			return gozstd.NewWriterLevel(w, lvl)
		})
	RegisterDecoder(FormatZstd, "cgo",
		func(r io.Reader) io.ReadCloser {
			return &zstdReader{gozstd.NewReader(r)}
		})
}

type zstdReader struct{ *gozstd.Reader }

func (zr *zstdReader) Close() error {
	zr.Release()
	return nil
}
