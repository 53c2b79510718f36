// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_zp_lib
// +build !no_zp_lib

package bench

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/tolvek/zpress/zlib"
)

// The zpress codec operates on whole buffers, so the adapters below stage
// all data in memory and run the codec at Close or on the first Read.

func init() {
	RegisterEncoder(FormatZlib, "zp",
		func(w io.Writer, lvl int) io.WriteCloser {
			return &bufEncoder{w: w}
		})
	RegisterDecoder(FormatZlib, "zp",
		func(r io.Reader) io.ReadCloser {
			return &bufDecoder{r: r}
		})
}

type bufEncoder struct {
	w   io.Writer
	buf bytes.Buffer
}

func (be *bufEncoder) Write(buf []byte) (int, error) {
	return be.buf.Write(buf)
}

func (be *bufEncoder) Close() error {
	_, err := be.w.Write(zlib.Compress(be.buf.Bytes()))
	return err
}

type bufDecoder struct {
	r   io.Reader
	out *bytes.Reader
}

func (bd *bufDecoder) Read(buf []byte) (int, error) {
	if bd.out == nil {
		input, err := ioutil.ReadAll(bd.r)
		if err != nil {
			return 0, err
		}
		output, err := zlib.Decompress(input)
		if err != nil {
			return 0, err
		}
		bd.out = bytes.NewReader(output)
	}
	return bd.out.Read(buf)
}

func (bd *bufDecoder) Close() error { return nil }
