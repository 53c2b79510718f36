// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build ignore
// +build ignore

// Benchmark tool to compare performance between multiple compression
// implementations. Individual implementations are referred to as codecs.
//
// Example usage:
//
//	$ go build -o benchmark main.go
//	$ ./benchmark \
//		-formats zl              \
//		-tests   encRate,decRate \
//		-codecs  std,zp,kp       \
//		-files   twain.txt       \
//		-levels  1,6,9           \
//		-sizes   1e4,1e5,1e6
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dsnet/golib/strconv"
	"github.com/op/go-logging"
	"github.com/tolvek/zpress/internal/tool/bench"
)

var log = logging.MustGetLogger("bench")

const (
	defaultLevels = "1,6,9"
	defaultSizes  = "1e4,1e5,1e6"
)

// The decompression speed benchmark works by decompressing some
// pre-compressed data, and the same encoder should produce it for all the
// trials. encRefs defines the priority order for choosing that encoder.
var encRefs = []string{"std", "kp", "zp"}

var (
	fmtToEnum = map[string]int{
		"zl": bench.FormatZlib,
		"xz": bench.FormatXZ,
		"zs": bench.FormatZstd,
		"sn": bench.FormatSnappy,
	}
	enumToFmt = map[int]string{
		bench.FormatZlib:   "zl",
		bench.FormatXZ:     "xz",
		bench.FormatZstd:   "zs",
		bench.FormatSnappy: "sn",
	}
	testToEnum = map[string]int{
		"encRate": bench.TestEncodeRate,
		"decRate": bench.TestDecodeRate,
		"ratio":   bench.TestCompressRatio,
	}
	enumToTest = map[int]string{
		bench.TestEncodeRate:    "encRate",
		bench.TestDecodeRate:    "decRate",
		bench.TestCompressRatio: "ratio",
	}
)

func defaultFormats() string {
	m := make(map[int]bool)
	for k := range bench.Encoders {
		m[k] = true
	}
	for k := range bench.Decoders {
		m[k] = true
	}
	var d []int
	for k := range m {
		d = append(d, k)
	}
	sort.Ints(d)
	var s []string
	for _, v := range d {
		s = append(s, enumToFmt[v])
	}
	return strings.Join(s, ",")
}

func defaultTests() string {
	var d []int
	for k := range enumToTest {
		d = append(d, k)
	}
	sort.Ints(d)
	var s []string
	for _, v := range d {
		s = append(s, enumToTest[v])
	}
	return strings.Join(s, ",")
}

func defaultCodecs() string {
	m := make(map[string]bool)
	for _, v := range bench.Encoders {
		for k := range v {
			m[k] = true
		}
	}
	for _, v := range bench.Decoders {
		for k := range v {
			m[k] = true
		}
	}
	hasStd := m["std"]
	delete(m, "std")
	var s []string
	for k := range m {
		s = append(s, k)
	}
	sort.Strings(s)
	if hasStd {
		s = append([]string{"std"}, s...) // Ensure "std" always appears first
	}
	return strings.Join(s, ",")
}

func main() {
	logging.SetFormatter(logging.MustStringFormatter("%{level:.4s} %{message}"))
	logging.SetBackend(logging.NewLogBackend(os.Stderr, "", 0))

	f0 := flag.String("formats", defaultFormats(), "List of formats to benchmark")
	f1 := flag.String("tests", defaultTests(), "List of different benchmark tests")
	f2 := flag.String("codecs", defaultCodecs(), "List of codecs to benchmark")
	f3 := flag.String("paths", ".", "List of paths to search for test files")
	f4 := flag.String("files", "", "List of input files to benchmark")
	f5 := flag.String("levels", defaultLevels, "List of compression levels to benchmark")
	f6 := flag.String("sizes", defaultSizes, "List of input sizes to benchmark")
	flag.Parse()

	var sep = regexp.MustCompile("[,:]")
	codecs := sep.Split(*f2, -1)
	files := sep.Split(*f4, -1)
	bench.Paths = sep.Split(*f3, -1)

	var formats, tests, levels, sizes []int
	for _, s := range sep.Split(*f0, -1) {
		if _, ok := fmtToEnum[s]; !ok {
			log.Fatalf("invalid format: %s", s)
		}
		formats = append(formats, fmtToEnum[s])
	}
	for _, s := range sep.Split(*f1, -1) {
		if _, ok := testToEnum[s]; !ok {
			log.Fatalf("invalid test: %s", s)
		}
		tests = append(tests, testToEnum[s])
	}
	for _, s := range sep.Split(*f5, -1) {
		lvl, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil {
			log.Fatalf("invalid level: %s", s)
		}
		levels = append(levels, int(lvl))
	}
	for _, s := range sep.Split(*f6, -1) {
		size, err := strconv.ParsePrefix(s, strconv.AutoParse)
		if err != nil {
			log.Fatalf("invalid size: %s", s)
		}
		sizes = append(sizes, int(size))
	}

	ts := time.Now()
	runBenchmarks(files, codecs, formats, tests, levels, sizes)
	log.Infof("RUNTIME: %v", time.Since(ts))
}

func runBenchmarks(files, codecs []string, formats, tests, levels, sizes []int) {
	for _, f := range formats {
		var encs, decs []string
		for _, c := range codecs {
			if _, ok := bench.Encoders[f][c]; ok {
				encs = append(encs, c)
			}
		}
		for _, c := range codecs {
			if _, ok := bench.Decoders[f][c]; ok {
				decs = append(decs, c)
			}
		}

		for _, t := range tests {
			var results [][]bench.Result
			var names, codecs []string
			var title, suffix string

			log.Infof("BENCHMARK: %s:%s", enumToFmt[f], enumToTest[t])
			if len(encs) == 0 {
				log.Warning("SKIP: There are no encoders available.")
				continue
			}
			if len(decs) == 0 && t == bench.TestDecodeRate {
				log.Warning("SKIP: There are no decoders available.")
				continue
			}

			var cnt int
			tick := func() {
				total := len(codecs) * len(files) * len(levels) * len(sizes)
				fmt.Fprintf(os.Stderr, "\t[%6.2f%%] %d of %d\r",
					100.0*float64(cnt)/float64(total), cnt, total)
				cnt++
			}

			switch t {
			case bench.TestEncodeRate:
				codecs, title, suffix = encs, "MB/s", ""
				results, names = bench.BenchmarkEncoderSuite(f, encs, files, levels, sizes, tick)
			case bench.TestDecodeRate:
				ref := getReferenceEncoder(f)
				codecs, title, suffix = decs, "MB/s", ""
				results, names = bench.BenchmarkDecoderSuite(f, decs, files, levels, sizes, ref, tick)
			case bench.TestCompressRatio:
				codecs, title, suffix = encs, "ratio", "x"
				results, names = bench.BenchmarkRatioSuite(f, encs, files, levels, sizes, tick)
			}

			printResults(results, names, codecs, title, suffix)
			fmt.Println()
		}
	}
}

func getReferenceEncoder(f int) bench.Encoder {
	for _, c := range encRefs {
		if enc, ok := bench.Encoders[f][c]; ok {
			return enc // Choose by priority
		}
	}
	for _, enc := range bench.Encoders[f] {
		return enc // Choose any random encoder
	}
	return nil
}

func printResults(results [][]bench.Result, names, codecs []string, title, suffix string) {
	cells := make([][]string, 1+len(names))
	for i := range cells {
		cells[i] = make([]string, 1+2*len(codecs))
	}

	cells[0][0] = "benchmark"
	for i, c := range codecs {
		cells[0][1+2*i] = c + " " + title
		cells[0][2+2*i] = "delta"
	}
	for j, row := range results {
		cells[1+j][0] = names[j]
		for i, r := range row {
			if r.R != 0 && !math.IsNaN(r.R) && !math.IsInf(r.R, 0) {
				cells[1+j][1+2*i] = fmt.Sprintf("%.2f", r.R) + suffix
			}
			if r.D != 0 && !math.IsNaN(r.D) && !math.IsInf(r.D, 0) {
				cells[1+j][2+2*i] = fmt.Sprintf("%.2fx", r.D)
			}
		}
	}

	maxLens := make([]int, 1+2*len(codecs))
	for _, row := range cells {
		for i, s := range row {
			if maxLens[i] < len(s) {
				maxLens[i] = len(s)
			}
		}
	}
	for _, row := range cells {
		fmt.Print("\t")
		for i, s := range row {
			switch {
			case i == 0:
				row[i] = s + strings.Repeat(" ", maxLens[i]-len(s))
			case i%2 == 1:
				row[i] = strings.Repeat(" ", 6+maxLens[i]-len(s)) + s
			default:
				row[i] = strings.Repeat(" ", 2+maxLens[i]-len(s)) + s
			}
			fmt.Print(row[i])
		}
		fmt.Println()
	}
}
