// Copyright 2021, Arne Tolvek. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package flate

import "container/heap"

// A prefixEncoder assigns a canonical prefix code to every symbol with a
// non-zero frequency. The tree itself is never materialized; nodes live in
// flat weight/parent arrays and a heap of node indices drives the merging,
// so the only outputs are the lens and codes arrays.
type prefixEncoder struct {
	lens  []uint32 // Bit lengths, 0 means the symbol is unused
	codes []uint32 // Canonical codes, MSB-first when read as an integer

	weights []uint64
	parents []int32
	queue   nodeQueue
}

// Init computes code lengths from the given symbol frequencies and derives
// the canonical codes. Lengths never exceed maxPrefixBits; if the shape of
// the frequency distribution would demand deeper leaves, lengths are
// redistributed until they satisfy Kraft's equality again.
func (pe *prefixEncoder) Init(freqs []uint32) {
	pe.lens = allocUint32s(pe.lens, len(freqs))
	pe.codes = allocUint32s(pe.codes, len(freqs))
	for i := range pe.lens {
		pe.lens[i], pe.codes[i] = 0, 0
	}

	var syms []int // Indices of the used symbols, ascending
	for sym, f := range freqs {
		if f > 0 {
			syms = append(syms, sym)
		}
	}

	switch len(syms) {
	case 0:
		return
	case 1:
		pe.lens[syms[0]] = 1
	default:
		pe.buildLens(freqs, syms)
		pe.rebalanceLens(syms)
	}
	pe.assignCodes()
}

// buildLens runs the classic two-lightest-nodes merge. A leaf's depth in
// the merge tree becomes its code length, clipped to maxPrefixBits.
func (pe *prefixEncoder) buildLens(freqs []uint32, syms []int) {
	numNodes := 2*len(syms) - 1
	if cap(pe.weights) < numNodes {
		pe.weights = make([]uint64, numNodes)
		pe.parents = make([]int32, numNodes)
		pe.queue.order = make([]int32, 0, numNodes)
	}
	pe.weights = pe.weights[:0]
	pe.parents = pe.parents[:0]
	pe.queue.order = pe.queue.order[:0]
	pe.queue.weights = &pe.weights

	for _, sym := range syms {
		pe.queue.order = append(pe.queue.order, int32(len(pe.weights)))
		pe.weights = append(pe.weights, uint64(freqs[sym]))
		pe.parents = append(pe.parents, -1)
	}
	heap.Init(&pe.queue)

	for pe.queue.Len() > 1 {
		n1 := heap.Pop(&pe.queue).(int32)
		n2 := heap.Pop(&pe.queue).(int32)
		node := int32(len(pe.weights))
		pe.weights = append(pe.weights, pe.weights[n1]+pe.weights[n2])
		pe.parents = append(pe.parents, -1)
		pe.parents[n1], pe.parents[n2] = node, node
		heap.Push(&pe.queue, node)
	}

	// The i-th node is the leaf for the i-th used symbol.
	for i, sym := range syms {
		var depth uint32
		for node := int32(i); pe.parents[node] >= 0; node = pe.parents[node] {
			depth++
		}
		if depth > maxPrefixBits {
			depth = maxPrefixBits
		}
		pe.lens[sym] = depth
	}
}

// rebalanceLens restores Kraft's equality after depth clipping. Clipping
// only ever shortens codes, so the space can only be over-subscribed:
// lengthen the shallowest code until the sum fits, then shorten the deepest
// code until the sum is exact. Neither loop can run dry with two or more
// used symbols.
func (pe *prefixEncoder) rebalanceLens(syms []int) {
	const kraftCap = 1 << maxPrefixBits
	var total uint64
	for _, sym := range syms {
		total += 1 << (maxPrefixBits - pe.lens[sym])
	}

	for total > kraftCap {
		best := -1
		for _, sym := range syms {
			if pe.lens[sym] < maxPrefixBits && (best < 0 || pe.lens[sym] < pe.lens[best]) {
				best = sym
			}
		}
		pe.lens[best]++
		total -= 1 << (maxPrefixBits - pe.lens[best])
	}
	for total < kraftCap {
		best := -1
		for _, sym := range syms {
			if best < 0 || pe.lens[sym] > pe.lens[best] {
				best = sym
			}
		}
		total += 1 << (maxPrefixBits - pe.lens[best])
		pe.lens[best]--
	}
}

// assignCodes derives the canonical codes from the lengths per RFC
// section 3.2.2: codes of equal length are consecutive in symbol order.
func (pe *prefixEncoder) assignCodes() {
	var bitCnts [maxPrefixBits + 1]uint32
	var maxBits uint32
	for _, nb := range pe.lens {
		bitCnts[nb]++
		if maxBits < nb {
			maxBits = nb
		}
	}

	var nextCodes [maxPrefixBits + 1]uint32
	var code uint32
	for i := uint32(1); i <= maxBits; i++ {
		code <<= 1
		nextCodes[i] = code
		code += bitCnts[i]
	}
	for sym, nb := range pe.lens {
		if nb > 0 {
			pe.codes[sym] = nextCodes[nb]
			nextCodes[nb]++
		}
	}
}

// nodeQueue is a min-heap of node indices ordered by node weight.
// Ties break toward the older node to keep the output deterministic.
type nodeQueue struct {
	weights *[]uint64
	order   []int32
}

func (q *nodeQueue) Len() int { return len(q.order) }

func (q *nodeQueue) Less(i, j int) bool {
	wi, wj := (*q.weights)[q.order[i]], (*q.weights)[q.order[j]]
	if wi != wj {
		return wi < wj
	}
	return q.order[i] < q.order[j]
}

func (q *nodeQueue) Swap(i, j int) {
	q.order[i], q.order[j] = q.order[j], q.order[i]
}

func (q *nodeQueue) Push(x interface{}) {
	q.order = append(q.order, x.(int32))
}

func (q *nodeQueue) Pop() interface{} {
	n := len(q.order)
	x := q.order[n-1]
	q.order = q.order[:n-1]
	return x
}
