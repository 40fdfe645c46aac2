// Package sampling implements the row and column samplers used when fitting
// isolation trees: an implicit binary-tree weighted sampler, the
// row-subsample dispatch, a weighted shuffle, and the stateful per-tree
// column sampler.
//
// All randomness flows through an explicitly passed *rand.Rand so that a
// fixed generator stream reproduces draws exactly. Scratch buffers are
// caller-owned (see Scratch) so concurrent tree builders never alias shared
// state.
package sampling

import (
	"math"
	"math/rand/v2"

	"github.com/ezoic/isoforest/pkg/errors"
	"github.com/ezoic/isoforest/stats"
)

// WeightedTree is an array-backed implicit complete binary tree over
// non-negative item weights. Leaf i holds the weight of item i; every
// internal node holds the sum of its two children, so the root is the total
// weight. Drawing an item proportional to weight and removing it are both
// O(log n).
//
// Nodes use the usual index arithmetic: children of i are 2i+1 and 2i+2,
// parent of i is (i-1)/2. Leaves start at offset = 2^levels - 1.
type WeightedTree struct {
	nodes  []float64
	levels int
	offset int
	n      int
}

// NewWeightedTree builds a sampler over weights, sanitizing NaNs and
// negatives to zero so a few bad entries never poison the remaining mass.
// If the resulting total weight is non-positive the weights cannot drive
// sampling; the error wraps errors.ErrInvalidWeights and the caller is
// expected to recover by falling back to unweighted sampling.
//
// buf, when non-nil, is reused as node storage to avoid allocation; pass the
// same buffer across builds of equal domain size.
func NewWeightedTree(weights []float64, buf []float64) (*WeightedTree, error) {
	n := len(weights)
	if n == 0 {
		return nil, errors.NewModelError("NewWeightedTree", "no items", errors.ErrEmptyData)
	}

	levels := stats.Log2Ceil(n)
	size := 1 << uint(levels+1)
	var nodes []float64
	if cap(buf) >= size {
		nodes = buf[:size]
		for i := range nodes {
			nodes[i] = 0
		}
	} else {
		nodes = make([]float64, size)
	}

	offset := 1<<uint(levels) - 1
	for i, w := range weights {
		if math.IsNaN(w) || w < 0 {
			w = 0
		}
		nodes[i+offset] = w
	}
	for ix := size - 1; ix > 0; ix-- {
		nodes[(ix-1)/2] += nodes[ix]
	}

	if nodes[0] <= 0 {
		return nil, errors.NewModelError("NewWeightedTree",
			"total weight is non-positive", errors.ErrInvalidWeights)
	}

	return &WeightedTree{nodes: nodes, levels: levels, offset: offset, n: n}, nil
}

// Len returns the number of items in the sampler's domain.
func (t *WeightedTree) Len() int { return t.n }

// Total returns the current total weight (the root node).
func (t *WeightedTree) Total() float64 { return t.nodes[0] }

// Weight returns the current weight of item i.
func (t *WeightedTree) Weight(i int) float64 { return t.nodes[i+t.offset] }

// Draw selects an item with probability proportional to its current weight,
// without removing it. Returns false when the remaining total weight is
// non-positive.
//
// The walk draws one uniform value per level; at each node the value either
// falls inside the left child's mass (go left) or at/above it (go right).
func (t *WeightedTree) Draw(rng *rand.Rand) (int, bool) {
	curr := 0
	subrange := t.nodes[0]
	if subrange <= 0 {
		return 0, false
	}

	for lev := 0; lev < t.levels; lev++ {
		r := rng.Float64() * subrange
		left := t.nodes[2*curr+1]
		if r >= left {
			curr = 2*curr + 2
		} else {
			curr = 2*curr + 1
		}
		subrange = t.nodes[curr]
	}
	return curr - t.offset, true
}

// Remove zeroes item i's weight and repairs all ancestor sums by re-summing
// each ancestor's two children. Composing Draw then Remove yields sampling
// without replacement.
func (t *WeightedTree) Remove(i int) {
	curr := i + t.offset
	t.nodes[curr] = 0
	for lev := 0; lev < t.levels; lev++ {
		curr = (curr - 1) / 2
		t.nodes[curr] = t.nodes[2*curr+1] + t.nodes[2*curr+2]
	}
}

// DrawRemove draws an item and removes it in one step.
func (t *WeightedTree) DrawRemove(rng *rand.Rand) (int, bool) {
	i, ok := t.Draw(rng)
	if !ok {
		return 0, false
	}
	t.Remove(i)
	return i, true
}

// Clone returns an independent copy of the sampler. Used when a caller needs
// to deplete a scratch copy while keeping the live tree intact.
func (t *WeightedTree) Clone() *WeightedTree {
	nodes := make([]float64, len(t.nodes))
	copy(nodes, t.nodes)
	return &WeightedTree{nodes: nodes, levels: t.levels, offset: t.offset, n: t.n}
}

// SetLeaf assigns item i's weight without repairing ancestors. Callers batch
// several SetLeaf calls and then invoke Rebuild.
func (t *WeightedTree) SetLeaf(i int, w float64) {
	t.nodes[i+t.offset] = w
}

// Zero clears every node. Used together with SetLeaf/Rebuild when
// reinstating a chosen subset of weights.
func (t *WeightedTree) Zero() {
	for i := range t.nodes {
		t.nodes[i] = 0
	}
}

// Rebuild recomputes every internal node from the leaves, bottom-up.
func (t *WeightedTree) Rebuild() {
	for ix := t.offset - 1; ix >= 0; ix-- {
		t.nodes[ix] = t.nodes[2*ix+1] + t.nodes[2*ix+2]
	}
}
