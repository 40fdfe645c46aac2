package sampling

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/ezoic/isoforest/pkg/log"
)

// Scratch holds the reusable buffers the row sampler needs across repeated
// draws. Buffers grow on demand and are never shared: each concurrent tree
// builder owns its own Scratch.
type Scratch struct {
	ixAll      []int
	isRepeated []bool
	treeNodes  []float64
	cumWeights []float64
}

// NewScratch returns an empty scratch buffer set.
func NewScratch() *Scratch { return &Scratch{} }

// floydBoolThreshold is the sampled fraction above which Floyd's algorithm
// tracks seen candidates in a reusable boolean array instead of a hash set.
const floydBoolThreshold = 1. / 20.

// SampleRows fills ixArr with a sample of row indices from [0, nrows),
// choosing the algorithm by sample size, replacement mode and presence of
// weights:
//
//   - with replacement, unweighted: independent uniform draws
//   - with replacement, weighted: multinomial draws via cumulative weights
//   - without replacement, len(ixArr) == nrows: the identity permutation,
//     no randomness consumed
//   - without replacement, weighted: draw+remove against a WeightedTree
//   - without replacement, unweighted, large fractions: full shuffle
//     (>= 3/4) or partial Fisher-Yates (>= 1/2)
//   - without replacement, unweighted, small fractions: Floyd's algorithm
//     with a boolean array or a hash set depending on the fraction
//
// NaN and negative sample weights are sanitized to zero; a non-positive
// total downgrades to the unweighted algorithm with a logged warning, never
// a failed call.
func SampleRows(ixArr []int, nrows int, withReplacement bool, sampleWeights []float64, scratch *Scratch, rng *rand.Rand) {
	ntake := len(ixArr)
	if ntake == 0 || nrows == 0 {
		return
	}

	if withReplacement {
		if sampleWeights == nil {
			for i := range ixArr {
				ixArr[i] = rng.IntN(nrows)
			}
			return
		}
		sampleRowsMultinomial(ixArr, sampleWeights[:nrows], scratch, rng)
		return
	}

	// If all the elements are needed, don't bother with any sampling.
	if ntake == nrows {
		for i := range ixArr {
			ixArr[i] = i
		}
		return
	}

	if sampleWeights != nil {
		tree, err := NewWeightedTree(sampleWeights[:nrows], scratch.treeNodes)
		if err == nil {
			scratch.treeNodes = tree.nodes
			for i := range ixArr {
				ix, ok := tree.DrawRemove(rng)
				if !ok {
					// Positive weight ran out before the sample filled up;
					// complete the draw from the zero-weight remainder so the
					// output stays a sample without replacement.
					completeWithoutReplacement(ixArr, i, nrows, rng)
					return
				}
				ixArr[i] = ix
			}
			return
		}
		log.GetLoggerWithName("sampling").Warn(
			"numeric precision error with sample weights, will not use them")
		// fall through to the unweighted algorithms
	}

	if ntake >= nrows/2 {
		if cap(scratch.ixAll) < nrows {
			scratch.ixAll = make([]int, nrows)
		}
		ixAll := scratch.ixAll[:nrows]

		// For random seeds to stay reproducible, never reuse a previous shuffle.
		for i := range ixAll {
			ixAll[i] = i
		}

		if ntake >= (nrows*3)/4 {
			rng.Shuffle(nrows, func(i, j int) {
				ixAll[i], ixAll[j] = ixAll[j], ixAll[i]
			})
			copy(ixArr, ixAll[:ntake])
			return
		}

		// Partial Fisher-Yates: only ntake swaps, copying chosen elements out
		// along the way.
		for i := nrows - 1; i >= nrows-ntake; i-- {
			chosen := rng.IntN(i + 1)
			ixArr[nrows-i-1] = ixAll[chosen]
			ixAll[chosen] = ixAll[i]
		}
		return
	}

	// Floyd's sampling algorithm for small fractions.
	if float64(ntake)/float64(nrows) > floydBoolThreshold {
		if cap(scratch.isRepeated) < nrows {
			scratch.isRepeated = make([]bool, nrows)
		}
		isRepeated := scratch.isRepeated[:nrows]
		for i := range isRepeated {
			isRepeated[i] = false
		}

		for rndIx := nrows - ntake; rndIx < nrows; rndIx++ {
			candidate := rng.IntN(rndIx + 1)
			if isRepeated[candidate] {
				ixArr[ntake-(nrows-rndIx)] = rndIx
				isRepeated[rndIx] = true
			} else {
				ixArr[ntake-(nrows-rndIx)] = candidate
				isRepeated[candidate] = true
			}
		}
		return
	}

	// Very small samples from very large populations: a set bounds memory by
	// the sample size rather than the population size.
	repeated := make(map[int]struct{}, ntake)
	for rndIx := nrows - ntake; rndIx < nrows; rndIx++ {
		candidate := rng.IntN(rndIx + 1)
		if _, ok := repeated[candidate]; !ok {
			ixArr[ntake-(nrows-rndIx)] = candidate
			repeated[candidate] = struct{}{}
		} else {
			ixArr[ntake-(nrows-rndIx)] = rndIx
			repeated[rndIx] = struct{}{}
		}
	}
}

// completeWithoutReplacement fills ixArr[filled:] with rows from [0, nrows)
// not already present in ixArr[:filled], in uniformly random order.
func completeWithoutReplacement(ixArr []int, filled, nrows int, rng *rand.Rand) {
	taken := make(map[int]struct{}, filled)
	for _, ix := range ixArr[:filled] {
		taken[ix] = struct{}{}
	}

	rest := ixArr[filled:filled]
	for i := 0; i < nrows && len(rest) < len(ixArr)-filled; i++ {
		if _, ok := taken[i]; !ok {
			rest = append(rest, i)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
}

// sampleRowsMultinomial draws with replacement from the discrete
// distribution the weights define, by inverse-CDF binary search over the
// cumulative weights. NaNs and negatives are sanitized to zero; a
// non-positive total downgrades to uniform draws.
func sampleRowsMultinomial(ixArr []int, weights []float64, scratch *Scratch, rng *rand.Rand) {
	n := len(weights)
	if cap(scratch.cumWeights) < n {
		scratch.cumWeights = make([]float64, n)
	}
	cum := scratch.cumWeights[:n]

	total := 0.0
	for i, w := range weights {
		if !(w > 0) { // also catches NaN
			w = 0
		}
		total += w
		cum[i] = total
	}

	if math.IsNaN(total) || total <= 0 {
		log.GetLoggerWithName("sampling").Warn(
			"numeric precision error with sample weights, will not use them")
		for i := range ixArr {
			ixArr[i] = rng.IntN(n)
		}
		return
	}

	for i := range ixArr {
		r := rng.Float64() * total
		ixArr[i] = sort.SearchFloat64s(cum, r)
		if ixArr[i] >= n {
			ixArr[i] = n - 1
		}
	}
}

// WeightedShuffle fills outp with a permutation of [0, len(outp)) where each
// position is drawn proportionally to the remaining weights, via repeated
// draw+remove on a weighted tree built in buf. Degenerate weights produce a
// plain uniform shuffle instead.
//
// buf must have room for the tree nodes (2 * 2^ceil(log2 n) entries); pass
// nil to let the function allocate. The possibly grown buffer is returned
// for reuse.
func WeightedShuffle(outp []int, weights []float64, buf []float64, rng *rand.Rand) []float64 {
	n := len(outp)
	if n == 0 {
		return buf
	}

	tree, err := NewWeightedTree(weights[:n], buf)
	if err != nil {
		for i := range outp {
			outp[i] = i
		}
		rng.Shuffle(n, func(i, j int) {
			outp[i], outp[j] = outp[j], outp[i]
		})
		return buf
	}

	drawn := make([]bool, n)
	for el := 0; el < n; el++ {
		ix, ok := tree.DrawRemove(rng)
		if !ok {
			// Remaining weight exhausted by zero-weight stragglers; finish
			// with the undrawn items, uniformly shuffled among themselves.
			rest := outp[el:el]
			for i := 0; i < n; i++ {
				if !drawn[i] {
					rest = append(rest, i)
				}
			}
			rng.Shuffle(len(rest), func(i, j int) {
				rest[i], rest[j] = rest[j], rest[i]
			})
			break
		}
		drawn[ix] = true
		outp[el] = ix
	}
	return tree.nodes
}
