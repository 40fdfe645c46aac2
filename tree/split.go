package tree

import (
	"math"
	"sort"

	"github.com/ezoic/isoforest/partition"
)

// columnValues materializes one numeric column over the node's rows into the
// shared scratch buffer, position-aligned with ix. For sparse stores ix must
// already be sorted.
func (b *builder) columnValues(ix []int, col int) []float64 {
	if cap(b.colBuf) < len(ix) {
		b.colBuf = make([]float64, len(ix))
	}
	buf := b.colBuf[:len(ix)]

	if b.ds.Dense != nil {
		x := b.ds.Dense.Column(col)
		for i, row := range ix {
			buf[i] = x[row]
		}
		return buf
	}

	rows, values := b.ds.Sparse.ColRange(col)
	partition.ToDenseColumn(ix, rows, values, buf)
	return buf
}

// tryGuided scores up to nTry candidate numeric columns by pooled-variance
// gain and applies the best split found. Categorical candidates are skipped;
// they keep their uniform selection path.
func (b *builder) tryGuided(ix []int) (splitResult, bool) {
	bestGain := math.Inf(-1)
	bestCol := -1
	bestThreshold := 0.0

	work := make([]float64, 0, len(ix))
	for try := 0; try < b.tree.opts.nTry; try++ {
		col, ok := b.cs.SampleCol(b.rng)
		if !ok {
			break
		}
		if col >= b.ds.NumCols() {
			continue
		}

		work = work[:0]
		for _, v := range b.columnValues(ix, col) {
			if !math.IsNaN(v) {
				work = append(work, v)
			}
		}
		threshold, gain, ok := bestNumericSplit(work)
		if !ok {
			b.cs.DropCol(col)
			continue
		}
		if gain > bestGain {
			bestGain, bestCol, bestThreshold = gain, col, threshold
		}
	}

	if bestCol < 0 {
		return splitResult{}, false
	}
	return b.applyNumeric(ix, bestCol, bestThreshold)
}

// bestNumericSplit finds the threshold maximizing the pooled-variance gain
//
//	gain = var(all) - (nL*var(left) + nR*var(right)) / n
//
// over midpoints between consecutive distinct values. Reports false for
// constant or near-empty inputs.
func bestNumericSplit(values []float64) (threshold, gain float64, ok bool) {
	n := len(values)
	if n < 2 {
		return 0, 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if sorted[0] == sorted[n-1] {
		return 0, 0, false
	}

	var sum, sumSq float64
	for _, v := range sorted {
		sum += v
		sumSq += v * v
	}
	fullVar := sumSq/float64(n) - (sum/float64(n))*(sum/float64(n))

	bestGain := math.Inf(-1)
	bestThreshold := 0.0
	var lSum, lSumSq float64
	for i := 0; i < n-1; i++ {
		lSum += sorted[i]
		lSumSq += sorted[i] * sorted[i]
		if sorted[i] == sorted[i+1] {
			continue
		}
		nL := float64(i + 1)
		nR := float64(n - i - 1)
		rSum := sum - lSum
		rSumSq := sumSq - lSumSq
		lVar := lSumSq/nL - (lSum/nL)*(lSum/nL)
		rVar := rSumSq/nR - (rSum/nR)*(rSum/nR)
		g := fullVar - (nL*lVar+nR*rVar)/float64(n)
		if g > bestGain {
			bestGain = g
			bestThreshold = sorted[i] + (sorted[i+1]-sorted[i])/2
		}
	}
	return bestThreshold, bestGain, true
}

// tryHyperplane builds an extended split: a random linear combination of up
// to ndim numeric columns, with fit-time mean imputation of missing values
// (an imputed value contributes zero to the centered combination).
func (b *builder) tryHyperplane(ix []int) (splitResult, bool) {
	numCols := b.ds.NumCols()
	if numCols < 2 {
		return b.trySingleColumn(ix)
	}

	if cap(b.combBuf) < len(ix) {
		b.combBuf = make([]float64, len(ix))
	}
	comb := b.combBuf[:len(ix)]

	for attempt := 0; attempt < 3; attempt++ {
		if b.ds.Sparse != nil {
			sort.Ints(ix)
		}
		for i := range comb {
			comb[i] = 0
		}

		ndim := b.tree.opts.ndim
		if ndim > numCols {
			ndim = numCols
		}
		cols := make([]int, 0, ndim)
		coefs := make([]float64, 0, ndim)
		means := make([]float64, 0, ndim)

		taken := map[int]bool{}
		for draws := 0; len(cols) < ndim && draws < 4*ndim; draws++ {
			col, ok := b.cs.SampleCol(b.rng)
			if !ok {
				break
			}
			if col >= numCols || taken[col] {
				continue
			}
			mean := b.nodeMean(ix, col)
			if math.IsNaN(mean) {
				continue
			}
			taken[col] = true
			coef := b.rng.NormFloat64()
			cols = append(cols, col)
			coefs = append(coefs, coef)
			means = append(means, mean)

			for i, v := range b.columnValues(ix, col) {
				if math.IsNaN(v) {
					continue // imputed to the mean: zero contribution
				}
				comb[i] += coef * (v - mean)
			}
		}
		if len(cols) < 2 {
			return b.trySingleColumn(ix)
		}

		cmin, cmax := comb[0], comb[0]
		for _, v := range comb[1:] {
			if v < cmin {
				cmin = v
			}
			if v > cmax {
				cmax = v
			}
		}
		if cmin == cmax {
			continue
		}

		threshold := cmin + b.rng.Float64()*(cmax-cmin)
		mid := partition.DivideHyperplane(ix, comb, threshold)
		if mid == 0 || mid == len(ix) {
			continue
		}

		node := Node{
			Kind:      SplitHyperplane,
			Threshold: threshold,
			Columns:   cols,
			Coefs:     coefs,
			Means:     means,
			PctLeft:   float64(mid) / float64(len(ix)),
		}
		return splitResult{node: node, stNA: mid, endNA: mid}, true
	}
	return splitResult{}, false
}
