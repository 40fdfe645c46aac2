// Package distance accumulates pairwise separation statistics used by the
// distance approximation over a fitted forest.
//
// Counters live in a flattened upper-triangular matrix of n*(n-1)/2 entries
// and are only ever written by addition. PairIndex is the single source of
// truth for the (i, j) -> flat offset mapping; the accumulation routines and
// the densification both go through it.
package distance

// NComb returns the number of unordered row pairs, the length of a counter
// matrix over n rows.
func NComb(n int) int {
	return n * (n - 1) / 2
}

// PairIndex maps the unordered pair (i, j) with i < j to its offset in a
// flattened upper-triangular matrix over n rows.
func PairIndex(i, j, n, ncomb int) int {
	return ncomb + (j - i) - 1 - ((n-i)*(n-i-1))/2
}

// IncreaseCombCounter adds one unit (or expRemainder, when above 1, for
// subtrees cut short by the depth limit) to every pair of rows in ix, which
// holds the rows that ended up in the same terminal partition.
func IncreaseCombCounter(ix []int, n int, counter []float64, expRemainder float64) {
	ncomb := NComb(n)
	if expRemainder <= 1 {
		for el1 := 0; el1 < len(ix)-1; el1++ {
			for el2 := el1 + 1; el2 < len(ix); el2++ {
				i, j := minMax(ix[el1], ix[el2])
				counter[PairIndex(i, j, n, ncomb)]++
			}
		}
		return
	}
	for el1 := 0; el1 < len(ix)-1; el1++ {
		for el2 := el1 + 1; el2 < len(ix); el2++ {
			i, j := minMax(ix[el1], ix[el2])
			counter[PairIndex(i, j, n, ncomb)] += expRemainder
		}
	}
}

// IncreaseCombCounterWeighted is IncreaseCombCounter with per-row weights:
// each pair accumulates the product of its row weights.
func IncreaseCombCounterWeighted(ix []int, n int, counter, weights []float64, expRemainder float64) {
	ncomb := NComb(n)
	if expRemainder <= 1 {
		for el1 := 0; el1 < len(ix)-1; el1++ {
			for el2 := el1 + 1; el2 < len(ix); el2++ {
				i, j := minMax(ix[el1], ix[el2])
				counter[PairIndex(i, j, n, ncomb)] += weights[i] * weights[j]
			}
		}
		return
	}
	for el1 := 0; el1 < len(ix)-1; el1++ {
		for el2 := el1 + 1; el2 < len(ix); el2++ {
			i, j := minMax(ix[el1], ix[el2])
			counter[PairIndex(i, j, n, ncomb)] += weights[i] * weights[j] * expRemainder
		}
	}
}

// IncreaseCombCounterMapWeighted is the map-weight form used when row weights
// are carried sparsely.
func IncreaseCombCounterMapWeighted(ix []int, n int, counter []float64, weights map[int]float64, expRemainder float64) {
	ncomb := NComb(n)
	if expRemainder <= 1 {
		for el1 := 0; el1 < len(ix)-1; el1++ {
			for el2 := el1 + 1; el2 < len(ix); el2++ {
				i, j := minMax(ix[el1], ix[el2])
				counter[PairIndex(i, j, n, ncomb)] += weights[i] * weights[j]
			}
		}
		return
	}
	for el1 := 0; el1 < len(ix)-1; el1++ {
		for el2 := el1 + 1; el2 < len(ix); el2++ {
			i, j := minMax(ix[el1], ix[el2])
			counter[PairIndex(i, j, n, ncomb)] += weights[i] * weights[j] * expRemainder
		}
	}
}

// IncreaseCombCounterInGroups accumulates only cross-group pairs when the
// rows split into a reference group (row id below splitIx) and a query group
// (at or above). ix must hold the reference group's rows first. The counter
// here is a rectangular groupA x groupB matrix, not the triangular form.
func IncreaseCombCounterInGroups(ix []int, splitIx, n int, counter []float64, expRemainder float64) {
	nGroup := 0
	for _, row := range ix {
		if row >= splitIx {
			break
		}
		nGroup++
	}
	width := n - splitIx

	if expRemainder <= 1 {
		for _, a := range ix[:nGroup] {
			for _, b := range ix[nGroup:] {
				counter[a*width+b-splitIx]++
			}
		}
		return
	}
	for _, a := range ix[:nGroup] {
		for _, b := range ix[nGroup:] {
			counter[a*width+b-splitIx] += expRemainder
		}
	}
}

// IncreaseCombCounterInGroupsWeighted is IncreaseCombCounterInGroups with
// per-row weights.
func IncreaseCombCounterInGroupsWeighted(ix []int, splitIx, n int, counter, weights []float64, expRemainder float64) {
	nGroup := 0
	for _, row := range ix {
		if row >= splitIx {
			break
		}
		nGroup++
	}
	width := n - splitIx

	if expRemainder <= 1 {
		for _, a := range ix[:nGroup] {
			for _, b := range ix[nGroup:] {
				counter[a*width+b-splitIx] += weights[a] * weights[b]
			}
		}
		return
	}
	for _, a := range ix[:nGroup] {
		for _, b := range ix[nGroup:] {
			counter[a*width+b-splitIx] += weights[a] * weights[b] * expRemainder
		}
	}
}

// TmatToDense expands a flattened triangular matrix into a symmetric n x n
// dense matrix, with the diagonal set to one (similarity form) or zero
// (distance form).
func TmatToDense(tmat, dmat []float64, n int, diagToOne bool) {
	ncomb := NComb(n)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			v := tmat[PairIndex(i, j, n, ncomb)]
			dmat[i+j*n] = v
			dmat[j+i*n] = v
		}
	}
	diag := 0.0
	if diagToOne {
		diag = 1.0
	}
	for i := 0; i < n; i++ {
		dmat[i+i*n] = diag
	}
}

func minMax(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}
