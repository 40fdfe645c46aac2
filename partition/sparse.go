package partition

import (
	"math"
	"sort"

	"github.com/ezoic/isoforest/data"
)

// The sparse routines merge two sorted sequences: the node's row-index slice
// and one CSC column's stored (row, value) pairs, taken from data.CSC.ColRange.
// Rows absent from the column are implicit zeros, classified against the
// threshold as the value 0. The row-index slice must be sorted ascending on
// entry; dividers may leave it partially unsorted on return, like their dense
// counterparts.

// searchFrom returns the first position p in [from, hi) with a[p] >= target.
func searchFrom(a []int, from, hi, target int) int {
	return from + sort.SearchInts(a[from:hi], target)
}

// DivideSparse partitions a sorted ix around a numeric threshold over one
// sparse column given by its stored rows and values.
//
// When the threshold is at or above zero, implicit zeros belong to the left
// zone and get moved there ("move zeros"); below zero they belong to the
// right zone and are left where they already sit, skipping the moves.
// TODO: the move-zeros asymmetry could be removed by partitioning on '>'
// instead, moving the smaller side regardless of sign.
//
// Under a non-Fail policy, locating the stored NaNs requires the zone after
// the left boundary to be re-sorted; that re-sort is deliberate and changes
// the iteration order later columns at this node will see.
func DivideSparse(ix []int, rows []int, values []float64, threshold float64, missing data.MissingAction) (stNA, endNA, splitIx int) {
	n := len(ix)
	if len(rows) == 0 {
		// All implicit zeros: one side takes everything.
		if threshold >= 0 {
			return n, n, n
		}
		return 0, 0, 0
	}

	endCol := len(rows) - 1
	indEndCol := rows[endCol]
	moveZeros := threshold >= 0
	curr := 0
	st := 0

	i := searchFrom(ix, 0, n, rows[0])
	if moveZeros && i > 0 {
		// Everything before the column's first stored row is an implicit
		// zero, already in place on the left.
		st = i
	}

	if missing == data.MissingFail {
		if moveZeros {
			for i < n {
				if curr > endCol {
					for ; i < n; i++ {
						ix[st], ix[i] = ix[i], ix[st]
						st++
					}
					break
				}

				switch {
				case rows[curr] == ix[i]:
					if values[curr] <= threshold {
						ix[st], ix[i] = ix[i], ix[st]
						st++
					}
					if curr == endCol && i < n-1 {
						for j := i + 1; j < n; j++ {
							ix[st], ix[j] = ix[j], ix[st]
							st++
						}
					}
					if i == n-1 || curr == endCol {
						i = n
						break
					}
					i++
					curr = searchFrom(rows, curr+1, endCol+1, ix[i])
				case rows[curr] > ix[i]:
					for i < n && rows[curr] > ix[i] {
						ix[st], ix[i] = ix[i], ix[st]
						st++
						i++
					}
				default:
					curr = searchFrom(rows, curr+1, endCol+1, ix[i])
				}
			}
		} else {
			for i < n && curr <= endCol && ix[i] <= indEndCol {
				switch {
				case rows[curr] == ix[i]:
					if values[curr] <= threshold {
						ix[st], ix[i] = ix[i], ix[st]
						st++
					}
					if i == n-1 || curr == endCol {
						i = n
						break
					}
					i++
					curr = searchFrom(rows, curr+1, endCol+1, ix[i])
				case rows[curr] > ix[i]:
					i = searchFrom(ix, i+1, n, rows[curr])
				default:
					curr = searchFrom(rows, curr+1, endCol+1, ix[i])
				}
			}
		}
		return st, st, st
	}

	// Missing-aware: same merges, skipping stored NaNs and remembering
	// whether any were seen.
	hasNAs := false
	if moveZeros {
		for i < n {
			if curr > endCol {
				for ; i < n; i++ {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
				break
			}

			switch {
			case rows[curr] == ix[i]:
				if math.IsNaN(values[curr]) {
					hasNAs = true
				} else if values[curr] <= threshold {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
				if curr == endCol && i < n-1 {
					for j := i + 1; j < n; j++ {
						ix[st], ix[j] = ix[j], ix[st]
						st++
					}
				}
				if i == n-1 || curr == endCol {
					i = n
					break
				}
				i++
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			case rows[curr] > ix[i]:
				for i < n && rows[curr] > ix[i] {
					ix[st], ix[i] = ix[i], ix[st]
					st++
					i++
				}
			default:
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			}
		}
	} else {
		for i < n && curr <= endCol && ix[i] <= indEndCol {
			switch {
			case rows[curr] == ix[i]:
				if math.IsNaN(values[curr]) {
					hasNAs = true
				} else if values[curr] <= threshold {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
				if i == n-1 || curr == endCol {
					i = n
					break
				}
				i++
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			case rows[curr] > ix[i]:
				i = searchFrom(ix, i+1, n, rows[curr])
			default:
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			}
		}
	}

	stNA = st
	if hasNAs {
		// Re-sort everything past the left zone so the stored NaNs can be
		// located with a fresh merge.
		curr = 0
		sort.Ints(ix[st:])
		for i = st; i < n && curr <= endCol && ix[i] <= indEndCol; {
			switch {
			case rows[curr] == ix[i]:
				if math.IsNaN(values[curr]) {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
				if i == n-1 || curr == endCol {
					i = n
					break
				}
				i++
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			case rows[curr] > ix[i]:
				i = searchFrom(ix, i+1, n, rows[curr])
			default:
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			}
		}
	}
	return stNA, st, stNA
}

// MoveNAsToFrontSparse sorts ix and compacts rows whose stored value in the
// column is NaN or infinite to the front, returning the boundary past them.
func MoveNAsToFrontSparse(ix []int, rows []int, values []float64) int {
	sort.Ints(ix)
	if len(rows) == 0 {
		return 0
	}

	n := len(ix)
	endCol := len(rows) - 1
	indEndCol := rows[endCol]
	curr := 0
	stNonNA := 0

	for i := searchFrom(ix, 0, n, rows[0]); i < n && curr <= endCol && ix[i] <= indEndCol; {
		switch {
		case rows[curr] == ix[i]:
			if v := values[curr]; math.IsNaN(v) || math.IsInf(v, 0) {
				ix[stNonNA], ix[i] = ix[i], ix[stNonNA]
				stNonNA++
			}
			if i == n-1 || curr == endCol {
				return stNonNA
			}
			i++
			curr = searchFrom(rows, curr+1, endCol+1, ix[i])
		case rows[curr] > ix[i]:
			i = searchFrom(ix, i+1, n, rows[curr])
		default:
			curr = searchFrom(rows, curr+1, endCol+1, ix[i])
		}
	}
	return stNonNA
}

// ToDenseColumn materializes one sparse column over a sorted row-index slice
// into out, aligned by position: out[i] receives the value of row ix[i], with
// implicit zeros filled in. out must have len(ix) elements.
func ToDenseColumn(ix []int, rows []int, values []float64, out []float64) {
	for i := range out {
		out[i] = 0
	}
	if len(rows) == 0 {
		return
	}

	n := len(ix)
	endCol := len(rows) - 1
	indEndCol := rows[endCol]
	curr := 0

	for i := searchFrom(ix, 0, n, rows[0]); i < n && curr <= endCol && ix[i] <= indEndCol; {
		switch {
		case rows[curr] == ix[i]:
			out[i] = values[curr]
			if i == n-1 || curr == endCol {
				return
			}
			i++
			curr = searchFrom(rows, curr+1, endCol+1, ix[i])
		case rows[curr] > ix[i]:
			i = searchFrom(ix, i+1, n, rows[curr])
		default:
			curr = searchFrom(rows, curr+1, endCol+1, ix[i])
		}
	}
}
