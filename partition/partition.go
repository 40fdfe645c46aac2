// Package partition rearranges row-index slices in place around a chosen
// split, for dense numeric, sparse CSC numeric, and categorical columns, and
// computes the per-column statistics (value range, present categories) the
// split search needs.
//
// Every routine operates on a node's row-index slice ix, an indirection layer
// over the feature store: values are read through ix, never copied or moved.
// All dividers guarantee that the output slice is a permutation of the input,
// with boundaries reported as counts from the start of the slice.
//
// Under data.MissingFail the caller guarantees no missing values reach these
// routines and dividers take a cheaper single-pass path, reporting only the
// left/right boundary. Under any other policy the result is three contiguous
// zones: rows going left in ix[:stNA], rows with missing values in
// ix[stNA:endNA], rows going right in ix[endNA:].
package partition

import (
	"math"

	"github.com/ezoic/isoforest/data"
)

// DivideHyperplane compacts rows whose combined hyperplane value is at or
// below the threshold to the front of ix. values[i] is the hyperplane value
// of the row at position i; missing values must already be imputed into the
// combination. Returns the left/right boundary.
func DivideHyperplane(ix []int, values []float64, threshold float64) int {
	st := 0
	for i := range ix {
		if values[i] <= threshold {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	return st
}

// DivideNumeric partitions ix around a numeric threshold over a dense column
// x indexed by row id.
//
// Under MissingFail a single pass moves rows with value <= threshold to the
// front; all three results equal the boundary. Otherwise two passes build the
// left / missing / right zones and splitIx equals stNA.
func DivideNumeric(ix []int, x []float64, threshold float64, missing data.MissingAction) (stNA, endNA, splitIx int) {
	st := 0

	if missing == data.MissingFail {
		for i := range ix {
			if x[ix[i]] <= threshold {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
		return st, st, st
	}

	for i := range ix {
		if v := x[ix[i]]; !math.IsNaN(v) && v <= threshold {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	stNA = st

	for i := st; i < len(ix); i++ {
		if math.IsNaN(x[ix[i]]) {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	return stNA, st, stNA
}

// DivideCategSubset partitions ix with a category lookup table: rows whose
// category maps to CategLeft go left. Negative codes are missing.
func DivideCategSubset(ix []int, x []int, split []data.CategSplit, missing data.MissingAction) (stNA, endNA, splitIx int) {
	st := 0

	if missing == data.MissingFail {
		for i := range ix {
			if split[x[ix[i]]] == data.CategLeft {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
		return st, st, st
	}

	for i := range ix {
		if c := x[ix[i]]; c >= 0 && split[c] == data.CategLeft {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	stNA = st

	for i := st; i < len(ix); i++ {
		if x[ix[i]] < 0 {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	return stNA, st, stNA
}

// DivideCategSubsetPredict is the prediction-time variant of
// DivideCategSubset: codes at or above ncat, or marked CategNew in the
// table, belong to categories unseen during fitting and are routed by the
// new-category policy. moveNewToLeft says which branch was smaller at fitting
// time when the policy is NewCategSmallest.
func DivideCategSubsetPredict(ix []int, x []int, split []data.CategSplit, ncat int,
	missing data.MissingAction, newCat data.NewCategAction, moveNewToLeft bool) (stNA, endNA, splitIx int) {
	st := 0

	if missing == data.MissingFail && newCat != data.NewCategWeighted {
		if newCat == data.NewCategSmallest && moveNewToLeft {
			for i := range ix {
				if c := x[ix[i]]; c >= ncat || split[c] == data.CategLeft {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
			}
		} else {
			for i := range ix {
				if split[x[ix[i]]] == data.CategLeft {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
			}
		}
		return st, st, st
	}

	for i := range ix {
		if c := x[ix[i]]; c >= 0 && c < ncat && split[c] == data.CategLeft {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	stNA = st

	if newCat == data.NewCategWeighted {
		// Unseen categories travel with the missing zone.
		for i := st; i < len(ix); i++ {
			if c := x[ix[i]]; c < 0 || c >= ncat || split[c] == data.CategNew {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
	} else {
		for i := st; i < len(ix); i++ {
			if x[ix[i]] < 0 {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
	}
	return stNA, st, stNA
}

// DivideCategSingle partitions ix with the fast path for splits of the form
// "is it category k": equality replaces the table lookup.
func DivideCategSingle(ix []int, x []int, splitCateg int, missing data.MissingAction) (stNA, endNA, splitIx int) {
	st := 0

	if missing == data.MissingFail {
		for i := range ix {
			if x[ix[i]] == splitCateg {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
		return st, st, st
	}

	for i := range ix {
		if x[ix[i]] == splitCateg {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	stNA = st

	for i := st; i < len(ix); i++ {
		if x[ix[i]] < 0 {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	return stNA, st, stNA
}

// DivideCategBinary partitions ix for subset splits that reduced to exactly
// two fitted categories: category 0 goes left, category 1 goes right, and
// higher codes are unseen, routed by the new-category policy.
func DivideCategBinary(ix []int, x []int, missing data.MissingAction,
	newCat data.NewCategAction, moveNewToLeft bool) (stNA, endNA, splitIx int) {
	st := 0
	newLeft := newCat == data.NewCategSmallest && moveNewToLeft

	if missing == data.MissingFail {
		if newLeft {
			for i := range ix {
				if c := x[ix[i]]; c == 0 || c > 1 {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
			}
		} else {
			for i := range ix {
				if x[ix[i]] == 0 {
					ix[st], ix[i] = ix[i], ix[st]
					st++
				}
			}
		}
		return st, st, st
	}

	if newLeft {
		for i := range ix {
			if c := x[ix[i]]; c == 0 || c > 1 {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
	} else {
		for i := range ix {
			if x[ix[i]] == 0 {
				ix[st], ix[i] = ix[i], ix[st]
				st++
			}
		}
	}
	stNA = st

	for i := st; i < len(ix); i++ {
		if x[ix[i]] < 0 {
			ix[st], ix[i] = ix[i], ix[st]
			st++
		}
	}
	return stNA, st, stNA
}

// MoveNAsToFront compacts rows with missing values (NaN or infinite) in a
// dense column to the front of ix, returning the boundary past them.
func MoveNAsToFront(ix []int, x []float64) int {
	stNonNA := 0
	for i := range ix {
		if v := x[ix[i]]; math.IsNaN(v) || math.IsInf(v, 0) {
			ix[stNonNA], ix[i] = ix[i], ix[stNonNA]
			stNonNA++
		}
	}
	return stNonNA
}

// MoveNAsToFrontCateg compacts rows with negative (missing) category codes
// to the front of ix, returning the boundary past them.
func MoveNAsToFrontCateg(ix []int, x []int) int {
	stNonNA := 0
	for i := range ix {
		if x[ix[i]] < 0 {
			ix[stNonNA], ix[i] = ix[i], ix[stNonNA]
			stNonNA++
		}
	}
	return stNonNA
}

// CenterNAs relocates the missing block ix[stLeft:st] to end just before
// currPos, swapping element by element, and returns the new start of the
// relocated block. Used after a gain-guided split placed the missing zone at
// the front.
func CenterNAs(ix []int, stLeft, st, currPos int) int {
	for i := stLeft; i < st; i++ {
		currPos--
		ix[currPos], ix[i] = ix[i], ix[currPos]
	}
	return currPos
}

// CalculateSumWeights totals the weights of the rows in ix, reading from the
// slice form when present, else the map form. Returns -Inf at depth zero or
// when no weights are carried, which callers treat as "use the plain count".
func CalculateSumWeights(ix []int, currDepth int, weightsArr []float64, weightsMap map[int]float64) float64 {
	switch {
	case currDepth > 0 && len(weightsArr) > 0:
		total := 0.0
		for _, row := range ix {
			total += weightsArr[row]
		}
		return total
	case currDepth > 0 && len(weightsMap) > 0:
		total := 0.0
		for _, row := range ix {
			total += weightsMap[row]
		}
		return total
	default:
		return math.Inf(-1)
	}
}
