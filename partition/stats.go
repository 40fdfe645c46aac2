package partition

import (
	"math"

	"github.com/ezoic/isoforest/data"
)

// GetRangeDense scans a dense column over ix for its min and max.
// unsplittable reports a constant, empty, or all-NaN range, telling the split
// search to skip the column.
func GetRangeDense(ix []int, x []float64, missing data.MissingAction) (xmin, xmax float64, unsplittable bool) {
	xmin = math.Inf(1)
	xmax = math.Inf(-1)

	if missing == data.MissingFail {
		for _, row := range ix {
			if x[row] < xmin {
				xmin = x[row]
			}
			if x[row] > xmax {
				xmax = x[row]
			}
		}
	} else {
		// Missing values are skipped; an all-NaN slice leaves the seed
		// infinities in place and reports unsplittable below.
		for _, row := range ix {
			v := x[row]
			if math.IsNaN(v) {
				continue
			}
			if v < xmin {
				xmin = v
			}
			if v > xmax {
				xmax = v
			}
		}
	}

	unsplittable = xmin == xmax || (math.IsInf(xmin, 1) && math.IsInf(xmax, -1))
	return xmin, xmax, unsplittable
}

// GetRangeSparse scans one sparse column over a sorted ix for its min and
// max, folding in zero whenever any row of the slice is absent from the
// column's stored entries.
func GetRangeSparse(ix []int, rows []int, values []float64, missing data.MissingAction) (xmin, xmax float64, unsplittable bool) {
	xmin = math.Inf(1)
	xmax = math.Inf(-1)
	n := len(ix)

	if len(rows) == 0 || rows[0] > ix[n-1] || ix[0] > rows[len(rows)-1] {
		// No overlap with the stored entries: all zeros, constant.
		return xmin, xmax, true
	}

	endCol := len(rows) - 1
	indEndCol := rows[endCol]

	if len(rows) < n || rows[0] > ix[0] || indEndCol < ix[n-1] {
		xmin = 0
		xmax = 0
	}

	curr := 0
	nmatches := 0

	if missing == data.MissingFail {
		for i := searchFrom(ix, 0, n, rows[0]); i < n && curr <= endCol && ix[i] <= indEndCol; {
			switch {
			case rows[curr] == ix[i]:
				nmatches++
				if values[curr] < xmin {
					xmin = values[curr]
				}
				if values[curr] > xmax {
					xmax = values[curr]
				}
				if i == n-1 || curr == endCol {
					i = n
					break
				}
				i++
				curr = searchFrom(rows, curr, endCol+1, ix[i])
			case rows[curr] > ix[i]:
				i = searchFrom(ix, i+1, n, rows[curr])
			default:
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			}
		}
	} else {
		for i := searchFrom(ix, 0, n, rows[0]); i < n && curr <= endCol && ix[i] <= indEndCol; {
			switch {
			case rows[curr] == ix[i]:
				nmatches++
				// Stored NaNs are missing values and do not bound the range.
				if v := values[curr]; !math.IsNaN(v) {
					if v < xmin {
						xmin = v
					}
					if v > xmax {
						xmax = v
					}
				}
				if i == n-1 || curr == endCol {
					i = n
					break
				}
				i++
				curr = searchFrom(rows, curr, endCol+1, ix[i])
			case rows[curr] > ix[i]:
				i = searchFrom(ix, i+1, n, rows[curr])
			default:
				curr = searchFrom(rows, curr+1, endCol+1, ix[i])
			}
		}
	}

	if nmatches < n {
		if xmin > 0 {
			xmin = 0
		}
		if xmax < 0 {
			xmax = 0
		}
	}
	unsplittable = xmin == xmax || (math.IsInf(xmin, 1) && math.IsInf(xmax, -1))
	return xmin, xmax, unsplittable
}

// GetCategs marks which of a column's ncat categories are present over ix,
// writing CategLeft for present and CategNew for absent into categs (which
// must have ncat entries). unsplittable reports fewer than two present
// categories.
func GetCategs(ix []int, x []int, ncat int, categs []data.CategSplit) (npresent int, unsplittable bool) {
	for i := 0; i < ncat; i++ {
		categs[i] = data.CategNew
	}
	for _, row := range ix {
		if x[row] >= 0 {
			categs[x[row]] = data.CategLeft
		}
	}
	for i := 0; i < ncat; i++ {
		if categs[i] == data.CategLeft {
			npresent++
		}
	}
	return npresent, npresent < 2
}
