package tree

import (
	"math"

	"github.com/ezoic/isoforest/data"
	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

// IsolationDepth walks one row down the fitted tree and returns its terminal
// score: the depth of the terminal node plus the expected remaining depth of
// the rows that shared it at fit time. Missing values and unseen categories
// are routed by the tree's policies; the Divide and Weighted policies return
// the probability-weighted average over both branches.
func (t *IsolationTree) IsolationDepth(ds *Dataset, row int) (float64, error) {
	if !t.IsFitted() {
		return 0, isoErrors.NewNotFittedError("IsolationTree", "IsolationDepth")
	}
	if row < 0 || row >= ds.NRows() {
		return 0, isoErrors.NewValueError("IsolationTree.IsolationDepth", "row out of range")
	}
	return t.eval(ds, row, 0), nil
}

func (t *IsolationTree) eval(ds *Dataset, row, node int) float64 {
	nd := &t.nodes[node]
	switch nd.Kind {
	case SplitNone:
		return nd.Score

	case SplitNumeric:
		v := numericValue(ds, row, nd.ColNum)
		if math.IsNaN(v) {
			return t.evalMissing(ds, row, nd)
		}
		if v <= nd.Threshold {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)

	case SplitCategSingle:
		c := ds.Categ.At(row, nd.ColNum-ds.NumCols())
		if c < 0 {
			return t.evalMissing(ds, row, nd)
		}
		if c == nd.ChosenCateg {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)

	case SplitCategSubset:
		c := ds.Categ.At(row, nd.ColNum-ds.NumCols())
		if c < 0 {
			return t.evalMissing(ds, row, nd)
		}
		if c >= len(nd.Categs) || nd.Categs[c] == data.CategNew {
			return t.evalNewCateg(ds, row, nd)
		}
		if nd.Categs[c] == data.CategLeft {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)

	case SplitHyperplane:
		z := 0.0
		for i, col := range nd.Columns {
			if v := numericValue(ds, row, col); !math.IsNaN(v) {
				z += nd.Coefs[i] * (v - nd.Means[i])
			}
		}
		if z <= nd.Threshold {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)

	default:
		return nd.Score
	}
}

func (t *IsolationTree) evalMissing(ds *Dataset, row int, nd *Node) float64 {
	switch t.opts.missingAction {
	case data.MissingDivide:
		return nd.PctLeft*t.eval(ds, row, nd.Left) + (1-nd.PctLeft)*t.eval(ds, row, nd.Right)
	case data.MissingImpute:
		if nd.MissGoLeft {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)
	default:
		// MissingFail promised no missing values; follow the heavier branch
		// rather than corrupt the walk.
		if nd.PctLeft >= 0.5 {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)
	}
}

func (t *IsolationTree) evalNewCateg(ds *Dataset, row int, nd *Node) float64 {
	switch t.opts.newCategAct {
	case data.NewCategWeighted:
		return nd.PctLeft*t.eval(ds, row, nd.Left) + (1-nd.PctLeft)*t.eval(ds, row, nd.Right)
	default:
		// Smallest, and the fallback for Random codes beyond the fitted
		// table (in-range Random codes were pre-assigned at fit time).
		if nd.NewGoLeft {
			return t.eval(ds, row, nd.Left)
		}
		return t.eval(ds, row, nd.Right)
	}
}

func numericValue(ds *Dataset, row, col int) float64 {
	if ds.Dense != nil {
		return ds.Dense.At(row, col)
	}
	return ds.Sparse.At(row, col)
}
