package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/isoforest/data"
	"github.com/ezoic/isoforest/partition"
	"github.com/ezoic/isoforest/sampling"
	"github.com/ezoic/isoforest/stats"
)

// builder holds the per-tree mutable state of one Fit call. Scratch buffers
// are reused across nodes; nothing here is shared between trees.
type builder struct {
	tree       *IsolationTree
	ds         *Dataset
	rng        *rand.Rand
	cs         sampling.ColumnSampler
	nodes      []Node
	depthLimit int

	// scratch
	colBuf  []float64
	combBuf []float64
	categs  []data.CategSplit
}

func (b *builder) initColumnSampler(ix []int) {
	total := b.ds.TotalCols()
	switch {
	case b.tree.opts.byKurtosis:
		b.cs.InitializeWeighted(b.kurtosisWeights(ix), total)
	case b.tree.opts.colWeights != nil:
		b.cs.InitializeWeighted(b.tree.opts.colWeights, total)
	default:
		b.cs.Initialize(total)
	}
}

// kurtosisWeights computes one sampling weight per column: the column's
// kurtosis over the subsample, floored at zero. Heavy-tailed columns, where
// outliers hide, get drawn more often. Categorical codes are scored on their
// numeric codes, which is crude but cheap and monotone in imbalance.
func (b *builder) kurtosisWeights(ix []int) []float64 {
	const eps = 1e-8
	weights := make([]float64, b.ds.TotalCols())
	vals := make([]float64, 0, len(ix))

	for col := range weights {
		vals = vals[:0]
		if col < b.ds.NumCols() {
			for _, row := range ix {
				if v := b.numericAt(row, col); !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}
		} else {
			for _, row := range ix {
				if c := b.ds.Categ.At(row, col-b.ds.NumCols()); c >= 0 {
					vals = append(vals, float64(c))
				}
			}
		}

		w := eps
		if len(vals) > 3 {
			if k := stat.ExKurtosis(vals, nil) + 3; !math.IsNaN(k) && !math.IsInf(k, 0) && k > 0 {
				w = k + eps
			}
		}
		weights[col] = w
	}
	return weights
}

func (b *builder) numericAt(row, col int) float64 {
	if b.ds.Dense != nil {
		return b.ds.Dense.At(row, col)
	}
	return b.ds.Sparse.At(row, col)
}

// build grows the subtree over ix at the given depth and returns its node
// index in the arena.
func (b *builder) build(ix []int, depth int) (int, error) {
	if tok := b.tree.opts.token; tok != nil {
		if err := tok.Check(); err != nil {
			return 0, err
		}
	}

	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Score: -1})

	if len(ix) <= 1 || depth >= b.depthLimit || b.cs.RemainingCols() == 0 {
		b.makeTerminal(nodeIdx, ix, depth)
		return nodeIdx, nil
	}

	var (
		split splitResult
		ok    bool
	)
	if b.tree.opts.ndim > 1 {
		split, ok = b.tryHyperplane(ix)
	} else {
		split, ok = b.trySingleColumn(ix)
	}
	if !ok {
		b.makeTerminal(nodeIdx, ix, depth)
		return nodeIdx, nil
	}

	mid := b.routeMissing(ix, split)
	if mid == 0 || mid == len(ix) {
		// Degenerate routing (all rows to one side): stop here rather than
		// recurse forever.
		b.makeTerminal(nodeIdx, ix, depth)
		return nodeIdx, nil
	}

	b.nodes[nodeIdx] = split.node
	b.nodes[nodeIdx].Score = -1
	b.nodes[nodeIdx].Left = -1
	b.nodes[nodeIdx].Right = -1

	left, err := b.build(ix[:mid], depth+1)
	if err != nil {
		return 0, err
	}
	right, err := b.build(ix[mid:], depth+1)
	if err != nil {
		return 0, err
	}
	b.nodes[nodeIdx].Left = left
	b.nodes[nodeIdx].Right = right
	return nodeIdx, nil
}

// splitResult is a chosen split plus the zone boundaries its partitioning
// produced: left rows in ix[:stNA], missing in ix[stNA:endNA], right after.
type splitResult struct {
	node  Node
	stNA  int
	endNA int
}

// routeMissing folds the missing zone into the two branches according to the
// missing-value policy and returns the final left/right boundary.
func (b *builder) routeMissing(ix []int, s splitResult) int {
	mid := s.stNA
	for i := s.stNA; i < s.endNA; i++ {
		goLeft := false
		switch b.tree.opts.missingAction {
		case data.MissingDivide:
			goLeft = b.rng.Float64() < s.node.PctLeft
		case data.MissingImpute:
			goLeft = s.node.MissGoLeft
		}
		if goLeft {
			ix[mid], ix[i] = ix[i], ix[mid]
			mid++
		}
	}
	return mid
}

func (b *builder) makeTerminal(nodeIdx int, ix []int, depth int) {
	score := float64(depth)
	if len(ix) > 1 {
		score += stats.ExpectedAvgDepth(len(ix))
	}
	b.nodes[nodeIdx] = Node{Kind: SplitNone, Left: -1, Right: -1, Score: score}
	if b.tree.opts.withImpute {
		b.nodes[nodeIdx].Impute = b.leafImpute(ix)
	}
}

func (b *builder) leafImpute(ix []int) *LeafImpute {
	imp := &LeafImpute{}

	if n := b.ds.NumCols(); n > 0 {
		imp.NumMeans = make([]float64, n)
		for col := 0; col < n; col++ {
			imp.NumMeans[col] = b.nodeMean(ix, col)
		}
	}

	if b.ds.Categ != nil {
		imp.CategModes = make([]int, b.ds.Categ.NCols)
		counts := map[int]int{}
		for col := 0; col < b.ds.Categ.NCols; col++ {
			clear(counts)
			for _, row := range ix {
				if c := b.ds.Categ.At(row, col); c >= 0 {
					counts[c]++
				}
			}
			mode, best := -1, 0
			for c, n := range counts {
				if n > best || (n == best && c < mode) {
					mode, best = c, n
				}
			}
			imp.CategModes[col] = mode
		}
	}
	return imp
}

// nodeMean averages the non-missing values of one numeric column over the
// node's rows; NaN when every value is missing.
func (b *builder) nodeMean(ix []int, col int) float64 {
	total, n := 0.0, 0
	for _, row := range ix {
		if v := b.numericAt(row, col); !math.IsNaN(v) {
			total += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// trySingleColumn draws candidate columns until one yields a usable split,
// dropping unsplittable columns from the rest of the tree.
func (b *builder) trySingleColumn(ix []int) (splitResult, bool) {
	if b.ds.Sparse != nil {
		// The sparse scans and dividers merge against a sorted slice.
		sort.Ints(ix)
	}

	if b.tree.opts.nTry > 0 {
		if s, ok := b.tryGuided(ix); ok {
			return s, ok
		}
	}

	for {
		if b.ds.Sparse != nil {
			// A failed attempt below leaves the slice permuted.
			sort.Ints(ix)
		}
		col, ok := b.cs.SampleCol(b.rng)
		if !ok {
			return splitResult{}, false
		}

		var (
			s     splitResult
			valid bool
		)
		if col < b.ds.NumCols() {
			s, valid = b.tryNumericUniform(ix, col)
		} else {
			s, valid = b.tryCateg(ix, col)
		}
		if valid {
			return s, true
		}
		b.cs.DropCol(col)
	}
}

func (b *builder) tryNumericUniform(ix []int, col int) (splitResult, bool) {
	missing := b.tree.opts.missingAction

	var xmin, xmax float64
	var unsplittable bool
	if b.ds.Dense != nil {
		xmin, xmax, unsplittable = partition.GetRangeDense(ix, b.ds.Dense.Column(col), missing)
	} else {
		rows, values := b.ds.Sparse.ColRange(col)
		xmin, xmax, unsplittable = partition.GetRangeSparse(ix, rows, values, missing)
	}
	if unsplittable {
		return splitResult{}, false
	}

	threshold := xmin + b.rng.Float64()*(xmax-xmin)
	return b.applyNumeric(ix, col, threshold)
}

func (b *builder) applyNumeric(ix []int, col int, threshold float64) (splitResult, bool) {
	missing := b.tree.opts.missingAction

	var stNA, endNA int
	if b.ds.Dense != nil {
		stNA, endNA, _ = partition.DivideNumeric(ix, b.ds.Dense.Column(col), threshold, missing)
	} else {
		rows, values := b.ds.Sparse.ColRange(col)
		stNA, endNA, _ = partition.DivideSparse(ix, rows, values, threshold, missing)
	}

	nLeft := stNA
	nRight := len(ix) - endNA
	if nLeft == 0 || nRight == 0 {
		return splitResult{}, false
	}

	node := Node{
		Kind:      SplitNumeric,
		ColNum:    col,
		Threshold: threshold,
		PctLeft:   float64(nLeft) / float64(nLeft+nRight),
	}
	if missing == data.MissingImpute {
		node.MissGoLeft = b.nodeMean(ix, col) <= threshold
	}
	return splitResult{node: node, stNA: stNA, endNA: endNA}, true
}

// tryCateg selects a categorical split on the column: equality with one
// present category when only two are present, otherwise a random subset
// assignment retried until both branches are non-empty.
func (b *builder) tryCateg(ix []int, col int) (splitResult, bool) {
	categCol := col - b.ds.NumCols()
	x := b.ds.Categ.Column(categCol)
	ncat := b.ds.Categ.NCateg[categCol]
	if ncat < 2 {
		return splitResult{}, false
	}

	if cap(b.categs) < ncat {
		b.categs = make([]data.CategSplit, ncat)
	}
	categs := b.categs[:ncat]
	npresent, unsplittable := partition.GetCategs(ix, x, ncat, categs)
	if unsplittable {
		return splitResult{}, false
	}

	missing := b.tree.opts.missingAction

	if npresent == 2 {
		// Equality fast path: pick one of the two present categories.
		chosen := -1
		skip := b.rng.IntN(2)
		for c := 0; c < ncat; c++ {
			if categs[c] == data.CategLeft {
				if skip == 0 {
					chosen = c
					break
				}
				skip--
			}
		}
		stNA, endNA, _ := partition.DivideCategSingle(ix, x, chosen, missing)
		nLeft, nRight := stNA, len(ix)-endNA
		if nLeft == 0 || nRight == 0 {
			return splitResult{}, false
		}
		node := Node{
			Kind:        SplitCategSingle,
			ColNum:      col,
			ChosenCateg: chosen,
			PctLeft:     float64(nLeft) / float64(nLeft+nRight),
		}
		if missing == data.MissingImpute {
			node.MissGoLeft = nLeft >= nRight
		}
		return splitResult{node: node, stNA: stNA, endNA: endNA}, true
	}

	// Random subset over the present categories, keeping at least one on
	// each side.
	table := make([]data.CategSplit, ncat)
	for attempt := 0; ; attempt++ {
		if attempt == 20 {
			return splitResult{}, false
		}
		nLeftCat, nRightCat := 0, 0
		for c := 0; c < ncat; c++ {
			switch {
			case categs[c] != data.CategLeft:
				table[c] = data.CategNew
			case b.rng.Float64() < 0.5:
				table[c] = data.CategLeft
				nLeftCat++
			default:
				table[c] = data.CategRight
				nRightCat++
			}
		}
		if nLeftCat > 0 && nRightCat > 0 {
			break
		}
	}
	if b.tree.opts.newCategAct == data.NewCategRandom {
		// Pre-assign absent categories so prediction stays deterministic.
		for c := range table {
			if table[c] == data.CategNew {
				if b.rng.Float64() < 0.5 {
					table[c] = data.CategLeft
				} else {
					table[c] = data.CategRight
				}
			}
		}
	}

	stNA, endNA, _ := partition.DivideCategSubset(ix, x, table, missing)
	nLeft, nRight := stNA, len(ix)-endNA
	if nLeft == 0 || nRight == 0 {
		return splitResult{}, false
	}
	node := Node{
		Kind:      SplitCategSubset,
		ColNum:    col,
		Categs:    table,
		PctLeft:   float64(nLeft) / float64(nLeft+nRight),
		NewGoLeft: nLeft < nRight,
	}
	if missing == data.MissingImpute {
		node.MissGoLeft = nLeft >= nRight
	}
	return splitResult{node: node, stNA: stNA, endNA: endNA}, true
}
