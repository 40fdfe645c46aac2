package sampling

import (
	"math/rand/v2"

	"github.com/ezoic/isoforest/pkg/log"
)

// ColumnSampler hands out candidate split columns across the life of one
// tree. It keeps one of two representations:
//
//   - unweighted: a permutation of column indices with a movable boundary
//     separating the live prefix from exhausted/dropped columns
//   - weighted: a WeightedTree over column weights plus a count of
//     permanently dropped columns
//
// Exactly one representation is active at a time. Switching from weighted to
// unweighted (DropWeights) is a one-way degradation triggered by numerically
// invalid weights.
//
// A ColumnSampler is private to one tree builder and is not safe for
// concurrent use.
type ColumnSampler struct {
	nCols      int
	colIndices []int
	currPos    int
	currCol    int
	lastGiven  int

	tree     *WeightedTree
	nodesBuf []float64
	nDropped int
}

// Initialize resets the sampler to an unweighted state over nCols columns,
// with every column live.
func (s *ColumnSampler) Initialize(nCols int) {
	s.nCols = nCols
	s.tree = nil
	s.nDropped = 0
	s.currCol = 0
	s.lastGiven = 0
	if cap(s.colIndices) < nCols {
		s.colIndices = make([]int, nCols)
	}
	s.colIndices = s.colIndices[:nCols]
	for i := range s.colIndices {
		s.colIndices[i] = i
	}
	s.currPos = nCols
}

// InitializeWeighted resets the sampler with per-column weights. NaN and
// negative weights are sanitized to zero; a non-positive total degrades to
// the unweighted representation with a logged warning.
func (s *ColumnSampler) InitializeWeighted(weights []float64, nCols int) {
	s.nCols = nCols
	tree, err := NewWeightedTree(weights[:nCols], s.nodesBuf)
	if err != nil {
		log.GetLoggerWithName("sampling").Warn(
			"numeric precision error with column weights, will not use them")
		s.DropWeights()
		return
	}
	s.tree = tree
	s.nodesBuf = tree.nodes
	s.nDropped = 0
	s.currCol = 0
	s.lastGiven = 0
}

// DropWeights discards the weighted representation and reinitializes as
// unweighted. One-way: the weights are gone for the rest of this tree.
func (s *ColumnSampler) DropWeights() {
	s.tree = nil
	s.Initialize(s.nCols)
}

// HasWeights reports whether the weighted representation is active.
func (s *ColumnSampler) HasWeights() bool { return s.tree != nil }

// LeaveMCols narrows the usable column set to m randomly chosen columns for
// the remainder of this tree's life. m of zero or >= the column count leaves
// the sampler untouched.
func (s *ColumnSampler) LeaveMCols(m int, rng *rand.Rand) {
	if m <= 0 || m >= s.nCols {
		return
	}

	if s.tree == nil {
		switch {
		case m <= s.nCols/4:
			// Select m into the front, one partial-shuffle step at a time.
			for s.currPos = 0; s.currPos < m; s.currPos++ {
				chosen := rng.IntN(s.nCols - s.currPos)
				s.colIndices[s.currPos+chosen], s.colIndices[s.currPos] =
					s.colIndices[s.currPos], s.colIndices[s.currPos+chosen]
			}
		case float64(m) >= (3./4.)*float64(s.nCols):
			// Keeping most columns: reverse partial Fisher-Yates is cheaper.
			for pos := s.nCols; pos > s.nCols-m; pos-- {
				chosen := rng.IntN(pos)
				s.colIndices[chosen], s.colIndices[pos-1] =
					s.colIndices[pos-1], s.colIndices[chosen]
			}
			s.currPos = m
		default:
			rng.Shuffle(s.nCols, func(i, j int) {
				s.colIndices[i], s.colIndices[j] = s.colIndices[j], s.colIndices[i]
			})
			s.currPos = m
		}
		return
	}

	// Weighted: deplete a scratch copy of the tree, reinstating only the m
	// chosen weights into the live tree, then rebuild its sums.
	currWeights := s.tree.Clone()
	s.tree.Zero()

	kept := 0
	for col := 0; col < m; col++ {
		ix, ok := currWeights.Draw(rng)
		if !ok {
			if col == 0 {
				s.DropWeights()
				return
			}
			break
		}
		s.tree.SetLeaf(ix, currWeights.Weight(ix))
		currWeights.Remove(ix)
		kept++
	}

	s.tree.Rebuild()
	s.nDropped = s.nCols - kept
}

// DropCol permanently excludes a column after it was found unsplittable.
// Dropping a column that is already gone is a no-op, and the column never
// reappears for this tree.
func (s *ColumnSampler) DropCol(col int) {
	if s.tree == nil {
		pos := -1
		if s.lastGiven < s.currPos && s.colIndices[s.lastGiven] == col {
			pos = s.lastGiven
		} else {
			for i := 0; i < s.currPos; i++ {
				if s.colIndices[i] == col {
					pos = i
					break
				}
			}
		}
		if pos < 0 {
			return
		}
		s.currPos--
		s.colIndices[pos], s.colIndices[s.currPos] = s.colIndices[s.currPos], s.colIndices[pos]
		if s.currCol > 0 {
			s.currCol--
		}
		return
	}

	if s.tree.Weight(col) == 0 {
		return
	}
	s.nDropped++
	s.tree.Remove(col)
}

// PrepareFullPass arranges a deterministic enumeration over every
// currently-available column, consumed through NextInPass. In the weighted
// case the live columns are materialized into the index array in column
// order.
func (s *ColumnSampler) PrepareFullPass() {
	s.currCol = 0

	if s.tree != nil {
		if cap(s.colIndices) < s.nCols {
			s.colIndices = make([]int, s.nCols)
		}
		s.colIndices = s.colIndices[:s.nCols]
		s.currPos = 0
		for col := 0; col < s.nCols; col++ {
			if s.tree.Weight(col) > 0 {
				s.colIndices[s.currPos] = col
				s.currPos++
			}
		}
	}
}

// SampleCol returns one candidate column without removing it from future
// draws: a uniform pick over the live prefix when unweighted, a
// non-mutating weighted draw otherwise. Returns false when no columns
// remain.
func (s *ColumnSampler) SampleCol(rng *rand.Rand) (int, bool) {
	if s.tree == nil {
		switch s.currPos {
		case 0:
			return 0, false
		case 1:
			s.lastGiven = 0
			return s.colIndices[0], true
		default:
			s.lastGiven = rng.IntN(s.currPos)
			return s.colIndices[s.lastGiven], true
		}
	}

	return s.tree.Draw(rng)
}

// NextInPass returns the next column of the enumeration prepared by
// PrepareFullPass or ShuffleRemainder. Returns false once exhausted.
func (s *ColumnSampler) NextInPass() (int, bool) {
	if s.currPos == s.currCol || s.currPos == 0 {
		return 0, false
	}
	s.lastGiven = s.currCol
	col := s.colIndices[s.currCol]
	s.currCol++
	return col, true
}

// ShuffleRemainder randomizes the order of the full-pass enumeration over
// the currently-available columns: a uniform shuffle of the live prefix when
// unweighted, a weighted shuffle (drawn against a scratch copy of the tree)
// otherwise.
func (s *ColumnSampler) ShuffleRemainder(rng *rand.Rand) {
	if s.tree == nil {
		s.PrepareFullPass()
		prefix := s.colIndices[:s.currPos]
		rng.Shuffle(len(prefix), func(i, j int) {
			prefix[i], prefix[j] = prefix[j], prefix[i]
		})
		return
	}

	if s.tree.Total() <= 0 {
		return
	}
	currWeights := s.tree.Clone()
	s.currCol = 0
	if cap(s.colIndices) < s.nCols {
		s.colIndices = make([]int, s.nCols)
	}
	s.colIndices = s.colIndices[:s.nCols]

	for s.currPos = 0; s.currPos < s.nCols; s.currPos++ {
		ix, ok := currWeights.DrawRemove(rng)
		if !ok {
			return
		}
		s.colIndices[s.currPos] = ix
	}
}

// RemainingCols reports how many columns are still eligible.
func (s *ColumnSampler) RemainingCols() int {
	if s.tree == nil {
		return s.currPos
	}
	return s.nCols - s.nDropped
}
