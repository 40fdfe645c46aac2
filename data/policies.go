// Package data defines the feature stores the tree engine reads — dense
// column-major numeric, sparse CSC numeric, and integer-coded categorical —
// together with the missing-value and new-category policies that control
// split evaluation.
//
// Stores never copy row data once built; the engine works through row-index
// indirection over these columns. All stores are read-only during fitting
// and scoring and may be shared across worker goroutines without locking.
package data

// MissingAction controls how missing feature values are handled during split
// evaluation. It is fixed per model for the life of a fit.
type MissingAction int

const (
	// MissingFail treats missing values as a caller contract violation: the
	// caller guarantees none reach the engine, and partitioners take the
	// cheaper single-pass path.
	MissingFail MissingAction = iota
	// MissingDivide sends rows with missing values down both branches with
	// proportional weights.
	MissingDivide
	// MissingImpute assigns rows with missing values to the branch chosen by
	// the per-node imputation statistics.
	MissingImpute
)

func (a MissingAction) String() string {
	switch a {
	case MissingFail:
		return "fail"
	case MissingDivide:
		return "divide"
	case MissingImpute:
		return "impute"
	default:
		return "unknown"
	}
}

// NewCategAction controls the routing of categories encountered at
// prediction time that were not seen during fitting.
type NewCategAction int

const (
	// NewCategWeighted routes unseen categories like missing values, with
	// proportional weights.
	NewCategWeighted NewCategAction = iota
	// NewCategSmallest sends unseen categories with the branch that had the
	// smallest count during fitting.
	NewCategSmallest
	// NewCategRandom routes unseen categories to a uniformly random branch.
	NewCategRandom
)

func (a NewCategAction) String() string {
	switch a {
	case NewCategWeighted:
		return "weighted"
	case NewCategSmallest:
		return "smallest"
	case NewCategRandom:
		return "random"
	default:
		return "unknown"
	}
}

// CategSplit is the lookup-table encoding of a categorical subset split:
// one entry per category code.
type CategSplit int8

const (
	// CategRight routes the category to the right branch.
	CategRight CategSplit = 0
	// CategLeft routes the category to the left branch.
	CategLeft CategSplit = 1
	// CategNew marks a category absent from the node's fitting rows; the
	// NewCategAction policy decides its branch at prediction time.
	CategNew CategSplit = -1
)
