// Package tree builds single isolation trees: randomized unbalanced binary
// trees whose terminal depth measures how quickly a row separates from the
// rest of the data.
//
// The builder consumes the sampling, partition and stats packages and keeps
// all per-tree state (row-index array, column sampler, scratch buffers)
// private, so independent trees can be fitted concurrently by an outer
// driver, each with its own generator stream.
package tree

import (
	"math/rand/v2"

	"github.com/ezoic/isoforest/core/model"
	"github.com/ezoic/isoforest/data"
	"github.com/ezoic/isoforest/interrupt"
	isoErrors "github.com/ezoic/isoforest/pkg/errors"
	"github.com/ezoic/isoforest/pkg/log"
	"github.com/ezoic/isoforest/sampling"
	"github.com/ezoic/isoforest/stats"
)

// Dataset bundles the feature stores one tree is fitted on. Exactly one of
// Dense or Sparse may be set; Categ is optional. Column indices run over the
// numeric columns first, then the categorical ones.
type Dataset struct {
	Dense  *data.Numeric
	Sparse *data.CSC
	Categ  *data.Categorical
}

// NRows returns the row count of whichever store is present.
func (d *Dataset) NRows() int {
	switch {
	case d.Dense != nil:
		return d.Dense.NRows
	case d.Sparse != nil:
		return d.Sparse.NRows
	case d.Categ != nil:
		return d.Categ.NRows
	default:
		return 0
	}
}

// NumCols returns the numeric column count.
func (d *Dataset) NumCols() int {
	switch {
	case d.Dense != nil:
		return d.Dense.NCols
	case d.Sparse != nil:
		return d.Sparse.NCols
	default:
		return 0
	}
}

// CategCols returns the categorical column count.
func (d *Dataset) CategCols() int {
	if d.Categ == nil {
		return 0
	}
	return d.Categ.NCols
}

// TotalCols returns the combined column count the column sampler draws over.
func (d *Dataset) TotalCols() int { return d.NumCols() + d.CategCols() }

func (d *Dataset) validate() error {
	const op = "tree.Dataset"
	if d.Dense != nil && d.Sparse != nil {
		return isoErrors.NewValueError(op, "dense and sparse stores are mutually exclusive")
	}
	nrows := d.NRows()
	if nrows == 0 {
		return isoErrors.NewModelError(op, "no rows", isoErrors.ErrEmptyData)
	}
	if d.Sparse != nil {
		if err := d.Sparse.Validate(); err != nil {
			return err
		}
	}
	if d.Categ != nil && (d.Dense != nil || d.Sparse != nil) && d.Categ.NRows != nrows {
		return isoErrors.NewDimensionError(op, nrows, d.Categ.NRows, 0)
	}
	return nil
}

// SplitKind says how a node partitions its rows.
type SplitKind int8

const (
	// SplitNone marks a terminal node.
	SplitNone SplitKind = iota
	// SplitNumeric partitions one numeric column on a threshold.
	SplitNumeric
	// SplitCategSubset partitions one categorical column with a lookup table.
	SplitCategSubset
	// SplitCategSingle partitions on equality with one category.
	SplitCategSingle
	// SplitHyperplane partitions on a linear combination of numeric columns.
	SplitHyperplane
)

// LeafImpute carries the imputation statistics of a terminal node: per-column
// means over the node's rows for numeric columns, modal categories for
// categorical ones (-1 when a column had no observed value in the node).
type LeafImpute struct {
	NumMeans   []float64
	CategModes []int
}

// Node is one tree node in the flat arena. Child links are indices into the
// arena; -1 means terminal.
type Node struct {
	Kind      SplitKind
	ColNum    int
	Threshold float64

	// Categorical splits.
	ChosenCateg int
	Categs      []data.CategSplit
	NewGoLeft   bool

	// Hyperplane splits: columns, coefficients, and the fit-time imputation
	// value of each column for rows missing it.
	Columns []int
	Coefs   []float64
	Means   []float64

	// PctLeft is the non-missing fraction routed left at fit time; used for
	// the weighted handling of missing values and unseen categories at
	// prediction.
	PctLeft     float64
	MissGoLeft  bool
	Left, Right int

	// Score is depth plus the expected isolation depth of the rows remaining
	// at a terminal; unset (-1) on internal nodes.
	Score float64

	Impute *LeafImpute
}

type options struct {
	sampleSize    int
	maxDepth      int
	nTry          int
	ndim          int
	missingAction data.MissingAction
	newCategAct   data.NewCategAction
	rowWeights    []float64
	colWeights    []float64
	nColsPerTree  int
	byKurtosis    bool
	withImpute    bool
	token         *interrupt.Token
}

// Option configures an IsolationTree.
type Option func(*options)

// WithSampleSize sets how many rows to subsample without replacement per
// fit. Zero or a value above the row count uses every row.
func WithSampleSize(k int) Option { return func(o *options) { o.sampleSize = k } }

// WithMaxDepth fixes the depth limit. Zero derives it as ceil(log2(sample
// size)), the usual isolation-forest default.
func WithMaxDepth(d int) Option { return func(o *options) { o.maxDepth = d } }

// WithGuidedSplits makes numeric split selection gain-guided: up to nTry
// candidate columns are scored by pooled-variance gain and the best one wins.
// Zero keeps the classic uniform-random thresholds.
func WithGuidedSplits(nTry int) Option { return func(o *options) { o.nTry = nTry } }

// WithNDim enables extended splits over linear combinations of ndim numeric
// columns. Values below two keep single-variable splits.
func WithNDim(ndim int) Option { return func(o *options) { o.ndim = ndim } }

// WithMissingAction sets the missing-value policy.
func WithMissingAction(a data.MissingAction) Option {
	return func(o *options) { o.missingAction = a }
}

// WithNewCategAction sets the routing policy for categories unseen at fit
// time.
func WithNewCategAction(a data.NewCategAction) Option {
	return func(o *options) { o.newCategAct = a }
}

// WithRowWeights supplies per-row sampling weights. Invalid weights degrade
// to unweighted sampling with a logged warning.
func WithRowWeights(w []float64) Option { return func(o *options) { o.rowWeights = w } }

// WithColWeights supplies per-column sampling weights.
func WithColWeights(w []float64) Option { return func(o *options) { o.colWeights = w } }

// WithColsPerTree restricts each tree to m randomly chosen columns.
func WithColsPerTree(m int) Option { return func(o *options) { o.nColsPerTree = m } }

// WithKurtosisWeighting weights column sampling by each column's kurtosis
// over the fitted subsample, favoring columns with heavy tails.
func WithKurtosisWeighting() Option { return func(o *options) { o.byKurtosis = true } }

// WithImputation records per-leaf imputation statistics while fitting.
func WithImputation() Option { return func(o *options) { o.withImpute = true } }

// WithToken attaches a cancellation token polled at node boundaries.
func WithToken(t *interrupt.Token) Option { return func(o *options) { o.token = t } }

// IsolationTree is a single fitted isolation tree.
type IsolationTree struct {
	model.StateManager

	opts   options
	nodes  []Node
	nRows  int
	logger log.Logger
}

// NewIsolationTree creates an unfitted tree with the given options.
func NewIsolationTree(opts ...Option) *IsolationTree {
	t := &IsolationTree{
		opts: options{
			missingAction: data.MissingDivide,
			newCategAct:   data.NewCategWeighted,
		},
		logger: log.GetLoggerWithName("tree").With(log.ModelNameKey, "IsolationTree"),
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	return t
}

// Nodes exposes the fitted node arena, rooted at index 0.
func (t *IsolationTree) Nodes() []Node { return t.nodes }

// NumNodes returns the fitted node count.
func (t *IsolationTree) NumNodes() int { return len(t.nodes) }

// Fit builds the tree over a subsample of ds drawn with rng. The generator
// is owned by the caller, who derives one stream per tree for reproducible
// parallel fitting.
func (t *IsolationTree) Fit(ds *Dataset, rng *rand.Rand) (err error) {
	defer isoErrors.Recover(&err, "IsolationTree.Fit")

	if err := ds.validate(); err != nil {
		return err
	}
	if t.opts.token != nil {
		if err := t.opts.token.Check(); err != nil {
			return err
		}
	}

	nrows := ds.NRows()
	k := t.opts.sampleSize
	if k <= 0 || k > nrows {
		k = nrows
	}

	ix := make([]int, k)
	sampling.SampleRows(ix, nrows, false, t.opts.rowWeights, sampling.NewScratch(), rng)

	b := &builder{
		tree: t,
		ds:   ds,
		rng:  rng,
	}
	b.initColumnSampler(ix)
	if m := t.opts.nColsPerTree; m > 0 {
		b.cs.LeaveMCols(m, rng)
	}

	b.depthLimit = t.opts.maxDepth
	if b.depthLimit <= 0 {
		b.depthLimit = stats.Log2Ceil(k)
	}

	if _, err := b.build(ix, 0); err != nil {
		return err
	}

	t.nodes = b.nodes
	t.nRows = nrows
	t.SetFitted()
	t.logger.Debug("fitted tree",
		log.OperationKey, "Fit", "rows", k, "nodes", len(t.nodes), "depth_limit", b.depthLimit)
	return nil
}
