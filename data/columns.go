package data

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

// Numeric is a dense column-major numeric feature store. Missing values are
// encoded as NaN.
type Numeric struct {
	// ColMajor holds the values column by column: element (i, j) lives at
	// ColMajor[j*NRows+i].
	ColMajor []float64
	NRows    int
	NCols    int
}

// NewNumeric wraps a column-major backing slice. The slice is retained, not
// copied.
func NewNumeric(colMajor []float64, nrows, ncols int) (*Numeric, error) {
	if nrows <= 0 || ncols <= 0 {
		return nil, isoErrors.NewModelError("data.NewNumeric", "empty data", isoErrors.ErrEmptyData)
	}
	if len(colMajor) != nrows*ncols {
		return nil, isoErrors.NewDimensionError("data.NewNumeric", nrows*ncols, len(colMajor), 0)
	}
	return &Numeric{ColMajor: colMajor, NRows: nrows, NCols: ncols}, nil
}

// FromDense copies a gonum row-major dense matrix into column-major layout.
func FromDense(m mat.Matrix) (*Numeric, error) {
	nrows, ncols := m.Dims()
	if nrows == 0 || ncols == 0 {
		return nil, isoErrors.NewModelError("data.FromDense", "empty matrix", isoErrors.ErrEmptyData)
	}
	colMajor := make([]float64, nrows*ncols)
	for j := 0; j < ncols; j++ {
		col := colMajor[j*nrows : (j+1)*nrows]
		for i := 0; i < nrows; i++ {
			col[i] = m.At(i, j)
		}
	}
	return &Numeric{ColMajor: colMajor, NRows: nrows, NCols: ncols}, nil
}

// Column returns the backing slice of column j. The caller must not modify it.
func (d *Numeric) Column(j int) []float64 {
	return d.ColMajor[j*d.NRows : (j+1)*d.NRows]
}

// At returns element (i, j).
func (d *Numeric) At(i, j int) float64 {
	return d.ColMajor[j*d.NRows+i]
}

// HasMissing reports whether any column contains a NaN.
func (d *Numeric) HasMissing() bool {
	for _, v := range d.ColMajor {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// CSC is a sparse numeric feature store in compressed-sparse-column format.
// Absent entries are implicit zeros; explicitly stored NaN values are
// missing. Row indices within each column must be strictly increasing.
type CSC struct {
	Values  []float64
	Indices []int
	Indptr  []int
	NRows   int
	NCols   int
}

// NewCSC wraps CSC arrays after validating their structure. The slices are
// retained, not copied.
func NewCSC(values []float64, indices, indptr []int, nrows, ncols int) (*CSC, error) {
	s := &CSC{Values: values, Indices: indices, Indptr: indptr, NRows: nrows, NCols: ncols}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants of the CSC arrays: indptr has
// ncols+1 monotonically non-decreasing entries covering the value array, and
// row indices are strictly increasing within each column and within range.
func (s *CSC) Validate() error {
	const op = "data.CSC.Validate"
	if s.NRows <= 0 || s.NCols <= 0 {
		return isoErrors.NewModelError(op, "empty data", isoErrors.ErrEmptyData)
	}
	if len(s.Indptr) != s.NCols+1 {
		return isoErrors.NewDimensionError(op, s.NCols+1, len(s.Indptr), 0)
	}
	if s.Indptr[0] != 0 {
		return isoErrors.NewValidationError("indptr", "must start at zero", s.Indptr[0])
	}
	if len(s.Values) != len(s.Indices) {
		return isoErrors.NewDimensionError(op, len(s.Values), len(s.Indices), 0)
	}
	if s.Indptr[s.NCols] != len(s.Indices) {
		return isoErrors.NewValidationError("indptr", "last entry must equal nnz", s.Indptr[s.NCols])
	}
	for j := 0; j < s.NCols; j++ {
		st, en := s.Indptr[j], s.Indptr[j+1]
		if en < st {
			return isoErrors.NewValidationError("indptr", "must be non-decreasing", j)
		}
		prev := -1
		for k := st; k < en; k++ {
			row := s.Indices[k]
			if row < 0 || row >= s.NRows {
				return isoErrors.NewValidationError("indices", "row index out of range", row)
			}
			if row <= prev {
				return isoErrors.NewValidationError("indices", "row indices must be strictly increasing within a column", row)
			}
			prev = row
		}
	}
	return nil
}

// At returns element (i, j) via binary search over column j's stored rows.
// Absent entries are zero.
func (s *CSC) At(i, j int) float64 {
	st, en := s.Indptr[j], s.Indptr[j+1]
	rows := s.Indices[st:en]
	k := sort.SearchInts(rows, i)
	if k < len(rows) && rows[k] == i {
		return s.Values[st+k]
	}
	return 0
}

// ColRange returns the stored row indices and values of column j.
func (s *CSC) ColRange(j int) (rows []int, values []float64) {
	st, en := s.Indptr[j], s.Indptr[j+1]
	return s.Indices[st:en], s.Values[st:en]
}

// ToDense materializes the requested rows of every sparse column into a dense
// column-major buffer of len(ixArr) rows. Used by linear-combination splits,
// which need random access across several columns at once.
func (s *CSC) ToDense(ixArr []int, out []float64) []float64 {
	n := len(ixArr)
	if cap(out) < n*s.NCols {
		out = make([]float64, n*s.NCols)
	}
	out = out[:n*s.NCols]
	for i := range out {
		out[i] = 0
	}
	for j := 0; j < s.NCols; j++ {
		col := out[j*n : (j+1)*n]
		rows, values := s.ColRange(j)
		if len(rows) == 0 {
			continue
		}
		for i, row := range ixArr {
			k := sort.SearchInts(rows, row)
			if k < len(rows) && rows[k] == row {
				col[i] = values[k]
			}
		}
	}
	return out
}

// Categorical is an integer-coded categorical feature store, column-major.
// Codes are zero-based per column; negative codes are missing.
type Categorical struct {
	// Codes holds the category code of element (i, j) at Codes[j*NRows+i].
	Codes []int
	// NCateg is the number of distinct categories per column; valid codes for
	// column j are [0, NCateg[j]).
	NCateg []int
	NRows  int
	NCols  int
}

// NewCategorical wraps a column-major code slice, deriving per-column
// category counts from the maximum observed code.
func NewCategorical(codes []int, nrows, ncols int) (*Categorical, error) {
	if nrows <= 0 || ncols <= 0 {
		return nil, isoErrors.NewModelError("data.NewCategorical", "empty data", isoErrors.ErrEmptyData)
	}
	if len(codes) != nrows*ncols {
		return nil, isoErrors.NewDimensionError("data.NewCategorical", nrows*ncols, len(codes), 0)
	}
	ncateg := make([]int, ncols)
	for j := 0; j < ncols; j++ {
		maxCode := -1
		for _, c := range codes[j*nrows : (j+1)*nrows] {
			if c > maxCode {
				maxCode = c
			}
		}
		ncateg[j] = maxCode + 1
	}
	return &Categorical{Codes: codes, NCateg: ncateg, NRows: nrows, NCols: ncols}, nil
}

// Column returns the backing code slice of column j. The caller must not
// modify it.
func (c *Categorical) Column(j int) []int {
	return c.Codes[j*c.NRows : (j+1)*c.NRows]
}

// At returns the code of element (i, j).
func (c *Categorical) At(i, j int) int {
	return c.Codes[j*c.NRows+i]
}
