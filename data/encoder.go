package data

import (
	"sort"

	"github.com/ezoic/isoforest/core/model"
	isoErrors "github.com/ezoic/isoforest/pkg/errors"
)

// CategoryEncoder maps string-valued categorical features to the zero-based
// integer codes the tree engine works with. Fit learns the category
// vocabulary per column; Transform produces a Categorical store, coding
// categories unseen during Fit as -1 so the new-category policy can route
// them at prediction time.
type CategoryEncoder struct {
	model.StateManager

	// Categories is the sorted category vocabulary per feature.
	Categories [][]string

	// CategoryToIdx maps category to code per feature.
	CategoryToIdx []map[string]int

	// NFeatures is the number of input features.
	NFeatures int
}

// NewCategoryEncoder creates an unfitted encoder.
func NewCategoryEncoder() *CategoryEncoder {
	return &CategoryEncoder{}
}

// Fit learns the per-column category vocabulary from training data laid out
// as n_samples x n_features.
func (e *CategoryEncoder) Fit(data [][]string) (err error) {
	defer isoErrors.Recover(&err, "CategoryEncoder.Fit")
	if len(data) == 0 {
		return isoErrors.NewModelError("CategoryEncoder.Fit", "empty data", isoErrors.ErrEmptyData)
	}
	if len(data[0]) == 0 {
		return isoErrors.NewModelError("CategoryEncoder.Fit", "empty features", isoErrors.ErrEmptyData)
	}

	nSamples := len(data)
	nFeatures := len(data[0])

	for i, row := range data {
		if len(row) != nFeatures {
			return isoErrors.NewDimensionError("CategoryEncoder.Fit", nFeatures, len(row), i)
		}
	}

	e.NFeatures = nFeatures
	e.Categories = make([][]string, nFeatures)
	e.CategoryToIdx = make([]map[string]int, nFeatures)

	for j := 0; j < nFeatures; j++ {
		categorySet := make(map[string]bool)
		for i := 0; i < nSamples; i++ {
			if data[i][j] == "" {
				// Empty string is the missing marker, not a category.
				continue
			}
			categorySet[data[i][j]] = true
		}

		categories := make([]string, 0, len(categorySet))
		for category := range categorySet {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		e.Categories[j] = categories

		categoryToIdx := make(map[string]int, len(categories))
		for idx, category := range categories {
			categoryToIdx[category] = idx
		}
		e.CategoryToIdx[j] = categoryToIdx
	}

	e.SetFitted()
	return nil
}

// Transform encodes data with the fitted vocabulary. Unseen categories and
// empty strings come out as code -1 (missing / new).
func (e *CategoryEncoder) Transform(data [][]string) (_ *Categorical, err error) {
	defer isoErrors.Recover(&err, "CategoryEncoder.Transform")
	if !e.IsFitted() {
		return nil, isoErrors.NewNotFittedError("CategoryEncoder", "Transform")
	}
	if len(data) == 0 {
		return nil, isoErrors.NewModelError("CategoryEncoder.Transform", "empty data", isoErrors.ErrEmptyData)
	}

	nSamples := len(data)
	nFeatures := len(data[0])
	if nFeatures != e.NFeatures {
		return nil, isoErrors.NewDimensionError("CategoryEncoder.Transform", e.NFeatures, nFeatures, 1)
	}

	codes := make([]int, nSamples*nFeatures)
	for i, row := range data {
		if len(row) != nFeatures {
			return nil, isoErrors.NewDimensionError("CategoryEncoder.Transform", nFeatures, len(row), i)
		}
		for j, category := range row {
			code := -1
			if idx, exists := e.CategoryToIdx[j][category]; exists {
				code = idx
			}
			codes[j*nSamples+i] = code
		}
	}

	ncateg := make([]int, nFeatures)
	for j := range ncateg {
		ncateg[j] = len(e.Categories[j])
	}
	return &Categorical{Codes: codes, NCateg: ncateg, NRows: nSamples, NCols: nFeatures}, nil
}

// FitTransform fits the vocabulary and encodes the same data.
func (e *CategoryEncoder) FitTransform(data [][]string) (*Categorical, error) {
	if err := e.Fit(data); err != nil {
		return nil, err
	}
	return e.Transform(data)
}
