package sampling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/isoforest/sampling"
)

func assertValidSampleNoReplacement(t *testing.T, ixArr []int, nrows int) {
	t.Helper()
	seen := map[int]bool{}
	for _, ix := range ixArr {
		require.GreaterOrEqual(t, ix, 0)
		require.Less(t, ix, nrows)
		require.False(t, seen[ix], "row %d sampled twice", ix)
		seen[ix] = true
	}
}

func TestSampleRowsFullTakeIsIdentity(t *testing.T) {
	rng := newRng(11)
	scratch := sampling.NewScratch()
	ixArr := make([]int, 100)

	sampling.SampleRows(ixArr, 100, false, nil, scratch, rng)

	for i, ix := range ixArr {
		require.Equal(t, i, ix, "k == n must produce the identity permutation")
	}
}

func TestSampleRowsSingleUniform(t *testing.T) {
	rng := newRng(12)
	scratch := sampling.NewScratch()

	counts := make([]int, 100)
	const trials = 100_000
	ixArr := make([]int, 1)
	for i := 0; i < trials; i++ {
		sampling.SampleRows(ixArr, 100, false, nil, scratch, rng)
		counts[ixArr[0]]++
	}

	// Expected 1000 per bucket; allow generous slack for a sanity check.
	for row, c := range counts {
		assert.Greater(t, c, 700, "row %d undersampled", row)
		assert.Less(t, c, 1300, "row %d oversampled", row)
	}
}

// Each dispatch branch must produce a valid sample without replacement.
func TestSampleRowsDispatchBranches(t *testing.T) {
	cases := []struct {
		name   string
		nrows  int
		ntake  int
	}{
		{"full shuffle (k >= 3n/4)", 100, 80},
		{"partial fisher-yates (n/2 <= k < 3n/4)", 100, 60},
		{"floyd with bool array (k/n > 1/20)", 100, 10},
		{"floyd with set (k/n <= 1/20)", 10_000, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := newRng(13)
			scratch := sampling.NewScratch()
			ixArr := make([]int, tc.ntake)
			sampling.SampleRows(ixArr, tc.nrows, false, nil, scratch, rng)
			assertValidSampleNoReplacement(t, ixArr, tc.nrows)
		})
	}
}

func TestSampleRowsWeightedWithoutReplacement(t *testing.T) {
	rng := newRng(14)
	scratch := sampling.NewScratch()
	weights := []float64{1, 1, 1, 1000, 1, 1, 1, 1, 1, 1}

	hit := 0
	const trials = 2000
	ixArr := make([]int, 3)
	for i := 0; i < trials; i++ {
		sampling.SampleRows(ixArr, 10, false, weights, scratch, rng)
		assertValidSampleNoReplacement(t, ixArr, 10)
		for _, ix := range ixArr {
			if ix == 3 {
				hit++
			}
		}
	}
	assert.Greater(t, float64(hit)/trials, 0.99,
		"dominant weight should be in nearly every sample")
}

func TestSampleRowsWeightedDegenerateFallsBack(t *testing.T) {
	rng := newRng(15)
	scratch := sampling.NewScratch()
	weights := make([]float64, 50) // all zero: invalid

	ixArr := make([]int, 40)
	sampling.SampleRows(ixArr, 50, false, weights, scratch, rng)
	assertValidSampleNoReplacement(t, ixArr, 50)
}

func TestSampleRowsWithReplacementLargerThanPopulation(t *testing.T) {
	rng := newRng(16)
	scratch := sampling.NewScratch()

	ixArr := make([]int, 500)
	sampling.SampleRows(ixArr, 10, true, nil, scratch, rng)
	for _, ix := range ixArr {
		require.GreaterOrEqual(t, ix, 0)
		require.Less(t, ix, 10)
	}
}

func TestSampleRowsWithReplacementWeighted(t *testing.T) {
	rng := newRng(17)
	scratch := sampling.NewScratch()
	weights := []float64{0, 0, 1, 0}

	ixArr := make([]int, 200)
	sampling.SampleRows(ixArr, 4, true, weights, scratch, rng)
	for _, ix := range ixArr {
		require.Equal(t, 2, ix, "only the positively weighted row may be drawn")
	}
}

func TestSampleRowsReproducible(t *testing.T) {
	a := make([]int, 30)
	b := make([]int, 30)

	sampling.SampleRows(a, 100, false, nil, sampling.NewScratch(), newRng(99))
	sampling.SampleRows(b, 100, false, nil, sampling.NewScratch(), newRng(99))

	assert.Equal(t, a, b, "same generator stream must reproduce the sample")
}
