package partition_test

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/isoforest/data"
	"github.com/ezoic/isoforest/partition"
)

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// zones splits ix by the reported boundaries into left/missing/right sets.
func zones(ix []int, stNA, endNA int) (left, missing, right map[int]bool) {
	left, missing, right = map[int]bool{}, map[int]bool{}, map[int]bool{}
	for _, r := range ix[:stNA] {
		left[r] = true
	}
	for _, r := range ix[stNA:endNA] {
		missing[r] = true
	}
	for _, r := range ix[endNA:] {
		right[r] = true
	}
	return left, missing, right
}

func assertPermutation(t *testing.T, ix []int, want []int) {
	t.Helper()
	got := append([]int(nil), ix...)
	expect := append([]int(nil), want...)
	sort.Ints(got)
	sort.Ints(expect)
	require.Equal(t, expect, got, "slice must remain a permutation of its input")
}

func TestDivideNumericFail(t *testing.T) {
	x := []float64{5, 2, 1, 7, 8}
	ix := []int{0, 1, 2, 3, 4}

	_, _, splitIx := partition.DivideNumeric(ix, x, 4, data.MissingFail)

	assert.Equal(t, 2, splitIx)
	left, _, right := zones(ix, splitIx, splitIx)
	assert.Equal(t, map[int]bool{1: true, 2: true}, left)
	assert.Equal(t, map[int]bool{0: true, 3: true, 4: true}, right)
	assertPermutation(t, ix, []int{0, 1, 2, 3, 4})
}

func TestDivideNumericThreeZones(t *testing.T) {
	x := []float64{5, math.NaN(), 1, math.NaN(), 8}
	ix := []int{0, 1, 2, 3, 4}

	stNA, endNA, _ := partition.DivideNumeric(ix, x, 4, data.MissingDivide)

	assert.Equal(t, 1, stNA)
	assert.Equal(t, 3, endNA)
	left, missing, right := zones(ix, stNA, endNA)
	assert.Equal(t, map[int]bool{2: true}, left)
	assert.Equal(t, map[int]bool{1: true, 3: true}, missing)
	assert.Equal(t, map[int]bool{0: true, 4: true}, right)
	assertPermutation(t, ix, []int{0, 1, 2, 3, 4})
}

func TestDivideHyperplane(t *testing.T) {
	ix := []int{10, 11, 12, 13}
	values := []float64{0.5, -1, 2, -3}

	boundary := partition.DivideHyperplane(ix, values, 0)

	assert.Equal(t, 2, boundary)
	assert.ElementsMatch(t, []int{11, 13}, ix[:boundary])
	assertPermutation(t, ix, []int{10, 11, 12, 13})
}

func TestDivideCategSubset(t *testing.T) {
	// Categories: 0 left, 1 right, 2 left; row 3 missing.
	x := []int{0, 1, 2, -1, 1, 0}
	split := []data.CategSplit{data.CategLeft, data.CategRight, data.CategLeft}
	ix := []int{0, 1, 2, 3, 4, 5}

	stNA, endNA, _ := partition.DivideCategSubset(ix, x, split, data.MissingDivide)

	left, missing, right := zones(ix, stNA, endNA)
	assert.Equal(t, map[int]bool{0: true, 2: true, 5: true}, left)
	assert.Equal(t, map[int]bool{3: true}, missing)
	assert.Equal(t, map[int]bool{1: true, 4: true}, right)
	assertPermutation(t, ix, []int{0, 1, 2, 3, 4, 5})
}

func TestDivideCategSubsetPredictWeightedRoutesNewWithMissing(t *testing.T) {
	// ncat fitted = 2; rows with code 2 and 3 are unseen, row 4 missing.
	x := []int{0, 1, 2, 3, -1}
	split := []data.CategSplit{data.CategLeft, data.CategRight}
	ix := []int{0, 1, 2, 3, 4}

	stNA, endNA, _ := partition.DivideCategSubsetPredict(
		ix, x, split, 2, data.MissingDivide, data.NewCategWeighted, false)

	left, missing, right := zones(ix, stNA, endNA)
	assert.Equal(t, map[int]bool{0: true}, left)
	assert.Equal(t, map[int]bool{2: true, 3: true, 4: true}, missing,
		"unseen categories must travel with the missing zone under the weighted policy")
	assert.Equal(t, map[int]bool{1: true}, right)
}

func TestDivideCategSubsetPredictSmallestMovesNewLeft(t *testing.T) {
	x := []int{0, 1, 5}
	split := []data.CategSplit{data.CategRight, data.CategLeft}
	ix := []int{0, 1, 2}

	_, _, splitIx := partition.DivideCategSubsetPredict(
		ix, x, split, 2, data.MissingFail, data.NewCategSmallest, true)

	assert.Equal(t, 2, splitIx)
	assert.ElementsMatch(t, []int{1, 2}, ix[:2], "unseen code joins the left branch")
}

func TestDivideCategSingle(t *testing.T) {
	x := []int{2, 0, 2, -1, 1}
	ix := []int{0, 1, 2, 3, 4}

	stNA, endNA, _ := partition.DivideCategSingle(ix, x, 2, data.MissingImpute)

	left, missing, right := zones(ix, stNA, endNA)
	assert.Equal(t, map[int]bool{0: true, 2: true}, left)
	assert.Equal(t, map[int]bool{3: true}, missing)
	assert.Equal(t, map[int]bool{1: true, 4: true}, right)
}

func TestDivideCategBinary(t *testing.T) {
	x := []int{0, 1, 0, -1, 3}
	ix := []int{0, 1, 2, 3, 4}

	stNA, endNA, _ := partition.DivideCategBinary(ix, x, data.MissingDivide, data.NewCategSmallest, true)

	left, missing, right := zones(ix, stNA, endNA)
	assert.Equal(t, map[int]bool{0: true, 2: true, 4: true}, left,
		"category 0 and unseen codes go left when the left branch was smaller")
	assert.Equal(t, map[int]bool{3: true}, missing)
	assert.Equal(t, map[int]bool{1: true}, right)
}

func TestMoveNAsToFront(t *testing.T) {
	x := []float64{1, math.NaN(), 3, math.Inf(1), 5}
	ix := []int{0, 1, 2, 3, 4}

	boundary := partition.MoveNAsToFront(ix, x)

	assert.Equal(t, 2, boundary)
	assert.ElementsMatch(t, []int{1, 3}, ix[:2], "NaN and infinite values count as missing")
	assertPermutation(t, ix, []int{0, 1, 2, 3, 4})
}

func TestMoveNAsToFrontCateg(t *testing.T) {
	x := []int{0, -1, 2, -1}
	ix := []int{0, 1, 2, 3}

	boundary := partition.MoveNAsToFrontCateg(ix, x)

	assert.Equal(t, 2, boundary)
	assert.ElementsMatch(t, []int{1, 3}, ix[:2])
}

func TestCenterNAs(t *testing.T) {
	// Missing block at the front [0:2], left zone boundary at 5.
	ix := []int{100, 101, 1, 2, 3}

	newStart := partition.CenterNAs(ix, 0, 2, 5)

	assert.Equal(t, 3, newStart)
	assert.ElementsMatch(t, []int{100, 101}, ix[3:5], "missing block relocated to just before currPos")
	assertPermutation(t, ix, []int{100, 101, 1, 2, 3})
}

func TestCalculateSumWeights(t *testing.T) {
	ix := []int{0, 2, 3}
	arr := []float64{1.5, 10, 2, 0.5}

	assert.InDelta(t, 4.0, partition.CalculateSumWeights(ix, 3, arr, nil), 1e-12)
	assert.InDelta(t, 4.0, partition.CalculateSumWeights(ix, 3, nil,
		map[int]float64{0: 1.5, 2: 2, 3: 0.5}), 1e-12)
	assert.True(t, math.IsInf(partition.CalculateSumWeights(ix, 0, arr, nil), -1),
		"depth zero reports no weighted total")
	assert.True(t, math.IsInf(partition.CalculateSumWeights(ix, 3, nil, nil), -1))
}

func TestGetRangeDense(t *testing.T) {
	x := []float64{3, -1, 7, math.NaN()}

	xmin, xmax, unsplittable := partition.GetRangeDense([]int{0, 1, 2}, x, data.MissingFail)
	assert.Equal(t, -1.0, xmin)
	assert.Equal(t, 7.0, xmax)
	assert.False(t, unsplittable)

	// NaN-aware scan skips the missing value.
	xmin, xmax, unsplittable = partition.GetRangeDense([]int{0, 2, 3}, x, data.MissingDivide)
	assert.Equal(t, 3.0, xmin)
	assert.Equal(t, 7.0, xmax)
	assert.False(t, unsplittable)

	_, _, unsplittable = partition.GetRangeDense([]int{0, 0}, x, data.MissingFail)
	assert.True(t, unsplittable, "constant column is unsplittable")

	_, _, unsplittable = partition.GetRangeDense([]int{3, 3}, x, data.MissingDivide)
	assert.True(t, unsplittable, "all-NaN column is unsplittable")
}

func TestGetCategs(t *testing.T) {
	x := []int{0, 2, 0, -1}
	categs := make([]data.CategSplit, 3)

	npresent, unsplittable := partition.GetCategs([]int{0, 1, 2, 3}, x, 3, categs)
	assert.Equal(t, 2, npresent)
	assert.False(t, unsplittable)
	assert.Equal(t, []data.CategSplit{data.CategLeft, data.CategNew, data.CategLeft}, categs)

	npresent, unsplittable = partition.GetCategs([]int{0, 2, 3}, x, 3, categs)
	assert.Equal(t, 1, npresent)
	assert.True(t, unsplittable, "fewer than two categories is unsplittable")
}
