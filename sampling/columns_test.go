package sampling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/isoforest/sampling"
)

func TestColumnSamplerDropAllColumns(t *testing.T) {
	rng := newRng(21)
	var cs sampling.ColumnSampler
	cs.Initialize(5)
	require.Equal(t, 5, cs.RemainingCols())

	for i := 0; i < 5; i++ {
		col, ok := cs.SampleCol(rng)
		require.True(t, ok)
		cs.DropCol(col)
	}

	assert.Equal(t, 0, cs.RemainingCols())
	_, ok := cs.SampleCol(rng)
	assert.False(t, ok, "SampleCol after dropping everything")

	cs.PrepareFullPass()
	_, ok = cs.NextInPass()
	assert.False(t, ok, "NextInPass after dropping everything")
}

func TestColumnSamplerDropIsIdempotent(t *testing.T) {
	rng := newRng(22)
	var cs sampling.ColumnSampler
	cs.Initialize(4)

	cs.DropCol(2)
	cs.DropCol(2)
	assert.Equal(t, 3, cs.RemainingCols(), "double drop must count once")

	for i := 0; i < 200; i++ {
		col, ok := cs.SampleCol(rng)
		require.True(t, ok)
		require.NotEqual(t, 2, col, "dropped column must never reappear")
	}
}

func TestColumnSamplerFullPassEnumeratesLiveColumns(t *testing.T) {
	rng := newRng(23)
	var cs sampling.ColumnSampler
	cs.Initialize(6)
	cs.DropCol(1)
	cs.DropCol(4)

	cs.ShuffleRemainder(rng)
	seen := map[int]bool{}
	for {
		col, ok := cs.NextInPass()
		if !ok {
			break
		}
		require.False(t, seen[col], "column %d enumerated twice", col)
		seen[col] = true
	}
	assert.Equal(t, map[int]bool{0: true, 2: true, 3: true, 5: true}, seen)
}

func TestColumnSamplerLeaveMCols(t *testing.T) {
	for _, m := range []int{2, 5, 9} {
		rng := newRng(uint64(24 + m))
		var cs sampling.ColumnSampler
		cs.Initialize(10)
		cs.LeaveMCols(m, rng)
		assert.Equal(t, m, cs.RemainingCols(), "m=%d", m)

		cs.PrepareFullPass()
		count := 0
		seen := map[int]bool{}
		for {
			col, ok := cs.NextInPass()
			if !ok {
				break
			}
			require.False(t, seen[col])
			seen[col] = true
			count++
		}
		assert.Equal(t, m, count, "full pass after restrict must see m columns")
	}
}

func TestColumnSamplerWeighted(t *testing.T) {
	rng := newRng(31)
	var cs sampling.ColumnSampler
	cs.InitializeWeighted([]float64{1, 0, 8, 1}, 4)
	require.True(t, cs.HasWeights())

	// Zero-weight column must never be sampled.
	for i := 0; i < 300; i++ {
		col, ok := cs.SampleCol(rng)
		require.True(t, ok)
		require.NotEqual(t, 1, col)
	}

	cs.DropCol(2)
	for i := 0; i < 300; i++ {
		col, ok := cs.SampleCol(rng)
		require.True(t, ok)
		require.NotEqual(t, 2, col, "dropped weighted column must never reappear")
	}

	cs.PrepareFullPass()
	seen := map[int]bool{}
	for {
		col, ok := cs.NextInPass()
		if !ok {
			break
		}
		seen[col] = true
	}
	assert.Equal(t, map[int]bool{0: true, 3: true}, seen)
}

func TestColumnSamplerWeightedDegenerateDowngrades(t *testing.T) {
	var cs sampling.ColumnSampler
	cs.InitializeWeighted([]float64{0, 0, 0}, 3)
	assert.False(t, cs.HasWeights(), "invalid weights must degrade to unweighted")
	assert.Equal(t, 3, cs.RemainingCols())
}

func TestColumnSamplerWeightedLeaveMCols(t *testing.T) {
	rng := newRng(32)
	var cs sampling.ColumnSampler
	cs.InitializeWeighted([]float64{5, 3, 7, 2, 6, 1}, 6)

	cs.LeaveMCols(3, rng)
	assert.Equal(t, 3, cs.RemainingCols())

	cs.PrepareFullPass()
	live := map[int]bool{}
	for {
		col, ok := cs.NextInPass()
		if !ok {
			break
		}
		live[col] = true
	}
	assert.Len(t, live, 3)

	// Draws must stay within the restricted set.
	for i := 0; i < 200; i++ {
		col, ok := cs.SampleCol(rng)
		require.True(t, ok)
		require.True(t, live[col], "column %d drawn outside restricted set", col)
	}
}

func TestColumnSamplerSampleDoesNotRemove(t *testing.T) {
	rng := newRng(33)
	var cs sampling.ColumnSampler
	cs.Initialize(3)

	for i := 0; i < 50; i++ {
		_, ok := cs.SampleCol(rng)
		require.True(t, ok)
	}
	assert.Equal(t, 3, cs.RemainingCols(), "SampleCol must not consume columns")
}
