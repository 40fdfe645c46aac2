package parallel_test

import (
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/ezoic/isoforest/core/parallel"
)

func TestParallelizeCoversRange(t *testing.T) {
	const n = 10_000
	var covered [n]int32

	parallel.Parallelize(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
	})

	for i, c := range covered {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	parallel.ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("expected single chunk [0,10), got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected one sequential call, got %d", calls)
	}
}

func TestParallelizeEmpty(t *testing.T) {
	parallel.Parallelize(0, func(start, end int) {
		t.Errorf("fn called for empty range [%d,%d)", start, end)
	})
}

func TestNewRandDeterministic(t *testing.T) {
	a := parallel.NewRand(42, 3)
	b := parallel.NewRand(42, 3)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("same seed and stream diverged at draw %d", i)
		}
	}

	c := parallel.NewRand(42, 4)
	same := true
	d := parallel.NewRand(42, 3)
	for i := 0; i < 10; i++ {
		if c.Uint64() != d.Uint64() {
			same = false
		}
	}
	if same {
		t.Errorf("distinct streams produced identical sequences")
	}
}

func TestForEachWorkerRunsAll(t *testing.T) {
	var ran int64
	err := parallel.ForEachWorker(8, 7, func(worker int, rng *rand.Rand) error {
		_ = rng.Uint64()
		atomic.AddInt64(&ran, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachWorker: %v", err)
	}
	if ran != 8 {
		t.Errorf("expected 8 workers to run, got %d", ran)
	}
}
