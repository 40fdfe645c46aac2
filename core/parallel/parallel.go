// Package parallel provides data-parallel loop helpers and deterministic
// per-worker random number generators.
//
// The tree-building core itself is plain synchronous CPU work; these helpers
// are what fitting and scoring drivers use to fan an embarrassingly parallel
// outer loop (independent trees, independent row batches) across worker
// goroutines. Each worker gets a private generator derived from a master
// seed and the worker index, so results are reproducible under a fixed
// worker count.
package parallel

import (
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize splits [0, n) into contiguous chunks, one per available CPU,
// and runs fn(start, end) for each chunk on its own goroutine. It returns
// when all chunks are done.
func Parallelize(n int, fn func(start, end int)) {
	ParallelizeWithThreshold(n, 0, fn)
}

// ParallelizeWithThreshold is Parallelize, but runs sequentially when n is
// below threshold. Use it when per-item work is cheap enough that goroutine
// overhead would dominate for small inputs.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if n < threshold || workers <= 1 || n == 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()
}

// ForEachWorker runs fn(worker, rng) on workers goroutines, giving each its
// own deterministic generator derived from masterSeed. It stops on the first
// error and returns it. The caller decides how to shard work by worker
// index.
func ForEachWorker(workers int, masterSeed uint64, fn func(worker int, rng *rand.Rand) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		rng := NewRand(masterSeed, uint64(w))
		g.Go(func() error {
			return fn(w, rng)
		})
	}
	return g.Wait()
}

// NewRand returns a generator seeded deterministically from a master seed and
// a stream index (worker or tree number). Distinct stream indices give
// independent sequences.
func NewRand(masterSeed, stream uint64) *rand.Rand {
	// PCG takes two 64-bit seed words; mixing the stream into both keeps
	// streams apart even when masterSeed is small.
	return rand.New(rand.NewPCG(masterSeed, 0x9E3779B97F4A7C15^(stream*0xBF58476D1CE4E5B9)))
}
