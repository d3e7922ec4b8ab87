package aatree

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ordex/index"
)

// run is a maximal group of equal keys in sorted input.
type run[K, V any] struct {
	key   K
	start int
	end   int // exclusive
	tail  index.Index[V]
}

// groupRuns splits sorted input into runs of equal keys.
func groupRuns[K, V any](sorted []V, cfg *config[K, V]) []run[K, V] {
	runs := make([]run[K, V], 0, len(sorted))
	for i, v := range sorted {
		k := cfg.key(v)
		if len(runs) > 0 && cfg.compare(runs[len(runs)-1].key, k) == 0 {
			runs[len(runs)-1].end = i + 1
			continue
		}
		runs = append(runs, run[K, V]{key: k, start: i, end: i + 1})
	}
	return runs
}

// fillTails builds the payload of every run, in parallel for large inputs.
func fillTails[K, V any](ctx context.Context, sorted []V, runs []run[K, V], cfg *config[K, V]) error {
	fill := func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			r := &runs[i]
			tail := cfg.tail.New()
			for _, v := range sorted[r.start:r.end] {
				tail = tail.Put(v, false)
			}
			r.tail = tail
		}
		return nil
	}

	workers := cfg.bulkParallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(sorted) < cfg.bulkParallelThreshold {
		return fill(0, len(runs))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	chunk := (len(runs) + workers - 1) / workers
	for lo := 0; lo < len(runs); lo += chunk {
		hi := min(lo+chunk, len(runs))
		g.Go(func() error {
			return fill(lo, hi)
		})
	}
	return g.Wait()
}

// buildBalanced links runs[lo..hi] into a subtree rooted at the middle run.
// The lower middle is chosen so the right half is never smaller than the left,
// which keeps every level assignment AA-valid.
func buildBalanced[K, V any](runs []run[K, V], lo, hi int) *node[K, V] {
	if hi < lo {
		return nil
	}

	m := lo + (hi-lo)/2
	n := &node[K, V]{
		key:   runs[m].key,
		value: runs[m].tail,
	}
	n.left = buildBalanced(runs, lo, m-1)
	n.right = buildBalanced(runs, m+1, hi)
	n.level = n.left.lvl() + 1
	n.updateSize()

	return n
}

// bulkLoad builds a tree from input sorted by key without going through the
// skew and split machinery. Equal adjacent keys share one payload. Unsorted
// input yields a balanced but unordered tree.
func bulkLoad[K, V any](ctx context.Context, sorted []V, cfg *config[K, V]) (*node[K, V], error) {
	if len(sorted) == 0 {
		return nil, nil
	}

	runs := groupRuns(sorted, cfg)
	if err := fillTails(ctx, sorted, runs, cfg); err != nil {
		return nil, err
	}

	return buildBalanced(runs, 0, len(runs)-1), nil
}
