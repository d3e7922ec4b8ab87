package ordex

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
)

// Query is a fluent builder for ordered reads.
//
// Example:
//
//	people, err := ix.Query().
//	    GTE(18).
//	    Order(index.Desc).
//	    Skip(20).
//	    Limit(10).
//	    Execute(ctx)
//
//	// Or with streaming:
//	for p, err := range ix.Query().Reverse().Stream(ctx) {
//	    if err != nil { break }
//	    process(p)
//	}
type Query[K, V any] struct {
	ix   *Index[K, V]
	snap *Snapshot[K, V]

	skip    int
	limit   int
	reverse bool
	order   index.Order
	preds   []index.Predicate[V]
	bounds  []func(*aatree.Tree[K, V]) *aatree.Tree[K, V]
}

func newQuery[K, V any](ix *Index[K, V], snap *Snapshot[K, V]) *Query[K, V] {
	return &Query[K, V]{
		ix:    ix,
		snap:  snap,
		limit: Unlimited,
	}
}

// Skip drops the first n matching entries.
func (q *Query[K, V]) Skip(n int) *Query[K, V] {
	q.skip = n
	return q
}

// Limit caps the number of returned entries. Unlimited removes the cap.
func (q *Query[K, V]) Limit(n int) *Query[K, V] {
	q.limit = n
	return q
}

// Reverse visits keys in descending order.
func (q *Query[K, V]) Reverse() *Query[K, V] {
	q.reverse = true
	return q
}

// Order sets the directions of the nested levels, outermost payload first.
func (q *Query[K, V]) Order(dirs ...index.Direction) *Query[K, V] {
	q.order = index.Order(dirs)
	return q
}

// Where adds a filter. Multiple filters must all hold.
func (q *Query[K, V]) Where(pred func(V) bool) *Query[K, V] {
	if pred != nil {
		q.preds = append(q.preds, pred)
	}
	return q
}

// GT restricts the query to keys greater than key.
func (q *Query[K, V]) GT(key K) *Query[K, V] {
	return q.bound(func(t *aatree.Tree[K, V]) *aatree.Tree[K, V] { return t.GT(key) })
}

// GTE restricts the query to keys greater than or equal to key.
func (q *Query[K, V]) GTE(key K) *Query[K, V] {
	return q.bound(func(t *aatree.Tree[K, V]) *aatree.Tree[K, V] { return t.GTE(key) })
}

// LT restricts the query to keys less than key.
func (q *Query[K, V]) LT(key K) *Query[K, V] {
	return q.bound(func(t *aatree.Tree[K, V]) *aatree.Tree[K, V] { return t.LT(key) })
}

// LTE restricts the query to keys less than or equal to key.
func (q *Query[K, V]) LTE(key K) *Query[K, V] {
	return q.bound(func(t *aatree.Tree[K, V]) *aatree.Tree[K, V] { return t.LTE(key) })
}

// Between restricts the query to the half-open key range [lo, hi).
func (q *Query[K, V]) Between(lo, hi K) *Query[K, V] {
	return q.GTE(lo).LT(hi)
}

func (q *Query[K, V]) bound(fn func(*aatree.Tree[K, V]) *aatree.Tree[K, V]) *Query[K, V] {
	q.bounds = append(q.bounds, fn)
	return q
}

func (q *Query[K, V]) validate() error {
	if q.skip < 0 || q.limit < Unlimited {
		return ErrInvalidLimit
	}
	return nil
}

// acquire returns the bounded tree to read and the function releasing it.
func (q *Query[K, V]) acquire() (*aatree.Tree[K, V], func(), error) {
	var (
		tree    *aatree.Tree[K, V]
		release = func() {}
	)
	if q.snap != nil {
		if q.snap.closed.Load() {
			return nil, nil, ErrClosed
		}
		tree = q.snap.tree
	} else {
		tree, release = q.ix.pin()
	}

	for _, fn := range q.bounds {
		tree = fn(tree)
	}
	return tree, release, nil
}

func (q *Query[K, V]) predicate() index.Predicate[V] {
	switch len(q.preds) {
	case 0:
		return nil
	case 1:
		return q.preds[0]
	}
	preds := q.preds
	return func(v V) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Execute runs the query and returns the matching entries.
func (q *Query[K, V]) Execute(ctx context.Context) ([]V, error) {
	start := time.Now()

	results, err := q.execute(ctx)

	q.ix.metrics.RecordQuery(len(results), time.Since(start), err)
	q.ix.logger.LogQuery(ctx, q.skip, q.limit, len(results), err)

	return results, err
}

func (q *Query[K, V]) execute(ctx context.Context) ([]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.validate(); err != nil {
		return nil, err
	}

	tree, release, err := q.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	capacity := tree.Size() - q.skip
	if q.limit >= 0 {
		capacity = min(capacity, q.limit)
	}
	results := make([]V, 0, max(capacity, 0))
	sink := func(v V) { results = append(results, v) }

	c := index.Page(q.skip, q.limit)
	if q.reverse {
		tree.SelectReverse(sink, c, q.order, q.predicate())
	} else {
		tree.Select(sink, c, q.order, q.predicate())
	}

	return results, ctx.Err()
}

// MustExecute runs the query, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (q *Query[K, V]) MustExecute(ctx context.Context) []V {
	results, err := q.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return results
}

// Stream returns an iterator over the matching entries. Breaking out of the
// loop stops the traversal after the current key. Unlike Execute, skipped
// keys are walked one by one.
func (q *Query[K, V]) Stream(ctx context.Context) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		var zero V

		if err := ctx.Err(); err != nil {
			yield(zero, err)
			return
		}
		if err := q.validate(); err != nil {
			yield(zero, err)
			return
		}

		tree, release, err := q.acquire()
		if err != nil {
			yield(zero, err)
			return
		}
		defer release()

		var (
			c       = index.Page(q.skip, q.limit)
			pred    = q.predicate()
			stopped bool
			ctxErr  error
		)
		sink := func(v V) {
			if !stopped {
				stopped = !yield(v, nil)
			}
		}

		visit := func(_ K, payload index.Index[V]) bool {
			if err := ctx.Err(); err != nil {
				ctxErr = err
				return false
			}
			if pred == nil && c.Skip >= payload.Size() {
				c.Skip -= payload.Size()
				return true
			}
			c = index.SelectDir(payload, q.order.Head(), sink, c, q.order.Tail(), pred)
			return !stopped && !c.Done()
		}

		if q.reverse {
			tree.Descend(visit)
		} else {
			tree.Ascend(visit)
		}

		if ctxErr != nil && !stopped {
			yield(zero, ctxErr)
		}
	}
}

// First returns the first matching entry, or ErrNotFound.
func (q *Query[K, V]) First(ctx context.Context) (V, error) {
	results, err := q.capped(1).Execute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if len(results) == 0 {
		var zero V
		return zero, ErrNotFound
	}
	return results[0], nil
}

// Count returns the number of entries Execute would return. Without a
// filter it is computed from cached subtree sizes.
func (q *Query[K, V]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := q.validate(); err != nil {
		return 0, err
	}

	tree, release, err := q.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	pred := q.predicate()
	if pred == nil {
		n := max(tree.Size()-q.skip, 0)
		if q.limit >= 0 {
			n = min(n, q.limit)
		}
		return n, nil
	}

	n := 0
	tree.Select(func(V) { n++ }, index.Page(q.skip, q.limit), q.order, pred)
	return n, nil
}

// Exists reports whether at least one entry matches.
func (q *Query[K, V]) Exists(ctx context.Context) (bool, error) {
	n, err := q.capped(1).Count(ctx)
	return n > 0, err
}

// capped returns a copy of q whose limit is at most n. The receiver keeps
// its own limit so it can be reused.
func (q *Query[K, V]) capped(n int) *Query[K, V] {
	c := *q
	if c.limit < 0 || c.limit > n {
		c.limit = n
	}
	return &c
}
