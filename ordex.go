package ordex

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
)

// Unlimited disables the limit of a query.
const Unlimited = index.Unlimited

// Index is an ordered in-memory index of values of type V keyed by K.
//
// Writers are serialized. Readers never block: every read works on the root
// that was current when it started, and by default every write copies the
// nodes on its path instead of modifying them.
type Index[K, V any] struct {
	root atomic.Pointer[aatree.Tree[K, V]]
	mu   sync.Mutex

	// snapshots counts open snapshots and in-flight queries. In-place writes
	// fall back to copy-on-write while it is non-zero.
	snapshots atomic.Int64
	inPlace   bool

	logger  *Logger
	metrics MetricsCollector
}

// Stats describes the shape of an index.
type Stats struct {
	Entries   int
	Keys      int
	Height    int
	Level     int
	Snapshots int
}

// New creates an empty index ordering values by key(v) under compare.
func New[K, V any](key func(V) K, compare func(a, b K) int, optFns ...Option) (*Index[K, V], error) {
	opts := applyOptions(optFns)

	treeOpts, err := treeOptions[K, V](opts)
	if err != nil {
		return nil, err
	}

	tree, err := aatree.New(key, compare, treeOpts)
	if err != nil {
		return nil, translateError(err)
	}

	ix := &Index[K, V]{
		inPlace: opts.inPlace,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
	}
	ix.root.Store(tree)

	return ix, nil
}

// locked reports whether the next write must copy the nodes it touches.
func (ix *Index[K, V]) locked() bool {
	return !ix.inPlace || ix.snapshots.Load() > 0
}

// Put adds v. It returns an error wrapping ErrDuplicateKey when the dedup
// policy rejects the entry.
func (ix *Index[K, V]) Put(ctx context.Context, v V) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()

	ix.mu.Lock()
	tree, err := ix.root.Load().Insert(v, ix.locked())
	if err == nil {
		ix.root.Store(tree)
	}
	size := tree.Size()
	ix.mu.Unlock()

	err = translateError(err)
	ix.metrics.RecordPut(1, time.Since(start), err)
	ix.logger.LogPut(ctx, size, err)

	return err
}

// PutAll adds every value of vs under one writer critical section.
// Values rejected by the dedup policy are skipped and reported together.
// Cancellation stops the batch; values stored before stay stored.
func (ix *Index[K, V]) PutAll(ctx context.Context, vs []V) error {
	start := time.Now()

	var errs []error

	ix.mu.Lock()
	tree := ix.root.Load()
	for i, v := range vs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
		}
		next, err := tree.Insert(v, ix.locked())
		if err != nil {
			errs = append(errs, translateError(err))
			continue
		}
		tree = next
		ix.root.Store(tree)
	}
	size := tree.Size()
	ix.mu.Unlock()

	err := errors.Join(errs...)
	ix.metrics.RecordPut(len(vs), time.Since(start), err)
	ix.logger.LogPut(ctx, size, err)

	return err
}

// Remove deletes v and reports whether it was present. Removing an absent
// value is not an error.
func (ix *Index[K, V]) Remove(ctx context.Context, v V) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	start := time.Now()

	ix.mu.Lock()
	before := ix.root.Load().Size()
	after := ix.root.Load().Delete(v, ix.locked())
	size := after.Size()
	ix.root.Store(after)
	ix.mu.Unlock()

	removed := size != before
	ix.metrics.RecordRemove(removed, time.Since(start))
	ix.logger.LogRemove(ctx, size, removed)

	return removed, nil
}

// Get returns the payload stored under key.
func (ix *Index[K, V]) Get(key K) (index.Index[V], bool) {
	return ix.root.Load().Get(key)
}

// GetAll returns the payload of every key equal to key under compare, which
// may be coarser than the index order. A nil compare uses the index order.
func (ix *Index[K, V]) GetAll(key K, compare func(a, b K) int) []index.Index[V] {
	return ix.root.Load().GetAll(key, compare)
}

// Lookup returns the entries stored under key in payload order.
func (ix *Index[K, V]) Lookup(key K) []V {
	p, ok := ix.Get(key)
	if !ok {
		return nil
	}
	out := make([]V, 0, p.Size())
	p.Select(func(v V) { out = append(out, v) }, index.All(), nil, nil)
	return out
}

// Len returns the number of entries.
func (ix *Index[K, V]) Len() int {
	return ix.root.Load().Size()
}

// Tree returns the current root tree. The result must be treated as read-only.
func (ix *Index[K, V]) Tree() *aatree.Tree[K, V] {
	return ix.root.Load()
}

// BulkLoad fills an empty index from input sorted by key in O(n).
// Adjacent equal keys share one payload. Input that is not sorted yields an
// *ErrUnsorted and leaves the index unchanged.
func (ix *Index[K, V]) BulkLoad(ctx context.Context, sorted []V) error {
	start := time.Now()

	keys, err := ix.bulkLoad(ctx, sorted)

	ix.metrics.RecordBulkLoad(len(sorted), time.Since(start), err)
	ix.logger.LogBulkLoad(ctx, len(sorted), keys, err)

	return err
}

// bulkLoad returns the number of distinct keys loaded.
func (ix *Index[K, V]) bulkLoad(ctx context.Context, sorted []V) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tree := ix.root.Load()
	if tree.Size() > 0 {
		return 0, ErrNotEmpty
	}

	for i := 1; i < len(sorted); i++ {
		if tree.Compare(tree.Key(sorted[i-1]), tree.Key(sorted[i])) > 0 {
			return 0, &ErrUnsorted{Index: i}
		}
	}

	loaded, err := tree.BulkLoad(ctx, sorted)
	if err != nil {
		return 0, translateError(err)
	}
	ix.root.Store(loaded)

	return loaded.Len(), nil
}

// MapTail replaces every payload of the top level with fn(payload).
// fn must return a payload of the same size.
func (ix *Index[K, V]) MapTail(fn func(index.Index[V]) index.Index[V]) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.root.Store(ix.root.Load().MapTail(fn, ix.locked()))
}

// Verify checks the structural invariants of the top level.
func (ix *Index[K, V]) Verify() error {
	return translateError(ix.root.Load().Verify())
}

// Stats returns the current shape of the index.
func (ix *Index[K, V]) Stats() Stats {
	tree := ix.root.Load()
	return Stats{
		Entries:   tree.Size(),
		Keys:      tree.Len(),
		Height:    tree.Height(),
		Level:     tree.Level(),
		Snapshots: int(ix.snapshots.Load()),
	}
}

// Snapshot pins the current contents. Reads through the snapshot are not
// affected by later writes. Close releases it.
func (ix *Index[K, V]) Snapshot() *Snapshot[K, V] {
	tree, _ := ix.pin()
	return &Snapshot[K, V]{ix: ix, tree: tree}
}

// Query starts a query over the current contents.
func (ix *Index[K, V]) Query() *Query[K, V] {
	return newQuery(ix, nil)
}
