package aatree

import (
	"context"
	"reflect"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/bag"
)

// DefaultBulkParallelThreshold is the input size from which BulkLoad builds
// payloads concurrently.
const DefaultBulkParallelThreshold = 1 << 16

// Options configures a tree.
type Options[K, V any] struct {
	// Tail creates the payload of a new key. Default: an insertion-ordered bag
	// comparing entries with reflect.DeepEqual.
	Tail index.Factory[V]

	// Dedup decides what happens on key collisions. Default: merge.
	Dedup Dedup[K, V]

	// BulkParallelism bounds the goroutines used by BulkLoad.
	// Zero means GOMAXPROCS, one disables concurrency.
	BulkParallelism int

	// BulkParallelThreshold is the minimum input size for concurrent bulk loads.
	BulkParallelThreshold int
}

// config is shared by a tree, its nested copies and its slices.
type config[K, V any] struct {
	key                   func(V) K
	compare               func(a, b K) int
	tail                  index.Factory[V]
	dedup                 Dedup[K, V]
	bulkParallelism       int
	bulkParallelThreshold int
}

// Tree is one ordered index level. It implements index.Index so trees can be
// nested as the payload of other trees.
//
// A Tree is not safe for concurrent mutation. Concurrent readers are safe as
// long as every mutation that may overlap with them passes locked = true.
type Tree[K, V any] struct {
	root *node[K, V]
	cfg  *config[K, V]
	view bool
}

var _ index.Index[int] = (*Tree[int, int])(nil)

// New creates an empty tree ordering entries by key(v) under compare.
func New[K, V any](key func(V) K, compare func(a, b K) int, optFns ...func(o *Options[K, V])) (*Tree[K, V], error) {
	cfg, err := newConfig(key, compare, optFns...)
	if err != nil {
		return nil, err
	}
	return &Tree[K, V]{cfg: cfg}, nil
}

// Factory returns an index.Factory producing empty trees that share one
// configuration. Use it as the Tail of an outer tree to build composite indexes.
func Factory[K, V any](key func(V) K, compare func(a, b K) int, optFns ...func(o *Options[K, V])) (index.Factory[V], error) {
	cfg, err := newConfig(key, compare, optFns...)
	if err != nil {
		return nil, err
	}
	return index.FactoryFunc[V](func() index.Index[V] {
		return &Tree[K, V]{cfg: cfg}
	}), nil
}

func newConfig[K, V any](key func(V) K, compare func(a, b K) int, optFns ...func(o *Options[K, V])) (*config[K, V], error) {
	if key == nil {
		return nil, ErrNilKeyFunc
	}
	if compare == nil {
		return nil, ErrNilCompare
	}

	opts := Options[K, V]{
		BulkParallelThreshold: DefaultBulkParallelThreshold,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Tail == nil {
		opts.Tail = bag.Factory(func(a, b V) bool { return reflect.DeepEqual(a, b) })
	}

	return &config[K, V]{
		key:                   key,
		compare:               compare,
		tail:                  opts.Tail,
		dedup:                 opts.Dedup,
		bulkParallelism:       opts.BulkParallelism,
		bulkParallelThreshold: opts.BulkParallelThreshold,
	}, nil
}

// Size returns the number of entries, including nested ones.
func (t *Tree[K, V]) Size() int {
	return t.root.sz()
}

// Len returns the number of distinct keys at this level.
func (t *Tree[K, V]) Len() int {
	return t.root.count()
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[K, V]) Height() int {
	return t.root.height()
}

// Level returns the AA level of the root, zero for an empty tree.
func (t *Tree[K, V]) Level() int {
	return t.root.lvl()
}

// IsView reports whether the tree is a read-only range slice.
func (t *Tree[K, V]) IsView() bool {
	return t.view
}

// Key returns the key of v at this level.
func (t *Tree[K, V]) Key(v V) K {
	return t.cfg.key(v)
}

// Compare compares two keys of this level.
func (t *Tree[K, V]) Compare(a, b K) int {
	return t.cfg.compare(a, b)
}

// Get returns the payload stored under key.
func (t *Tree[K, V]) Get(key K) (index.Index[V], bool) {
	return t.root.get(key, t.cfg.compare)
}

// GetAll returns the payload of every key for which compare(nodeKey, key) is
// zero. It scans the whole tree and exists for comparators that do not follow
// the tree order.
func (t *Tree[K, V]) GetAll(key K, compare func(a, b K) int) []index.Index[V] {
	if compare == nil {
		compare = t.cfg.compare
	}
	return t.root.getAll(key, compare, nil)
}

// Min returns the smallest key.
func (t *Tree[K, V]) Min() (K, bool) {
	n := t.root.min()
	if n == nil {
		var zero K
		return zero, false
	}
	return n.key, true
}

// Max returns the largest key.
func (t *Tree[K, V]) Max() (K, bool) {
	n := t.root.max()
	if n == nil {
		var zero K
		return zero, false
	}
	return n.key, true
}

// Insert adds v and reports ErrDuplicateKey when the dedup policy rejects it.
// With locked set the receiver is left untouched and a new tree is returned.
func (t *Tree[K, V]) Insert(v V, locked bool) (*Tree[K, V], error) {
	locked = locked || t.view
	root, err := t.root.put(t.cfg.key(v), v, t.cfg, locked)
	if err != nil {
		return t, err
	}
	return t.with(root, locked), nil
}

// Put adds v. Entries rejected by the dedup policy are dropped; use Insert to
// observe the rejection.
func (t *Tree[K, V]) Put(v V, locked bool) index.Index[V] {
	nt, _ := t.Insert(v, locked)
	return nt
}

// Delete removes v and returns the resulting tree. Removing an absent entry
// is a no-op.
func (t *Tree[K, V]) Delete(v V, locked bool) *Tree[K, V] {
	locked = locked || t.view
	before := t.root.sz()
	root := t.root.remove(t.cfg.key(v), v, t.cfg, locked)
	if root.sz() == before {
		return t
	}
	return t.with(root, locked)
}

// Remove implements index.Index.
func (t *Tree[K, V]) Remove(v V, locked bool) index.Index[V] {
	return t.Delete(v, locked)
}

func (t *Tree[K, V]) with(root *node[K, V], locked bool) *Tree[K, V] {
	if locked {
		return &Tree[K, V]{root: root, cfg: t.cfg, view: t.view}
	}
	t.root = root
	return t
}

// Select emits entries in ascending key order. order[0] selects the direction
// of the payloads, the rest of order is passed down to them.
func (t *Tree[K, V]) Select(sink index.Sink[V], c index.Cursor, order index.Order, pred index.Predicate[V]) index.Cursor {
	tr := traversal[V]{sink: sink, pred: pred, tailDir: order.Head(), tailOrd: order.Tail()}
	return t.root.selectAsc(&tr, c)
}

// SelectReverse emits entries in descending key order.
func (t *Tree[K, V]) SelectReverse(sink index.Sink[V], c index.Cursor, order index.Order, pred index.Predicate[V]) index.Cursor {
	tr := traversal[V]{sink: sink, pred: pred, tailDir: order.Head(), tailOrd: order.Tail()}
	return t.root.selectDesc(&tr, c)
}

// MapOver calls fn for every terminal container in key order.
func (t *Tree[K, V]) MapOver(fn func(index.Index[V])) {
	t.root.mapOver(fn)
}

// MapTail replaces every payload of this level with fn(payload). fn must keep
// the payload size unchanged; cached sizes are not recomputed.
func (t *Tree[K, V]) MapTail(fn func(index.Index[V]) index.Index[V], locked bool) *Tree[K, V] {
	locked = locked || t.view
	return t.with(t.root.mapTail(fn, locked), locked)
}

// Ascend calls fn for every key and payload in ascending order until fn returns false.
func (t *Tree[K, V]) Ascend(fn func(key K, payload index.Index[V]) bool) {
	t.root.ascend(fn)
}

// Descend calls fn for every key and payload in descending order until fn returns false.
func (t *Tree[K, V]) Descend(fn func(key K, payload index.Index[V]) bool) {
	t.root.descend(fn)
}

// GT returns a read-only view of the keys strictly greater than key.
func (t *Tree[K, V]) GT(key K) *Tree[K, V] {
	return t.slice(t.root.gt(key, t.cfg.compare))
}

// GTE returns a read-only view of the keys greater than or equal to key.
func (t *Tree[K, V]) GTE(key K) *Tree[K, V] {
	return t.slice(t.root.gte(key, t.cfg.compare))
}

// LT returns a read-only view of the keys strictly less than key.
func (t *Tree[K, V]) LT(key K) *Tree[K, V] {
	return t.slice(t.root.lt(key, t.cfg.compare))
}

// LTE returns a read-only view of the keys less than or equal to key.
func (t *Tree[K, V]) LTE(key K) *Tree[K, V] {
	return t.slice(t.root.lte(key, t.cfg.compare))
}

func (t *Tree[K, V]) slice(root *node[K, V]) *Tree[K, V] {
	return &Tree[K, V]{root: root, cfg: t.cfg, view: true}
}

// BulkLoad replaces the contents of an empty tree with sorted input in O(n).
// The caller guarantees the order; unsorted input produces a balanced tree
// with a meaningless key order.
func (t *Tree[K, V]) BulkLoad(ctx context.Context, sorted []V) (*Tree[K, V], error) {
	root, err := bulkLoad(ctx, sorted, t.cfg)
	if err != nil {
		return t, err
	}
	return &Tree[K, V]{root: root, cfg: t.cfg}, nil
}

// Clone returns a tree sharing all nodes with t. Mutate either copy with
// locked = true to keep the other intact.
func (t *Tree[K, V]) Clone() *Tree[K, V] {
	return &Tree[K, V]{root: t.root, cfg: t.cfg, view: t.view}
}
