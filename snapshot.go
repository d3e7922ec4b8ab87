package ordex

import (
	"sync/atomic"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
)

// Snapshot is a stable read view of an Index. After Close the snapshot is
// empty: Len reports zero, Get finds nothing, Tree returns nil and queries
// fail with ErrClosed.
type Snapshot[K, V any] struct {
	ix     *Index[K, V]
	tree   *aatree.Tree[K, V]
	closed atomic.Bool
}

// pin registers a reader and returns the root it must use. In in-place mode
// the writer lock orders the registration against a running write.
func (ix *Index[K, V]) pin() (*aatree.Tree[K, V], func()) {
	if ix.inPlace {
		ix.mu.Lock()
		defer ix.mu.Unlock()
	}
	ix.snapshots.Add(1)
	return ix.root.Load(), func() { ix.snapshots.Add(-1) }
}

// Close releases the snapshot. It is safe to call more than once.
func (s *Snapshot[K, V]) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.ix.snapshots.Add(-1)
	}
	return nil
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot[K, V]) Len() int {
	if s.closed.Load() {
		return 0
	}
	return s.tree.Size()
}

// Tree returns the pinned root tree, or nil once the snapshot is closed.
// The result must be treated as read-only.
func (s *Snapshot[K, V]) Tree() *aatree.Tree[K, V] {
	if s.closed.Load() {
		return nil
	}
	return s.tree
}

// Get returns the payload stored under key.
func (s *Snapshot[K, V]) Get(key K) (index.Index[V], bool) {
	if s.closed.Load() {
		return nil, false
	}
	return s.tree.Get(key)
}

// Query starts a query over the snapshot.
func (s *Snapshot[K, V]) Query() *Query[K, V] {
	return newQuery(s.ix, s)
}
