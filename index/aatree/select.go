package aatree

import "github.com/hupe1980/ordex/index"

// traversal holds what stays constant during one select call.
type traversal[V any] struct {
	sink    index.Sink[V]
	pred    index.Predicate[V]
	tailDir index.Direction
	tailOrd index.Order
}

func (n *node[K, V]) selectAsc(t *traversal[V], c index.Cursor) index.Cursor {
	if n == nil || c.Done() {
		return c
	}
	// Whole subtree skipped: sizes are only exact without a predicate.
	if t.pred == nil && c.Skip >= n.size {
		c.Skip -= n.size
		return c
	}

	c = n.left.selectAsc(t, c)
	if c.Done() {
		return c
	}
	c = index.SelectDir(n.value, t.tailDir, t.sink, c, t.tailOrd, t.pred)
	return n.right.selectAsc(t, c)
}

func (n *node[K, V]) selectDesc(t *traversal[V], c index.Cursor) index.Cursor {
	if n == nil || c.Done() {
		return c
	}
	if t.pred == nil && c.Skip >= n.size {
		c.Skip -= n.size
		return c
	}

	c = n.right.selectDesc(t, c)
	if c.Done() {
		return c
	}
	c = index.SelectDir(n.value, t.tailDir, t.sink, c, t.tailOrd, t.pred)
	return n.left.selectDesc(t, c)
}

func (n *node[K, V]) mapOver(fn func(index.Index[V])) {
	if n == nil {
		return
	}
	n.left.mapOver(fn)
	n.value.MapOver(fn)
	n.right.mapOver(fn)
}

// ascend calls fn for every key and payload in order until fn returns false.
func (n *node[K, V]) ascend(fn func(K, index.Index[V]) bool) bool {
	if n == nil {
		return true
	}
	return n.left.ascend(fn) && fn(n.key, n.value) && n.right.ascend(fn)
}

func (n *node[K, V]) descend(fn func(K, index.Index[V]) bool) bool {
	if n == nil {
		return true
	}
	return n.right.descend(fn) && fn(n.key, n.value) && n.left.descend(fn)
}
