package aatree

import (
	"github.com/hupe1980/ordex/index"
)

// node is one key of the tree. A nil *node is the empty subtree.
type node[K, V any] struct {
	key   K
	value index.Index[V]
	left  *node[K, V]
	right *node[K, V]
	level int
	size  int
}

// newLeaf manufactures the node that replaces an empty subtree on insert.
func newLeaf[K, V any](key K, v V, tail index.Factory[V]) *node[K, V] {
	value := tail.New().Put(v, false)
	return &node[K, V]{
		key:   key,
		value: value,
		level: 1,
		size:  value.Size(),
	}
}

func (n *node[K, V]) lvl() int {
	if n == nil {
		return 0
	}
	return n.level
}

func (n *node[K, V]) sz() int {
	if n == nil {
		return 0
	}
	return n.size
}

// maybeClone returns a shallow copy when a snapshot may still reference n.
func (n *node[K, V]) maybeClone(locked bool) *node[K, V] {
	if !locked || n == nil {
		return n
	}
	c := *n
	return &c
}

func (n *node[K, V]) updateSize() {
	n.size = n.left.sz() + n.right.sz() + n.value.Size()
}

func (n *node[K, V]) get(key K, compare func(a, b K) int) (index.Index[V], bool) {
	for n != nil {
		r := compare(n.key, key)
		switch {
		case r == 0:
			return n.value, true
		case r > 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil, false
}

// getAll scans every node. It serves comparators that are not consistent
// with the tree order, such as partial matches.
func (n *node[K, V]) getAll(key K, compare func(a, b K) int, out []index.Index[V]) []index.Index[V] {
	if n == nil {
		return out
	}
	out = n.left.getAll(key, compare, out)
	if compare(n.key, key) == 0 {
		out = append(out, n.value)
	}
	return n.right.getAll(key, compare, out)
}

func (n *node[K, V]) predecessor() *node[K, V] {
	s := n.left
	for s.right != nil {
		s = s.right
	}
	return s
}

func (n *node[K, V]) successor() *node[K, V] {
	s := n.right
	for s.left != nil {
		s = s.left
	}
	return s
}

func (n *node[K, V]) min() *node[K, V] {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func (n *node[K, V]) max() *node[K, V] {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

func (n *node[K, V]) height() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.left.height(), n.right.height())
}

func (n *node[K, V]) count() int {
	if n == nil {
		return 0
	}
	return 1 + n.left.count() + n.right.count()
}
