// Package bag provides the terminal container of raw entries.
//
// A Bag keeps entries in insertion order. It sits at the bottom of a nested
// index chain and holds every entry whose full composite key compares equal.
package bag

import (
	"slices"

	"github.com/hupe1980/ordex/index"
)

// Bag is an insertion-ordered multiset of entries.
type Bag[V any] struct {
	items []V
	equal func(a, b V) bool
}

var _ index.Index[int] = (*Bag[int])(nil)

// New creates an empty bag that identifies entries with equal.
func New[V any](equal func(a, b V) bool) *Bag[V] {
	return &Bag[V]{equal: equal}
}

// NewComparable creates an empty bag that identifies entries with ==.
func NewComparable[V comparable]() *Bag[V] {
	return New(func(a, b V) bool { return a == b })
}

// Factory returns an index.Factory producing empty bags.
func Factory[V any](equal func(a, b V) bool) index.Factory[V] {
	return index.FactoryFunc[V](func() index.Index[V] {
		return New(equal)
	})
}

// ComparableFactory returns an index.Factory producing bags that compare entries with ==.
func ComparableFactory[V comparable]() index.Factory[V] {
	return Factory(func(a, b V) bool { return a == b })
}

// Size returns the number of entries.
func (b *Bag[V]) Size() int {
	return len(b.items)
}

// Items returns a copy of the entries in insertion order.
func (b *Bag[V]) Items() []V {
	return slices.Clone(b.items)
}

// Put appends v.
func (b *Bag[V]) Put(v V, locked bool) index.Index[V] {
	if locked {
		items := make([]V, len(b.items), len(b.items)+1)
		copy(items, b.items)
		return &Bag[V]{items: append(items, v), equal: b.equal}
	}
	b.items = append(b.items, v)
	return b
}

// Remove deletes the first entry equal to v.
func (b *Bag[V]) Remove(v V, locked bool) index.Index[V] {
	i := slices.IndexFunc(b.items, func(x V) bool { return b.equal(x, v) })
	if i < 0 {
		return b
	}
	if locked {
		items := make([]V, 0, len(b.items)-1)
		items = append(items, b.items[:i]...)
		items = append(items, b.items[i+1:]...)
		return &Bag[V]{items: items, equal: b.equal}
	}
	b.items = slices.Delete(b.items, i, i+1)
	return b
}

// Select emits entries in insertion order.
func (b *Bag[V]) Select(sink index.Sink[V], c index.Cursor, _ index.Order, pred index.Predicate[V]) index.Cursor {
	if pred == nil && c.Skip >= len(b.items) {
		c.Skip -= len(b.items)
		return c
	}
	for _, v := range b.items {
		if c.Done() {
			break
		}
		c = index.Emit(c, sink, v, pred)
	}
	return c
}

// SelectReverse emits entries in reverse insertion order.
func (b *Bag[V]) SelectReverse(sink index.Sink[V], c index.Cursor, _ index.Order, pred index.Predicate[V]) index.Cursor {
	if pred == nil && c.Skip >= len(b.items) {
		c.Skip -= len(b.items)
		return c
	}
	for i := len(b.items) - 1; i >= 0; i-- {
		if c.Done() {
			break
		}
		c = index.Emit(c, sink, b.items[i], pred)
	}
	return c
}

// MapOver calls fn with the bag itself.
func (b *Bag[V]) MapOver(fn func(index.Index[V])) {
	fn(b)
}
