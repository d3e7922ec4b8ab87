// Package bitmap provides a terminal container of uint32 row ids backed by a
// Roaring bitmap.
//
// Use it as the innermost level of a nested index when entries are row
// positions of an external table. Ids are kept as a set: putting an id that
// is already present does not change the size.
package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/ordex/index"
)

// Bitmap is a set of row ids visited in ascending id order.
type Bitmap struct {
	rb *roaring.Bitmap
}

var _ index.Index[uint32] = (*Bitmap)(nil)

// New creates an empty bitmap.
func New() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// Of creates a bitmap holding ids.
func Of(ids ...uint32) *Bitmap {
	return &Bitmap{rb: roaring.BitmapOf(ids...)}
}

// Factory returns an index.Factory producing empty bitmaps.
func Factory() index.Factory[uint32] {
	return index.FactoryFunc[uint32](func() index.Index[uint32] {
		return New()
	})
}

// Size returns the number of ids.
func (b *Bitmap) Size() int {
	return int(b.rb.GetCardinality())
}

// Contains reports whether id is present.
func (b *Bitmap) Contains(id uint32) bool {
	return b.rb.Contains(id)
}

// ToArray returns the ids in ascending order.
func (b *Bitmap) ToArray() []uint32 {
	return b.rb.ToArray()
}

// Roaring returns a clone of the underlying bitmap for set algebra.
func (b *Bitmap) Roaring() *roaring.Bitmap {
	return b.rb.Clone()
}

// Put adds id.
func (b *Bitmap) Put(id uint32, locked bool) index.Index[uint32] {
	if b.rb.Contains(id) {
		return b
	}
	if locked {
		rb := b.rb.Clone()
		rb.Add(id)
		return &Bitmap{rb: rb}
	}
	b.rb.Add(id)
	return b
}

// Remove deletes id.
func (b *Bitmap) Remove(id uint32, locked bool) index.Index[uint32] {
	if !b.rb.Contains(id) {
		return b
	}
	if locked {
		rb := b.rb.Clone()
		rb.Remove(id)
		return &Bitmap{rb: rb}
	}
	b.rb.Remove(id)
	return b
}

// Select emits ids in ascending order.
func (b *Bitmap) Select(sink index.Sink[uint32], c index.Cursor, _ index.Order, pred index.Predicate[uint32]) index.Cursor {
	n := int(b.rb.GetCardinality())
	if pred == nil && c.Skip >= n {
		c.Skip -= n
		return c
	}

	it := b.rb.Iterator()
	if pred == nil && c.Skip > 0 {
		// Rank-based seek past the skipped prefix.
		first, err := b.rb.Select(uint32(c.Skip))
		if err == nil {
			it.AdvanceIfNeeded(first)
			c.Skip = 0
		}
	}
	for it.HasNext() && !c.Done() {
		c = index.Emit(c, sink, it.Next(), pred)
	}
	return c
}

// SelectReverse emits ids in descending order.
func (b *Bitmap) SelectReverse(sink index.Sink[uint32], c index.Cursor, _ index.Order, pred index.Predicate[uint32]) index.Cursor {
	n := int(b.rb.GetCardinality())
	if pred == nil && c.Skip >= n {
		c.Skip -= n
		return c
	}

	it := b.rb.ReverseIterator()
	for it.HasNext() && !c.Done() {
		c = index.Emit(c, sink, it.Next(), pred)
	}
	return c
}

// MapOver calls fn with the bitmap itself.
func (b *Bitmap) MapOver(fn func(index.Index[uint32])) {
	fn(b)
}
