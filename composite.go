package ordex

import (
	"cmp"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
	"github.com/hupe1980/ordex/index/bag"
	"github.com/hupe1980/ordex/index/bitmap"
	"github.com/hupe1980/ordex/index/hash"
)

// ThenBy returns the factory of an ordered index level keyed by key, for use
// as the payload of an outer level. An optional tail configures the level
// below it.
func ThenBy[K, V any](key func(V) K, compare func(a, b K) int, tail ...index.Factory[V]) (index.Factory[V], error) {
	f, err := aatree.Factory(key, compare, func(o *aatree.Options[K, V]) {
		if len(tail) > 0 {
			o.Tail = tail[0]
		}
	})
	return f, translateError(err)
}

// ThenOrdered is ThenBy with the natural order of K.
func ThenOrdered[K cmp.Ordered, V any](key func(V) K, tail ...index.Factory[V]) (index.Factory[V], error) {
	return ThenBy(key, cmp.Compare[K], tail...)
}

// ThenHash returns the factory of an unordered level with O(1) key lookup.
// Keys are visited in first-insertion order.
func ThenHash[K comparable, V any](key func(V) K, tail ...index.Factory[V]) (index.Factory[V], error) {
	f, err := hash.Factory(key, func(o *hash.Options[V]) {
		if len(tail) > 0 {
			o.Tail = tail[0]
		}
	})
	return f, translateError(err)
}

// Entries returns the default terminal payload: an insertion-ordered bag
// identifying entries with ==.
func Entries[V comparable]() index.Factory[V] {
	return bag.ComparableFactory[V]()
}

// RowIDs returns a terminal payload of row ids kept in a Roaring bitmap.
// Ids are visited in ascending order and stored once.
func RowIDs() index.Factory[uint32] {
	return bitmap.Factory()
}
