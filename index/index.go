package index

// Unlimited is the Cursor.Limit value that disables the limit.
const Unlimited = -1

// Sink consumes the entries emitted by a traversal, one call per entry.
type Sink[V any] func(v V)

// Predicate filters entries during a traversal. A nil predicate accepts everything.
type Predicate[V any] func(v V) bool

// Index is the payload contract of every index level.
type Index[V any] interface {
	// Size returns the total number of entries, including nested ones.
	Size() int

	// Put adds v and returns the resulting index.
	Put(v V, locked bool) Index[V]

	// Remove deletes v and returns the resulting index. Removing an absent
	// entry returns the receiver unchanged.
	Remove(v V, locked bool) Index[V]

	// Select emits entries in ascending order.
	Select(sink Sink[V], c Cursor, order Order, pred Predicate[V]) Cursor

	// SelectReverse emits entries in descending order.
	SelectReverse(sink Sink[V], c Cursor, order Order, pred Predicate[V]) Cursor

	// MapOver calls fn for every terminal container reachable from this index,
	// in key order.
	MapOver(fn func(Index[V]))
}

// Factory creates empty nested indexes for new keys.
type Factory[V any] interface {
	New() Index[V]
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc[V any] func() Index[V]

// New implements Factory.
func (f FactoryFunc[V]) New() Index[V] { return f() }

// Cursor carries the remaining skip and limit through a traversal.
type Cursor struct {
	Skip  int
	Limit int
}

// All returns a cursor without skip or limit.
func All() Cursor {
	return Cursor{Limit: Unlimited}
}

// Page returns a cursor that skips the first skip entries and emits at most
// limit entries. A negative limit means no limit.
func Page(skip, limit int) Cursor {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = Unlimited
	}
	return Cursor{Skip: skip, Limit: limit}
}

// Done reports whether the limit has been exhausted.
func (c Cursor) Done() bool {
	return c.Limit == 0
}

// Emit applies the predicate, then skip, then limit to v and forwards it to
// the sink when it survives all three.
func Emit[V any](c Cursor, sink Sink[V], v V, pred Predicate[V]) Cursor {
	if c.Limit == 0 {
		return c
	}
	if pred != nil && !pred(v) {
		return c
	}
	if c.Skip > 0 {
		c.Skip--
		return c
	}
	sink(v)
	if c.Limit > 0 {
		c.Limit--
	}
	return c
}
