package index

// Direction is the traversal direction of one index level.
type Direction uint8

const (
	// Asc visits keys in ascending order.
	Asc Direction = iota
	// Desc visits keys in descending order.
	Desc
)

// String returns a string representation of the Direction.
func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return "unknown"
	}
}

// Order describes the directions of the nested levels below the level being
// traversed. Order[0] applies to the payload of the current level, Order[1]
// to the payload of that payload, and so on. Missing entries default to Asc.
type Order []Direction

// Head returns the direction for the payload directly below this level.
func (o Order) Head() Direction {
	if len(o) == 0 {
		return Asc
	}
	return o[0]
}

// Tail returns the order to pass to the payload.
func (o Order) Tail() Order {
	if len(o) <= 1 {
		return nil
	}
	return o[1:]
}

// SelectDir dispatches to Select or SelectReverse depending on d.
func SelectDir[V any](idx Index[V], d Direction, sink Sink[V], c Cursor, order Order, pred Predicate[V]) Cursor {
	if d == Desc {
		return idx.SelectReverse(sink, c, order, pred)
	}
	return idx.Select(sink, c, order, pred)
}
