// Package index defines the contract shared by every ordex index variant.
//
// An index stores entries of type V. Ordered indexes (package aatree) keep one
// key column per level and hold another Index as the payload of every key, so
// composite (multi-column) indexes are built by nesting:
//
//	tree(age) -> tree(name) -> bag
//
// The innermost level is a terminal container of raw entries:
//
//   - bag: insertion-ordered entries, any V
//   - bitmap: Roaring-backed uint32 row ids in ascending order
//
// and package hash provides an unordered variant keyed by a comparable column.
//
// # Copy-on-write
//
// Put and Remove take a locked flag. When locked is true, a read snapshot may
// still reference the receiver, so the receiver is never modified and a new
// instance is returned instead. When locked is false the receiver may be
// mutated in place. Callers always keep the returned value.
//
// # Traversal state
//
// Select and SelectReverse take a Cursor by value and return the updated
// cursor. Skip is consumed before any entry reaches the sink and a Limit of
// zero stops the traversal.
package index
