// Package ordex provides an ordered in-memory index for Go values.
//
// An index orders values by a key extracted from each value. Every key holds
// a payload that is itself an index, so composite keys are built by nesting
// levels instead of writing multi-column comparators. The top level is an AA
// tree; nested levels can be AA trees, hash levels, insertion-ordered bags or
// Roaring bitmaps of row ids.
//
// # Quick Start
//
//	ix, _ := ordex.Ordered(func(p Person) int { return p.Age }).Build()
//	_ = ix.Put(ctx, Person{Name: "alice", Age: 30})
//	adults, _ := ix.Query().GTE(18).Limit(10).Execute(ctx)
//
// # Composite Keys
//
//	byName, _ := ordex.ThenOrdered(func(p Person) string { return p.Name })
//	ix, _ := ordex.Ordered(func(p Person) int { return p.Age }).Tail(byName).Build()
//
//	// Ages descending, names ascending.
//	people, _ := ix.Query().Reverse().Order(index.Asc).Execute(ctx)
//
// # Concurrency
//
// Writes are serialized. Reads never block and never observe a write that
// started after them: every write copies the nodes on its path and publishes
// a new root atomically. Snapshot pins the current root for repeated reads.
//
// WithInPlaceWrites drops the copying while no snapshot or query is active.
// It is meant for indexes owned by a single goroutine.
//
// # Key Features
//
//   - O(log n) put, remove and lookup
//   - O(log n) skip for paged queries
//   - O(height) range slices sharing structure with the source
//   - O(n) bulk load from sorted input, parallel for large inputs
//   - Pluggable duplicate-key policy (merge, replace, reject)
package ordex
