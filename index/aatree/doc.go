// Package aatree implements the ordered index level: an AA tree keyed by one
// column whose nodes each hold a nested index.Index for the remaining columns.
//
// # Structure
//
// Every node carries a level. The tree maintains the AA invariants:
//
//  1. A leaf has level 1.
//  2. A left child has a strictly lower level than its parent.
//  3. A right child has a level lower than or equal to its parent.
//  4. A right grandchild has a strictly lower level than its grandparent.
//  5. A node of level greater than 1 has two children.
//
// and caches size = left.size + right.size + value.Size() on every node.
// The empty subtree is the nil node: it has level 0 and size 0, and inserting
// into it creates a level 1 node with a fresh payload from the tail factory.
//
// # Copy-on-write
//
// Mutations take a locked flag. When it is set, every node on the mutation
// path is cloned before it is written, so a reader holding the previous root
// keeps seeing an unmodified tree. Untouched subtrees are shared between the
// two versions.
//
// # Range slices
//
// GT, GTE, LT and LTE return read-only views that share all subtrees off the
// search path and run in O(height).
package aatree
