package aatree

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when the dedup policy rejects an insert.
	ErrDuplicateKey = errors.New("aatree: duplicate key")

	// ErrNilKeyFunc is returned when a tree is created without a key extractor.
	ErrNilKeyFunc = errors.New("aatree: key function is nil")

	// ErrNilCompare is returned when a tree is created without a comparator.
	ErrNilCompare = errors.New("aatree: compare function is nil")
)

// ErrInvariant describes a structural violation found by Verify.
type ErrInvariant struct {
	Rule  string // violated rule
	Key   any    // key of the offending node
	Level int
	Size  int
}

func (e *ErrInvariant) Error() string {
	return fmt.Sprintf("aatree: invariant %q violated at key %v (level %d, size %d)", e.Rule, e.Key, e.Level, e.Size)
}
