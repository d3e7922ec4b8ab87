package ordex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ordex/index/aatree"
	"github.com/hupe1980/ordex/index/hash"
)

var (
	// ErrDuplicateKey is returned when the dedup policy rejects an insert.
	ErrDuplicateKey = errors.New("ordex: duplicate key")

	// ErrUnsortedInput is returned by BulkLoad for input that is not sorted by key.
	ErrUnsortedInput = errors.New("ordex: bulk load input is not sorted")

	// ErrNotEmpty is returned by BulkLoad when the index already holds entries.
	ErrNotEmpty = errors.New("ordex: index is not empty")

	// ErrNilKeyFunc is returned when no key extractor is configured.
	ErrNilKeyFunc = errors.New("ordex: key func is nil")

	// ErrNilCompare is returned when no comparator is configured.
	ErrNilCompare = errors.New("ordex: compare func is nil")

	// ErrInvalidLimit is returned for a negative skip or a limit below Unlimited.
	ErrInvalidLimit = errors.New("ordex: invalid skip or limit")

	// ErrClosed is returned when querying a closed snapshot.
	ErrClosed = errors.New("ordex: snapshot closed")

	// ErrNotFound is returned by Query.First when nothing matches.
	ErrNotFound = errors.New("ordex: not found")

	// ErrOptionType is returned when a typed option does not match the index types.
	ErrOptionType = errors.New("ordex: option type mismatch")
)

// ErrUnsorted reports the first position of a BulkLoad input whose key is
// smaller than its predecessor's.
//
// errors.Is(err, ErrUnsortedInput) holds for every *ErrUnsorted.
type ErrUnsorted struct {
	Index int
}

func (e *ErrUnsorted) Error() string {
	return fmt.Sprintf("ordex: bulk load input is not sorted at position %d", e.Index)
}

func (e *ErrUnsorted) Unwrap() error { return ErrUnsortedInput }

// ErrInvariant describes a structural violation found by Verify.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvariant struct {
	Rule  string
	Key   any
	cause error
}

func (e *ErrInvariant) Error() string {
	return fmt.Sprintf("ordex: invariant %q violated at key %v", e.Rule, e.Key)
}

func (e *ErrInvariant) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, aatree.ErrDuplicateKey) {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	if errors.Is(err, aatree.ErrNilKeyFunc) || errors.Is(err, hash.ErrNilKeyFunc) {
		return fmt.Errorf("%w: %w", ErrNilKeyFunc, err)
	}
	if errors.Is(err, aatree.ErrNilCompare) {
		return fmt.Errorf("%w: %w", ErrNilCompare, err)
	}

	var inv *aatree.ErrInvariant
	if errors.As(err, &inv) {
		return &ErrInvariant{Rule: inv.Rule, Key: inv.Key, cause: err}
	}

	return err
}
