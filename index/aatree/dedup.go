package aatree

// DedupAction is the outcome of a Dedup policy.
type DedupAction uint8

const (
	// Merge adds the new entry to the payload of the existing key.
	Merge DedupAction = iota
	// Replace discards the payload of the existing key and keeps only the new entry.
	Replace
	// Reject refuses the insert and leaves the tree unchanged.
	Reject
)

// String returns a string representation of the DedupAction.
func (a DedupAction) String() string {
	switch a {
	case Merge:
		return "merge"
	case Replace:
		return "replace"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Dedup decides what happens when v is inserted under a key that already
// exists. It must not modify the tree.
type Dedup[K, V any] func(v V, existing K) DedupAction

// MergeAll keeps every entry.
func MergeAll[K, V any]() Dedup[K, V] {
	return func(V, K) DedupAction { return Merge }
}

// Unique rejects entries whose key already exists.
func Unique[K, V any]() Dedup[K, V] {
	return func(V, K) DedupAction { return Reject }
}

// Overwrite replaces the entries stored under an existing key.
func Overwrite[K, V any]() Dedup[K, V] {
	return func(V, K) DedupAction { return Replace }
}
