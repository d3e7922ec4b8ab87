// This file implements the immutable fluent builder for creating indexes.
// Each method returns a new builder with the updated configuration.
package ordex

import (
	"cmp"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
)

// Ordered creates a builder for an index over a naturally ordered key.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This prevents accidental state sharing.
//
// Example:
//
//	ix, err := ordex.Ordered(func(p Person) int { return p.Age }).
//	    Tail(byName).
//	    Unique().
//	    Build()
func Ordered[K cmp.Ordered, V any](key func(V) K) Builder[K, V] {
	return By(key, cmp.Compare[K])
}

// By creates a builder for an index ordered by compare.
func By[K, V any](key func(V) K, compare func(a, b K) int) Builder[K, V] {
	return Builder[K, V]{
		key:     key,
		compare: compare,
	}
}

// Builder is an immutable fluent builder for Index.
type Builder[K, V any] struct {
	key           func(V) K
	compare       func(a, b K) int
	tail          index.Factory[V]
	dedup         aatree.Dedup[K, V]
	name          string
	logger        *Logger
	metrics       MetricsCollector
	inPlace       bool
	bulkWorkers   int
	bulkThreshold int
}

// Compare replaces the comparator.
func (b Builder[K, V]) Compare(compare func(a, b K) int) Builder[K, V] {
	b.compare = compare
	return b
}

// Tail sets the payload factory, typically the next level of a composite
// index created with ThenBy, ThenOrdered or ThenHash.
func (b Builder[K, V]) Tail(f index.Factory[V]) Builder[K, V] {
	b.tail = f
	return b
}

// Dedup sets the key collision policy.
func (b Builder[K, V]) Dedup(d aatree.Dedup[K, V]) Builder[K, V] {
	b.dedup = d
	return b
}

// Unique rejects entries whose key already exists.
func (b Builder[K, V]) Unique() Builder[K, V] {
	return b.Dedup(aatree.Unique[K, V]())
}

// Overwrite replaces the entries of an existing key.
func (b Builder[K, V]) Overwrite() Builder[K, V] {
	return b.Dedup(aatree.Overwrite[K, V]())
}

// Name tags log records with name.
func (b Builder[K, V]) Name(name string) Builder[K, V] {
	b.name = name
	return b
}

// Logger sets the structured logger for operation tracing.
func (b Builder[K, V]) Logger(l *Logger) Builder[K, V] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b Builder[K, V]) Metrics(mc MetricsCollector) Builder[K, V] {
	b.metrics = mc
	return b
}

// InPlaceWrites enables in-place writes while no snapshot is open.
func (b Builder[K, V]) InPlaceWrites() Builder[K, V] {
	b.inPlace = true
	return b
}

// BulkParallelism bounds the BulkLoad goroutines and sets the input size
// from which they are used.
func (b Builder[K, V]) BulkParallelism(workers, threshold int) Builder[K, V] {
	b.bulkWorkers = workers
	b.bulkThreshold = threshold
	return b
}

// Build creates the index.
func (b Builder[K, V]) Build() (*Index[K, V], error) {
	var opts []Option
	if b.tail != nil {
		opts = append(opts, WithTail(b.tail))
	}
	if b.dedup != nil {
		opts = append(opts, WithDedup(b.dedup))
	}
	if b.name != "" {
		opts = append(opts, WithName(b.name))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	if b.inPlace {
		opts = append(opts, WithInPlaceWrites())
	}
	if b.bulkWorkers != 0 || b.bulkThreshold > 0 {
		opts = append(opts, WithBulkParallelism(b.bulkWorkers, b.bulkThreshold))
	}

	return New(b.key, b.compare, opts...)
}

// MustBuild creates the index, panicking on error.
func (b Builder[K, V]) MustBuild() *Index[K, V] {
	ix, err := b.Build()
	if err != nil {
		panic(err)
	}
	return ix
}
