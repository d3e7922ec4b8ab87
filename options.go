package ordex

import (
	"log/slog"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
)

type options struct {
	name             string
	metricsCollector MetricsCollector
	logger           *Logger
	inPlace          bool
	bulkParallelism  int
	bulkThreshold    int

	// Typed settings are checked against the index types in New.
	tail  any
	dedup any
}

// Option configures an Index.
type Option func(*options)

// WithName tags log records of the index with name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ordex.BasicMetricsCollector{}
//	ix, _ := ordex.New(key, cmp.Compare[int], ordex.WithMetricsCollector(metrics))
//	// ... use ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Puts: %d, Avg latency: %dns\n", stats.PutCount, stats.PutAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTail sets the factory for the payload of each key. The default is an
// insertion-ordered bag. Pass the factory of another index level to build a
// composite index, see ThenBy and ThenHash.
func WithTail[V any](f index.Factory[V]) Option {
	return func(o *options) {
		o.tail = f
	}
}

// WithDedup sets the key collision policy.
func WithDedup[K, V any](d aatree.Dedup[K, V]) Option {
	return func(o *options) {
		o.dedup = d
	}
}

// WithInPlaceWrites lets writes mutate nodes in place while no Snapshot or
// query is open. Queries and snapshots stay safe under concurrent writes;
// Get, Lookup, Len and Stats do not and must not overlap with writers.
func WithInPlaceWrites() Option {
	return func(o *options) {
		o.inPlace = true
	}
}

// WithBulkParallelism bounds the goroutines used by BulkLoad and sets the
// input size from which they are used. n = 1 disables concurrency.
// threshold <= 0 keeps the default.
func WithBulkParallelism(n, threshold int) Option {
	return func(o *options) {
		o.bulkParallelism = n
		if threshold > 0 {
			o.bulkThreshold = threshold
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		bulkThreshold:    aatree.DefaultBulkParallelThreshold,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.name != "" {
		o.logger = o.logger.WithIndex(o.name)
	}
	return o
}

// treeOptions converts the untyped settings into aatree options.
func treeOptions[K, V any](o options) (func(*aatree.Options[K, V]), error) {
	var tail index.Factory[V]
	if o.tail != nil {
		f, ok := o.tail.(index.Factory[V])
		if !ok {
			return nil, ErrOptionType
		}
		tail = f
	}

	var dedup aatree.Dedup[K, V]
	if o.dedup != nil {
		d, ok := o.dedup.(aatree.Dedup[K, V])
		if !ok {
			return nil, ErrOptionType
		}
		dedup = d
	}

	return func(to *aatree.Options[K, V]) {
		to.Tail = tail
		to.Dedup = dedup
		to.BulkParallelism = o.bulkParallelism
		to.BulkParallelThreshold = o.bulkThreshold
	}, nil
}
