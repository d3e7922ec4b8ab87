package ordex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems. The prom
// package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordPut is called after each put. count is the number of entries
	// attempted, err is nil if all of them were stored.
	RecordPut(count int, duration time.Duration, err error)

	// RecordRemove is called after each remove. removed is false when the
	// entry was absent.
	RecordRemove(removed bool, duration time.Duration)

	// RecordQuery is called after each query with the number of emitted entries.
	RecordQuery(results int, duration time.Duration, err error)

	// RecordBulkLoad is called after each bulk load.
	RecordBulkLoad(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordRemove(bool, time.Duration)         {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordBulkLoad(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	PutCount        atomic.Int64
	PutEntries      atomic.Int64
	PutErrors       atomic.Int64
	PutTotalNanos   atomic.Int64
	RemoveCount     atomic.Int64
	RemoveNoops     atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryResults    atomic.Int64
	QueryTotalNanos atomic.Int64
	BulkLoadCount   atomic.Int64
	BulkLoadEntries atomic.Int64
	BulkLoadErrors  atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(count int, duration time.Duration, err error) {
	b.PutCount.Add(1)
	b.PutEntries.Add(int64(count))
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PutErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed bool, _ time.Duration) {
	b.RemoveCount.Add(1)
	if !removed {
		b.RemoveNoops.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordBulkLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBulkLoad(count int, _ time.Duration, err error) {
	b.BulkLoadCount.Add(1)
	if err != nil {
		b.BulkLoadErrors.Add(1)
		return
	}
	b.BulkLoadEntries.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:        b.PutCount.Load(),
		PutEntries:      b.PutEntries.Load(),
		PutErrors:       b.PutErrors.Load(),
		PutAvgNanos:     avg(b.PutTotalNanos.Load(), b.PutCount.Load()),
		RemoveCount:     b.RemoveCount.Load(),
		RemoveNoops:     b.RemoveNoops.Load(),
		QueryCount:      b.QueryCount.Load(),
		QueryErrors:     b.QueryErrors.Load(),
		QueryResults:    b.QueryResults.Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		BulkLoadCount:   b.BulkLoadCount.Load(),
		BulkLoadEntries: b.BulkLoadEntries.Load(),
		BulkLoadErrors:  b.BulkLoadErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount        int64
	PutEntries      int64
	PutErrors       int64
	PutAvgNanos     int64
	RemoveCount     int64
	RemoveNoops     int64
	QueryCount      int64
	QueryErrors     int64
	QueryResults    int64
	QueryAvgNanos   int64
	BulkLoadCount   int64
	BulkLoadEntries int64
	BulkLoadErrors  int64
}
