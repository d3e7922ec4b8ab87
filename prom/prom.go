// Package prom exports ordex operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	ix, _ := ordex.Ordered(key).Metrics(prom.New(reg, "people")).Build()
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/ordex"
)

const namespace = "ordex"

// Collector implements ordex.MetricsCollector with Prometheus metrics
// labelled by index name.
type Collector struct {
	puts       prometheus.Counter
	putEntries prometheus.Counter
	putErrors  prometheus.Counter
	removes    *prometheus.CounterVec
	queries    prometheus.Counter
	queryErrs  prometheus.Counter
	results    prometheus.Counter
	bulkLoads  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ ordex.MetricsCollector = (*Collector)(nil)

// New registers the metrics of the index called name with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, name string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	labels := prometheus.Labels{"index": name}

	return &Collector{
		puts: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "puts_total",
			Help:        "The total number of put calls",
			ConstLabels: labels,
		}),
		putEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "put_entries_total",
			Help:        "The total number of entries passed to put calls",
			ConstLabels: labels,
		}),
		putErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "put_errors_total",
			Help:        "The total number of put calls that returned an error",
			ConstLabels: labels,
		}),
		removes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "removes_total",
			Help:        "The total number of remove calls by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		queries: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "queries_total",
			Help:        "The total number of executed queries",
			ConstLabels: labels,
		}),
		queryErrs: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "query_errors_total",
			Help:        "The total number of queries that returned an error",
			ConstLabels: labels,
		}),
		results: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "query_results_total",
			Help:        "The total number of entries returned by queries",
			ConstLabels: labels,
		}),
		bulkLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bulk_loads_total",
			Help:        "The total number of bulk loads by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "operation_duration_seconds",
			Help:        "Latency of index operations",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
			ConstLabels: labels,
		}, []string{"op"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordPut implements ordex.MetricsCollector.
func (c *Collector) RecordPut(count int, duration time.Duration, err error) {
	c.puts.Inc()
	c.putEntries.Add(float64(count))
	if err != nil {
		c.putErrors.Inc()
	}
	c.duration.WithLabelValues("put").Observe(duration.Seconds())
}

// RecordRemove implements ordex.MetricsCollector.
func (c *Collector) RecordRemove(removed bool, duration time.Duration) {
	if removed {
		c.removes.WithLabelValues("removed").Inc()
	} else {
		c.removes.WithLabelValues("absent").Inc()
	}
	c.duration.WithLabelValues("remove").Observe(duration.Seconds())
}

// RecordQuery implements ordex.MetricsCollector.
func (c *Collector) RecordQuery(results int, duration time.Duration, err error) {
	c.queries.Inc()
	c.results.Add(float64(results))
	if err != nil {
		c.queryErrs.Inc()
	}
	c.duration.WithLabelValues("query").Observe(duration.Seconds())
}

// RecordBulkLoad implements ordex.MetricsCollector.
func (c *Collector) RecordBulkLoad(_ int, duration time.Duration, err error) {
	c.bulkLoads.WithLabelValues(outcome(err)).Inc()
	c.duration.WithLabelValues("bulk_load").Observe(duration.Seconds())
}
