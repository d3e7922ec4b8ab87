package workload

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ordex"
	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/internal/resource"
	"github.com/hupe1980/ordex/testutil"
)

// Record is one indexed entry.
type Record struct {
	Bucket int
	ID     uint64
}

// Config describes a workload.
type Config struct {
	Seed     int64
	Ops      int     // write operations across all writers
	Queries  int     // queries across all readers
	Keys     int     // id universe
	Buckets  int     // bucket universe
	Zipf     float64 // id skew; values <= 1 mean uniform
	Remove   float64 // fraction of writes that remove
	PageSize int

	Writers int
	Readers int

	Preload     int // entries bulk loaded before the run
	OpsPerSec   int
	MaxEntries  int64
	InPlace     bool
	VerifyEvery int // verify the index every n writes per writer; 0 disables
}

// DefaultConfig returns a small mixed workload.
func DefaultConfig() Config {
	return Config{
		Seed:     1,
		Ops:      100_000,
		Queries:  10_000,
		Keys:     1 << 20,
		Buckets:  1024,
		Remove:   0.3,
		PageSize: 50,
		Writers:  1,
		Readers:  runtime.GOMAXPROCS(0),
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch {
	case c.Keys <= 0 || c.Buckets <= 0:
		return errors.New("workload: keys and buckets must be positive")
	case c.Remove < 0 || c.Remove > 1:
		return errors.New("workload: remove fraction must be in [0, 1]")
	case c.Ops > 0 && c.Writers <= 0:
		return errors.New("workload: writes need at least one writer")
	case c.Queries > 0 && c.Readers <= 0:
		return errors.New("workload: queries need at least one reader")
	case c.Preload < 0 || c.Ops < 0 || c.Queries < 0:
		return errors.New("workload: counts must not be negative")
	}
	return nil
}

// Report summarizes a run.
type Report struct {
	Preloaded int
	Puts      int64
	Removes   int64
	Queries   int64
	Results   int64
	Verified  int64
	Duration  time.Duration
	Stats     ordex.Stats
}

// OpsPerSec returns writes and queries per second.
func (r Report) OpsPerSec() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Puts+r.Removes+r.Queries) / r.Duration.Seconds()
}

// NewIndex builds the index the workload runs against.
func NewIndex(cfg Config, logger *ordex.Logger, metrics ordex.MetricsCollector) (*ordex.Index[int, Record], error) {
	byID, err := ordex.ThenOrdered(func(r Record) uint64 { return r.ID })
	if err != nil {
		return nil, err
	}

	b := ordex.Ordered(func(r Record) int { return r.Bucket }).
		Tail(byID).
		Name("workload").
		Logger(logger).
		Metrics(metrics)
	if cfg.InPlace {
		b = b.InPlaceWrites()
	}
	return b.Build()
}

// Run executes the workload against ix.
func Run(ctx context.Context, cfg Config, ix *ordex.Index[int, Record]) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	gov := resource.NewGovernor(resource.Config{
		MaxEntries: cfg.MaxEntries,
		MaxReaders: int64(max(cfg.Readers, 1)),
		OpsPerSec:  cfg.OpsPerSec,
	})

	var report Report

	if cfg.Preload > 0 {
		n, err := preload(ctx, cfg, ix, gov)
		if err != nil {
			return report, err
		}
		report.Preloaded = n
	}

	var (
		puts, removes, queries, results, verified atomic.Int64
	)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	for w := range cfg.Writers {
		ops := share(cfg.Ops, cfg.Writers, w)
		rng := testutil.NewRNG(cfg.Seed + int64(w))
		g.Go(func() error {
			next := sampler(rng, cfg)
			for i := range ops {
				if err := gov.Pace(ctx, 1); err != nil {
					return err
				}

				r := Record{Bucket: rng.Intn(cfg.Buckets), ID: next()}
				remove := rng.Float64() < cfg.Remove
				if !remove && gov.Admit(1) != nil {
					remove = true
				}

				if remove {
					ok, err := ix.Remove(ctx, r)
					if err != nil {
						return err
					}
					if ok {
						gov.Evict(1)
					}
					removes.Add(1)
				} else {
					if err := ix.Put(ctx, r); err != nil {
						return err
					}
					puts.Add(1)
				}

				if cfg.VerifyEvery > 0 && (i+1)%cfg.VerifyEvery == 0 {
					if err := VerifyDeep(ix); err != nil {
						return fmt.Errorf("after %d writes: %w", i+1, err)
					}
					verified.Add(1)
				}
			}
			return nil
		})
	}

	for rd := range cfg.Readers {
		n := share(cfg.Queries, cfg.Readers, rd)
		rng := testutil.NewRNG(cfg.Seed + 1_000_003 + int64(rd))
		g.Go(func() error {
			for range n {
				if err := gov.Pace(ctx, 1); err != nil {
					return err
				}
				release, err := gov.Reader(ctx)
				if err != nil {
					return err
				}
				got, err := query(ctx, ix, rng, cfg)
				release()
				if err != nil {
					return err
				}
				queries.Add(1)
				results.Add(int64(got))
			}
			return nil
		})
	}

	err := g.Wait()

	report.Duration = time.Since(start)
	report.Puts = puts.Load()
	report.Removes = removes.Load()
	report.Queries = queries.Load()
	report.Results = results.Load()
	report.Verified = verified.Load()
	report.Stats = ix.Stats()

	return report, err
}

// query pages through a random bucket range, newest ids first.
func query(ctx context.Context, ix *ordex.Index[int, Record], rng *testutil.RNG, cfg Config) (int, error) {
	lo := rng.Intn(cfg.Buckets)
	hi := lo + 1 + rng.Intn(8)

	q := ix.Query().Between(lo, hi).Order(index.Desc).Limit(cfg.PageSize)
	if rng.Intn(2) == 0 {
		q = q.Reverse()
	}
	if skip := rng.Intn(4); skip > 0 {
		q = q.Skip(skip * cfg.PageSize)
	}

	got, err := q.Execute(ctx)
	if err != nil {
		return 0, err
	}
	if !sortedPage(got) {
		return 0, errors.New("workload: query returned entries out of order")
	}
	return len(got), nil
}

// sortedPage checks that buckets are monotone across the page.
func sortedPage(page []Record) bool {
	return slices.IsSortedFunc(page, func(a, b Record) int { return a.Bucket - b.Bucket }) ||
		slices.IsSortedFunc(page, func(a, b Record) int { return b.Bucket - a.Bucket })
}

func preload(ctx context.Context, cfg Config, ix *ordex.Index[int, Record], gov *resource.Governor) (int, error) {
	rng := testutil.NewRNG(cfg.Seed - 1)
	ids := rng.UniqueInts(min(cfg.Preload, cfg.Keys), cfg.Keys)

	records := make([]Record, len(ids))
	for i, id := range ids {
		records[i] = Record{Bucket: rng.Intn(cfg.Buckets), ID: uint64(id)}
	}
	slices.SortFunc(records, func(a, b Record) int { return a.Bucket - b.Bucket })

	if err := gov.Admit(int64(len(records))); err != nil {
		return 0, fmt.Errorf("workload: preload exceeds entry budget: %w", err)
	}
	if err := ix.BulkLoad(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func sampler(rng *testutil.RNG, cfg Config) func() uint64 {
	if cfg.Zipf > 1 {
		z := rng.NewZipf(cfg.Keys, cfg.Zipf)
		return func() uint64 { return uint64(z.Next()) }
	}
	return func() uint64 { return uint64(rng.Intn(cfg.Keys)) }
}

// share splits total into n near-equal parts and returns part i.
func share(total, n, i int) int {
	if n <= 0 {
		return 0
	}
	s := total / n
	if i < total%n {
		s++
	}
	return s
}

// VerifyDeep checks the invariants of the index and of every nested level
// on a snapshot, so it is safe to call while writers run.
func VerifyDeep(ix *ordex.Index[int, Record]) error {
	snap := ix.Snapshot()
	defer snap.Close()

	tree := snap.Tree()
	if err := tree.Verify(); err != nil {
		return err
	}

	type verifier interface{ Verify() error }

	var err error
	tree.Ascend(func(bucket int, payload index.Index[Record]) bool {
		if v, ok := payload.(verifier); ok {
			if verr := v.Verify(); verr != nil {
				err = fmt.Errorf("bucket %d: %w", bucket, verr)
				return false
			}
		}
		return true
	})
	return err
}
