package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrEntryLimitExceeded is returned by Admit when the index already holds
// as many entries as the budget allows.
var ErrEntryLimitExceeded = errors.New("entry limit exceeded")

// Config bounds a workload running against one index. Zero values disable
// the corresponding limit.
type Config struct {
	// MaxEntries caps the entries stored in the index. Puts beyond it are
	// refused until removes free room.
	MaxEntries int64

	// MaxReaders caps the queries holding a read view at the same time.
	MaxReaders int64

	// OpsPerSec paces puts, removes and queries together.
	OpsPerSec int
}

// Usage is a point-in-time view of a Governor.
type Usage struct {
	Entries    int64
	EntryLimit int64
	Readers    int64
}

// Governor admits writes and queries against an index within the limits of
// a Config. A nil *Governor admits everything.
type Governor struct {
	limit int64

	entries   atomic.Int64
	entrySlot *semaphore.Weighted

	readers    atomic.Int64
	readerSlot *semaphore.Weighted

	pace *rate.Limiter
}

// NewGovernor returns a Governor enforcing cfg.
func NewGovernor(cfg Config) *Governor {
	g := &Governor{limit: max(cfg.MaxEntries, 0)}
	if cfg.MaxEntries > 0 {
		g.entrySlot = semaphore.NewWeighted(cfg.MaxEntries)
	}
	if cfg.MaxReaders > 0 {
		g.readerSlot = semaphore.NewWeighted(cfg.MaxReaders)
	}
	if cfg.OpsPerSec > 0 {
		g.pace = rate.NewLimiter(rate.Limit(cfg.OpsPerSec), cfg.OpsPerSec)
	}
	return g
}

// Admit reserves room for n new entries. It never blocks: a full index
// yields ErrEntryLimitExceeded and the caller decides what to do instead.
func (g *Governor) Admit(n int64) error {
	if g == nil || n <= 0 {
		return nil
	}
	if g.entrySlot != nil && !g.entrySlot.TryAcquire(n) {
		return ErrEntryLimitExceeded
	}
	g.entries.Add(n)
	return nil
}

// Evict returns room for n entries that left the index.
func (g *Governor) Evict(n int64) {
	if g == nil || n <= 0 {
		return
	}
	if g.entrySlot != nil {
		g.entrySlot.Release(n)
	}
	g.entries.Add(-n)
}

// Reader waits for a query slot and returns the func that frees it.
func (g *Governor) Reader(ctx context.Context) (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if g.readerSlot == nil {
		return g.enterReader(), nil
	}
	if err := g.readerSlot.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return g.enterReader(), nil
}

// TryReader is Reader without waiting. ok is false when every slot is taken.
func (g *Governor) TryReader() (release func(), ok bool) {
	if g == nil {
		return func() {}, true
	}
	if g.readerSlot == nil {
		return g.enterReader(), true
	}
	if !g.readerSlot.TryAcquire(1) {
		return nil, false
	}
	return g.enterReader(), true
}

func (g *Governor) enterReader() func() {
	g.readers.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.readers.Add(-1)
			if g.readerSlot != nil {
				g.readerSlot.Release(1)
			}
		}
	}
}

// Pace blocks until n more operations fit the configured rate.
func (g *Governor) Pace(ctx context.Context, n int) error {
	if g == nil || g.pace == nil {
		return nil
	}
	return g.pace.WaitN(ctx, n)
}

// TryPace reports whether n operations fit the rate right now and consumes
// them if so.
func (g *Governor) TryPace(n int) bool {
	if g == nil || g.pace == nil {
		return true
	}
	return g.pace.AllowN(time.Now(), n)
}

// Usage reports the current entry count, the entry budget (0 when
// unlimited) and the number of running queries.
func (g *Governor) Usage() Usage {
	if g == nil {
		return Usage{}
	}
	return Usage{
		Entries:    g.entries.Load(),
		EntryLimit: g.limit,
		Readers:    g.readers.Load(),
	}
}
