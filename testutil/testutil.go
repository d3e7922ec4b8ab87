package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sort"
	"sync"

	"github.com/hupe1980/ordex/index"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a random permutation of [0, n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Shuffle shuffles s in place.
func Shuffle[T any](r *RNG, s []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// UniqueInts returns n distinct values from [0, universe) in random order.
// It panics if universe < n.
func (r *RNG) UniqueInts(n, universe int) []int {
	if universe < n {
		panic("testutil: universe smaller than n")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for len(out) < n {
		v := r.rand.Intn(universe)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Zipf samples values in [0, n) following Zipf's law: P(k) ∝ 1/(k+1)^s.
// s=1.0 gives standard Zipf, s=1.5 gives a heavy head (80/20 rule).
// The cumulative distribution is computed once per sampler.
type Zipf struct {
	rng *RNG
	cdf []float64
}

// NewZipf creates a Zipf sampler over [0, n).
func (r *RNG) NewZipf(n int, s float64) *Zipf {
	if n < 1 {
		n = 1
	}
	cdf := make([]float64, n)
	var total float64
	for k := range n {
		total += 1.0 / math.Pow(float64(k+1), s)
		cdf[k] = total
	}
	for k := range cdf {
		cdf[k] /= total
	}
	return &Zipf{rng: r, cdf: cdf}
}

// Next returns the next sample.
func (z *Zipf) Next() int {
	u := z.rng.Float64()
	i := sort.SearchFloat64s(z.cdf, u)
	if i >= len(z.cdf) {
		i = len(z.cdf) - 1
	}
	return i
}

// Collector accumulates the entries emitted to its Sink.
type Collector[V any] struct {
	Items []V
}

// Sink returns a sink appending to c.Items.
func (c *Collector[V]) Sink() index.Sink[V] {
	return func(v V) { c.Items = append(c.Items, v) }
}

// SelectAll returns every entry of idx in traversal order.
func SelectAll[V any](idx index.Index[V], reverse bool, order index.Order) []V {
	var c Collector[V]
	if reverse {
		idx.SelectReverse(c.Sink(), index.All(), order, nil)
	} else {
		idx.Select(c.Sink(), index.All(), order, nil)
	}
	return c.Items
}

// Sorted returns a sorted copy of s.
func Sorted[T cmp.Ordered](s []T) []T {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

// Range returns [lo, hi).
func Range(lo, hi int) []int {
	out := make([]int, 0, max(hi-lo, 0))
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}
