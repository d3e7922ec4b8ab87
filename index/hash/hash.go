// Package hash provides an unordered index level with O(1) key lookup.
//
// Keys are visited in the order of their first insertion, which makes a
// Hash a drop-in payload for composite indexes whose column has no useful
// order, such as tenant or category ids.
package hash

import (
	"errors"
	"reflect"
	"slices"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/bag"
)

// ErrNilKeyFunc is returned when no key extractor is configured.
var ErrNilKeyFunc = errors.New("hash: key func is nil")

// Options configures a Hash.
type Options[V any] struct {
	// Tail creates the payload of a new key. Default: an insertion-ordered bag.
	Tail index.Factory[V]
}

type config[K comparable, V any] struct {
	key  func(V) K
	tail index.Factory[V]
}

// Hash maps comparable keys to nested payloads.
type Hash[K comparable, V any] struct {
	cfg  *config[K, V]
	keys []K
	m    map[K]index.Index[V]
	size int
}

var _ index.Index[int] = (*Hash[int, int])(nil)

// New creates an empty hash level keyed by key(v).
func New[K comparable, V any](key func(V) K, optFns ...func(o *Options[V])) (*Hash[K, V], error) {
	cfg, err := newConfig(key, optFns...)
	if err != nil {
		return nil, err
	}
	return empty(cfg), nil
}

// Factory returns an index.Factory producing empty hash levels.
func Factory[K comparable, V any](key func(V) K, optFns ...func(o *Options[V])) (index.Factory[V], error) {
	cfg, err := newConfig(key, optFns...)
	if err != nil {
		return nil, err
	}
	return index.FactoryFunc[V](func() index.Index[V] {
		return empty(cfg)
	}), nil
}

func newConfig[K comparable, V any](key func(V) K, optFns ...func(o *Options[V])) (*config[K, V], error) {
	if key == nil {
		return nil, ErrNilKeyFunc
	}

	var opts Options[V]
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Tail == nil {
		opts.Tail = bag.Factory(func(a, b V) bool { return reflect.DeepEqual(a, b) })
	}

	return &config[K, V]{key: key, tail: opts.Tail}, nil
}

func empty[K comparable, V any](cfg *config[K, V]) *Hash[K, V] {
	return &Hash[K, V]{cfg: cfg, m: make(map[K]index.Index[V])}
}

// Size returns the number of entries, including nested ones.
func (h *Hash[K, V]) Size() int { return h.size }

// Len returns the number of distinct keys.
func (h *Hash[K, V]) Len() int { return len(h.keys) }

// Keys returns the keys in first-insertion order.
func (h *Hash[K, V]) Keys() []K { return slices.Clone(h.keys) }

// Get returns the payload stored under key.
func (h *Hash[K, V]) Get(key K) (index.Index[V], bool) {
	p, ok := h.m[key]
	return p, ok
}

// clone copies the key table. Payloads are shared and copied on their own
// write path.
func (h *Hash[K, V]) clone() *Hash[K, V] {
	m := make(map[K]index.Index[V], len(h.m)+1)
	for k, p := range h.m {
		m[k] = p
	}
	return &Hash[K, V]{cfg: h.cfg, keys: slices.Clone(h.keys), m: m, size: h.size}
}

// Put adds v under key(v). With locked set the receiver is not modified.
func (h *Hash[K, V]) Put(v V, locked bool) index.Index[V] {
	k := h.cfg.key(v)

	s := h
	if locked {
		s = h.clone()
	}

	p, ok := s.m[k]
	if !ok {
		s.keys = append(s.keys, k)
		p = s.cfg.tail.New()
	}
	before := p.Size()
	p = p.Put(v, locked)
	s.m[k] = p
	s.size += p.Size() - before

	return s
}

// Remove deletes v. A key whose payload becomes empty is dropped.
func (h *Hash[K, V]) Remove(v V, locked bool) index.Index[V] {
	k := h.cfg.key(v)

	p, ok := h.m[k]
	if !ok {
		return h
	}
	before := p.Size()
	np := p.Remove(v, locked)
	after := np.Size()
	if after == before {
		return h
	}

	s := h
	if locked {
		s = h.clone()
	}
	s.size += after - before
	if after > 0 {
		s.m[k] = np
		return s
	}

	delete(s.m, k)
	if i := slices.Index(s.keys, k); i >= 0 {
		s.keys = slices.Delete(s.keys, i, i+1)
	}
	return s
}

// Select visits keys in first-insertion order. order[0] selects the
// direction of the payloads.
func (h *Hash[K, V]) Select(sink index.Sink[V], c index.Cursor, order index.Order, pred index.Predicate[V]) index.Cursor {
	for _, k := range h.keys {
		if c = h.visit(k, sink, c, order, pred); c.Done() {
			break
		}
	}
	return c
}

// SelectReverse visits keys in reverse first-insertion order.
func (h *Hash[K, V]) SelectReverse(sink index.Sink[V], c index.Cursor, order index.Order, pred index.Predicate[V]) index.Cursor {
	for i := len(h.keys) - 1; i >= 0; i-- {
		if c = h.visit(h.keys[i], sink, c, order, pred); c.Done() {
			break
		}
	}
	return c
}

func (h *Hash[K, V]) visit(k K, sink index.Sink[V], c index.Cursor, order index.Order, pred index.Predicate[V]) index.Cursor {
	p := h.m[k]
	if pred == nil && c.Skip >= p.Size() {
		c.Skip -= p.Size()
		return c
	}
	return index.SelectDir(p, order.Head(), sink, c, order.Tail(), pred)
}

// MapOver calls fn for every terminal container in key order.
func (h *Hash[K, V]) MapOver(fn func(index.Index[V])) {
	for _, k := range h.keys {
		h.m[k].MapOver(fn)
	}
}
