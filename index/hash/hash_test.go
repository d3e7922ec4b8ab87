package hash

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/aatree"
	"github.com/hupe1980/ordex/testutil"
)

type event struct {
	Tenant string
	Seq    int
}

func newEvents(t *testing.T, optFns ...func(o *Options[event])) *Hash[string, event] {
	t.Helper()
	h, err := New(func(e event) string { return e.Tenant }, optFns...)
	require.NoError(t, err)
	return h
}

func TestNew_NilKey(t *testing.T) {
	_, err := New[string, event](nil)
	assert.ErrorIs(t, err, ErrNilKeyFunc)

	_, err = Factory[string, event](nil)
	assert.ErrorIs(t, err, ErrNilKeyFunc)
}

func TestHash_FirstInsertionOrder(t *testing.T) {
	h := newEvents(t)
	var idx index.Index[event] = h
	for _, e := range []event{{"b", 1}, {"a", 2}, {"b", 3}, {"c", 4}, {"a", 5}} {
		idx = idx.Put(e, false)
	}

	assert.Equal(t, 5, h.Size())
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"b", "a", "c"}, h.Keys())

	assert.Equal(t, []event{{"b", 1}, {"b", 3}, {"a", 2}, {"a", 5}, {"c", 4}}, testutil.SelectAll(idx, false, nil))
	assert.Equal(t, []event{{"c", 4}, {"a", 2}, {"a", 5}, {"b", 1}, {"b", 3}}, testutil.SelectAll(idx, true, nil))
	assert.Equal(t, []event{{"c", 4}, {"a", 5}, {"a", 2}, {"b", 3}, {"b", 1}}, testutil.SelectAll(idx, true, index.Order{index.Desc}))

	p, ok := h.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, p.Size())

	_, ok = h.Get("z")
	assert.False(t, ok)
}

func TestHash_SkipLimit(t *testing.T) {
	h := newEvents(t)
	for i := range 20 {
		h.Put(event{Tenant: string(rune('a' + i%4)), Seq: i}, false)
	}

	var c testutil.Collector[event]
	cur := h.Select(c.Sink(), index.Page(6, 3), nil, nil)

	// Tenant "a" holds seq 0,4,8,12,16 and "b" starts with 1,5,9.
	assert.Equal(t, []event{{"b", 5}, {"b", 9}, {"b", 13}}, c.Items)
	assert.True(t, cur.Done())

	c.Items = nil
	h.Select(c.Sink(), index.Page(1, 2), nil, func(e event) bool { return e.Seq%3 == 0 })
	assert.Equal(t, []event{{"a", 12}, {"b", 9}}, c.Items)
}

func TestHash_RemoveDropsEmptyKeys(t *testing.T) {
	h := newEvents(t)
	h.Put(event{"a", 1}, false)
	h.Put(event{"b", 2}, false)
	h.Put(event{"a", 3}, false)

	same := h.Remove(event{"a", 42}, false)
	assert.Same(t, h, same)
	same = h.Remove(event{"z", 1}, false)
	assert.Same(t, h, same)

	h.Remove(event{"a", 1}, false)
	h.Remove(event{"a", 3}, false)
	assert.Equal(t, []string{"b"}, h.Keys())
	assert.Equal(t, 1, h.Size())

	_, ok := h.Get("a")
	assert.False(t, ok)
}

func TestHash_CopyOnWrite(t *testing.T) {
	h := newEvents(t)
	h.Put(event{"a", 1}, false)
	h.Put(event{"b", 2}, false)

	next := h.Put(event{"a", 3}, true).Remove(event{"b", 2}, true)

	assert.Equal(t, []event{{"a", 1}, {"b", 2}}, testutil.SelectAll[event](h, false, nil))
	assert.Equal(t, []event{{"a", 1}, {"a", 3}}, testutil.SelectAll(next, false, nil))
	assert.Equal(t, 2, h.Size())
	assert.Equal(t, 2, next.Size())
}

func TestHash_NestedOrderedTail(t *testing.T) {
	bySeq, err := aatree.Factory(func(e event) int { return e.Seq }, cmp.Compare[int])
	require.NoError(t, err)

	h := newEvents(t, func(o *Options[event]) { o.Tail = bySeq })
	for _, e := range []event{{"x", 9}, {"y", 2}, {"x", 1}, {"x", 5}, {"y", 1}} {
		h.Put(e, false)
	}

	assert.Equal(t, []event{{"x", 1}, {"x", 5}, {"x", 9}, {"y", 1}, {"y", 2}}, testutil.SelectAll[event](h, false, nil))

	containers := 0
	h.MapOver(func(index.Index[event]) { containers++ })
	assert.Equal(t, 5, containers)
}
