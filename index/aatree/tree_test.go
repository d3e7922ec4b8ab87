package aatree

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ordex/index"
	"github.com/hupe1980/ordex/index/bag"
	"github.com/hupe1980/ordex/testutil"
)

func identity(v int) int { return v }

func newIntTree(t *testing.T, optFns ...func(o *Options[int, int])) *Tree[int, int] {
	t.Helper()
	optFns = append([]func(o *Options[int, int]){func(o *Options[int, int]) {
		o.Tail = bag.ComparableFactory[int]()
	}}, optFns...)
	tr, err := New(identity, cmp.Compare[int], optFns...)
	require.NoError(t, err)
	return tr
}

func fill(t *testing.T, tr *Tree[int, int], keys []int) *Tree[int, int] {
	t.Helper()
	for _, k := range keys {
		var err error
		tr, err = tr.Insert(k, false)
		require.NoError(t, err)
	}
	return tr
}

func TestNew_Validation(t *testing.T) {
	_, err := New[int, int](nil, cmp.Compare[int])
	assert.ErrorIs(t, err, ErrNilKeyFunc)

	_, err = New[int, int](identity, nil)
	assert.ErrorIs(t, err, ErrNilCompare)

	_, err = Factory[int, int](nil, cmp.Compare[int])
	assert.ErrorIs(t, err, ErrNilKeyFunc)
}

func TestTree_InvariantsUnderRandomWorkload(t *testing.T) {
	for _, locked := range []bool{false, true} {
		name := "in-place"
		if locked {
			name = "copy-on-write"
		}
		t.Run(name, func(t *testing.T) {
			rng := testutil.NewRNG(4711)
			tr := newIntTree(t)
			present := map[int]int{}

			for i := 0; i < 3000; i++ {
				k := rng.Intn(200)
				if rng.Intn(3) == 0 {
					tr = tr.Delete(k, locked)
					if present[k] > 0 {
						present[k]--
					}
				} else {
					var err error
					tr, err = tr.Insert(k, locked)
					require.NoError(t, err)
					present[k]++
				}

				require.NoError(t, tr.Verify(), "step %d", i)

				total := 0
				for _, c := range present {
					total += c
				}
				require.Equal(t, total, tr.Size(), "step %d", i)
			}
		})
	}
}

func TestTree_SelectOrder(t *testing.T) {
	rng := testutil.NewRNG(1)
	keys := rng.UniqueInts(500, 100000)

	tr := fill(t, newIntTree(t), keys)
	require.NoError(t, tr.Verify())

	asc := testutil.SelectAll[int](tr, false, nil)
	assert.Equal(t, testutil.Sorted(keys), asc)
	assert.True(t, slices.IsSorted(asc))

	desc := testutil.SelectAll[int](tr, true, nil)
	slices.Reverse(desc)
	assert.Equal(t, asc, desc)
}

func TestTree_SkipLimit(t *testing.T) {
	rng := testutil.NewRNG(2)
	keys := testutil.Range(1, 101)
	testutil.Shuffle(rng, keys)
	tr := fill(t, newIntTree(t), keys)

	tests := []struct {
		name    string
		reverse bool
		cursor  index.Cursor
		pred    index.Predicate[int]
		want    []int
	}{
		{"skip 10 limit 5", false, index.Page(10, 5), nil, []int{11, 12, 13, 14, 15}},
		{"reverse skip 10 limit 3", true, index.Page(10, 3), nil, []int{90, 89, 88}},
		{"skip past end", false, index.Page(100, 5), nil, nil},
		{"limit zero", false, index.Page(0, 0), nil, nil},
		{"predicate disables pruning", false, index.Page(2, 3), func(v int) bool { return v%10 == 0 }, []int{30, 40, 50}},
		{"reverse predicate", true, index.Page(1, 2), func(v int) bool { return v%25 == 0 }, []int{75, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c testutil.Collector[int]
			if tt.reverse {
				tr.SelectReverse(c.Sink(), tt.cursor, nil, tt.pred)
			} else {
				tr.Select(c.Sink(), tt.cursor, nil, tt.pred)
			}
			assert.Equal(t, tt.want, c.Items)
		})
	}
}

func TestTree_SelectReturnsCursor(t *testing.T) {
	tr := fill(t, newIntTree(t), testutil.Range(0, 10))

	c := tr.Select(func(int) {}, index.Page(15, index.Unlimited), nil, nil)
	assert.Equal(t, 5, c.Skip)

	c = tr.Select(func(int) {}, index.Page(0, 4), nil, nil)
	assert.True(t, c.Done())

	c = tr.Select(func(int) {}, index.Page(8, 10), nil, nil)
	assert.Equal(t, index.Cursor{Skip: 0, Limit: 8}, c)
}

func TestTree_SnapshotIsolation(t *testing.T) {
	tr := fill(t, newIntTree(t), []int{10, 20, 30, 40, 50})
	snapshot := tr.Clone()

	var seen []int
	var err error
	snapshot.Select(func(v int) {
		seen = append(seen, v)
		if v == 20 {
			// A write that lands while the traversal is in flight.
			tr, err = tr.Insert(25, true)
			require.NoError(t, err)
			tr = tr.Delete(40, true)
		}
	}, index.All(), nil, nil)

	assert.Equal(t, []int{10, 20, 30, 40, 50}, seen)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, testutil.SelectAll[int](snapshot, false, nil))
	assert.Equal(t, []int{10, 20, 25, 30, 50}, testutil.SelectAll[int](tr, false, nil))
	require.NoError(t, snapshot.Verify())
	require.NoError(t, tr.Verify())
}

func TestTree_LockedWritesNeverTouchOldVersions(t *testing.T) {
	rng := testutil.NewRNG(3)
	tr := newIntTree(t)

	type version struct {
		tree *Tree[int, int]
		want []int
	}
	var versions []version
	var model []int

	for i := 0; i < 400; i++ {
		k := rng.Intn(64)
		if rng.Intn(2) == 0 {
			tr = tr.Delete(k, true)
			if j := slices.Index(model, k); j >= 0 {
				model = slices.Delete(model, j, j+1)
			}
		} else {
			tr = tr.Put(k, true).(*Tree[int, int])
			model = append(model, k)
		}
		versions = append(versions, version{tree: tr, want: testutil.Sorted(model)})
	}

	for i, v := range versions {
		got := testutil.SelectAll[int](v.tree, false, nil)
		if len(v.want) == 0 {
			assert.Empty(t, got, "version %d", i)
			continue
		}
		assert.Equal(t, v.want, got, "version %d", i)
		require.NoError(t, v.tree.Verify(), "version %d", i)
	}
}

func TestTree_RangeSlices(t *testing.T) {
	tr := fill(t, newIntTree(t), []int{1, 3, 5, 7, 9})

	tests := []struct {
		name  string
		slice *Tree[int, int]
		want  []int
	}{
		{"gte present", tr.GTE(5), []int{5, 7, 9}},
		{"lt present", tr.LT(5), []int{1, 3}},
		{"gt present", tr.GT(5), []int{7, 9}},
		{"lte present", tr.LTE(5), []int{1, 3, 5}},
		{"gte absent", tr.GTE(4), []int{5, 7, 9}},
		{"lte absent", tr.LTE(4), []int{1, 3}},
		{"gt max", tr.GT(9), nil},
		{"lt min", tr.LT(1), nil},
		{"gte below min", tr.GTE(0), []int{1, 3, 5, 7, 9}},
		{"between", tr.GTE(3).LT(9), []int{3, 5, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testutil.SelectAll[int](tt.slice, false, nil))
			assert.Equal(t, len(tt.want), tt.slice.Size())
			assert.True(t, tt.slice.IsView())
			assert.NoError(t, tt.slice.Verify())
		})
	}

	// Slicing never modifies the source.
	assert.Equal(t, []int{1, 3, 5, 7, 9}, testutil.SelectAll[int](tr, false, nil))
	require.NoError(t, tr.Verify())
}

func TestTree_RangeSlicesLarge(t *testing.T) {
	rng := testutil.NewRNG(5)
	keys := rng.UniqueInts(1000, 5000)
	tr := fill(t, newIntTree(t), keys)
	sorted := testutil.Sorted(keys)

	for i := 0; i < 50; i++ {
		pivot := rng.Intn(5000)
		var want []int
		for _, k := range sorted {
			if k >= pivot {
				want = append(want, k)
			}
		}
		got := tr.GTE(pivot)
		if len(want) == 0 {
			assert.Zero(t, got.Size())
			continue
		}
		assert.Equal(t, want, testutil.SelectAll[int](got, false, nil))
	}
}

func TestTree_RoundTrip(t *testing.T) {
	for _, locked := range []bool{false, true} {
		rng := testutil.NewRNG(6)
		keys := rng.UniqueInts(300, 1000)
		tr := newIntTree(t)
		for _, k := range keys {
			tr = tr.Put(k, locked).(*Tree[int, int])
			tr = tr.Put(k, locked).(*Tree[int, int]) // duplicate entry under the same key
		}
		require.Equal(t, 600, tr.Size())

		testutil.Shuffle(rng, keys)
		for _, k := range keys {
			tr = tr.Delete(k, locked)
			tr = tr.Delete(k, locked)
			require.NoError(t, tr.Verify())
		}

		assert.Zero(t, tr.Size())
		assert.Zero(t, tr.Len())
		assert.Nil(t, tr.root)
	}
}

func TestTree_IdempotentDelete(t *testing.T) {
	for _, locked := range []bool{false, true} {
		tr := fill(t, newIntTree(t), []int{4, 2, 6, 1, 3, 5, 7})

		before := testutil.SelectAll[int](tr, false, nil)
		root := tr.root

		same := tr.Delete(42, locked)
		assert.Same(t, tr, same)
		assert.Same(t, root, same.root)
		assert.Equal(t, 7, same.Size())
		assert.Equal(t, before, testutil.SelectAll[int](same, false, nil))

		// Key present, entry absent.
		byDecade, err := New(func(v int) int { return v / 10 }, cmp.Compare[int], func(o *Options[int, int]) {
			o.Tail = bag.ComparableFactory[int]()
		})
		require.NoError(t, err)
		byDecade = byDecade.Put(11, false).(*Tree[int, int])
		same = byDecade.Delete(12, locked)
		assert.Same(t, byDecade, same)
		assert.Equal(t, 1, same.Size())

		gone := byDecade.Delete(11, locked).Delete(11, locked)
		assert.Zero(t, gone.Size())
	}
}

func TestTree_BulkLoadEquivalence(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 7, 8, 15, 16, 100, 1023, 1024, 5000} {
		keys := testutil.Range(0, n)

		empty := newIntTree(t)
		bulk, err := empty.BulkLoad(context.Background(), keys)
		require.NoError(t, err)

		require.NoError(t, bulk.Verify(), "n=%d", n)
		assert.Equal(t, n, bulk.Size())

		got := testutil.SelectAll[int](bulk, false, nil)
		if n == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, keys, got, "n=%d", n)

		incremental := fill(t, newIntTree(t), keys)
		require.NoError(t, incremental.Verify())
		assert.Equal(t, testutil.SelectAll[int](incremental, false, nil), got)

		// Bulk-loaded trees accept further mutations.
		bulk = bulk.Delete(n/2, false)
		bulk, err = bulk.Insert(n+1, false)
		require.NoError(t, err)
		require.NoError(t, bulk.Verify(), "n=%d after mutation", n)
	}
}

func TestTree_BulkLoadGroupsDuplicatesAndRunsInParallel(t *testing.T) {
	var sorted []int
	for k := 0; k < 2000; k++ {
		for range k%3 + 1 {
			sorted = append(sorted, k)
		}
	}

	tr := newIntTree(t, func(o *Options[int, int]) {
		o.BulkParallelism = 4
		o.BulkParallelThreshold = 16
	})
	bulk, err := tr.BulkLoad(context.Background(), sorted)
	require.NoError(t, err)
	require.NoError(t, bulk.Verify())

	assert.Equal(t, len(sorted), bulk.Size())
	assert.Equal(t, 2000, bulk.Len())
	assert.Equal(t, sorted, testutil.SelectAll[int](bulk, false, nil))

	payload, ok := bulk.Get(2)
	require.True(t, ok)
	assert.Equal(t, 3, payload.Size())
}

func TestTree_BulkLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newIntTree(t).BulkLoad(ctx, testutil.Range(0, 10))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTree_Dedup(t *testing.T) {
	type row struct {
		ID   int
		Name string
	}
	key := func(r row) int { return r.ID }

	t.Run("unique rejects", func(t *testing.T) {
		tr, err := New(key, cmp.Compare[int], func(o *Options[int, row]) {
			o.Dedup = Unique[int, row]()
		})
		require.NoError(t, err)

		tr, err = tr.Insert(row{1, "a"}, false)
		require.NoError(t, err)
		same, err := tr.Insert(row{1, "b"}, true)
		assert.ErrorIs(t, err, ErrDuplicateKey)
		assert.Same(t, tr, same)

		// Put swallows the rejection.
		assert.Equal(t, 1, tr.Put(row{1, "c"}, false).Size())
		assert.Equal(t, []row{{1, "a"}}, testutil.SelectAll[row](tr, false, nil))
	})

	t.Run("overwrite replaces", func(t *testing.T) {
		var seen []int
		tr, err := New(key, cmp.Compare[int], func(o *Options[int, row]) {
			o.Dedup = func(v row, existing int) DedupAction {
				seen = append(seen, existing)
				return Replace
			}
		})
		require.NoError(t, err)

		for _, r := range []row{{1, "a"}, {2, "x"}, {1, "b"}, {1, "c"}} {
			tr, err = tr.Insert(r, false)
			require.NoError(t, err)
		}
		assert.Equal(t, []int{1, 1}, seen)
		assert.Equal(t, 2, tr.Size())
		assert.Equal(t, []row{{1, "c"}, {2, "x"}}, testutil.SelectAll[row](tr, false, nil))
		require.NoError(t, tr.Verify())
	})

	t.Run("merge keeps insertion order", func(t *testing.T) {
		tr, err := New(key, cmp.Compare[int], func(o *Options[int, row]) {
			o.Dedup = MergeAll[int, row]()
		})
		require.NoError(t, err)
		for _, r := range []row{{1, "a"}, {1, "b"}} {
			tr, err = tr.Insert(r, false)
			require.NoError(t, err)
		}
		assert.Equal(t, []row{{1, "a"}, {1, "b"}}, testutil.SelectAll[row](tr, false, nil))
		// Payload direction is chosen per call and defaults to ascending.
		assert.Equal(t, []row{{1, "a"}, {1, "b"}}, testutil.SelectAll[row](tr, true, nil))
		assert.Equal(t, []row{{1, "b"}, {1, "a"}}, testutil.SelectAll[row](tr, true, index.Order{index.Desc}))
	})
}

func TestTree_GetAndGetAll(t *testing.T) {
	tr := fill(t, newIntTree(t), []int{10, 11, 20, 21, 22, 30})

	payload, ok := tr.Get(21)
	require.True(t, ok)
	assert.Equal(t, 1, payload.Size())

	_, ok = tr.Get(25)
	assert.False(t, ok)

	// Match on the tens digit: a comparator that does not follow the tree order.
	byDecade := func(a, b int) int { return cmp.Compare(a/10, b/10) }
	all := tr.GetAll(20, byDecade)
	assert.Len(t, all, 3)

	assert.Len(t, tr.GetAll(11, nil), 1)

	minKey, ok := tr.Min()
	require.True(t, ok)
	assert.Equal(t, 10, minKey)
	maxKey, ok := tr.Max()
	require.True(t, ok)
	assert.Equal(t, 30, maxKey)

	_, ok = newIntTree(t).Min()
	assert.False(t, ok)
}

func TestTree_MapOverAndMapTail(t *testing.T) {
	tr := fill(t, newIntTree(t), []int{3, 1, 2, 2})

	var sizes []int
	tr.MapOver(func(idx index.Index[int]) {
		sizes = append(sizes, idx.Size())
	})
	assert.Equal(t, []int{1, 2, 1}, sizes)

	snapshot := tr.Clone()
	reversedBag := func(idx index.Index[int]) index.Index[int] {
		items := idx.(*bag.Bag[int]).Items()
		nb := bag.NewComparable[int]()
		for i := len(items) - 1; i >= 0; i-- {
			nb.Put(items[i]*10, false)
		}
		return nb
	}

	mapped := tr.MapTail(reversedBag, true)
	assert.Equal(t, []int{10, 20, 20, 30}, testutil.SelectAll[int](mapped, false, nil))
	assert.Equal(t, []int{1, 2, 2, 3}, testutil.SelectAll[int](snapshot, false, nil))
	assert.Equal(t, 4, mapped.Size())
}

func TestTree_NestedComposite(t *testing.T) {
	type person struct {
		Age  int
		Name string
	}
	people := []person{
		{30, "carol"}, {25, "bob"}, {30, "alice"}, {25, "dave"}, {40, "erin"}, {30, "alice"},
	}

	byName, err := Factory(func(p person) string { return p.Name }, cmp.Compare[string])
	require.NoError(t, err)

	byAge, err := New(func(p person) int { return p.Age }, cmp.Compare[int], func(o *Options[int, person]) {
		o.Tail = byName
	})
	require.NoError(t, err)

	var idx index.Index[person] = byAge
	for _, p := range people {
		idx = idx.Put(p, false)
	}
	require.Equal(t, 6, idx.Size())
	require.NoError(t, byAge.Verify())

	asc := testutil.SelectAll(idx, false, nil)
	assert.Equal(t, []person{
		{25, "bob"}, {25, "dave"}, {30, "alice"}, {30, "alice"}, {30, "carol"}, {40, "erin"},
	}, asc)

	// Ages ascending, names descending.
	mixed := testutil.SelectAll(idx, false, index.Order{index.Desc})
	assert.Equal(t, []person{
		{25, "dave"}, {25, "bob"}, {30, "carol"}, {30, "alice"}, {30, "alice"}, {40, "erin"},
	}, mixed)

	// Ages descending, names ascending.
	rev := testutil.SelectAll(idx, true, index.Order{index.Asc})
	assert.Equal(t, []person{
		{40, "erin"}, {30, "alice"}, {30, "alice"}, {30, "carol"}, {25, "bob"}, {25, "dave"},
	}, rev)

	thirty, ok := byAge.Get(30)
	require.True(t, ok)
	assert.Equal(t, 3, thirty.Size())
	sub, ok := thirty.(*Tree[string, person]).Get("alice")
	require.True(t, ok)
	assert.Equal(t, 2, sub.Size())

	// Removing from the nested level updates the cached sizes on both levels.
	idx = idx.Remove(person{30, "alice"}, true)
	idx = idx.Remove(person{30, "carol"}, true)
	assert.Equal(t, 4, idx.Size())
	assert.NoError(t, idx.(*Tree[int, person]).Verify())

	terminals := 0
	idx.MapOver(func(index.Index[person]) { terminals++ })
	assert.Equal(t, 4, terminals)
}

func TestTree_ViewWritesCopy(t *testing.T) {
	tr := fill(t, newIntTree(t), []int{1, 2, 3, 4, 5})
	view := tr.GTE(3)

	grown, err := view.Insert(10, false)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4, 5}, testutil.SelectAll[int](view, false, nil))
	assert.Equal(t, []int{3, 4, 5, 10}, testutil.SelectAll[int](grown, false, nil))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, testutil.SelectAll[int](tr, false, nil))
}

func TestTree_UnlockedWritesKeepSizes(t *testing.T) {
	t.Run("duplicate key", func(t *testing.T) {
		tr := newIntTree(t)
		for range 3 {
			var err error
			tr, err = tr.Insert(7, false)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, tr.Size())
		assert.Equal(t, 1, tr.Len())
		require.NoError(t, tr.Verify())
	})

	t.Run("descending keys", func(t *testing.T) {
		tr := newIntTree(t)
		for k := 100; k >= 1; k-- {
			var err error
			tr, err = tr.Insert(k, false)
			require.NoError(t, err)
		}
		require.NoError(t, tr.Verify())
		assert.Equal(t, 100, tr.Size())

		var c testutil.Collector[int]
		tr.Select(c.Sink(), index.Page(95, index.Unlimited), nil, nil)
		assert.Equal(t, []int{96, 97, 98, 99, 100}, c.Items)
	})

	t.Run("nested payload", func(t *testing.T) {
		byValue, err := Factory(identity, cmp.Compare[int])
		require.NoError(t, err)
		tr, err := New(func(v int) int { return v / 10 }, cmp.Compare[int], func(o *Options[int, int]) {
			o.Tail = byValue
		})
		require.NoError(t, err)

		for v := 99; v >= 0; v-- {
			tr, err = tr.Insert(v, false)
			require.NoError(t, err)
		}
		require.NoError(t, tr.Verify())
		assert.Equal(t, 100, tr.Size())

		payload, ok := tr.Get(5)
		require.True(t, ok)
		assert.Equal(t, 10, payload.Size())
		require.NoError(t, payload.(*Tree[int, int]).Verify())
	})
}

func TestTree_BulkLoadNestedLevels(t *testing.T) {
	type record struct {
		Bucket int
		ID     int
	}

	byID, err := Factory(func(r record) int { return r.ID }, cmp.Compare[int])
	require.NoError(t, err)

	for _, parallel := range []bool{false, true} {
		tr, err := New(func(r record) int { return r.Bucket }, cmp.Compare[int], func(o *Options[int, record]) {
			o.Tail = byID
			if parallel {
				o.BulkParallelism = 4
				o.BulkParallelThreshold = 8
			} else {
				o.BulkParallelism = 1
			}
		})
		require.NoError(t, err)

		// One large bucket with descending ids, then a few small ones.
		var sorted []record
		for id := 100; id >= 1; id-- {
			sorted = append(sorted, record{Bucket: 1, ID: id})
		}
		for b := 2; b <= 5; b++ {
			for id := range b {
				sorted = append(sorted, record{Bucket: b, ID: id})
			}
		}

		bulk, err := tr.BulkLoad(context.Background(), sorted)
		require.NoError(t, err)
		require.NoError(t, bulk.Verify())
		assert.Equal(t, len(sorted), bulk.Size())

		bulk.Ascend(func(bucket int, payload index.Index[record]) bool {
			assert.NoError(t, payload.(*Tree[int, record]).Verify(), "bucket %d", bucket)
			return true
		})

		one, ok := bulk.Get(1)
		require.True(t, ok)
		assert.Equal(t, 100, one.Size())

		var c testutil.Collector[record]
		bulk.Select(c.Sink(), index.Page(95, 5), nil, nil)
		require.Len(t, c.Items, 5)
		assert.Equal(t, record{Bucket: 1, ID: 96}, c.Items[0])
		assert.Equal(t, record{Bucket: 1, ID: 100}, c.Items[4])
	}
}
