package aatree

// Verify checks key order, cached sizes and the AA level invariants of the
// whole tree. It returns an *ErrInvariant describing the first violation.
// Range views are only checked for order and sizes.
func (t *Tree[K, V]) Verify() error {
	v := verifier[K, V]{compare: t.cfg.compare, levels: !t.view}
	_, err := v.check(t.root, nil, nil)
	return err
}

type verifier[K, V any] struct {
	compare func(a, b K) int
	levels  bool
}

// check returns the subtree size recomputed from scratch. lo and hi bound the
// keys allowed in the subtree.
func (v *verifier[K, V]) check(n, lo, hi *node[K, V]) (int, error) {
	if n == nil {
		return 0, nil
	}

	fail := func(rule string) (int, error) {
		return 0, &ErrInvariant{Rule: rule, Key: n.key, Level: n.level, Size: n.size}
	}

	if lo != nil && v.compare(lo.key, n.key) >= 0 {
		return fail("keys ascend")
	}
	if hi != nil && v.compare(n.key, hi.key) >= 0 {
		return fail("keys ascend")
	}
	if n.value == nil || n.value.Size() == 0 {
		return fail("payload not empty")
	}

	if v.levels {
		switch {
		case n.left == nil && n.right == nil && n.level != 1:
			return fail("leaf level is 1")
		case n.level > 1 && (n.left == nil || n.right == nil):
			return fail("level > 1 has two children")
		case n.left.lvl() >= n.level:
			return fail("left child level < parent level")
		case n.right.lvl() > n.level:
			return fail("right child level <= parent level")
		case n.right != nil && n.right.right.lvl() >= n.level:
			return fail("right grandchild level < grandparent level")
		}
	}

	ls, err := v.check(n.left, lo, n)
	if err != nil {
		return 0, err
	}
	rs, err := v.check(n.right, n, hi)
	if err != nil {
		return 0, err
	}

	size := ls + rs + n.value.Size()
	if size != n.size {
		return fail("size = left.size + right.size + value.size")
	}
	return size, nil
}
