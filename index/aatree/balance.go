package aatree

// The balancing primitives expect the receiver to be owned by the caller:
// either freshly cloned or known not to be shared with a snapshot.

// skew removes a left horizontal link by rotating right.
func (n *node[K, V]) skew(locked bool) *node[K, V] {
	if n == nil || n.left == nil || n.left.level != n.level {
		return n
	}

	l := n.left.maybeClone(locked)
	n.left = l.right
	l.right = n

	n.updateSize()
	l.updateSize()

	return l
}

// split removes two consecutive right horizontal links by rotating left and
// promoting the middle node.
func (n *node[K, V]) split(locked bool) *node[K, V] {
	if n == nil || n.right == nil || n.right.right == nil || n.level != n.right.right.level {
		return n
	}

	r := n.right.maybeClone(locked)
	n.right = r.left
	r.left = n
	r.level++

	n.updateSize()
	r.updateSize()

	return r
}

// decreaseLevel drops links that skip levels after a deletion.
func (n *node[K, V]) decreaseLevel(locked bool) *node[K, V] {
	want := min(n.left.lvl(), n.right.lvl()) + 1
	if want < n.level {
		n.level = want
		if n.right != nil && want < n.right.level {
			n.right = n.right.maybeClone(locked)
			n.right.level = want
		}
	}
	return n
}

// rebalance restores the invariants of an owned node whose subtree lost one
// node. The order of the steps matters.
func (n *node[K, V]) rebalance(locked bool) *node[K, V] {
	n = n.decreaseLevel(locked).skew(locked)
	if n.right != nil {
		n.right = n.right.maybeClone(locked).skew(locked)
		if n.right.right != nil {
			n.right.right = n.right.right.maybeClone(locked).skew(locked)
		}
	}

	n = n.split(locked)
	if n.right != nil {
		n.right = n.right.maybeClone(locked).split(locked)
	}
	return n
}
