package aatree

import "github.com/hupe1980/ordex/index"

// put inserts v under key and returns the new subtree root. On a rejected
// duplicate the receiver is returned unchanged together with ErrDuplicateKey.
func (n *node[K, V]) put(key K, v V, cfg *config[K, V], locked bool) (*node[K, V], error) {
	if n == nil {
		return newLeaf(key, v, cfg.tail), nil
	}

	r := cfg.compare(n.key, key)
	if r == 0 {
		action := Merge
		if cfg.dedup != nil {
			action = cfg.dedup(v, n.key)
		}

		var tail index.Index[V]
		switch action {
		case Reject:
			return n, ErrDuplicateKey
		case Replace:
			tail = cfg.tail.New().Put(v, false)
		default:
			tail = n.value.Put(v, locked)
		}

		// An unlocked put may have grown the payload in place.
		s := n.maybeClone(locked)
		s.value = tail
		s.updateSize()
		return s, nil
	}

	var s *node[K, V]
	if r > 0 {
		child, err := n.left.put(key, v, cfg, locked)
		if err != nil {
			return n, err
		}
		s = n.maybeClone(locked)
		s.left = child
	} else {
		child, err := n.right.put(key, v, cfg, locked)
		if err != nil {
			return n, err
		}
		s = n.maybeClone(locked)
		s.right = child
	}
	s.updateSize()

	return s.skew(locked).split(locked), nil
}

// remove deletes v from the payload at key. A key whose payload becomes empty
// is removed from the tree. Removing an absent entry returns the receiver.
func (n *node[K, V]) remove(key K, v V, cfg *config[K, V], locked bool) *node[K, V] {
	if n == nil {
		return nil
	}

	r := cfg.compare(n.key, key)
	if r == 0 {
		before := n.value.Size()
		tail := n.value.Remove(v, locked)
		after := tail.Size()
		if after == before {
			return n
		}

		s := n.maybeClone(locked)
		s.value = tail
		s.size += after - before
		if after > 0 {
			return s
		}

		if s.left == nil && s.right == nil {
			return nil
		}

		// Reduce to the leaf case by pulling up the in-order neighbour.
		if s.left != nil {
			p := s.predecessor()
			s.key, s.value = p.key, p.value
			s.left = s.left.removeNode(p.key, cfg.compare, locked)
		} else {
			p := s.successor()
			s.key, s.value = p.key, p.value
			s.right = s.right.removeNode(p.key, cfg.compare, locked)
		}
		s.updateSize()
		return s.rebalance(locked)
	}

	var s *node[K, V]
	if r > 0 {
		before := n.left.sz()
		child := n.left.remove(key, v, cfg, locked)
		if child.sz() == before {
			return n
		}
		s = n.maybeClone(locked)
		s.left = child
	} else {
		before := n.right.sz()
		child := n.right.remove(key, v, cfg, locked)
		if child.sz() == before {
			return n
		}
		s = n.maybeClone(locked)
		s.right = child
	}
	s.updateSize()

	return s.rebalance(locked)
}

// removeNode unlinks the node holding key, which has at most one child, and
// rebalances every node on the way back up.
func (n *node[K, V]) removeNode(key K, compare func(a, b K) int, locked bool) *node[K, V] {
	if n == nil {
		return nil
	}

	r := compare(n.key, key)
	if r == 0 {
		if n.left != nil {
			return n.left
		}
		return n.right
	}

	s := n.maybeClone(locked)
	if r > 0 {
		s.left = s.left.removeNode(key, compare, locked)
	} else {
		s.right = s.right.removeNode(key, compare, locked)
	}
	s.updateSize()

	return s.rebalance(locked)
}

// mapTail replaces every payload with fn(payload). fn must not change the
// payload size: cached subtree sizes are not recomputed.
func (n *node[K, V]) mapTail(fn func(index.Index[V]) index.Index[V], locked bool) *node[K, V] {
	if n == nil {
		return nil
	}
	s := n.maybeClone(locked)
	s.left = s.left.mapTail(fn, locked)
	s.value = fn(s.value)
	s.right = s.right.mapTail(fn, locked)
	return s
}
