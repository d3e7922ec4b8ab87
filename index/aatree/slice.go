package aatree

// The slice operations never modify the receiver. Nodes on the search path
// are copied, everything else is shared with the source tree.

func (n *node[K, V]) gt(key K, compare func(a, b K) int) *node[K, V] {
	for n != nil {
		r := compare(key, n.key)
		switch {
		case r < 0:
			l := n.left.gt(key, compare)
			c := *n
			c.size = n.size - n.left.sz() + l.sz()
			c.left = l
			return &c
		case r > 0:
			n = n.right
		default:
			return n.right
		}
	}
	return nil
}

func (n *node[K, V]) gte(key K, compare func(a, b K) int) *node[K, V] {
	for n != nil {
		r := compare(key, n.key)
		switch {
		case r < 0:
			l := n.left.gte(key, compare)
			c := *n
			c.size = n.size - n.left.sz() + l.sz()
			c.left = l
			return &c
		case r > 0:
			n = n.right
		default:
			c := *n
			c.size = n.size - n.left.sz()
			c.left = nil
			return &c
		}
	}
	return nil
}

func (n *node[K, V]) lt(key K, compare func(a, b K) int) *node[K, V] {
	for n != nil {
		r := compare(key, n.key)
		switch {
		case r > 0:
			rt := n.right.lt(key, compare)
			c := *n
			c.size = n.size - n.right.sz() + rt.sz()
			c.right = rt
			return &c
		case r < 0:
			n = n.left
		default:
			return n.left
		}
	}
	return nil
}

func (n *node[K, V]) lte(key K, compare func(a, b K) int) *node[K, V] {
	for n != nil {
		r := compare(key, n.key)
		switch {
		case r > 0:
			rt := n.right.lte(key, compare)
			c := *n
			c.size = n.size - n.right.sz() + rt.sz()
			c.right = rt
			return &c
		case r < 0:
			n = n.left
		default:
			c := *n
			c.size = n.size - n.right.sz()
			c.right = nil
			return &c
		}
	}
	return nil
}
