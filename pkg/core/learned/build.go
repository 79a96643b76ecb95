package learned

import "sync"

// pendingTwoPool is the recycler for 8-slot micro-nodes described in spec
// §3/§6. The original keeps it single-producer single-consumer because its
// only callers (construction and bulk rebuild) already hold exclusive access
// to the subtree in play. A concurrent Go index also drives it from every
// insert that turns a colliding leaf into a two-key child (see insert.go),
// which can happen on disjoint subtrees at the same time, so unlike the
// original this pool carries its own mutex — spec §5 explicitly allows this
// ("a conforming concurrent implementation may make it thread-local or omit
// the recycler entirely"); a small mutex is cheaper than either.
type pendingTwoPool[K Numeric, V any] struct {
	mu    sync.Mutex
	stack []*node[K, V]
}

func (p *pendingTwoPool[K, V]) push(n *node[K, V]) {
	p.mu.Lock()
	p.stack = append(p.stack, n)
	p.mu.Unlock()
}

func (p *pendingTwoPool[K, V]) pop() (*node[K, V], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.stack) == 0 {
		return nil, false
	}
	n := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return n, true
}

// warm pre-allocates n recyclable two-key nodes, matching the original
// constructor's pool warm-up (see SPEC_FULL.md §C.2a for why the default is
// far smaller than the original's 10^7).
func (p *pendingTwoPool[K, V]) warm(n int) {
	built := make([]*node[K, V], 0, n)
	for i := 0; i < n; i++ {
		built = append(built, p.buildTreeTwo(K(0), zeroValue[V](), K(1), zeroValue[V]()))
	}
	for _, nd := range built {
		p.push(nd)
	}
}

// destroyTree walks an entire subtree outside of any lock (the caller must
// have exclusive ownership, e.g. during BulkLoad's teardown of the previous
// tree, or at construction time) and recycles every two-key node into the
// pool, matching the original's destroy_tree.
func (p *pendingTwoPool[K, V]) destroyTree(root *node[K, V]) {
	stack := []*node[K, V]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := 0; i < n.numItems; i++ {
			if n.childBitmap.get(i) {
				stack = append(stack, n.items[i].child)
			}
		}

		if n.isTwo {
			n.size = 2
			n.numInserts = 0
			n.numInsertToData.Store(0)
			n.noneBitmap.fillAll(8)
			n.childBitmap.clearAll()
			p.push(n)
		}
	}
}

func zeroValue[V any]() V {
	var v V
	return v
}

// buildTreeTwo builds (or recycles) the 8-slot micro-node holding exactly
// two keys, placed at numItems/3 and 2*numItems/3 per spec §4.4.
func (p *pendingTwoPool[K, V]) buildTreeTwo(key1 K, value1 V, key2 K, value2 V) *node[K, V] {
	if key1 > key2 {
		key1, key2 = key2, key1
		value1, value2 = value2, value1
	}

	n, recycled := p.pop()
	if !recycled {
		n = &node[K, V]{
			numItems: 8,
			items:    make([]item[K, V], 8),
		}
		n.noneBitmap = newBitmap(8)
		n.childBitmap = newBitmap(8)
	}
	n.initLockWord()
	n.isTwo = true
	n.buildSize = 2
	n.size = 2
	n.fixed = false
	n.numInserts = 0
	n.numInsertToData.Store(0)
	n.noneBitmap.clearAll()
	n.noneBitmap.fillAll(8)
	n.childBitmap.clearAll()

	mid1Target := float64(n.numItems) / 3
	mid2Target := float64(n.numItems) * 2 / 3
	n.model = fitTwoPoint(key1, mid1Target, key2, mid2Target)

	pos1 := predict(n, key1)
	n.noneBitmap.clear(pos1)
	n.items[pos1] = item[K, V]{key: key1, value: value1}

	pos2 := predict(n, key2)
	n.noneBitmap.clear(pos2)
	n.items[pos2] = item[K, V]{key: key2, value: value2}

	return n
}

// buildSegment is one unit of work on the bulk builder's explicit stack,
// the Go rendering of spec §4.4's {begin, end, node} segments.
type buildSegment[K Numeric, V any] struct {
	begin, end int
	target     *node[K, V]
}

// buildTreeBulk recursively segments a sorted, duplicate-free key/value
// array into a tree, per spec §4.4. useFMCD selects the fit strategy;
// buildLRRemain is the configured left/right padding fraction.
func (p *pendingTwoPool[K, V]) buildTreeBulk(keys []K, values []V, useFMCD bool, buildLRRemain float64, stats *fmcdStats) *node[K, V] {
	root := &node[K, V]{}
	stack := []buildSegment[K, V]{{begin: 0, end: len(keys), target: root}}

	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		begin, end, n := seg.begin, seg.end, seg.target
		rtAssert(end-begin >= 2, "build segment must have at least two keys")

		if end-begin == 2 {
			built := p.buildTreeTwo(keys[begin], values[begin], keys[begin+1], values[begin+1])
			copyNodeInto(n, built)
			continue
		}

		segKeys := keys[begin:end]
		segValues := values[begin:end]
		size := len(segKeys)
		gap := gapFactor(size)

		n.isTwo = false
		n.buildSize = size
		n.size = size
		n.fixed = size > 1000000
		n.numInserts = 0
		n.numInsertToData.Store(0)

		var model linearModel
		var numItems int
		if useFMCD {
			if m, ni, ok := fmcdFit(segKeys, gap); ok {
				model, numItems = m, ni
				stats.successTimes.Add(1)
			} else {
				stats.brokenTimes.Add(1)
				model, numItems = threePointFit(segKeys, gap)
			}
		} else {
			model, numItems = threePointFit(segKeys, gap)
		}
		rtAssert(isFiniteModel(model), "model fit produced a non-finite coefficient")
		rtAssert(model.a >= 0, "model fit produced a negative slope")

		model, numItems = applyBuildLRRemain(model, numItems, size, buildLRRemain)

		n.model = model
		n.numItems = numItems
		n.items = make([]item[K, V], numItems)
		n.noneBitmap = newBitmap(numItems)
		n.childBitmap = newBitmap(numItems)
		n.noneBitmap.fillAll(numItems)
		n.initLockWord()

		itemI := predict(n, segKeys[0])
		offset := 0
		for offset < size {
			next := offset + 1
			nextI := -1
			for next < size {
				nextI = predict(n, segKeys[next])
				if nextI != itemI {
					break
				}
				next++
			}

			if next == offset+1 {
				n.noneBitmap.clear(itemI)
				n.items[itemI] = item[K, V]{key: segKeys[offset], value: segValues[offset]}
			} else {
				n.noneBitmap.clear(itemI)
				n.childBitmap.set(itemI)
				child := &node[K, V]{}
				n.items[itemI] = item[K, V]{child: child}
				stack = append(stack, buildSegment[K, V]{begin: begin + offset, end: begin + next, target: child})
			}

			if next >= size {
				break
			}
			itemI = nextI
			offset = next
		}
	}

	return root
}
