package learned

import (
	"fmt"
	"io"
	"sync/atomic"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// Options configures a new Index, matching spec §6's constructor knobs.
type Options struct {
	// BuildLRRemain is the left/right padding fraction added to freshly
	// built nodes, in [0, 0.5).
	BuildLRRemain float64
	// UseFMCD selects the FMCD fit over the plain three-point fallback.
	UseFMCD bool
	// Quiet suppresses the constructor's informational prints (pool
	// warm-up size, whether FMCD is enabled) the way the original's QUIET
	// flag does.
	Quiet bool
	// PendingTwoPoolSize is how many recyclable two-key nodes to
	// pre-allocate at construction. See SPEC_FULL.md §C.2a: the original
	// warms ~10^7 unconditionally; this is left to the caller.
	PendingTwoPoolSize int
}

// DefaultOptions mirrors the original constructor's defaults for
// BUILD_LR_REMAIN and QUIET, with a pool size sized for a library default
// rather than the original's benchmark-scale 10^7.
func DefaultOptions() Options {
	return Options{
		BuildLRRemain:      0,
		UseFMCD:            true,
		Quiet:              true,
		PendingTwoPoolSize: 1024,
	}
}

// Index is a concurrent learned index: an in-memory, ordered key-to-value
// container whose internal nodes predict slot positions with a per-node
// linear model, per spec §1–§3.
type Index[K Numeric, V any] struct {
	root atomic.Pointer[node[K, V]]
	pool pendingTwoPool[K, V]

	reclaim *reclaimer

	buildLRRemain float64
	useFMCD       bool
	quiet         bool

	fmcdStats fmcdStats
	rebuilds  atomic.Uint64
}

// New constructs an empty Index and warms its pending-two pool, matching
// spec §6's `new(build_lr_remain, quiet)`.
func New[K Numeric, V any](opts Options) *Index[K, V] {
	idx := &Index[K, V]{
		buildLRRemain: opts.BuildLRRemain,
		useFMCD:       opts.UseFMCD,
		quiet:         opts.Quiet,
		reclaim:       newReclaimer(),
	}
	idx.pool.warm(opts.PendingTwoPoolSize)
	if !idx.quiet {
		fmt.Printf("initial memory pool size = %d\n", len(idx.pool.stack))
		if idx.useFMCD {
			fmt.Println("enable FMCD")
		}
	}
	idx.root.Store(newEmptyNode[K, V]())
	return idx
}

// Insert inserts a key assumed unique; behavior is undefined (per spec §4.6)
// if the key is already present.
func (idx *Index[K, V]) Insert(key K, value V) {
	idx.insert(key, value)
}

// RebuildCount reports how many subtree rebuilds adjust has triggered since
// construction (BulkLoad does not reset it), so callers tracking workload
// stats can attribute adaptive-rebuild activity separately from plain inserts.
func (idx *Index[K, V]) RebuildCount() uint64 {
	return idx.rebuilds.Load()
}

// At returns the value for key. With skipExistenceCheck (the default, per
// spec §6), behavior is undefined if key is absent — callers must already
// know the key exists; see SPEC_FULL.md/spec.md's open question about this
// trade-off. With skipExistenceCheck=false, At returns ErrKeyNotFound
// instead of guessing.
func (idx *Index[K, V]) At(key K, skipExistenceCheck bool) (V, error) {
	guard := idx.reclaim.enter()
	defer guard.leave()

	restartCount := 0
restart:
	if restartCount++; restartCount > 1 {
		yieldBackoff(restartCount)
	}

	root := idx.root.Load()
	version, needRestart := root.readLockOrRestart()
	if needRestart {
		goto restart
	}

	var parent *node[K, V]
	var parentVersion uint64
	n := root

	for {
		pos := predict(n, key)
		inner := n

		if parent != nil {
			if parent.readUnlockOrRestart(parentVersion) {
				goto restart
			}
		}

		parent = inner
		parentVersion = version

		if n.childBitmap.get(pos) {
			child := n.items[pos].child
			if inner.checkOrRestart(version) {
				goto restart
			}
			version, needRestart = child.readLockOrRestart()
			if needRestart {
				goto restart
			}
			n = child
			continue
		}

		if skipExistenceCheck {
			value := n.items[pos].value
			if n.readUnlockOrRestart(version) {
				goto restart
			}
			return value, nil
		}

		if n.noneBitmap.get(pos) {
			if n.readUnlockOrRestart(version) {
				goto restart
			}
			return zeroValue[V](), ErrKeyNotFound
		}

		value := n.items[pos].value
		foundKey := n.items[pos].key
		if n.readUnlockOrRestart(version) {
			goto restart
		}
		if foundKey != key {
			return zeroValue[V](), ErrKeyNotFound
		}
		return value, nil
	}
}

// Get is a convenience wrapper around At with existence checking enabled,
// returning (value, found) like a map lookup.
func (idx *Index[K, V]) Get(key K) (V, bool) {
	v, err := idx.At(key, false)
	return v, err == nil
}

// Exists reports whether key is present. Per spec §4.5/§9's open question,
// this matches the original's relaxed (non-version-validated) traversal: it
// is a convenience for single-threaded or quiescent use, not a guarantee
// against concurrent writers.
func (idx *Index[K, V]) Exists(key K) bool {
	guard := idx.reclaim.enter()
	defer guard.leave()

	n := idx.root.Load()
	for {
		pos := predict(n, key)
		if n.noneBitmap.get(pos) {
			return false
		}
		if !n.childBitmap.get(pos) {
			return n.items[pos].key == key
		}
		n = n.items[pos].child
	}
}

// BulkLoad destroys the current tree and rebuilds from a strictly ascending,
// duplicate-free key/value sequence, per spec §4.4/§6.
func (idx *Index[K, V]) BulkLoad(keys []K, values []V) error {
	if len(keys) != len(values) {
		return fmt.Errorf("learned: bulk load keys/values length mismatch: %d vs %d", len(keys), len(values))
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i] > keys[i-1]) {
			return ErrDuplicateKey
		}
	}

	guard := idx.reclaim.enter()
	idx.pool.destroyTree(idx.root.Load())
	guard.leave()

	switch len(keys) {
	case 0:
		idx.root.Store(newEmptyNode[K, V]())
	case 1:
		idx.root.Store(newEmptyNode[K, V]())
		idx.insert(keys[0], values[0])
	case 2:
		idx.root.Store(idx.pool.buildTreeTwo(keys[0], values[0], keys[1], values[1]))
	default:
		idx.root.Store(idx.pool.buildTreeBulk(keys, values, idx.useFMCD, idx.buildLRRemain, &idx.fmcdStats))
	}
	return nil
}

// IndexSize reports the tree's memory footprint. total/ignoreChild select
// the same two accounting modes as the original's index_size (see
// SPEC_FULL.md §C.3). Every subtree is visited in every mode. With
// ignoreChild, every slot is counted, plus one node header for each node
// that has at least one slot; when total is false, each child slot is
// counted a second time. Without ignoreChild, every node header is counted,
// and total selects whether every slot is counted or only the child slots.
func (idx *Index[K, V]) IndexSize(total, ignoreChild bool) uintptr {
	var size uintptr
	var nodeProto node[K, V]
	var itemProto item[K, V]
	nodeSize := unsafe.Sizeof(nodeProto)
	itemSize := unsafe.Sizeof(itemProto)

	stack := []*node[K, V]{idx.root.Load()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hasChild := false
		for i := 0; i < n.numItems; i++ {
			if ignoreChild {
				size += itemSize
				hasChild = true
			} else if total {
				size += itemSize
			}
			if n.childBitmap.get(i) {
				if !total {
					size += itemSize
				}
				stack = append(stack, n.items[i].child)
			}
		}
		if !ignoreChild {
			size += nodeSize
		} else if hasChild {
			size += nodeSize
		}
	}
	return size
}

// PrintDepth reports the maximum and average leaf depth, matching the
// original's print_depth.
func (idx *Index[K, V]) PrintDepth() (maxDepth int, avgDepth float64) {
	type frame struct {
		n     *node[K, V]
		depth int
	}
	stack := []frame{{n: idx.root.Load(), depth: 1}}

	maxDepth = 1
	sumDepth, sumLeaves := 0, 0
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, depth := top.n, top.depth

		for i := 0; i < n.numItems; i++ {
			if n.childBitmap.get(i) {
				stack = append(stack, frame{n: n.items[i].child, depth: depth + 1})
			} else if !n.noneBitmap.get(i) {
				if depth > maxDepth {
					maxDepth = depth
				}
				sumDepth += depth
				sumLeaves++
			}
		}
	}
	if sumLeaves == 0 {
		return maxDepth, 0
	}
	return maxDepth, float64(sumDepth) / float64(sumLeaves)
}

// Verify checks spec §8's size invariant (`n.size == #leaves + Σ child.size`)
// across the whole tree and panics via rtAssert if it is violated anywhere.
func (idx *Index[K, V]) Verify() {
	stack := []*node[K, V]{idx.root.Load()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sumSize := 0
		for i := 0; i < n.numItems; i++ {
			if n.childBitmap.get(i) {
				stack = append(stack, n.items[i].child)
				sumSize += n.items[i].child.size
			} else if !n.noneBitmap.get(i) {
				sumSize++
			}
		}
		rtAssert(sumSize == n.size, "node size invariant violated")
	}
}

// PrintStats reports the FMCD fit counters and a human-readable size
// summary, matching the original's print_stats augmented with
// SPEC_FULL.md §B's go-humanize-formatted byte count.
func (idx *Index[K, V]) PrintStats(w io.Writer) {
	fmt.Fprintln(w, "======== Stats ===========")
	if idx.useFMCD {
		fmt.Fprintf(w, "\t fmcd_success_times = %d\n", idx.fmcdStats.successTimes.Load())
		fmt.Fprintf(w, "\t fmcd_broken_times = %d\n", idx.fmcdStats.brokenTimes.Load())
	}
	size := idx.IndexSize(false, true)
	fmt.Fprintf(w, "\t index_size = %s\n", humanize.Bytes(uint64(size)))
}

// Dump writes every node's address-free summary (model coefficients, slot
// states) to w, the Go rendering of the original's show(). It writes
// regardless of Quiet, and to w rather than to stdout.
func (idx *Index[K, V]) Dump(w io.Writer) {
	stack := []*node[K, V]{idx.root.Load()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fmt.Fprintf(w, "Node(a=%f, b=%f, num_items=%d)[", n.model.a, n.model.b, n.numItems)
		for i := 0; i < n.numItems; i++ {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			switch {
			case n.noneBitmap.get(i):
				fmt.Fprint(w, "None")
			case n.childBitmap.get(i):
				fmt.Fprint(w, "Child(...)")
				stack = append(stack, n.items[i].child)
			default:
				fmt.Fprintf(w, "Key(%v)", n.items[i].key)
			}
		}
		fmt.Fprintln(w, "]")
	}
}
