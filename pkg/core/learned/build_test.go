package learned

import "testing"

func TestBuildTreeTwoOrdersKeysRegardlessOfArgumentOrder(t *testing.T) {
	var pool pendingTwoPool[int64, string]

	a := pool.buildTreeTwo(20, "twenty", 10, "ten")
	checkTwoKeyNode(t, a, 10, "ten", 20, "twenty")

	b := pool.buildTreeTwo(10, "ten", 20, "twenty")
	checkTwoKeyNode(t, b, 10, "ten", 20, "twenty")
}

func checkTwoKeyNode(t *testing.T, n *node[int64, string], k1 int64, v1 string, k2 int64, v2 string) {
	t.Helper()
	if !n.isTwo || n.numItems != 8 || n.size != 2 {
		t.Fatalf("not a well-formed two-key node: %+v", n)
	}
	got := map[int64]string{}
	for i := 0; i < n.numItems; i++ {
		if !n.noneBitmap.get(i) && !n.childBitmap.get(i) {
			got[n.items[i].key] = n.items[i].value
		}
	}
	if got[k1] != v1 || got[k2] != v2 {
		t.Errorf("two-key node contents = %v, want {%d: %q, %d: %q}", got, k1, v1, k2, v2)
	}
}

func TestPendingTwoPoolRecyclesOnDestroyTree(t *testing.T) {
	var pool pendingTwoPool[int64, string]
	n := pool.buildTreeTwo(1, "a", 2, "b")

	pool.destroyTree(n)

	if len(pool.stack) != 1 {
		t.Fatalf("expected the two-key node to be recycled into the pool, stack len = %d", len(pool.stack))
	}

	recycled, ok := pool.pop()
	if !ok || recycled != n {
		t.Fatal("expected to pop back the exact node that was recycled")
	}
}

func TestBuildTreeBulkProducesValidTree(t *testing.T) {
	var pool pendingTwoPool[int64, string]
	var stats fmcdStats

	const n = 5000
	keys := make([]int64, n)
	values := make([]string, n)
	for i := range keys {
		keys[i] = int64(i) * 2
		values[i] = string(rune('a' + i%26))
	}

	root := pool.buildTreeBulk(keys, values, true, 0, &stats)
	if root.size != n {
		t.Errorf("root.size = %d, want %d", root.size, n)
	}

	var collected []int64
	var walk func(n *node[int64, string])
	walk = func(nd *node[int64, string]) {
		for i := 0; i < nd.numItems; i++ {
			switch {
			case nd.noneBitmap.get(i):
			case nd.childBitmap.get(i):
				walk(nd.items[i].child)
			default:
				collected = append(collected, nd.items[i].key)
			}
		}
	}
	walk(root)

	if len(collected) != n {
		t.Fatalf("collected %d keys, want %d", len(collected), n)
	}
	for i := 1; i < len(collected); i++ {
		if collected[i] <= collected[i-1] {
			t.Fatalf("in-order scan not ascending at index %d: %d <= %d", i, collected[i], collected[i-1])
		}
	}
	for i, k := range collected {
		if k != keys[i] {
			t.Fatalf("collected[%d] = %d, want %d", i, k, keys[i])
		}
	}
}

func TestBuildTreeBulkTwoKeySegment(t *testing.T) {
	var pool pendingTwoPool[int64, string]
	var stats fmcdStats

	root := pool.buildTreeBulk([]int64{5, 9}, []string{"five", "nine"}, true, 0, &stats)
	checkTwoKeyNode(t, root, 5, "five", 9, "nine")
}
