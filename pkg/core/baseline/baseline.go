// Package baseline wraps google/btree as the comparator ordered map used by
// the benchmark, so the learned index's timings have an independent ordered
// structure to be compared against.
package baseline

import (
	"sync"

	"github.com/google/btree"
)

// Entry is a single int64-keyed btree.Item.
type Entry struct {
	Key   int64
	Value string
}

func (e Entry) Less(than btree.Item) bool {
	return e.Key < than.(Entry).Key
}

// OrderedMap is a thread-safe, ordered int64->string map backed by a
// google/btree.BTree, the same backing store the teacher uses for its
// memtable.
type OrderedMap struct {
	tree *btree.BTree
	lock sync.RWMutex
}

func NewOrderedMap(degree int) *OrderedMap {
	return &OrderedMap{tree: btree.New(degree)}
}

func (m *OrderedMap) Put(key int64, value string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.tree.ReplaceOrInsert(Entry{Key: key, Value: value})
}

func (m *OrderedMap) Get(key int64) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	res := m.tree.Get(Entry{Key: key})
	if res == nil {
		return "", false
	}
	return res.(Entry).Value, true
}

func (m *OrderedMap) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.tree.Len()
}

// Ascend visits every entry in ascending key order, stopping early if fn
// returns false.
func (m *OrderedMap) Ascend(fn func(key int64, value string) bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	m.tree.Ascend(func(i btree.Item) bool {
		e := i.(Entry)
		return fn(e.Key, e.Value)
	})
}
