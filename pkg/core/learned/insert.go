package learned

// maxPathDepth bounds the insertion path stack; exceeding it is a fatal
// structural error per spec §4.6/§7 (an index this deep implies a
// pathologically bad model fit, not a usage error a caller can recover
// from by retrying).
const maxPathDepth = 128

// insert implements spec §4.6: descend while bumping size/numInserts on
// every node along the path, transition the target slot, then hand the
// recorded path to adjust for the adaptive-rebuild check.
func (idx *Index[K, V]) insert(key K, value V) {
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

	var path [maxPathDepth]*node[K, V]
	pathSize := 0
	insertToData := 0

	var parent *node[K, V]
	var parentVersion uint64

	n := root
	for {
		rtAssert(pathSize < maxPathDepth, "insert path exceeded maximum depth")
		path[pathSize] = n
		pathSize++

		if parent != nil {
			if parent.readUnlockOrRestart(parentVersion) {
				goto restart
			}
		}

		n.size++
		n.numInserts++
		pos := predict(n, key)
		inner := n

		switch {
		case n.noneBitmap.get(pos):
			if n.upgradeToWriteLockOrRestart(version) {
				goto restart
			}
			n.noneBitmap.clear(pos)
			n.items[pos] = item[K, V]{key: key, value: value}
			n.writeUnlock(version)
			goto committed

		case !n.childBitmap.get(pos):
			if n.upgradeToWriteLockOrRestart(version) {
				goto restart
			}
			existingKey := n.items[pos].key
			existingValue := n.items[pos].value
			child := idx.pool.buildTreeTwo(key, value, existingKey, existingValue)
			n.childBitmap.set(pos)
			n.items[pos] = item[K, V]{child: child}
			insertToData = 1
			n.writeUnlock(version)
			goto committed

		default:
			parent = inner
			parentVersion = version

			n = n.items[pos].child
			if inner.checkOrRestart(version) {
				goto restart
			}
			version, needRestart = n.readLockOrRestart()
			if needRestart {
				goto restart
			}
		}
	}

committed:
	for i := 0; i < pathSize; i++ {
		path[i].numInsertToData.Add(int32(insertToData))
	}
	idx.adjust(guard, path[:pathSize], key)
}

// adjust implements spec §4.7: walk the recorded path from root to leaf,
// rebuilding the first node whose growth looks like it came mostly from
// collisions rather than from filling empty slots.
func (idx *Index[K, V]) adjust(guard *epochGuard, path []*node[K, V], key K) {
	restartCount := 0
restart:
	if restartCount++; restartCount > 1 {
		yieldBackoff(restartCount)
	}

	for i := 0; i < len(path); i++ {
		n := path[i]

		version, needRestart := n.readLockOrRestart()
		if needRestart {
			goto restart
		}

		numInserts := n.numInserts
		numInsertToData := n.numInsertToData.Load()
		needRebuild := !n.fixed && n.size >= n.buildSize*4 && n.size >= 64 && int(numInsertToData)*10 >= numInserts

		if !needRebuild {
			if n.readUnlockOrRestart(version) {
				goto restart
			}
			continue
		}

		if n.upgradeToWriteLockOrRestart(version) {
			goto restart
		}

		size := n.size
		keys := make([]K, size)
		values := make([]V, size)
		idx.scanAndDestroy(guard, n, keys, values, true)

		newNode := idx.pool.buildTreeBulk(keys, values, idx.useFMCD, idx.buildLRRemain, &idx.fmcdStats)
		n.markObsoleteAndUnlock(version)
		idx.rebuilds.Add(1)

		if i == 0 {
			idx.root.Store(newNode)
		} else {
			pos := predict(path[i-1], key)
			path[i-1].items[pos].child = newNode
		}
		path[i] = newNode

		break
	}
}
