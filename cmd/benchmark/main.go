package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nsangsiri/lipp/pkg/config"
	"github.com/nsangsiri/lipp/pkg/core/baseline"
	"github.com/nsangsiri/lipp/pkg/core/learned"
	"github.com/nsangsiri/lipp/pkg/monitor"
)

func main() {
	n := flag.Int("n", 1000000, "number of keys to bulk load")
	lookups := flag.Int("lookups", 200000, "number of random point lookups per structure")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		return
	}

	fmt.Printf("Learned Index vs. B-Tree Benchmark (N=%d, lookups=%d)\n", *n, *lookups)
	fmt.Println("---------------------------------------------------")

	keys := make([]int64, *n)
	values := make([]string, *n)
	for i := 0; i < *n; i++ {
		keys[i] = int64(i) * 2
		values[i] = fmt.Sprintf("v%d", i)
	}

	lookupKeys := make([]int64, *lookups)
	for i := range lookupKeys {
		lookupKeys[i] = keys[rand.Intn(len(keys))]
	}

	idx := learned.New[int64, string](learned.Options{
		BuildLRRemain:      cfg.Index.BuildLRRemain,
		UseFMCD:            cfg.Index.UseFMCD,
		Quiet:              cfg.Index.Quiet,
		PendingTwoPoolSize: cfg.Index.PendingTwoPoolSize,
	})
	idxStats := monitor.NewWorkloadStats()

	start := time.Now()
	if err := idx.BulkLoad(keys, values); err != nil {
		fmt.Printf("learned index bulk load: %v\n", err)
		return
	}
	learnedBuildTime := time.Since(start)

	start = time.Now()
	for _, k := range lookupKeys {
		idxStats.RecordRead()
		if _, ok := idx.Get(k); ok {
			idxStats.RecordHit()
		}
	}
	learnedLookupTime := time.Since(start)

	fmt.Println(">> Learned Index")
	fmt.Printf("   build: %v (%.0f keys/sec)\n", learnedBuildTime, float64(*n)/learnedBuildTime.Seconds())
	fmt.Printf("   lookup: %v (%.0f ops/sec)\n", learnedLookupTime, float64(*lookups)/learnedLookupTime.Seconds())
	fmt.Printf("   size (ignore_child): %s\n", humanize.Bytes(uint64(idx.IndexSize(false, true))))
	maxDepth, avgDepth := idx.PrintDepth()
	fmt.Printf("   depth: max=%d avg=%.2f\n", maxDepth, avgDepth)

	inserts := *n / 20
	insertsBefore := idx.RebuildCount()
	insertStart := time.Now()
	perm := rand.Perm(len(keys))
	for i := 0; i < inserts; i++ {
		key := keys[perm[i]] + 1 // interleaves between existing even keys
		idx.Insert(key, "inserted")
		idxStats.RecordWrite()
	}
	insertTime := time.Since(insertStart)
	for triggered := idx.RebuildCount() - insertsBefore; triggered > 0; triggered-- {
		idxStats.RecordRebuild()
	}
	fmt.Printf("   inserts: %v (%.0f ops/sec), rebuilds triggered: %d\n",
		insertTime, float64(inserts)/insertTime.Seconds(), idxStats.RebuildCount)
	fmt.Printf("   read/write ratio: %.2f\n", idxStats.GetReadWriteRatio())

	tree := baseline.NewOrderedMap(32)
	btreeStats := monitor.NewWorkloadStats()

	start = time.Now()
	for i := range keys {
		tree.Put(keys[i], values[i])
	}
	btreeBuildTime := time.Since(start)

	start = time.Now()
	for _, k := range lookupKeys {
		btreeStats.RecordRead()
		if _, ok := tree.Get(k); ok {
			btreeStats.RecordHit()
		}
	}
	btreeLookupTime := time.Since(start)

	fmt.Println(">> google/btree Baseline")
	fmt.Printf("   build: %v (%.0f keys/sec)\n", btreeBuildTime, float64(*n)/btreeBuildTime.Seconds())
	fmt.Printf("   lookup: %v (%.0f ops/sec)\n", btreeLookupTime, float64(*lookups)/btreeLookupTime.Seconds())

	fmt.Println("---------------------------------------------------")
	fmt.Printf("Lookup speedup: %.2fx\n", btreeLookupTime.Seconds()/learnedLookupTime.Seconds())
	idx.PrintStats(os.Stdout)
}
