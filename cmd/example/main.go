package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nsangsiri/lipp/pkg/config"
	"github.com/nsangsiri/lipp/pkg/core/learned"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	idx := learned.New[int64, string](learned.Options{
		BuildLRRemain:      cfg.Index.BuildLRRemain,
		UseFMCD:            cfg.Index.UseFMCD,
		Quiet:              cfg.Index.Quiet,
		PendingTwoPoolSize: cfg.Index.PendingTwoPoolSize,
	})

	const n = 100000
	keys := make([]int64, n)
	values := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = int64(i) * 2 // strictly ascending, no duplicates
		values[i] = fmt.Sprintf("value-%d", i)
	}

	fmt.Printf("bulk loading %d keys...\n", n)
	start := time.Now()
	if err := idx.BulkLoad(keys, values); err != nil {
		log.Fatalf("bulk load: %v", err)
	}
	fmt.Printf("bulk load done in %v\n", time.Since(start))

	lookupKey := keys[n/2]
	v, found := idx.Get(lookupKey)
	fmt.Printf("At(%d) = %q, found=%v\n", lookupKey, v, found)

	fmt.Println("inserting a key that falls between two existing keys...")
	idx.Insert(keys[0]+1, "interleaved")
	v2, _ := idx.At(keys[0]+1, true)
	fmt.Printf("At(%d) = %q\n", keys[0]+1, v2)

	maxDepth, avgDepth := idx.PrintDepth()
	fmt.Printf("max depth = %d, avg leaf depth = %.2f\n", maxDepth, avgDepth)

	idx.Verify()
	fmt.Println("size invariant holds")

	idx.PrintStats(os.Stdout)
}
