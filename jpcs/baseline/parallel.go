package baseline

import (
	"runtime"
	"sync"

	"github.com/cocosip/go-jpcs/jpcs/common"
)

// Below this many blocks a channel is processed on the calling goroutine.
const minBlocksForParallel = 1024

// forEachBlock calls fn(i) for every i in [0, n). Blocks are independent, so
// large channels are split into contiguous stripes, one goroutine each. fn
// must only write to slot i of its output.
func forEachBlock(n int, fn func(i int)) {
	workers := min(runtime.NumCPU(), n)
	if n < minBlocksForParallel || workers < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	stripe := common.DivCeil(n, workers)

	var wg sync.WaitGroup
	for start := 0; start < n; start += stripe {
		end := min(start+stripe, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
