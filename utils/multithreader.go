// Package utils provides small concurrency helpers shared by the numeric packages.
package utils

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MultiThread runs f for every integer in [start, end), spread across worker goroutines. It
// returns once every call has finished; it must itself be called sequentially, not from
// several goroutines over the same state.
//
// Workers claim chunks of opsPerThread indices at a time, so f should be cheap enough that a
// chunk amortizes the claim. threadsPerCPU scales the worker count; ranges smaller than one
// chunk run inline without spawning anything.
func MultiThread(start, end int, f func(int), opsPerThread, threadsPerCPU int) {
	if end <= start {
		return
	}
	if opsPerThread < 1 {
		opsPerThread = 1
	}
	if threadsPerCPU < 1 {
		threadsPerCPU = 1
	}

	if end-start <= opsPerThread {
		for i := start; i < end; i++ {
			f(i)
		}
		return
	}

	numWorkers := runtime.NumCPU() * threadsPerCPU
	next := int64(start)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, int64(opsPerThread))) - opsPerThread
				if i >= end {
					return
				}

				e := i + opsPerThread
				if e > end {
					e = end
				}
				for ; i < e; i++ {
					f(i)
				}
			}
		}()
	}
	wg.Wait()
}
