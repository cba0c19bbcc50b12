package utils

import (
	"sync/atomic"
	"testing"
)

func TestMultiThreadCoversRange(t *testing.T) {
	n := 10_000
	hits := make([]int32, n)

	MultiThread(0, n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, 64, 2)

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d was visited %d times", i, h)
		}
	}
}

func TestMultiThreadSmallRangeRunsInline(t *testing.T) {
	var count int
	// range fits in one chunk, so f runs on the calling goroutine with no synchronization
	MultiThread(5, 10, func(i int) { count++ }, 64, 1)
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestMultiThreadEmptyRange(t *testing.T) {
	called := false
	MultiThread(3, 3, func(i int) { called = true }, 8, 1)
	MultiThread(5, 2, func(i int) { called = true }, 8, 1)
	if called {
		t.Fatalf("f ran on an empty range")
	}
}

func TestMultiThreadClampsBadKnobs(t *testing.T) {
	n := 100
	hits := make([]int32, n)

	MultiThread(0, n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, 0, 0)

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d was visited %d times", i, h)
		}
	}
}
