package spectral

import (
	"sync"
	"testing"
)

func TestQueueDropsWhenFull(t *testing.T) {
	t.Parallel()

	q := NewQueue[int](3, nil)

	for i := range 3 {
		if !q.TryPush(i) {
			t.Fatalf("push %d rejected on non-full queue", i)
		}
	}

	if q.TryPush(99) {
		t.Fatal("push on full queue should fail")
	}

	if got := q.Dropped(); got != 1 {
		t.Fatalf("Dropped() = %d, want 1", got)
	}

	for want := range 3 {
		got, ok := q.TryPop()
		if !ok || got != want {
			t.Fatalf("TryPop() = %d, %v; want %d, true", got, ok, want)
		}
	}

	if _, ok := q.TryPop(); ok {
		t.Fatal("TryPop() on empty queue should fail")
	}

	q.Pop()

	if q.Len() != 0 {
		t.Fatalf("Len() = %d after popping empty queue", q.Len())
	}
}

func TestQueuePreallocatedSlots(t *testing.T) {
	t.Parallel()

	q := NewQueue(2, func(s *[]float32) { *s = make([]float32, 4) })

	slot := q.Reserve()
	if slot == nil || len(*slot) != 4 {
		t.Fatal("expected preallocated slot of length 4")
	}

	(*slot)[2] = 7
	q.Publish()

	front := q.Front()
	if front == nil || (*front)[2] != 7 {
		t.Fatal("published value not visible at front")
	}
}

func TestQueueConcurrentOrder(t *testing.T) {
	t.Parallel()

	const total = 20000

	q := NewQueue[int](DefaultQueueCapacity, nil)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; i < total; {
			if q.TryPush(i) {
				i++
			}
		}
	}()

	next := 0
	for next < total {
		v, ok := q.TryPop()
		if !ok {
			continue
		}

		if v != next {
			t.Errorf("out of order: got %d, want %d", v, next)
			break
		}

		next++
	}

	wg.Wait()
}

func TestSampleFifoPublishesWholeBlocks(t *testing.T) {
	t.Parallel()

	f := NewSampleFifo(4, 8)

	f.Push([]float32{1, 2, 3})

	if f.Available() != 0 {
		t.Fatal("partial block must not be published")
	}

	f.Push([]float32{4, 5, 6, 7, 8, 9})

	if f.Available() != 2 {
		t.Fatalf("Available() = %d, want 2", f.Available())
	}

	dst := make([]float32, 4)
	for _, want := range [][]float32{{1, 2, 3, 4}, {5, 6, 7, 8}} {
		if !f.Pull(dst) {
			t.Fatal("Pull() returned false")
		}

		for i := range want {
			if dst[i] != want[i] {
				t.Fatalf("block = %v, want %v", dst, want)
			}
		}
	}

	if f.Pull(dst) {
		t.Fatal("Pull() on empty fifo should fail")
	}
}

func TestStagingPairMonoFeedsBothSides(t *testing.T) {
	t.Parallel()

	p := NewStagingPair(2, 4)
	p.Push([][]float32{{0.5, 0.25}})

	if p.Left.Available() != 1 || p.Right.Available() != 1 {
		t.Fatal("mono input should feed both FIFOs")
	}

	p.Push([][]float32{{1, 1}, {2, 2}})

	dst := make([]float32, 2)
	p.Right.Pull(dst)
	p.Right.Pull(dst)

	if dst[0] != 2 {
		t.Fatalf("right channel = %v, want second input channel", dst)
	}
}
