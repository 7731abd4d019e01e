package spectral

import "sync/atomic"

// DefaultQueueCapacity is the slot count used when none is configured.
const DefaultQueueCapacity = 30

// Queue is a bounded single-producer/single-consumer ring with preallocated
// slots. One goroutine may call the producer methods (Reserve, Publish,
// TryPush) and one other goroutine the consumer methods (Front, Pop, TryPop).
// No method blocks or allocates.
type Queue[T any] struct {
	slots   []T
	head    atomic.Uint64 // next slot to read
	tail    atomic.Uint64 // next slot to write
	dropped atomic.Uint64
}

// NewQueue creates a queue with capacity slots. init, when non-nil, is called
// once per slot so reference-typed payloads can be preallocated.
func NewQueue[T any](capacity int, init func(*T)) *Queue[T] {
	if capacity < 1 {
		capacity = DefaultQueueCapacity
	}

	q := &Queue[T]{slots: make([]T, capacity)}
	if init != nil {
		for i := range q.slots {
			init(&q.slots[i])
		}
	}

	return q
}

// Cap returns the number of slots.
func (q *Queue[T]) Cap() int { return len(q.slots) }

// Len returns the number of published, unread items.
func (q *Queue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Dropped returns how many writes were discarded because the queue was full.
func (q *Queue[T]) Dropped() uint64 { return q.dropped.Load() }

// Reserve returns the next free slot for the producer to fill, or nil when
// the queue is full (the write is counted as dropped). The slot becomes
// visible to the consumer only after Publish.
func (q *Queue[T]) Reserve() *T {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.slots)) {
		q.dropped.Add(1)
		return nil
	}

	return &q.slots[tail%uint64(len(q.slots))]
}

// Publish makes the slot returned by the last Reserve visible.
func (q *Queue[T]) Publish() {
	q.tail.Add(1)
}

// TryPush copies v into the next slot. It reports false when the queue is full.
func (q *Queue[T]) TryPush(v T) bool {
	slot := q.Reserve()
	if slot == nil {
		return false
	}

	*slot = v
	q.Publish()

	return true
}

// Front returns the oldest published item without removing it, or nil when
// the queue is empty. The pointer is valid until Pop.
func (q *Queue[T]) Front() *T {
	head := q.head.Load()
	if head == q.tail.Load() {
		return nil
	}

	return &q.slots[head%uint64(len(q.slots))]
}

// Pop discards the oldest item. It is a no-op on an empty queue.
func (q *Queue[T]) Pop() {
	head := q.head.Load()
	if head == q.tail.Load() {
		return
	}

	q.head.Store(head + 1)
}

// TryPop removes and returns the oldest item.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T

	item := q.Front()
	if item == nil {
		return zero, false
	}

	v := *item
	q.Pop()

	return v, true
}
