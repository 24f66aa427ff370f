package station

import (
	"context"
	"errors"
	"sync"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// ErrQueueClosed is returned by Dequeue once the queue is closed and drained
var ErrQueueClosed = errors.New("service queue closed")

// ServiceQueue is the strictly FIFO backlog of ships waiting for a bay.
// It holds federation ids; the ShipRegistry owns the records.
//
// Invariants:
// - a ship is queued at most once at a time
// - each queued ship is removed exactly once
type ServiceQueue struct {
	mu     sync.Mutex
	items  []int
	queued map[int]struct{}
	closed bool
	signal chan struct{}
}

// NewServiceQueue creates an empty open queue
func NewServiceQueue() *ServiceQueue {
	return &ServiceQueue{
		queued: make(map[int]struct{}),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends a ship. Thread-safe.
func (q *ServiceQueue) Enqueue(fedID int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if _, exists := q.queued[fedID]; exists {
		return shared.NewDuplicateShipError(fedID)
	}

	q.items = append(q.items, fedID)
	q.queued[fedID] = struct{}{}
	q.notifyUnsafe()
	return nil
}

// TryDequeue removes the head without blocking. Thread-safe.
func (q *ServiceQueue) TryDequeue() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popUnsafe()
}

// Dequeue removes the head, waiting for a producer while the queue is open
// and empty. Returns ErrQueueClosed once closed and drained.
// Thread-safe.
func (q *ServiceQueue) Dequeue(ctx context.Context) (int, error) {
	for {
		q.mu.Lock()
		if id, ok := q.popUnsafe(); ok {
			q.mu.Unlock()
			return id, nil
		}
		if q.closed {
			q.mu.Unlock()
			return 0, ErrQueueClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-q.signal:
		}
	}
}

// Close stops accepting ships; queued ships can still be drained.
// Thread-safe.
func (q *ServiceQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.notifyUnsafe()
}

// Len returns the number of waiting ships. Thread-safe.
func (q *ServiceQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns a copy of the waiting ids in queue order. Thread-safe.
func (q *ServiceQueue) Pending() []int {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]int, len(q.items))
	copy(out, q.items)
	return out
}

func (q *ServiceQueue) popUnsafe() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	id := q.items[0]
	q.items = q.items[1:]
	delete(q.queued, id)
	// keep a waiter blocked on signal from missing a concurrent close
	if len(q.items) > 0 || q.closed {
		q.notifyUnsafe()
	}
	return id, true
}

func (q *ServiceQueue) notifyUnsafe() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
