package realtime

import (
	"errors"
	"sync"

	"github.com/ceast3/thereplacebook/pkg/models"
)

var (
	ErrQueueFull   = errors.New("outbound queue full")
	ErrQueueClosed = errors.New("outbound queue closed")
)

// Queue is the bounded outbound event queue owned by one connection.
// Producers enqueue without blocking; the transport adapter drains Events.
type Queue struct {
	mu     sync.RWMutex
	ch     chan models.Event
	closed bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan models.Event, capacity)}
}

// TryEnqueue adds an event without blocking. A full or closed queue is
// reported as an error; it is the caller's signal that the connection is
// slow or gone.
func (q *Queue) TryEnqueue(e models.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new events and lets the draining
// side run out. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Events returns the receiving end of the queue. It is closed by Close.
func (q *Queue) Events() <-chan models.Event {
	return q.ch
}

// Len reports the number of events currently buffered.
func (q *Queue) Len() int {
	return len(q.ch)
}
