package realtime

import "sync"

// Registry is the source of truth for live connections. It maps connection
// IDs to their outbound queues. All operations are safe for concurrent use;
// atomicity is per key only.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Queue
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Queue)}
}

// Register adds a connection. Called once per connection lifetime.
func (r *Registry) Register(id string, q *Queue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = q
}

// Deregister removes a connection and closes its queue. Idempotent.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	q, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if ok {
		q.Close()
	}
}

// Get returns the outbound queue for a connection, if registered.
func (r *Registry) Get(id string) (*Queue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.conns[id]
	return q, ok
}

// Count reports the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot copies the current connection set. A connection may deregister
// after the snapshot is taken; enqueue errors cover that window.
func (r *Registry) Snapshot() map[string]*Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Queue, len(r.conns))
	for id, q := range r.conns {
		out[id] = q
	}
	return out
}
