package realtime

import (
	"sync"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// Subscriptions stores each connection's filter preferences. A connection
// with no stored subscription is subscribed to nothing.
type Subscriptions struct {
	mu   sync.RWMutex
	subs map[string]models.Subscription
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{subs: make(map[string]models.Subscription)}
}

// Set stores or replaces the subscription for a connection.
func (s *Subscriptions) Set(id string, sub models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[id] = sub
}

// Clear removes the subscription for a connection. Idempotent.
func (s *Subscriptions) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Get returns the subscription for a connection, if stored.
func (s *Subscriptions) Get(id string) (models.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	return sub, ok
}

// Count reports the number of stored subscriptions.
func (s *Subscriptions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Symbols returns the union of all subscribers' symbol filters. The feed
// aggregator tracks these even when no subject holds them.
func (s *Subscriptions) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, sub := range s.subs {
		for _, sym := range sub.Symbols {
			if !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	return out
}
