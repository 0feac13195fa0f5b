package realtime

import (
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// Dispatcher fans published events out to every registered connection whose
// subscription matches. A slow consumer only loses its own events; it never
// stalls delivery to other connections.
type Dispatcher struct {
	registry *Registry
	subs     *Subscriptions
	logger   *zap.Logger
}

func NewDispatcher(registry *Registry, subs *Subscriptions, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		subs:     subs,
		logger:   logger,
	}
}

// Publish delivers the event to all matching connections. Enqueue failures
// are dropped per connection; a full queue here is reclaimed later by the
// health monitor.
func (d *Dispatcher) Publish(ev models.Event) {
	affected := ev.AffectedSubjects()

	for id, q := range d.registry.Snapshot() {
		sub, ok := d.subs.Get(id)
		if !matches(sub, ok, ev, affected) {
			continue
		}
		if err := q.TryEnqueue(ev); err != nil {
			d.logger.Debug("Dropping event for connection",
				zap.String("conn_id", id),
				zap.String("event_type", string(ev.Type)),
				zap.Error(err))
		}
	}
}

// SendTo queues an event for one specific connection, bypassing filters.
// Used for acknowledgments and pongs.
func (d *Dispatcher) SendTo(id string, ev models.Event) error {
	q, ok := d.registry.Get(id)
	if !ok {
		return ErrQueueClosed
	}
	return q.TryEnqueue(ev)
}

// matches applies the filtering rule for one connection. System notices
// always match, even when no subscription is stored.
func matches(sub models.Subscription, stored bool, ev models.Event, affected []string) bool {
	if ev.Type == models.EventSystemNotice {
		return true
	}
	if !stored {
		return false
	}
	if sub.AllEvents {
		return true
	}
	for _, name := range affected {
		for _, want := range sub.Subjects {
			if name == want {
				return true
			}
		}
	}
	if ev.Type == models.EventMarketMoved && ev.Market != nil {
		for _, sym := range sub.Symbols {
			if sym == ev.Market.Symbol {
				return true
			}
		}
	}
	return false
}
