package realtime_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/realtime"
	"github.com/ceast3/thereplacebook/pkg/models"
)

func TestHealthMonitor_PrunesUnresponsiveConnections(t *testing.T) {
	registry := realtime.NewRegistry()
	subs := realtime.NewSubscriptions()
	m := realtime.NewHealthMonitor(registry, subs, time.Minute, zap.NewNop())

	// dead's queue is full and will reject the probe.
	dead := realtime.NewQueue(1)
	dead.TryEnqueue(models.NewSystemNotice("filler", models.SeverityInfo))
	registry.Register("dead", dead)
	subs.Set("dead", models.Subscription{AllEvents: true})

	healthy := realtime.NewQueue(10)
	registry.Register("healthy", healthy)
	subs.Set("healthy", models.Subscription{AllEvents: true})

	m.Sweep()

	if _, ok := registry.Get("dead"); ok {
		t.Error("Unresponsive connection should be deregistered after one sweep")
	}
	if _, ok := subs.Get("dead"); ok {
		t.Error("Unresponsive connection's subscription should be cleared")
	}
	if _, ok := registry.Get("healthy"); !ok {
		t.Error("Healthy connection should survive the sweep")
	}

	// The healthy connection received the probe.
	got := drain(healthy)
	if len(got) != 1 || got[0].System == nil || got[0].System.Message != "ping" {
		t.Errorf("Expected one ping probe, got %+v", got)
	}
}

func TestHealthMonitor_ClosedQueueIsStale(t *testing.T) {
	registry := realtime.NewRegistry()
	subs := realtime.NewSubscriptions()
	m := realtime.NewHealthMonitor(registry, subs, time.Minute, zap.NewNop())

	q := realtime.NewQueue(10)
	q.Close()
	registry.Register("closed", q)

	m.Sweep()

	if registry.Count() != 0 {
		t.Errorf("Closed connection should be pruned, registry has %d", registry.Count())
	}
}
