package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// HealthMonitor sweeps all registered connections on an interval and prunes
// any whose queue no longer accepts a probe. This is the only mechanism for
// reclaiming connections whose transport died without a clean close.
type HealthMonitor struct {
	registry *Registry
	subs     *Subscriptions
	interval time.Duration
	logger   *zap.Logger
}

func NewHealthMonitor(registry *Registry, subs *Subscriptions, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		registry: registry,
		subs:     subs,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps until the context is cancelled.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep probes every connection once and deregisters the stale ones.
func (m *HealthMonitor) Sweep() {
	probe := models.NewSystemNotice("ping", models.SeverityInfo)

	var stale []string
	for id, q := range m.registry.Snapshot() {
		if err := q.TryEnqueue(probe); err != nil {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		m.registry.Deregister(id)
		m.subs.Clear(id)
		m.logger.Warn("Removing stale connection", zap.String("conn_id", id))
	}

	if n := m.registry.Count(); n > 0 {
		m.logger.Info("Connection health check",
			zap.Int("connections", n),
			zap.Int("subscriptions", m.subs.Count()))
	}
}
