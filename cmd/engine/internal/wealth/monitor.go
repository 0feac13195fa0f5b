package wealth

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(ev models.Event)
}

// Monitor revalues every tracked subject on an interval and broadcasts a
// wealth event when the move clears the materiality threshold. Figures are
// in billions of USD.
type Monitor struct {
	valuator  *Valuator
	book      *Book
	publisher Publisher
	interval  time.Duration
	// percentThreshold is in percent, absoluteThreshold in billions of USD.
	percentThreshold  float64
	absoluteThreshold float64
	// lastBroadcast holds the valuation last sent per subject. It is only
	// updated when an event fires, so sub-threshold drifts accumulate until
	// a single cycle crosses the line. This is the noise-suppression
	// mechanism, not an oversight.
	lastBroadcast map[string]float64
	logger        *zap.Logger
}

func NewMonitor(
	valuator *Valuator,
	book *Book,
	publisher Publisher,
	interval time.Duration,
	percentThreshold float64,
	absoluteThreshold float64,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		valuator:          valuator,
		book:              book,
		publisher:         publisher,
		interval:          interval,
		percentThreshold:  percentThreshold,
		absoluteThreshold: absoluteThreshold,
		lastBroadcast:     make(map[string]float64),
		logger:            logger,
	}
}

// Run executes monitoring cycles until cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cycle()
		}
	}
}

// Cycle revalues every subject once. Per-subject problems are logged and
// skipped; they never abort the cycle for other subjects.
func (m *Monitor) Cycle() {
	for _, subject := range m.book.Subjects() {
		if len(m.book.Holdings(subject.Name)) == 0 {
			m.logger.Debug("No holdings for subject, skipping",
				zap.String("subject", subject.Name))
			continue
		}

		newWorth := m.valuator.Value(subject.Name) / 1e9

		previous, ok := m.lastBroadcast[subject.Name]
		if !ok {
			previous = subject.NetWorth
		}

		change := newWorth - previous
		changePercent := 0.0
		if previous != 0 {
			changePercent = (change / previous) * 100.0
		}

		if math.Abs(changePercent) <= m.percentThreshold && math.Abs(change) <= m.absoluteThreshold {
			continue
		}

		m.publisher.Publish(models.NewWealthChanged(models.WealthChange{
			Subject:          subject.Name,
			PreviousNetWorth: previous,
			NewNetWorth:      newWorth,
			ChangePercent:    changePercent,
			Reason:           changeReason(changePercent),
		}))
		m.lastBroadcast[subject.Name] = newWorth

		m.logger.Info("Wealth change broadcast",
			zap.String("subject", subject.Name),
			zap.Float64("previous", previous),
			zap.Float64("new", newWorth),
			zap.Float64("percent", changePercent))
	}
}

func changeReason(changePercent float64) string {
	if changePercent >= 0 {
		return fmt.Sprintf("Portfolio gains of %.1f%%", changePercent)
	}
	return fmt.Sprintf("Portfolio losses of %.1f%%", math.Abs(changePercent))
}
