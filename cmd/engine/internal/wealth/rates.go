package wealth

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateSource is an optional external currency API. When absent the table
// falls back to perturbing the last known rates as a placeholder.
type RateSource interface {
	Rates(ctx context.Context) (map[string]float64, error)
}

// RateTable converts currencies to USD via cached multipliers. Reads are
// lock-free in practice; the periodic refresh replaces the whole table
// under a single writer lock.
type RateTable struct {
	mu     sync.RWMutex
	rates  map[string]float64
	source RateSource
	logger *zap.Logger
}

func NewRateTable(source RateSource, logger *zap.Logger) *RateTable {
	return &RateTable{
		rates: map[string]float64{
			"USD": 1.0,
			"EUR": 1.08,
			"GBP": 1.27,
			"JPY": 0.0067,
			"CNY": 0.14,
		},
		source: source,
		logger: logger,
	}
}

// Convert translates an amount to USD. Unknown currency codes are treated
// as already being USD, with a warning.
func (t *RateTable) Convert(amount float64, currency string) float64 {
	if currency == "USD" || currency == "" {
		return amount
	}

	t.mu.RLock()
	rate, ok := t.rates[currency]
	t.mu.RUnlock()

	if !ok {
		t.logger.Warn("Unknown currency, treating as USD", zap.String("currency", currency))
		return amount
	}
	return amount * rate
}

// Rate returns the multiplier for a currency, if known.
func (t *RateTable) Rate(currency string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rate, ok := t.rates[currency]
	return rate, ok
}

// Run refreshes the table on the given interval until cancelled.
func (t *RateTable) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Refresh(ctx)
		}
	}
}

// Refresh replaces the table from the external source, or perturbs the
// current rates by up to ±0.5% when no source is configured. A source
// failure keeps the previous table.
func (t *RateTable) Refresh(ctx context.Context) {
	if t.source != nil {
		fresh, err := t.source.Rates(ctx)
		if err != nil {
			t.logger.Warn("Currency source failed, keeping previous rates", zap.Error(err))
			return
		}
		fresh["USD"] = 1.0

		t.mu.Lock()
		t.rates = fresh
		count := len(t.rates)
		t.mu.Unlock()

		t.logger.Info("Updated exchange rates", zap.Int("currencies", count))
		return
	}

	t.mu.Lock()
	for currency, rate := range t.rates {
		if currency == "USD" {
			continue
		}
		t.rates[currency] = rate * (1.0 + (rand.Float64()-0.5)*0.01)
	}
	count := len(t.rates)
	t.mu.Unlock()

	t.logger.Info("Updated exchange rates", zap.Int("currencies", count))
}
