package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// HoldingsView is the read side of the holdings book the aggregator needs:
// which symbols are held, and by whom.
type HoldingsView interface {
	Symbols() []string
	Owners(symbol string) []string
}

// SymbolsProvider supplies extra symbols to track, typically from active
// subscriber filters.
type SymbolsProvider interface {
	Symbols() []string
}

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(ev models.Event)
}

// QuoteSink receives successfully refreshed quotes, e.g. a Redis snapshot
// store. Writes are best-effort.
type QuoteSink interface {
	SaveQuote(ctx context.Context, q models.PriceQuote) error
}

// Aggregator polls the configured price sources in priority order for every
// tracked symbol, caches successful quotes, and emits market events.
type Aggregator struct {
	sources    []Source
	cache      *Cache
	holdings   HoldingsView
	extra      SymbolsProvider
	publisher  Publisher
	sink       QuoteSink
	interval   time.Duration
	batchSize  int
	batchDelay time.Duration
	logger     *zap.Logger
}

func NewAggregator(
	sources []Source,
	cache *Cache,
	holdings HoldingsView,
	extra SymbolsProvider,
	publisher Publisher,
	sink QuoteSink,
	interval time.Duration,
	batchSize int,
	batchDelay time.Duration,
	logger *zap.Logger,
) *Aggregator {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Aggregator{
		sources:    sources,
		cache:      cache,
		holdings:   holdings,
		extra:      extra,
		publisher:  publisher,
		sink:       sink,
		interval:   interval,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		logger:     logger,
	}
}

// Refresh tries each source in priority order for one symbol. The first
// success is cached and broadcast as a market event. If every source fails
// the cache is left untouched: stale data beats no data.
func (a *Aggregator) Refresh(ctx context.Context, symbol string) (models.PriceQuote, error) {
	for _, src := range a.sources {
		quote, err := src.Quote(ctx, symbol)
		if err != nil {
			a.logger.Warn("Price source failed",
				zap.String("source", src.Name()),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		a.cache.Set(quote)

		if a.sink != nil {
			if err := a.sink.SaveQuote(ctx, quote); err != nil {
				a.logger.Warn("Failed to save quote snapshot",
					zap.String("symbol", symbol), zap.Error(err))
			}
		}

		a.publisher.Publish(models.NewMarketMoved(models.MarketMove{
			Symbol:           quote.Symbol,
			Price:            quote.Price,
			Change:           quote.Change,
			AffectedSubjects: a.holdings.Owners(symbol),
		}))

		return quote, nil
	}

	return models.PriceQuote{}, fmt.Errorf("%w: %s", ErrUnavailable, symbol)
}

// Run polls all tracked symbols on the configured interval until the
// context is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refreshAll(ctx)
		}
	}
}

func (a *Aggregator) refreshAll(ctx context.Context) {
	symbols := a.trackedSymbols()
	if len(symbols) == 0 {
		return
	}
	a.logger.Info("Refreshing prices", zap.Int("symbols", len(symbols)))

	for start := 0; start < len(symbols); start += a.batchSize {
		end := start + a.batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		for _, symbol := range symbols[start:end] {
			if _, err := a.Refresh(ctx, symbol); err != nil {
				a.logger.Warn("Failed to refresh price",
					zap.String("symbol", symbol), zap.Error(err))
			}
		}
		if end == len(symbols) {
			break
		}
		// Pacing between batches keeps us inside third-party rate limits.
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.batchDelay):
		}
	}
}

// trackedSymbols is the union of all held symbols and all subscriber
// symbol filters, sorted for a stable refresh order.
func (a *Aggregator) trackedSymbols() []string {
	seen := make(map[string]bool)
	var out []string
	for _, sym := range a.holdings.Symbols() {
		if sym != "" && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	if a.extra != nil {
		for _, sym := range a.extra.Symbols() {
			if sym != "" && !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	sort.Strings(out)
	return out
}
