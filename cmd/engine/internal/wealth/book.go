package wealth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// SubjectSource is the persistence collaborator supplying tracked subjects
// with baseline valuations, and their declared holdings.
type SubjectSource interface {
	TopSubjects(ctx context.Context, limit int) ([]models.Subject, error)
	AllHoldings(ctx context.Context) (map[string][]models.Holding, error)
}

// Book is the in-memory view of tracked subjects and their holdings,
// bulk-refreshed from the SubjectSource. Refresh replaces the whole view
// under one writer lock; everything else is read-mostly.
type Book struct {
	mu       sync.RWMutex
	subjects []models.Subject
	holdings map[string][]models.Holding
	logger   *zap.Logger
}

func NewBook(logger *zap.Logger) *Book {
	return &Book{
		holdings: make(map[string][]models.Holding),
		logger:   logger,
	}
}

// Replace swaps in a fresh view of subjects and holdings.
func (b *Book) Replace(subjects []models.Subject, holdings map[string][]models.Holding) {
	if holdings == nil {
		holdings = make(map[string][]models.Holding)
	}
	b.mu.Lock()
	b.subjects = subjects
	b.holdings = holdings
	b.mu.Unlock()
}

// Refresh pulls the latest subjects and holdings from the source. A failed
// pull keeps the previous view.
func (b *Book) Refresh(ctx context.Context, src SubjectSource, limit int) error {
	subjects, err := src.TopSubjects(ctx, limit)
	if err != nil {
		return err
	}
	holdings, err := src.AllHoldings(ctx)
	if err != nil {
		return err
	}
	b.Replace(subjects, holdings)
	b.logger.Info("Refreshed holdings book",
		zap.Int("subjects", len(subjects)),
		zap.Int("portfolios", len(holdings)))
	return nil
}

// Run keeps the book fresh on an interval until cancelled.
func (b *Book) Run(ctx context.Context, src SubjectSource, limit int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Refresh(ctx, src, limit); err != nil {
				b.logger.Error("Failed to refresh holdings book", zap.Error(err))
			}
		}
	}
}

// Subjects returns a copy of the tracked subjects.
func (b *Book) Subjects() []models.Subject {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Subject, len(b.subjects))
	copy(out, b.subjects)
	return out
}

// Holdings returns the declared holdings for one subject. A subject with
// no holdings yields nil.
func (b *Book) Holdings(name string) []models.Holding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.holdings[name]
}

// Symbols lists every public-equity symbol referenced by any holding.
func (b *Book) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, hs := range b.holdings {
		for _, h := range hs {
			if h.Kind == models.HoldingPublicEquity && h.Symbol != "" && !seen[h.Symbol] {
				seen[h.Symbol] = true
				out = append(out, h.Symbol)
			}
		}
	}
	return out
}

// Owners lists the subjects whose holdings reference a symbol.
func (b *Book) Owners(symbol string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []string
	for name, hs := range b.holdings {
		for _, h := range hs {
			if h.Kind == models.HoldingPublicEquity && h.Symbol == symbol {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
