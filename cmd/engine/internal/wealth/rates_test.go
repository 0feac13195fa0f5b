package wealth_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/wealth"
)

type fakeRateSource struct {
	rates map[string]float64
	err   error
}

func (f *fakeRateSource) Rates(ctx context.Context) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func TestRateTable_Convert(t *testing.T) {
	table := wealth.NewRateTable(nil, zap.NewNop())

	if got := table.Convert(100, "USD"); got != 100 {
		t.Errorf("USD should pass through, got %v", got)
	}
	if got := table.Convert(100, ""); got != 100 {
		t.Errorf("Empty currency should pass through, got %v", got)
	}
	if got := table.Convert(100, "EUR"); got != 108 {
		t.Errorf("Expected 100 EUR = 108 USD, got %v", got)
	}
	// Unknown code degrades to USD instead of erroring.
	if got := table.Convert(100, "XYZ"); got != 100 {
		t.Errorf("Unknown currency should be treated as USD, got %v", got)
	}
}

func TestRateTable_PerturbKeepsUSDFixed(t *testing.T) {
	table := wealth.NewRateTable(nil, zap.NewNop())

	for i := 0; i < 10; i++ {
		table.Refresh(context.Background())
	}

	usd, ok := table.Rate("USD")
	if !ok || usd != 1.0 {
		t.Errorf("USD must stay pinned at 1.0, got %v ok=%v", usd, ok)
	}

	eur, ok := table.Rate("EUR")
	if !ok {
		t.Fatal("EUR rate missing after refresh")
	}
	// Ten perturbations of at most ±0.5% each stay well inside this band.
	if eur < 1.08*0.9 || eur > 1.08*1.1 {
		t.Errorf("EUR drifted too far: %v", eur)
	}
}

func TestRateTable_SourceReplacesTable(t *testing.T) {
	src := &fakeRateSource{rates: map[string]float64{"EUR": 1.10, "CHF": 1.12}}
	table := wealth.NewRateTable(src, zap.NewNop())

	table.Refresh(context.Background())

	if eur, _ := table.Rate("EUR"); eur != 1.10 {
		t.Errorf("Expected refreshed EUR 1.10, got %v", eur)
	}
	if chf, _ := table.Rate("CHF"); chf != 1.12 {
		t.Errorf("Expected CHF 1.12, got %v", chf)
	}
	if usd, _ := table.Rate("USD"); usd != 1.0 {
		t.Errorf("USD must be re-pinned after source refresh, got %v", usd)
	}
	// GBP came from the defaults; the source replaces the whole table.
	if _, ok := table.Rate("GBP"); ok {
		t.Error("Stale default rates should not survive a source refresh")
	}
}

func TestRateTable_SourceFailureKeepsPrevious(t *testing.T) {
	src := &fakeRateSource{err: errors.New("api down")}
	table := wealth.NewRateTable(src, zap.NewNop())

	table.Refresh(context.Background())

	if eur, _ := table.Rate("EUR"); eur != 1.08 {
		t.Errorf("Source failure should keep previous rates, got EUR %v", eur)
	}
}
