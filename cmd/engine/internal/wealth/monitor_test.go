package wealth_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/feed"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/testutils"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/wealth"
	"github.com/ceast3/thereplacebook/pkg/models"
)

func newMonitor(book *wealth.Book, pub *testutils.MockPublisher) *wealth.Monitor {
	cache := feed.NewCache()
	rates := wealth.NewRateTable(nil, zap.NewNop())
	valuator := wealth.NewValuator(cache, rates, book)
	return wealth.NewMonitor(valuator, book, pub, time.Minute, 1.0, 1.0, zap.NewNop())
}

func otherHolding(value float64) []models.Holding {
	return []models.Holding{{Kind: models.HoldingOther, Value: value}}
}

func TestMonitor_EmitsOnAbsoluteThreshold(t *testing.T) {
	book := wealth.NewBook(zap.NewNop())
	book.Replace(
		[]models.Subject{{Name: "Alice", NetWorth: 100}},
		map[string][]models.Holding{"Alice": otherHolding(101.5e9)},
	)
	pub := &testutils.MockPublisher{}
	m := newMonitor(book, pub)

	m.Cycle()

	events := pub.ByType(models.EventWealthChanged)
	if len(events) != 1 {
		t.Fatalf("Expected one wealth event, got %d", len(events))
	}
	w := events[0].Wealth
	if w.Subject != "Alice" || w.PreviousNetWorth != 100 || w.NewNetWorth != 101.5 {
		t.Errorf("Unexpected wealth change %+v", w)
	}
	if w.ChangePercent != 1.5 {
		t.Errorf("Expected 1.5%% change, got %v", w.ChangePercent)
	}
	if w.Reason != "Portfolio gains of 1.5%" {
		t.Errorf("Unexpected reason %q", w.Reason)
	}
}

func TestMonitor_EmitsOnPercentThreshold(t *testing.T) {
	// 0.1B move is below the absolute threshold but 20% of the baseline.
	book := wealth.NewBook(zap.NewNop())
	book.Replace(
		[]models.Subject{{Name: "Alice", NetWorth: 0.5}},
		map[string][]models.Holding{"Alice": otherHolding(0.6e9)},
	)
	pub := &testutils.MockPublisher{}
	m := newMonitor(book, pub)

	m.Cycle()

	if got := pub.Count(); got != 1 {
		t.Fatalf("Expected one event, got %d", got)
	}
}

func TestMonitor_SubThresholdMoveIsSilent(t *testing.T) {
	book := wealth.NewBook(zap.NewNop())
	book.Replace(
		[]models.Subject{{Name: "Alice", NetWorth: 100}},
		map[string][]models.Holding{"Alice": otherHolding(100.5e9)},
	)
	pub := &testutils.MockPublisher{}
	m := newMonitor(book, pub)

	m.Cycle()

	if got := pub.Count(); got != 0 {
		t.Errorf("Expected no events for a 0.5%% move, got %d", got)
	}
}

func TestMonitor_DriftAccumulatesUntilThreshold(t *testing.T) {
	// Each step is below the thresholds against the last broadcast figure,
	// but the baseline only advances on an actual broadcast, so the drifts
	// add up and eventually fire.
	book := wealth.NewBook(zap.NewNop())
	book.Replace(
		[]models.Subject{{Name: "Alice", NetWorth: 100}},
		map[string][]models.Holding{"Alice": otherHolding(100.6e9)},
	)
	pub := &testutils.MockPublisher{}
	m := newMonitor(book, pub)

	m.Cycle()
	if pub.Count() != 0 {
		t.Fatalf("First 0.6B drift should be silent, got %d events", pub.Count())
	}

	book.Replace(
		[]models.Subject{{Name: "Alice", NetWorth: 100}},
		map[string][]models.Holding{"Alice": otherHolding(101.2e9)},
	)
	m.Cycle()

	events := pub.ByType(models.EventWealthChanged)
	if len(events) != 1 {
		t.Fatalf("Accumulated 1.2B drift should fire, got %d events", len(events))
	}
	w := events[0].Wealth
	if w.PreviousNetWorth != 100 {
		t.Errorf("Previous figure must be the last broadcast one, got %v", w.PreviousNetWorth)
	}
	if w.NewNetWorth != 101.2 {
		t.Errorf("Expected new worth 101.2, got %v", w.NewNetWorth)
	}

	// A stable valuation after a broadcast stays silent.
	m.Cycle()
	if pub.Count() != 1 {
		t.Errorf("Unchanged valuation should not fire again, got %d events", pub.Count())
	}
}

func TestMonitor_SkipsSubjectsWithoutHoldings(t *testing.T) {
	// A subject with no declared holdings would otherwise look like a total
	// wipeout against its baseline every cycle.
	book := wealth.NewBook(zap.NewNop())
	book.Replace([]models.Subject{{Name: "Alice", NetWorth: 100}}, nil)
	pub := &testutils.MockPublisher{}
	m := newMonitor(book, pub)

	m.Cycle()

	if got := pub.Count(); got != 0 {
		t.Errorf("Expected no events for a subject without holdings, got %d", got)
	}
}

func TestMonitor_LossReason(t *testing.T) {
	book := wealth.NewBook(zap.NewNop())
	book.Replace(
		[]models.Subject{{Name: "Alice", NetWorth: 100}},
		map[string][]models.Holding{"Alice": otherHolding(95e9)},
	)
	pub := &testutils.MockPublisher{}
	m := newMonitor(book, pub)

	m.Cycle()

	events := pub.ByType(models.EventWealthChanged)
	if len(events) != 1 {
		t.Fatalf("Expected one event, got %d", len(events))
	}
	if got := events[0].Wealth.Reason; got != "Portfolio losses of 5.0%" {
		t.Errorf("Unexpected reason %q", got)
	}
}
