package feed_test

import (
	"sync"
	"testing"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/feed"
	"github.com/ceast3/thereplacebook/pkg/models"
)

func TestCache_LastArrivalWins(t *testing.T) {
	c := feed.NewCache()

	c.Set(models.PriceQuote{Symbol: "TSLA", Price: 250})
	c.Set(models.PriceQuote{Symbol: "TSLA", Price: 260})

	q, ok := c.Get("TSLA")
	if !ok {
		t.Fatal("Expected cached quote")
	}
	if q.Price != 260 {
		t.Errorf("Expected latest arrival 260, got %v", q.Price)
	}
	if c.Len() != 1 {
		t.Errorf("At most one quote per symbol, got %d", c.Len())
	}
}

func TestCache_MissingSymbol(t *testing.T) {
	c := feed.NewCache()
	if _, ok := c.Get("NOPE"); ok {
		t.Error("Expected miss for unknown symbol")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	// Run with `go test -race ./...`
	c := feed.NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(p float64) {
			defer wg.Done()
			c.Set(models.PriceQuote{Symbol: "TSLA", Price: p})
		}(float64(i))
		go func() {
			defer wg.Done()
			c.Get("TSLA")
		}()
	}
	wg.Wait()
}
