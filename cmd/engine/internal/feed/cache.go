package feed

import (
	"sync"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// Cache holds the latest known quote per symbol. At most one quote per
// symbol; newer arrivals overwrite older ones regardless of observation
// timestamp (last-arrival-wins, a known limitation).
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]models.PriceQuote
}

func NewCache() *Cache {
	return &Cache{quotes: make(map[string]models.PriceQuote)}
}

func (c *Cache) Set(q models.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[q.Symbol] = q
}

func (c *Cache) Get(symbol string) (models.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[symbol]
	return q, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}
