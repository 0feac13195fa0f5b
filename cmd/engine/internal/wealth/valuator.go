package wealth

import (
	"github.com/ceast3/thereplacebook/cmd/engine/internal/feed"
	"github.com/ceast3/thereplacebook/pkg/models"
)

// Valuator computes a subject's net worth in USD from the current price
// cache, rate table and holdings book. Missing market data never raises an
// error; it simply contributes zero.
type Valuator struct {
	cache *feed.Cache
	rates *RateTable
	book  *Book
}

func NewValuator(cache *feed.Cache, rates *RateTable, book *Book) *Valuator {
	return &Valuator{
		cache: cache,
		rates: rates,
		book:  book,
	}
}

// Value totals all holding contributions for one subject, in USD.
func (v *Valuator) Value(name string) float64 {
	total := 0.0
	for _, h := range v.book.Holdings(name) {
		total += v.contribution(h)
	}
	return total
}

func (v *Valuator) contribution(h models.Holding) float64 {
	switch h.Kind {
	case models.HoldingPublicEquity:
		quote, ok := v.cache.Get(h.Symbol)
		if !ok {
			return 0
		}
		return h.Shares * quote.Price

	case models.HoldingPrivateStake:
		// Entity valuations are curated inputs, not market data.
		return h.Stake * h.Valuation

	case models.HoldingRealEstate:
		total := 0.0
		for _, p := range h.Properties {
			total += v.rates.Convert(p.Value, p.Currency)
		}
		return total

	case models.HoldingCrypto:
		total := 0.0
		for _, c := range h.Positions {
			total += c.Amount * c.PriceUSD
		}
		return total

	case models.HoldingOther:
		return h.Value
	}
	return 0
}
