package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ceast3/thereplacebook/pkg/models"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooSource fetches quotes from the unofficial Yahoo Finance chart API.
// No credential required; this is the primary source.
type YahooSource struct {
	baseURL string
	client  *http.Client
}

func NewYahooSource() *YahooSource {
	return &YahooSource{
		baseURL: defaultYahooBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewYahooSourceWithBaseURL is used by tests to point at a local server.
func NewYahooSourceWithBaseURL(baseURL string) *YahooSource {
	s := NewYahooSource()
	s.baseURL = baseURL
	return s
}

func (s *YahooSource) Name() string { return "yahoo" }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (s *YahooSource) Quote(ctx context.Context, symbol string) (models.PriceQuote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s", s.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.PriceQuote{}, err
	}
	req.Header.Set("User-Agent", "TheReplacebook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.PriceQuote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PriceQuote{}, fmt.Errorf("yahoo status %d for %s", resp.StatusCode, symbol)
	}

	var data yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.PriceQuote{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(data.Chart.Result) == 0 || data.Chart.Result[0].Meta.RegularMarketPrice == nil {
		return models.PriceQuote{}, fmt.Errorf("%w: missing regularMarketPrice for %s", ErrBadPayload, symbol)
	}

	meta := data.Chart.Result[0].Meta
	price := *meta.RegularMarketPrice
	previousClose := price
	if meta.PreviousClose != nil {
		previousClose = *meta.PreviousClose
	}

	change := price - previousClose
	changePercent := 0.0
	if previousClose != 0 {
		changePercent = (change / previousClose) * 100.0
	}

	return models.PriceQuote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now().UTC(),
	}, nil
}
