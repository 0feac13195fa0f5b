package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ceast3/thereplacebook/pkg/models"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageSource fetches quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint. Requires a free API key; without one the source reports itself
// permanently unavailable rather than failing the process.
type AlphaVantageSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAlphaVantageSource(apiKey string) *AlphaVantageSource {
	return &AlphaVantageSource{
		baseURL: defaultAlphaVantageBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewAlphaVantageSourceWithBaseURL is used by tests to point at a local server.
func NewAlphaVantageSourceWithBaseURL(baseURL, apiKey string) *AlphaVantageSource {
	s := NewAlphaVantageSource(apiKey)
	s.baseURL = baseURL
	return s
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

type alphaVantageResponse struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

func (s *AlphaVantageSource) Quote(ctx context.Context, symbol string) (models.PriceQuote, error) {
	if s.apiKey == "" {
		return models.PriceQuote{}, fmt.Errorf("%w: alphavantage api key not configured", ErrSourceDisabled)
	}

	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", s.baseURL, symbol, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.PriceQuote{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.PriceQuote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PriceQuote{}, fmt.Errorf("alphavantage status %d for %s", resp.StatusCode, symbol)
	}

	var data alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.PriceQuote{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if data.GlobalQuote.Price == "" {
		return models.PriceQuote{}, fmt.Errorf("%w: missing price for %s", ErrBadPayload, symbol)
	}

	price, err := strconv.ParseFloat(data.GlobalQuote.Price, 64)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("%w: price %q", ErrBadPayload, data.GlobalQuote.Price)
	}

	change, _ := strconv.ParseFloat(data.GlobalQuote.Change, 64)
	changePercent, _ := strconv.ParseFloat(strings.TrimSuffix(data.GlobalQuote.ChangePercent, "%"), 64)

	return models.PriceQuote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now().UTC(),
	}, nil
}
