package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ceast3/thereplacebook/pkg/models"
)

const (
	quoteKeyPrefix     = "stock:"
	quoteChannelPrefix = "prices."
	quoteTTL           = time.Hour
)

// RedisStore mirrors refreshed quotes into Redis: a keyed snapshot for
// services that want the latest price, and a pub/sub channel per symbol
// for services that want the stream.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveQuote pipelines SET + PUBLISH so snapshot and stream stay consistent.
func (r *RedisStore) SaveQuote(ctx context.Context, q models.PriceQuote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, quoteKeyPrefix+q.Symbol, payload, quoteTTL)
	pipe.Publish(ctx, quoteChannelPrefix+q.Symbol, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save quote %s: %w", q.Symbol, err)
	}
	return nil
}

// Snapshots fetches the latest stored quotes for a list of symbols.
// Symbols with no stored quote are simply absent from the result.
func (r *RedisStore) Snapshots(ctx context.Context, symbols []string) ([]models.PriceQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = quoteKeyPrefix + sym
	}

	results, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var quotes []models.PriceQuote
	for _, val := range results {
		payload, ok := val.(string)
		if !ok || payload == "" {
			continue
		}
		var q models.PriceQuote
		if err := json.Unmarshal([]byte(payload), &q); err != nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
