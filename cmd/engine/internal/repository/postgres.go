package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// PostgresStore reads tracked subjects and their declared holdings. Both
// are curated, read-only inputs to the engine.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects a pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, url string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// TopSubjects returns the highest-rated subjects with their baseline net
// worth in billions of USD.
func (s *PostgresStore) TopSubjects(ctx context.Context, limit int) ([]models.Subject, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, industry, net_worth
		   FROM users
		  ORDER BY rating DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var name string
		var industry, netWorth *string
		if err := rows.Scan(&name, &industry, &netWorth); err != nil {
			s.logger.Error("Failed to scan subject row", zap.Error(err))
			continue
		}
		subject := models.Subject{Name: name}
		if industry != nil {
			subject.Industry = *industry
		}
		if netWorth != nil {
			subject.NetWorth = parseNetWorth(*netWorth)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// Holdings returns the declared holdings for a single subject.
func (s *PostgresStore) Holdings(ctx context.Context, name string) ([]models.Holding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kind, symbol, shares, entity, stake, valuation, description, value, details
		   FROM holdings
		  WHERE subject_name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		h, err := scanHolding(rows.Scan)
		if err != nil {
			s.logger.Error("Failed to scan holding row",
				zap.String("subject", name), zap.Error(err))
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// AllHoldings returns every subject's holdings keyed by subject name.
// Bad rows are logged and skipped; they never fail the whole load.
func (s *PostgresStore) AllHoldings(ctx context.Context) (map[string][]models.Holding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT subject_name, kind, symbol, shares, entity, stake, valuation, description, value, details
		   FROM holdings`)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Holding)
	for rows.Next() {
		var subject string
		h, err := scanHolding(func(dest ...any) error {
			return rows.Scan(append([]any{&subject}, dest...)...)
		})
		if err != nil {
			s.logger.Error("Failed to scan holding row", zap.Error(err))
			continue
		}
		out[subject] = append(out[subject], h)
	}
	return out, rows.Err()
}

// scanHolding reads one flat holdings row. List-shaped variants
// (real estate properties, crypto positions) live in the details JSONB
// column.
func scanHolding(scan func(dest ...any) error) (models.Holding, error) {
	var kind string
	var symbol, entity, description *string
	var shares, stake, valuation, value *float64
	var details []byte

	if err := scan(&kind, &symbol, &shares, &entity, &stake, &valuation, &description, &value, &details); err != nil {
		return models.Holding{}, err
	}

	h := models.Holding{Kind: models.HoldingKind(kind)}
	if symbol != nil {
		h.Symbol = *symbol
	}
	if shares != nil {
		h.Shares = *shares
	}
	if entity != nil {
		h.Entity = *entity
	}
	if stake != nil {
		h.Stake = *stake
	}
	if valuation != nil {
		h.Valuation = *valuation
	}
	if description != nil {
		h.Description = *description
	}
	if value != nil {
		h.Value = *value
	}

	switch h.Kind {
	case models.HoldingRealEstate:
		if len(details) > 0 {
			if err := json.Unmarshal(details, &h.Properties); err != nil {
				return models.Holding{}, fmt.Errorf("decode properties: %w", err)
			}
		}
	case models.HoldingCrypto:
		if len(details) > 0 {
			if err := json.Unmarshal(details, &h.Positions); err != nil {
				return models.Holding{}, fmt.Errorf("decode positions: %w", err)
			}
		}
	}
	return h, nil
}

// parseNetWorth turns curated strings like "$233.1B" into billions of USD.
// Unparseable values come back as zero.
func parseNetWorth(s string) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSuffix(cleaned, "B")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
