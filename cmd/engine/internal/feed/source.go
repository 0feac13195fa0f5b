package feed

import (
	"context"
	"errors"

	"github.com/ceast3/thereplacebook/pkg/models"
)

var (
	// ErrUnavailable means every configured source failed for a symbol.
	ErrUnavailable = errors.New("all price sources unavailable")
	// ErrBadPayload means a source answered without the expected fields.
	ErrBadPayload = errors.New("malformed source payload")
	// ErrSourceDisabled means a source is missing a required credential and
	// is treated as permanently unavailable.
	ErrSourceDisabled = errors.New("source disabled")
)

// Source is one external price provider. The aggregator treats all sources
// uniformly regardless of underlying protocol.
type Source interface {
	Name() string
	Quote(ctx context.Context, symbol string) (models.PriceQuote, error)
}
