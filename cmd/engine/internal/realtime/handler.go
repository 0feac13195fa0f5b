package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// SnapshotProvider returns the latest stored quotes for a set of symbols,
// so a fresh subscriber does not wait a full poll cycle for its first price.
type SnapshotProvider interface {
	Snapshots(ctx context.Context, symbols []string) ([]models.PriceQuote, error)
}

// Handler processes inbound subscription messages on behalf of the
// transport adapter. Malformed messages are logged and ignored; the
// connection stays open and never sees an error payload.
type Handler struct {
	dispatcher *Dispatcher
	subs       *Subscriptions
	snapshots  SnapshotProvider // optional
	logger     *zap.Logger
}

func NewHandler(dispatcher *Dispatcher, subs *Subscriptions, snapshots SnapshotProvider, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		subs:       subs,
		snapshots:  snapshots,
		logger:     logger,
	}
}

// HandleMessage parses and applies one raw client message.
func (h *Handler) HandleMessage(connID string, raw []byte) {
	var req ClientRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.logger.Warn("Invalid message from client",
			zap.String("conn_id", connID), zap.Error(err))
		return
	}

	switch req.Action {
	case ActionSubscribe:
		sub := req.Payload
		for i, s := range sub.Symbols {
			sub.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
		}
		h.subs.Set(connID, sub)
		h.logger.Info("Client subscribed",
			zap.String("conn_id", connID),
			zap.Strings("subjects", sub.Subjects),
			zap.Strings("symbols", sub.Symbols),
			zap.Bool("all_events", sub.AllEvents))
		h.ack(connID, "Subscription successful")
		if h.snapshots != nil && len(sub.Symbols) > 0 {
			go h.sendSnapshots(connID, sub.Symbols)
		}

	case ActionUnsubscribe:
		h.subs.Clear(connID)
		h.logger.Info("Client unsubscribed", zap.String("conn_id", connID))

	case ActionPing:
		h.ack(connID, "pong")

	default:
		h.logger.Warn("Unknown action from client",
			zap.String("conn_id", connID), zap.String("action", req.Action))
	}
}

// sendSnapshots queues the latest stored quote for each subscribed symbol.
// Best-effort: a missing snapshot or a full queue just means the client
// waits for the next refresh.
func (h *Handler) sendSnapshots(connID string, symbols []string) {
	quotes, err := h.snapshots.Snapshots(context.Background(), symbols)
	if err != nil {
		h.logger.Debug("Failed to load quote snapshots",
			zap.String("conn_id", connID), zap.Error(err))
		return
	}
	for _, q := range quotes {
		ev := models.NewMarketMoved(models.MarketMove{
			Symbol: q.Symbol,
			Price:  q.Price,
			Change: q.Change,
		})
		if err := h.dispatcher.SendTo(connID, ev); err != nil {
			return
		}
	}
}

func (h *Handler) ack(connID, message string) {
	ev := models.NewSystemNotice(message, models.SeverityInfo)
	if err := h.dispatcher.SendTo(connID, ev); err != nil {
		h.logger.Debug("Failed to queue ack",
			zap.String("conn_id", connID), zap.Error(err))
	}
}
