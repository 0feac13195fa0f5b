package news

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// KafkaReader abstracts the input stream
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(ev models.Event)
}

// Consumer turns news messages from Kafka into Announcement events.
// Malformed messages are logged and skipped.
type Consumer struct {
	reader    KafkaReader
	publisher Publisher
	logger    *zap.Logger
}

func NewConsumer(reader KafkaReader, publisher Publisher, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader:    reader,
		publisher: publisher,
		logger:    logger,
	}
}

// Run consumes until the context is cancelled or the stream ends.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("News consumer started")

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("Kafka Read Error", zap.Error(err))
			continue
		}

		var a models.Announcement
		if err := json.Unmarshal(m.Value, &a); err != nil {
			c.logger.Warn("Invalid news payload",
				zap.String("key", string(m.Key)), zap.Error(err))
			continue
		}
		if a.Headline == "" {
			c.logger.Warn("News payload missing headline", zap.String("key", string(m.Key)))
			continue
		}
		if a.Impact == "" {
			a.Impact = models.ImpactUnknown
		}

		c.publisher.Publish(models.NewAnnouncement(a))
		c.logger.Debug("Published announcement",
			zap.String("headline", a.Headline),
			zap.Strings("subjects", a.AffectedSubjects))
	}
}
