package newsgen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/pkg/models"
)

// template is one reusable story shape; %s is replaced by the subject.
type template struct {
	headline string
	summary  string
	impact   models.ImpactLevel
}

var storyTemplates = []template{
	{
		headline: "%s announces record quarterly results",
		summary:  "Flagship holdings of %s beat analyst expectations, lifting valuations across the portfolio.",
		impact:   models.ImpactHigh,
	},
	{
		headline: "%s steps back from day-to-day operations",
		summary:  "%s hands operational control to a new chief executive while retaining the controlling stake.",
		impact:   models.ImpactMedium,
	},
	{
		headline: "Regulators open inquiry into holdings of %s",
		summary:  "Antitrust officials are reviewing recent acquisitions connected to %s. No findings yet.",
		impact:   models.ImpactMedium,
	},
	{
		headline: "%s pledges major philanthropic donation",
		summary:  "%s commits a multi-billion dollar gift, to be funded by gradual share sales.",
		impact:   models.ImpactLow,
	},
	{
		headline: "Private venture backed by %s reportedly raising at higher valuation",
		summary:  "A new funding round would mark up the private stake held by %s.",
		impact:   models.ImpactUnknown,
	},
}

// Generator produces sample announcements onto the news topic at a fixed
// interval. Development tooling; the production feed is external.
type Generator struct {
	logger   *zap.Logger
	writer   KafkaWriter
	subjects []string
	interval time.Duration
	rand     Rand
	clock    Clock
}

func NewGenerator(
	logger *zap.Logger,
	writer KafkaWriter,
	subjects []string,
	interval time.Duration,
	rnd Rand,
	clock Clock,
) *Generator {
	return &Generator{
		logger:   logger,
		writer:   writer,
		subjects: subjects,
		interval: interval,
		rand:     rnd,
		clock:    clock,
	}
}

// Next builds the next sample announcement.
func (g *Generator) Next() models.Announcement {
	subject := g.subjects[g.rand.Intn(len(g.subjects))]
	story := storyTemplates[g.rand.Intn(len(storyTemplates))]
	return models.Announcement{
		Headline:         fmt.Sprintf(story.headline, subject),
		Summary:          fmt.Sprintf(story.summary, subject),
		AffectedSubjects: []string{subject},
		Impact:           story.impact,
	}
}

func (g *Generator) Run(ctx context.Context) {
	g.logger.Info("News generator started", zap.Strings("subjects", g.subjects))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if len(g.subjects) == 0 {
				g.clock.Sleep(time.Second)
				continue
			}

			announcement := g.Next()
			payload, err := json.Marshal(announcement)
			if err != nil {
				g.logger.Error("JSON Marshal Error", zap.Error(err))
				continue
			}

			err = g.writer.WriteMessages(ctx, kafka.Message{
				Key:   []byte(announcement.AffectedSubjects[0]),
				Value: payload,
			})
			if err != nil {
				g.logger.Error("Kafka Write Error", zap.Error(err))
			} else {
				g.logger.Debug("Sent announcement", zap.String("headline", announcement.Headline))
			}

			g.clock.Sleep(g.interval)
		}
	}
}
