package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/peak-catalog/internal/config"
	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes peak change events to a Kafka topic.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured peak topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaPeakTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// PublishPeakEvent serializes and writes one event keyed by peak id, so all
// changes to a peak land on the same partition in order.
func (p *Publisher) PublishPeakEvent(ctx context.Context, event domain.PeakEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		p.metrics.PeakEventErrors.Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PeakEventErrors.Inc()
		return fmt.Errorf("write peak event: %w", err)
	}
	p.metrics.PeakEventsPublished.WithLabelValues(string(event.Action)).Inc()
	p.logger.Debug("peak event published", "action", event.Action, "peak_id", event.PeakID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a PeakEvent into a Kafka message.
func serializeToMessage(event domain.PeakEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize peak event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.PeakID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
