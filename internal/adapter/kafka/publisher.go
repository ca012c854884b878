package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

// Publisher produces forecast snapshots to a Kafka topic.
// It implements dashboard.SnapshotSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// SaveSnapshot serializes and publishes one forecast. Messages are keyed by
// coordinate so snapshots for a location stay ordered within a partition.
func (p *Publisher) SaveSnapshot(ctx context.Context, f domain.Forecast) error {
	msg, err := serializeToMessage(f)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	p.logger.Debug("snapshot published", "topic", p.writer.Topic, "key", string(msg.Key))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Forecast into a Kafka message.
func serializeToMessage(f domain.Forecast) (kafkago.Message, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(f.Location.Coordinate.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(f.Location.Name)},
			{Key: "fetched_at", Value: []byte(f.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
