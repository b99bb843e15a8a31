package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-statement-service/internal/config"
	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes composed statements to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes statements in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, statements []domain.Statement) error {
	if len(statements) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(statements))
	for i := range statements {
		msg, err := serializeToMessage(statements[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d statements: %w", len(msgs), err)
	}
	w.logger.Debug("statements published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Statement into a Kafka message keyed by the
// bulletin's product id so reissues of one product stay on one partition.
func serializeToMessage(s domain.Statement) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize statement: %w", err)
	}
	key := s.ProductID
	if key == "" {
		key = s.ID
	}
	hazards := make([]string, len(s.Hazards))
	for i, k := range s.Hazards {
		hazards[i] = string(k)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "scenario", Value: []byte(s.Scenario)},
			{Key: "hazards", Value: []byte(strings.Join(hazards, ","))},
			{Key: "composed_at", Value: []byte(s.ComposedAt.Format(time.RFC3339))},
		},
	}, nil
}
