package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tsunami-statement-service/internal/config"
	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes bulletins from the source topic as part of a consumer group.
// It implements pipeline.BatchExtractor. Offsets are committed per message by
// the pipeline through RawBulletin.Commit.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSourceTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, flushInterval: cfg.BatchFlushInterval, logger: logger}
}

// ExtractBatch fetches up to batchSize bulletins. It returns early with a
// partial batch once the flush interval elapses after the call started, so a
// quiet topic never holds back bulletins already fetched.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawBulletin, error) {
	fetchCtx := ctx
	if r.flushInterval > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.flushInterval)
		defer cancel()
	}

	batch := make([]domain.RawBulletin, 0, batchSize)
	for len(batch) < batchSize {
		msg, err := r.reader.FetchMessage(fetchCtx)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return batch, nil
			}
			if len(batch) > 0 && ctx.Err() == nil {
				r.logger.Warn("fetch interrupted, returning partial batch", "error", err, "size", len(batch))
				return batch, nil
			}
			return batch, fmt.Errorf("fetch message: %w", err)
		}
		raw := mapMessageToRawBulletin(msg)
		raw.Commit = r.commitFunc(msg)
		batch = append(batch, raw)
	}
	return batch, nil
}

// Close leaves the consumer group and closes the connection.
func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) commitFunc(msg kafkago.Message) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := r.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
		return nil
	}
}

// mapMessageToRawBulletin copies a Kafka message into a RawBulletin.
func mapMessageToRawBulletin(msg kafkago.Message) domain.RawBulletin {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawBulletin{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
