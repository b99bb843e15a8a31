package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/couchcryptid/tsunami-statement-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw bulletins from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawBulletin, error)
}

// Transformer composes the statement for a raw bulletin.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawBulletin) (domain.Statement, error)
}

// BatchLoader writes multiple statements to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, statements []domain.Statement) error
}

// IssuanceRecorder checks statements against earlier broadcasts and records
// the ones that were published.
type IssuanceRecorder interface {
	Overlaps(kinds []domain.HazardKind, zones []domain.ZoneCode) []domain.Overlap
	RecordStatement(s domain.Statement) error
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	issuances   IssuanceRecorder
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIssuanceRecorder attaches overlap warnings to broadcastable statements
// and records them once the sink accepted the batch.
func WithIssuanceRecorder(r IssuanceRecorder) Option {
	return func(p *Pipeline) { p.issuances = r }
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil if the pipeline has processed at least one message,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.transformAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// transformAndLoad transforms each message in the batch, loads the successes,
// and commits offsets. Returns the number of successfully loaded messages and
// false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawBulletin, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	outBatch := make([]domain.Statement, 0, len(rawBatch))
	successfulRaws := make([]domain.RawBulletin, 0, len(rawBatch))

	for _, raw := range rawBatch {
		out, err := p.transformer.Transform(ctx, raw)
		if errors.Is(err, domain.ErrDuplicateBulletin) {
			p.logger.Info("duplicate bulletin, skipping message",
				"product_id", raw.ProductID(),
				"offset", raw.Offset,
			)
			p.metrics.DuplicateBulletins.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		p.observe(out)
		outBatch = append(outBatch, p.withOverlaps(out))
		successfulRaws = append(successfulRaws, raw)
	}

	if len(outBatch) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, outBatch); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.MessagesProduced.Add(float64(len(outBatch)))
	p.recordIssuances(outBatch)

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	return len(outBatch), true
}

func (p *Pipeline) observe(s domain.Statement) {
	if s.Scenario != "" {
		p.metrics.Scenarios.WithLabelValues(string(s.Scenario)).Inc()
	}
	if !s.Notice.IsZero() {
		p.metrics.Notices.WithLabelValues(string(s.Notice.Kind)).Inc()
	}
	p.logger.Debug("statement composed",
		"product_id", s.ProductID,
		"scenario", s.Scenario,
		"hazards", s.Hazards,
		"notice", s.Notice.Kind,
	)
}

// withOverlaps attaches the unexpired earlier broadcasts sharing a zone with s.
func (p *Pipeline) withOverlaps(s domain.Statement) domain.Statement {
	if p.issuances == nil || !s.Broadcastable() || s.Cancels() {
		return s
	}
	var zones []domain.ZoneCode
	for _, k := range s.Hazards {
		zones = append(zones, s.Zones[k]...)
	}
	s.Overlaps = p.issuances.Overlaps(s.Hazards, zones)
	for _, o := range s.Overlaps {
		p.metrics.OverlapWarnings.WithLabelValues(string(o.Kind)).Inc()
		p.logger.Warn("statement overlaps an unexpired broadcast",
			"product_id", s.ProductID,
			"hazard", o.Kind,
			"zones", domain.JoinZones(o.Zones),
			"expiry", o.Expiry,
		)
	}
	return s
}

func (p *Pipeline) recordIssuances(batch []domain.Statement) {
	if p.issuances == nil {
		return
	}
	for _, s := range batch {
		if !s.Broadcastable() {
			continue
		}
		if err := p.issuances.RecordStatement(s); err != nil {
			p.logger.Error("record issuance failed", "error", err, "product_id", s.ProductID)
		}
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawBulletin) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
