// Package tracker persists the last broadcast of each hazard kind and warns
// when a new broadcast overlaps one that has not expired yet.
//
// The file holds one record per line, pipe-delimited:
//
//	warning|1595401920|CAZ006-CAZ505
//
// kind, expiry in epoch seconds, and the dash-joined zones. Unreadable lines
// and a missing file read as "no prior record".
package tracker

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Tracker reads and rewrites the issuance file. Every call rereads the file,
// so several processes may point at the same path.
type Tracker struct {
	path   string
	clock  clockwork.Clock
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source used for expiry checks.
func WithClock(c clockwork.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// New creates a Tracker for the file at path. The file is created on the
// first Record.
func New(path string, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		path:   path,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Path returns the issuance file location.
func (t *Tracker) Path() string { return t.path }

// Record overwrites the entry for kind.
func (t *Tracker) Record(kind domain.HazardKind, zones []domain.ZoneCode, expiry time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := t.load()
	records[kind] = domain.IssuanceRecord{Kind: kind, Expiry: expiry.Truncate(time.Second), Zones: zones}
	return t.save(records)
}

// RecordStatement records every hazard of a broadcast statement with the
// statement's zones for that hazard. A cancellation expires the record at
// its compose time so it no longer overlaps.
func (t *Tracker) RecordStatement(s domain.Statement) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry := s.ExpiresAt
	if s.Cancels() {
		expiry = s.ComposedAt
	}
	records := t.load()
	for _, kind := range s.Hazards {
		records[kind] = domain.IssuanceRecord{Kind: kind, Expiry: expiry.Truncate(time.Second), Zones: s.Zones[kind]}
	}
	return t.save(records)
}

// CheckOverlap reports, per kind, whether an unexpired record of that kind
// shares a zone with zones.
func (t *Tracker) CheckOverlap(kinds []domain.HazardKind, zones []domain.ZoneCode) map[domain.HazardKind]bool {
	out := make(map[domain.HazardKind]bool, len(kinds))
	for _, k := range kinds {
		out[k] = false
	}
	for _, o := range t.Overlaps(kinds, zones) {
		out[o.Kind] = true
	}
	return out
}

// Overlaps returns the unexpired records of kinds that share a zone with
// zones, in priority order.
func (t *Tracker) Overlaps(kinds []domain.HazardKind, zones []domain.ZoneCode) []domain.Overlap {
	t.mu.Lock()
	records := t.load()
	t.mu.Unlock()

	now := t.clock.Now()
	var out []domain.Overlap
	for _, k := range domain.AllHazards {
		r, ok := records[k]
		if !ok || !containsKind(kinds, k) || !r.Active(now) {
			continue
		}
		if domain.ZonesOverlap(r.Zones, zones) {
			out = append(out, domain.Overlap{Kind: k, Zones: r.Zones, Expiry: r.Expiry})
		}
	}
	return out
}

// Records returns all stored records in priority order.
func (t *Tracker) Records() []domain.IssuanceRecord {
	t.mu.Lock()
	records := t.load()
	t.mu.Unlock()

	out := make([]domain.IssuanceRecord, 0, len(records))
	for _, k := range domain.AllHazards {
		if r, ok := records[k]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Active returns the records that have not expired.
func (t *Tracker) Active() []domain.IssuanceRecord {
	now := t.clock.Now()
	var out []domain.IssuanceRecord
	for _, r := range t.Records() {
		if r.Active(now) {
			out = append(out, r)
		}
	}
	return out
}

// Reset clears every record.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reset issuance file: %w", err)
	}
	return nil
}

func (t *Tracker) load() map[domain.HazardKind]domain.IssuanceRecord {
	records := make(map[domain.HazardKind]domain.IssuanceRecord, len(domain.AllHazards))
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			t.logger.Error("failed to read issuance file", "path", t.path, "error", err)
		}
		return records
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		r, err := parseRecord(text)
		if err != nil {
			t.logger.Warn("skipping corrupt issuance record", "path", t.path, "line", line, "error", err)
			continue
		}
		records[r.Kind] = r
	}
	if err := scanner.Err(); err != nil {
		t.logger.Warn("issuance file read stopped early", "path", t.path, "error", err)
	}
	return records
}

// save writes through a temporary file and renames it over the target.
func (t *Tracker) save(records map[domain.HazardKind]domain.IssuanceRecord) error {
	var b strings.Builder
	for _, k := range domain.AllHazards {
		if r, ok := records[k]; ok {
			b.WriteString(formatRecord(r))
			b.WriteByte('\n')
		}
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create issuance dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".issuance-*")
	if err != nil {
		return fmt.Errorf("create issuance temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write issuance file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close issuance file: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replace issuance file: %w", err)
	}
	return nil
}

func formatRecord(r domain.IssuanceRecord) string {
	return string(r.Kind) + "|" + strconv.FormatInt(r.Expiry.Unix(), 10) + "|" + domain.JoinZones(r.Zones)
}

func parseRecord(line string) (domain.IssuanceRecord, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return domain.IssuanceRecord{}, fmt.Errorf("want 3 fields, got %d", len(parts))
	}
	kind, ok := domain.ParseHazardKind(parts[0])
	if !ok {
		return domain.IssuanceRecord{}, fmt.Errorf("unknown hazard %q", parts[0])
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return domain.IssuanceRecord{}, fmt.Errorf("parse expiry: %w", err)
	}
	return domain.IssuanceRecord{
		Kind:   kind,
		Expiry: time.Unix(epoch, 0).UTC(),
		Zones:  domain.SplitZones(parts[2]),
	}, nil
}

func containsKind(kinds []domain.HazardKind, k domain.HazardKind) bool {
	for _, have := range kinds {
		if have == k {
			return true
		}
	}
	return false
}
