package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

const defaultBroadcastExpiry = time.Hour

// StatementTransformer turns bulletins into statements for one site:
// parse, resolve the scenario, describe the areas and compose the text.
type StatementTransformer struct {
	site      domain.Site
	parser    *domain.Parser
	composer  *domain.Composer
	templates map[domain.HazardKind]domain.Template
	canned    map[domain.CannedKind]map[domain.HazardKind]domain.Template
	expiry    time.Duration
	seen      *lru.Cache[string, time.Time]
	clock     clockwork.Clock
	logger    *slog.Logger
}

// TransformerOption configures a StatementTransformer.
type TransformerOption func(*StatementTransformer)

// WithTemplates replaces the built-in single-hazard templates.
func WithTemplates(templates map[domain.HazardKind]domain.Template) TransformerOption {
	return func(t *StatementTransformer) { t.templates = templates }
}

// WithCannedTemplates replaces the built-in cancellation and imminent
// templates.
func WithCannedTemplates(canned map[domain.CannedKind]map[domain.HazardKind]domain.Template) TransformerOption {
	return func(t *StatementTransformer) { t.canned = canned }
}

// WithBroadcastExpiry sets how long a broadcast stays in effect.
func WithBroadcastExpiry(d time.Duration) TransformerOption {
	return func(t *StatementTransformer) { t.expiry = d }
}

// WithDedupeCacheSize sets how many recent bulletins are remembered for
// duplicate suppression.
func WithDedupeCacheSize(n int) TransformerOption {
	return func(t *StatementTransformer) {
		if cache, err := lru.New[string, time.Time](n); err == nil {
			t.seen = cache
		}
	}
}

// WithClock sets the time source for composed and expiry times.
func WithClock(c clockwork.Clock) TransformerOption {
	return func(t *StatementTransformer) { t.clock = c }
}

// NewTransformer creates a StatementTransformer for site.
func NewTransformer(site domain.Site, logger *slog.Logger, opts ...TransformerOption) *StatementTransformer {
	seen, _ := lru.New[string, time.Time](256)
	t := &StatementTransformer{
		site:     site,
		parser:   domain.NewParser(site, logger),
		composer: domain.NewComposer(site),
		expiry:   defaultBroadcastExpiry,
		seen:     seen,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Site returns the jurisdiction the transformer composes for.
func (t *StatementTransformer) Site() domain.Site { return t.site }

// Transform composes the statement for a bulletin from the source topic.
// A bulletin whose text was composed recently returns ErrDuplicateBulletin.
func (t *StatementTransformer) Transform(ctx context.Context, raw domain.RawBulletin) (domain.Statement, error) {
	key := contentKey(raw.Value)
	if first, ok := t.seen.Get(key); ok {
		return domain.Statement{}, fmt.Errorf("product %s first seen %s: %w",
			raw.ProductID(), first.Format(time.RFC3339), domain.ErrDuplicateBulletin)
	}

	received := raw.Timestamp
	if received.IsZero() {
		received = t.clock.Now()
	}
	s, err := t.Compose(ctx, domain.ComposeRequest{
		ProductID:  raw.ProductID(),
		Text:       string(raw.Value),
		ReceivedAt: received,
	})
	if err != nil {
		return domain.Statement{}, err
	}
	t.seen.Add(key, received)
	return s, nil
}

// Compose builds the statement for a request. Scenarios that wait for an
// operator decision, and bulletins without a hazard to compose, return a
// statement without text carrying the reason in Notice.
func (t *StatementTransformer) Compose(ctx context.Context, req domain.ComposeRequest) (domain.Statement, error) {
	if err := ctx.Err(); err != nil {
		return domain.Statement{}, err
	}

	var custom *domain.Template
	if strings.TrimSpace(req.Template) != "" {
		tmpl, err := domain.ParseTemplate(req.Template)
		if err != nil {
			return domain.Statement{}, fmt.Errorf("parse request template: %w", err)
		}
		custom = &tmpl
	}

	now := t.clock.Now().UTC()
	s := domain.Statement{
		ID:         uuid.NewString(),
		ProductID:  req.ProductID,
		ReceivedAt: req.ReceivedAt,
		ComposedAt: now,
		ExpiresAt:  now.Add(t.expiry),
	}
	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = now
	}

	if req.Canned != "" {
		return t.cannedStatement(s, req, custom)
	}
	if req.DraftKind != nil {
		return t.draft(s, *req.DraftKind, t.siteZones(req.Zones), custom), nil
	}

	info := t.parser.Parse(req.Text)
	s.Zones = info.Zones
	s.Test = info.Test

	res := domain.Resolve(info, t.site.Policy())
	if req.Decision != nil {
		var err error
		res, err = domain.ResolveWithDecision(info, t.site.Policy(), *req.Decision)
		if err != nil {
			return domain.Statement{}, fmt.Errorf("resolve %s scenario: %w", res.Scenario, err)
		}
	}
	s.Scenario = res.Scenario
	s.Notice = pickNotice(info.Notice, res.Notice)

	if res.NeedsDecision {
		s.NeedsDecision = true
		s.Candidates = res.Candidates
		s.Remaining = res.Kinds
		return s, nil
	}
	if len(res.Compose) == 0 {
		return s, nil
	}

	tmpl := custom
	if tmpl == nil && len(res.Compose) == 1 {
		if own, ok := t.templates[res.Compose[0]]; ok {
			tmpl = &own
		}
	}
	text, err := t.composer.Compose(info, res, tmpl)
	if err != nil {
		return domain.Statement{}, fmt.Errorf("compose statement: %w", err)
	}

	s.Hazards = res.Compose
	s.Areas = domain.DescribeAreas(info, res.Kinds, t.site)
	s.Remaining = res.Remaining(res.Compose)

	if req.TestWording != nil {
		s.Test = *req.TestWording
	}
	if s.Test {
		s.Text = domain.AddTestWording(text)
		return s, nil
	}
	s.Text = text
	s.Script = domain.FormatBroadcast(text, t.site, domain.BroadcastOptions{
		Kinds:  res.Compose,
		Zones:  info.AllZones(res.Compose...),
		Tone:   true,
		Expiry: t.expiry,
	})
	return s, nil
}

// draft fills s with the manual-fill statement for kind.
func (t *StatementTransformer) draft(s domain.Statement, kind domain.HazardKind, zones []domain.ZoneCode, custom *domain.Template) domain.Statement {
	tmpl := custom
	if tmpl == nil {
		if own, ok := t.templates[kind]; ok {
			tmpl = &own
		}
	}
	s.Draft = true
	s.Scenario = domain.ScenarioSingle
	s.Hazards = []domain.HazardKind{kind}
	s.Zones = map[domain.HazardKind][]domain.ZoneCode{kind: zones}
	s.Text = t.composer.Draft(kind, zones, tmpl)
	return s
}

// cannedStatement fills s with the canned statement the request names. A
// cancellation is read without the tone alert.
func (t *StatementTransformer) cannedStatement(s domain.Statement, req domain.ComposeRequest, custom *domain.Template) (domain.Statement, error) {
	canned, ok := domain.ParseCannedKind(string(req.Canned))
	if !ok {
		return domain.Statement{}, fmt.Errorf("canned %q: %w", req.Canned, domain.ErrUnknownCanned)
	}
	if req.DraftKind == nil {
		return domain.Statement{}, fmt.Errorf("canned %s statement without a hazard: %w", canned, domain.ErrNothingToCompose)
	}
	kind := *req.DraftKind

	tmpl := domain.DefaultCannedTemplate(canned, kind)
	if own, ok := t.canned[canned][kind]; ok {
		tmpl = own
	}
	if custom != nil {
		tmpl = *custom
	}

	zones := t.siteZones(req.Zones)
	text, err := t.composer.Canned(kind, zones, tmpl)
	if err != nil {
		return domain.Statement{}, fmt.Errorf("compose %s %s: %w", canned, kind, err)
	}

	s.Canned = canned
	s.Scenario = domain.ScenarioSingle
	s.Hazards = []domain.HazardKind{kind}
	s.Zones = map[domain.HazardKind][]domain.ZoneCode{kind: zones}
	if req.TestWording != nil && *req.TestWording {
		s.Test = true
		s.Text = domain.AddTestWording(text)
		return s, nil
	}
	s.Text = text
	s.Script = domain.FormatBroadcast(text, t.site, domain.BroadcastOptions{
		Kinds:  s.Hazards,
		Zones:  zones,
		Tone:   canned.Tone(),
		Expiry: t.expiry,
	})
	return s, nil
}

// siteZones keeps the requested zones the site covers, in site order.
func (t *StatementTransformer) siteZones(requested []domain.ZoneCode) []domain.ZoneCode {
	var out []domain.ZoneCode
	for _, z := range t.site.ZoneCodes() {
		for _, r := range requested {
			if domain.ZoneCode(strings.ToUpper(string(r))) == z {
				out = append(out, z)
				break
			}
		}
	}
	if len(out) < len(requested) {
		t.logger.Debug("dropped zones outside the site", "requested", domain.JoinZones(requested))
	}
	return out
}

// pickNotice keeps the parser's notice unless it only says nothing is
// active and the resolver has a more specific reason.
func pickNotice(parsed, resolved domain.Notice) domain.Notice {
	switch {
	case resolved.IsZero():
		return parsed
	case parsed.IsZero(), parsed.Kind == domain.NoticeNoHazard:
		return resolved
	}
	return parsed
}

func contentKey(b []byte) string {
	norm := strings.Join(strings.Fields(strings.ToUpper(string(b))), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}
