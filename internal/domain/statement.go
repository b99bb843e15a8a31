package domain

import (
	"context"
	"time"
)

// RawBulletin is an unprocessed bulletin message from the source topic.
type RawBulletin struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ProductID returns the product_id header, falling back to the message key.
func (r RawBulletin) ProductID() string {
	if id := r.Headers["product_id"]; id != "" {
		return id
	}
	return string(r.Key)
}

// ComposeRequest asks for a statement from bulletin text. Decision answers
// a pending double or triple scenario. TestWording forces test wording on or
// off; when nil, test bulletins get test wording. Template replaces the
// built-in single-hazard template. DraftKind skips parsing and returns the
// manual-fill draft for that hazard, or with Canned set the canned
// cancellation or imminent statement for that hazard over Zones.
type ComposeRequest struct {
	ProductID   string      `json:"product_id"`
	Text        string      `json:"text"`
	ReceivedAt  time.Time   `json:"received_at"`
	Decision    *Decision   `json:"decision,omitempty"`
	TestWording *bool       `json:"test_wording,omitempty"`
	Template    string      `json:"template,omitempty"`
	DraftKind   *HazardKind `json:"draft_kind,omitempty"`
	Canned      CannedKind  `json:"canned,omitempty"`
	Zones       []ZoneCode  `json:"zones,omitempty"`
}

// Overlap warns that a prior, still unexpired broadcast of Kind shares zones
// with the current statement.
type Overlap struct {
	Kind   HazardKind `json:"kind"`
	Zones  []ZoneCode `json:"zones"`
	Expiry time.Time  `json:"expiry"`
}

// IssuanceRecord is the last broadcast of one hazard kind.
type IssuanceRecord struct {
	Kind   HazardKind `json:"kind"`
	Expiry time.Time  `json:"expiry"`
	Zones  []ZoneCode `json:"zones"`
}

// Active reports whether the record has not expired at now.
func (r IssuanceRecord) Active(now time.Time) bool {
	return r.Expiry.After(now)
}

// Statement is the composed output for one bulletin.
type Statement struct {
	ID            string                    `json:"id"`
	ProductID     string                    `json:"product_id"`
	ReceivedAt    time.Time                 `json:"received_at"`
	ComposedAt    time.Time                 `json:"composed_at"`
	ExpiresAt     time.Time                 `json:"expires_at"`
	Scenario      ScenarioKind              `json:"scenario"`
	Hazards       []HazardKind              `json:"hazards"`
	Zones         map[HazardKind][]ZoneCode `json:"zones"`
	Areas         map[HazardKind]AreaPhrase `json:"areas,omitempty"`
	Notice        Notice                    `json:"notice"`
	NeedsDecision bool                      `json:"needs_decision"`
	Candidates    []Decision                `json:"candidates,omitempty"`
	Remaining     []HazardKind              `json:"remaining,omitempty"`
	Text          string                    `json:"text"`
	Script        string                    `json:"script,omitempty"`
	Overlaps      []Overlap                 `json:"overlaps,omitempty"`
	Test          bool                      `json:"test"`
	Draft         bool                      `json:"draft,omitempty"`
	Canned        CannedKind                `json:"canned,omitempty"`
}

// Broadcastable reports whether the statement may be sent to air and
// recorded as an issuance. Tests and manual-fill drafts never are.
func (s Statement) Broadcastable() bool {
	return !s.Test && !s.Draft && !s.NeedsDecision && s.Text != "" && len(s.Hazards) > 0
}

// Cancels reports whether the statement ends its hazards rather than
// issuing them.
func (s Statement) Cancels() bool {
	return s.Canned == CannedCancellation
}
