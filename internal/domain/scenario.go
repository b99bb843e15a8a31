package domain

import "fmt"

// ScenarioKind is the resolved combination of active hazards.
type ScenarioKind string

const (
	ScenarioNoHazard ScenarioKind = "no_hazard"
	ScenarioSingle   ScenarioKind = "single"
	ScenarioDouble   ScenarioKind = "double"
	ScenarioTriple   ScenarioKind = "triple"
)

// Decision is the operator's answer when several hazards are active: either
// compose one hazard on its own, or compose both hazards of a double scenario
// in one combined statement.
type Decision struct {
	Combined bool       `json:"combined"`
	Kind     HazardKind `json:"kind,omitempty"`
}

// Independent selects a single hazard.
func Independent(kind HazardKind) Decision { return Decision{Kind: kind} }

// Combined selects the combined statement.
func Combined() Decision { return Decision{Combined: true} }

func (d Decision) String() string {
	if d.Combined {
		return "combined"
	}
	return string(d.Kind)
}

// Resolution is the outcome of scenario resolution. When NeedsDecision is set
// the caller holds the HazardInfo and calls ResolveWithDecision with one of
// Candidates; nothing is retained between calls.
type Resolution struct {
	Scenario      ScenarioKind `json:"scenario"`
	Kinds         []HazardKind `json:"kinds"`
	NeedsDecision bool         `json:"needs_decision"`
	Candidates    []Decision   `json:"candidates,omitempty"`
	Decision      *Decision    `json:"decision,omitempty"`
	Compose       []HazardKind `json:"compose,omitempty"`
	Notice        Notice       `json:"notice"`
}

// IsCombined reports whether the resolution composes several hazards in one statement.
func (r Resolution) IsCombined() bool {
	return r.Decision != nil && r.Decision.Combined
}

// Resolve determines the scenario for info under policy. It is a pure function.
func Resolve(info HazardInfo, policy Policy) Resolution {
	var kinds []HazardKind
	advisoryIgnored := false
	for _, k := range info.ActiveKinds() {
		if k == Advisory && !policy.AdvisoryHandling {
			advisoryIgnored = true
			continue
		}
		kinds = append(kinds, k)
	}

	res := Resolution{Kinds: kinds}
	switch len(kinds) {
	case 0:
		res.Scenario = ScenarioNoHazard
		switch {
		case advisoryIgnored:
			res.Notice = Notice{Kind: NoticeAdvisoryIgnore, Message: msgAdvisoryIgnore}
		case info.OnlyFinal():
			res.Notice = Notice{Kind: NoticeCancellation, Message: msgCancellation}
		default:
			res.Notice = Notice{Kind: NoticeNoHazard, Message: msgNoHazard}
		}
	case 1:
		res.Scenario = ScenarioSingle
		res.Compose = []HazardKind{kinds[0]}
	case 2:
		res.Scenario = ScenarioDouble
		res.NeedsDecision = true
		res.Candidates = []Decision{Independent(kinds[0]), Independent(kinds[1]), Combined()}
	default:
		res.Scenario = ScenarioTriple
		res.NeedsDecision = true
		res.Notice = Notice{Kind: NoticeUnsupported, Message: msgUnsupported}
		for _, k := range kinds {
			res.Candidates = append(res.Candidates, Independent(k))
		}
	}
	return res
}

// ResolveWithDecision completes a resolution that needed a decision. For
// scenarios that need none the decision is ignored.
func ResolveWithDecision(info HazardInfo, policy Policy, d Decision) (Resolution, error) {
	res := Resolve(info, policy)
	if !res.NeedsDecision {
		return res, nil
	}
	switch {
	case d.Combined && res.Scenario == ScenarioTriple:
		return res, ErrUnsupportedCombination
	case d.Combined:
		res.Compose = append([]HazardKind(nil), res.Kinds...)
	case containsKind(res.Kinds, d.Kind):
		res.Compose = []HazardKind{d.Kind}
	default:
		return res, fmt.Errorf("%w: %s", ErrInvalidDecision, d)
	}
	res.NeedsDecision = false
	res.Decision = &d
	return res, nil
}

// Remaining lists the hazards of a resolution that still need their own
// statement after the given kinds were issued.
func (r Resolution) Remaining(issued []HazardKind) []HazardKind {
	var out []HazardKind
	for _, k := range r.Kinds {
		if !containsKind(issued, k) {
			out = append(out, k)
		}
	}
	return out
}

func containsKind(kinds []HazardKind, k HazardKind) bool {
	for _, have := range kinds {
		if have == k {
			return true
		}
	}
	return false
}
