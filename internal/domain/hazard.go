package domain

import "strings"

// HazardKind is the tsunami significance carried by a bulletin segment.
type HazardKind string

const (
	Warning  HazardKind = "warning"
	Watch    HazardKind = "watch"
	Advisory HazardKind = "advisory"
)

// AllHazards lists the hazard kinds from highest to lowest priority.
var AllHazards = []HazardKind{Warning, Watch, Advisory}

// ParseHazardKind accepts a hazard name in any case.
func ParseHazardKind(s string) (HazardKind, bool) {
	switch HazardKind(strings.ToLower(strings.TrimSpace(s))) {
	case Warning:
		return Warning, true
	case Watch:
		return Watch, true
	case Advisory:
		return Advisory, true
	}
	return "", false
}

// Upper returns the broadcast spelling of the kind, e.g. "WARNING".
func (k HazardKind) Upper() string {
	return strings.ToUpper(string(k))
}

func (k HazardKind) priority() int {
	switch k {
	case Warning:
		return 3
	case Watch:
		return 2
	case Advisory:
		return 1
	}
	return 0
}

// HighestPriority returns the most severe kind in kinds. An empty list yields
// Warning so a broadcast never under-alerts.
func HighestPriority(kinds []HazardKind) HazardKind {
	best := HazardKind("")
	for _, k := range kinds {
		if k.priority() > best.priority() {
			best = k
		}
	}
	if best == "" {
		return Warning
	}
	return best
}

// IssuanceStatus is the lifecycle stage derived from a segment's VTEC action.
type IssuanceStatus string

const (
	StatusNew      IssuanceStatus = "new"
	StatusContinue IssuanceStatus = "continue"
	StatusFinal    IssuanceStatus = "final"
)

// NoticeKind classifies the diagnostic attached to a parse or resolution.
type NoticeKind string

const (
	NoticeNone           NoticeKind = ""
	NoticeNoHazard       NoticeKind = "no_hazard"
	NoticeCancellation   NoticeKind = "cancellation"
	NoticeAdvisoryIgnore NoticeKind = "advisory_ignored"
	NoticeParseFailure   NoticeKind = "parse_failure"
	NoticeTest           NoticeKind = "test"
	NoticeUnsupported    NoticeKind = "unsupported_combination"
)

// Notice is an operator-facing diagnostic. The zero value means no notice.
type Notice struct {
	Kind    NoticeKind `json:"kind,omitempty"`
	Message string     `json:"message,omitempty"`
}

// IsZero reports whether the notice is empty.
func (n Notice) IsZero() bool {
	return n.Kind == NoticeNone && n.Message == ""
}

const (
	msgNoHazard       = "No tsunami hazards were detected in your area."
	msgCancellation   = "It appears that there was a cancellation in the most recent bulletin."
	msgAdvisoryIgnore = "While an advisory was found, no warnings or watches were detected in your area."
	msgParseFailure   = "Bulletin parsing failed. Review the bulletin text and compose the statement from a template."
	msgTest           = "The latest message from the Tsunami Warning Center appears to be a test. You may load it with test wording or cancel."
	msgUnsupported    = "Warning, watch and advisory are all in effect. Automated composition is not available; issue each hazard manually."
)

// Variant identifies the regional layout of a bulletin's arrival section.
type Variant string

const (
	// VariantStandard is the national center layout with a station/region/time table.
	VariantStandard Variant = "standard"
	// VariantTabular is the Guam and American Samoa layout with an ETA table
	// carrying coordinates and MM/DD dates.
	VariantTabular Variant = "tabular"
	// VariantEarliestArrival is the Hawaii layout with one earliest-arrival line.
	VariantEarliestArrival Variant = "earliest_arrival"
	// VariantForecastBegin is the Caribbean layout with a two-line forecast-begin sentence.
	VariantForecastBegin Variant = "forecast_begin"
)

// HazardInfo is the result of parsing one bulletin for one jurisdiction.
// A fresh value is built per parse; callers must treat it as read-only.
type HazardInfo struct {
	Zones      map[HazardKind][]ZoneCode `json:"zones"`
	Arrivals   map[HazardKind][]string   `json:"arrivals,omitempty"`
	Earthquake string                    `json:"earthquake,omitempty"`
	LocalTime  string                    `json:"local_time,omitempty"`
	Statuses   []IssuanceStatus          `json:"statuses,omitempty"`
	Variant    Variant                   `json:"variant"`
	Test       bool                      `json:"test"`
	Notice     Notice                    `json:"notice"`
}

func newHazardInfo() HazardInfo {
	info := HazardInfo{
		Zones:    make(map[HazardKind][]ZoneCode, len(AllHazards)),
		Arrivals: make(map[HazardKind][]string, len(AllHazards)),
		Variant:  VariantStandard,
	}
	for _, k := range AllHazards {
		info.Zones[k] = []ZoneCode{}
	}
	return info
}

// ZonesFor returns the sorted zone list for kind, never nil.
func (h HazardInfo) ZonesFor(kind HazardKind) []ZoneCode {
	if z, ok := h.Zones[kind]; ok && z != nil {
		return z
	}
	return []ZoneCode{}
}

// ActiveKinds returns the kinds with at least one zone, highest priority first.
func (h HazardInfo) ActiveKinds() []HazardKind {
	var kinds []HazardKind
	for _, k := range AllHazards {
		if len(h.Zones[k]) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// AllZones returns the sorted union of zones across the given kinds, or all
// kinds when none are given.
func (h HazardInfo) AllZones(kinds ...HazardKind) []ZoneCode {
	if len(kinds) == 0 {
		kinds = AllHazards
	}
	var out []ZoneCode
	for _, k := range kinds {
		out = append(out, h.Zones[k]...)
	}
	return normalizeZones(out)
}

// OnlyFinal reports whether every segment seen was ending its hazard.
func (h HazardInfo) OnlyFinal() bool {
	return len(h.Statuses) == 1 && h.Statuses[0] == StatusFinal
}

// Clone returns a deep copy.
func (h HazardInfo) Clone() HazardInfo {
	out := h
	out.Zones = make(map[HazardKind][]ZoneCode, len(h.Zones))
	for k, v := range h.Zones {
		out.Zones[k] = append([]ZoneCode{}, v...)
	}
	out.Arrivals = make(map[HazardKind][]string, len(h.Arrivals))
	for k, v := range h.Arrivals {
		out.Arrivals[k] = append([]string(nil), v...)
	}
	out.Statuses = append([]IssuanceStatus(nil), h.Statuses...)
	return out
}

func (h *HazardInfo) addStatus(s IssuanceStatus) {
	for _, have := range h.Statuses {
		if have == s {
			return
		}
	}
	h.Statuses = append(h.Statuses, s)
}

func (h *HazardInfo) addZones(kind HazardKind, zones []ZoneCode) {
	h.Zones[kind] = normalizeZones(append(h.Zones[kind], zones...))
}

func (h *HazardInfo) addArrivals(kind HazardKind, lines []string) {
	if len(lines) == 0 {
		return
	}
	h.Arrivals[kind] = append(h.Arrivals[kind], lines...)
}
