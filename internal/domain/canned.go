package domain

// CannedKind names an operator statement composed without a bulletin.
type CannedKind string

const (
	CannedCancellation CannedKind = "cancel"
	CannedImminent     CannedKind = "imminent"
)

// AllCanned lists the canned statement kinds.
var AllCanned = []CannedKind{CannedCancellation, CannedImminent}

// ParseCannedKind accepts "cancel", "cancellation" or "imminent".
func ParseCannedKind(s string) (CannedKind, bool) {
	switch s {
	case "cancel", "cancellation":
		return CannedCancellation, true
	case "imminent":
		return CannedImminent, true
	}
	return "", false
}

// Tone reports whether the statement sounds the tone alert. Cancellations
// never do.
func (c CannedKind) Tone() bool {
	return c != CannedCancellation
}

// DefaultCannedTemplate returns the built-in canned template for kind.
func DefaultCannedTemplate(c CannedKind, kind HazardKind) Template {
	k := kind.Upper()
	var text string
	switch c {
	case CannedCancellation:
		text = "THE TSUNAMI " + k + " IS CANCELLED.\n\n" +
			"THE NATIONAL WEATHER SERVICE HAS CANCELLED THE TSUNAMI " + k + " " + TokenArea + ". " +
			"THE TSUNAMI THREAT HAS PASSED, BUT STRONG CURRENTS MAY CONTINUE NEAR THE SHORE.\n\n" +
			TokenLocalActions + "."
	default:
		text = "TSUNAMI " + k + ". REPEAT, TSUNAMI " + k + ".\n\n" +
			"A TSUNAMI IS IMMINENT " + TokenArea + ". " + TokenCallToAction + ".\n\n" +
			"ONCE AGAIN, A TSUNAMI IS IMMINENT " + TokenArea + ". " + TokenCallToAction + ". " +
			TokenLocalActions + "."
	}
	return Template{Kind: kind, Text: text}
}

// Canned fills a canned template for kind over zones. Without zones the
// area is the placeholder. The earthquake and arrival sections are dropped.
func (c *Composer) Canned(kind HazardKind, zones []ZoneCode, tmpl Template) (string, error) {
	if tmpl.Kind != kind {
		return "", ErrTemplateKindMismatch
	}
	return Fill(tmpl.Text, Sections{
		Area:         areaText(c.area(kind, zones)),
		CallToAction: callsToAction[kind],
		LocalActions: c.site.LocalActions,
	}), nil
}

// area describes zones for kind, or the placeholder phrase without zones.
func (c *Composer) area(kind HazardKind, zones []ZoneCode) AreaPhrase {
	if len(zones) == 0 {
		return AreaPhrase{Text: Placeholder, Kind: AreaPlaceholder}
	}
	info := newHazardInfo()
	info.addZones(kind, zones)
	return DescribeAreas(info, []HazardKind{kind}, c.site)[kind]
}
