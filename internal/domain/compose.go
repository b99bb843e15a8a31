package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Template tokens.
const (
	TokenArea         = "AAAAAA"
	TokenSecondArea   = "BBBBBB"
	TokenCallToAction = "NNNNNN"
	TokenEarthquake   = "EEEEEE"
	TokenArrivals     = "LLLLLL"
	TokenLocalActions = "SSSSSS"
)

var callsToAction = map[HazardKind]string{
	Warning:  "IF YOU ARE LOCATED IN THIS COASTAL AREA, MOVE INLAND TO HIGHER GROUND.",
	Watch:    "IF YOU ARE LOCATED IN THIS COASTAL AREA, STAY ALERT FOR FURTHER UPDATES.",
	Advisory: "IF YOU ARE LOCATED IN THIS COASTAL AREA, MOVE OFF THE BEACH AND OUT OF HARBORS.",
}

const arrivalsHeading = "Estimated arrival times for the first in the series of tsunami waves are as follows in "

var (
	optionalTokenRes = map[string]*regexp.Regexp{
		TokenEarthquake:   regexp.MustCompile(TokenEarthquake + `[ \t]*\.?`),
		TokenArrivals:     regexp.MustCompile(TokenArrivals + `[ \t]*\.?`),
		TokenLocalActions: regexp.MustCompile(TokenLocalActions + `[ \t]*\.?`),
	}

	templateKindRe = regexp.MustCompile(`TSUNAMI (WARNING|WATCH|ADVISORY)`)
)

// Template is statement text with placeholder tokens.
type Template struct {
	Kind HazardKind
	Text string
}

// DefaultTemplate returns the built-in template for kind.
func DefaultTemplate(kind HazardKind) Template {
	k := kind.Upper()
	text := "TSUNAMI " + k + ". REPEAT, TSUNAMI " + k + ".\n\n" +
		"THE NATIONAL WEATHER SERVICE HAS ISSUED A TSUNAMI " + k + " " + TokenArea + ". " + TokenCallToAction + ".\n\n" +
		TokenEarthquake + ".\n\n" +
		TokenArrivals + ".\n\n" +
		"ONCE AGAIN, THE NATIONAL WEATHER SERVICE HAS ISSUED A TSUNAMI " + k + " " + TokenArea + ". " + TokenCallToAction + ". " +
		TokenLocalActions + "."
	return Template{Kind: kind, Text: text}
}

// combinedTemplate names two hazards; the second hazard's area uses TokenSecondArea.
func combinedTemplate(first, second HazardKind) Template {
	a, b := first.Upper(), second.Upper()
	issued := "A TSUNAMI " + a + " " + TokenArea + " AND A TSUNAMI " + b + " " + TokenSecondArea
	text := "TSUNAMI " + a + " AND " + b + ". REPEAT, TSUNAMI " + a + " AND " + b + ".\n\n" +
		"THE NATIONAL WEATHER SERVICE HAS ISSUED " + issued + ". " + TokenCallToAction + ".\n\n" +
		TokenEarthquake + ".\n\n" +
		TokenArrivals + ".\n\n" +
		"ONCE AGAIN, THE NATIONAL WEATHER SERVICE HAS ISSUED " + issued + ". " + TokenCallToAction + ". " +
		TokenLocalActions + "."
	return Template{Kind: first, Text: text}
}

// ParseTemplate reads an operator template: lines starting with '#' are
// comments. The hazard kind is detected from "TSUNAMI WARNING", "TSUNAMI
// WATCH" or "TSUNAMI ADVISORY" in the remaining text.
func ParseTemplate(text string) (Template, error) {
	var kept []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.TrimSpace(strings.Join(kept, "\n"))

	// The issuing center's name, "TSUNAMI WARNING CENTER", is not a hazard.
	upper := strings.ReplaceAll(strings.ToUpper(body), "WARNING CENTER", "CENTER")
	found := map[HazardKind]bool{}
	for _, m := range templateKindRe.FindAllStringSubmatch(upper, -1) {
		k, _ := ParseHazardKind(m[1])
		found[k] = true
	}
	switch len(found) {
	case 0:
		return Template{}, ErrNoHazardKind
	case 1:
		for k := range found {
			return Template{Kind: k, Text: body}, nil
		}
	}
	return Template{}, ErrMultipleHazardKinds
}

// Sections holds the values substituted into a template. Empty optional
// sections are removed together with their trailing period; empty required
// sections become the placeholder.
type Sections struct {
	Area         string
	SecondArea   string
	CallToAction string
	Earthquake   string
	Arrivals     string
	LocalActions string
}

// Fill substitutes sections into template text and applies CleanStatement.
func Fill(text string, s Sections) string {
	required := []struct{ token, value string }{
		{TokenArea, s.Area},
		{TokenSecondArea, s.SecondArea},
		{TokenCallToAction, s.CallToAction},
	}
	for _, r := range required {
		v := r.value
		if strings.TrimSpace(v) == "" {
			v = Placeholder
		}
		text = strings.ReplaceAll(text, r.token, v)
	}
	optional := []struct{ token, value string }{
		{TokenEarthquake, s.Earthquake},
		{TokenArrivals, s.Arrivals},
		{TokenLocalActions, s.LocalActions},
	}
	for _, o := range optional {
		if strings.TrimSpace(o.value) == "" {
			text = optionalTokenRes[o.token].ReplaceAllString(text, "")
			continue
		}
		text = strings.ReplaceAll(text, o.token, o.value)
	}
	return CleanStatement(text)
}

var cleanupSteps = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\.{3,}`), ", "},
	{regexp.MustCompile(`[ \t]+\.`), "."},
	{regexp.MustCompile(`\.{2,}`), "."},
	{regexp.MustCompile(`(?m)^[ \t]*\.[ \t]*$`), ""},
	{regexp.MustCompile(`[ \t]{2,}`), " "},
	{regexp.MustCompile(`(?m)[ \t]+$`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// CleanStatement normalizes punctuation and spacing and upper-cases the
// text. Applying it twice gives the same result as applying it once.
func CleanStatement(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	for _, step := range cleanupSteps {
		text = step.re.ReplaceAllString(text, step.repl)
	}
	return strings.ToUpper(strings.TrimSpace(text))
}

// Composer builds statement text for one site.
type Composer struct {
	site Site
}

// NewComposer creates a Composer for site.
func NewComposer(site Site) *Composer {
	return &Composer{site: site}
}

// Compose produces the statement for a resolution. tmpl overrides the
// built-in template of a single-hazard statement; it must name the hazard
// being composed. Combined statements always use the built-in layout.
func (c *Composer) Compose(info HazardInfo, res Resolution, tmpl *Template) (string, error) {
	if res.NeedsDecision {
		return "", ErrDecisionRequired
	}
	if len(res.Compose) == 0 {
		return "", ErrNothingToCompose
	}
	areas := DescribeAreas(info, res.Kinds, c.site)
	label := c.arrivalZoneLabel(info)

	if len(res.Compose) >= 2 {
		first, second := res.Compose[0], res.Compose[1]
		var arrivals []string
		seen := map[string]bool{}
		for _, k := range res.Compose {
			for _, a := range info.Arrivals[k] {
				if !seen[a] {
					seen[a] = true
					arrivals = append(arrivals, a)
				}
			}
		}
		return Fill(combinedTemplate(first, second).Text, Sections{
			Area:         areaText(areas[first]),
			SecondArea:   areaText(areas[second]),
			CallToAction: callsToAction[first] + " " + callsToAction[second],
			Earthquake:   info.Earthquake,
			Arrivals:     arrivalsSection(arrivals, label),
			LocalActions: c.site.LocalActions,
		}), nil
	}

	kind := res.Compose[0]
	t := DefaultTemplate(kind)
	if tmpl != nil {
		if tmpl.Kind != kind {
			return "", fmt.Errorf("compose %s: %w", kind, ErrTemplateKindMismatch)
		}
		t = *tmpl
	}
	return Fill(t.Text, Sections{
		Area:         areaText(areas[kind]),
		CallToAction: callsToAction[kind],
		Earthquake:   info.Earthquake,
		Arrivals:     arrivalsSection(info.Arrivals[kind], label),
		LocalActions: c.site.LocalActions,
	}), nil
}

// Draft returns a manual-fill statement for kind: the area comes from zones
// when given, and the earthquake and arrival sections carry placeholders for
// every configured arrival point.
func (c *Composer) Draft(kind HazardKind, zones []ZoneCode, tmpl *Template) string {
	tz := c.site.Timezone
	now := clock.Now()
	local := tz.Standard(now)
	daylight := tz.InDaylight(now)
	if daylight {
		local = local.Add(time.Hour)
	}
	label := tz.Label(daylight)
	date := monthName(local.Month()) + " " + strconv.Itoa(local.Day())

	area := c.area(kind, zones)

	var b strings.Builder
	b.WriteString(arrivalsHeading + label + ",\n")
	for _, p := range c.site.ArrivalPoints {
		b.WriteString(p.Spoken() + " ON " + date + " AT " + Placeholder + ".\n")
	}

	t := DefaultTemplate(kind)
	if tmpl != nil && tmpl.Kind == kind {
		t = *tmpl
	}
	return Fill(t.Text, Sections{
		Area:         areaText(area),
		CallToAction: callsToAction[kind],
		Earthquake:   "ON " + date + " AT " + Placeholder + " " + label + " A LARGE EARTHQUAKE WITH A PRELIMINARY MAGNITUDE OF " + Placeholder + " OCCURRED NEAR " + Placeholder + ".",
		Arrivals:     b.String(),
		LocalActions: c.site.LocalActions,
	})
}

// arrivalZoneLabel is the zone the arrival times are read in. The earthquake's
// local time decides daylight saving when known, else the current date does.
func (c *Composer) arrivalZoneLabel(info HazardInfo) string {
	if info.LocalTime != "" {
		return c.site.Timezone.Label(strings.Contains(info.LocalTime, "DAYLIGHT"))
	}
	return c.site.Timezone.Label(c.site.Timezone.InDaylight(clock.Now()))
}

func areaText(p AreaPhrase) string {
	switch p.Kind {
	case AreaLocal, AreaBreakpoint:
		return "for the " + p.Text
	case AreaEnumerated:
		return "for the following locations, " + p.Text
	}
	return "for the following locations, " + Placeholder
}

func arrivalsSection(lines []string, label string) string {
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + arrivalsHeading + label + ".\n" + strings.Join(lines, ".\n") + "."
}

// CallToAction returns the spoken call to action for kind.
func CallToAction(kind HazardKind) string {
	return callsToAction[kind]
}
