package domain

import "strings"

// Site is the jurisdiction a statement is composed for: the forecast office's
// coastal zones, phrasing and broadcast profile.
type Site struct {
	Office           string
	Timezone         Timezone
	Zones            []Zone
	LocalPhrase      string
	LocalActions     string
	Breakpoints      []Breakpoint
	ArrivalPoints    []ArrivalPoint
	AdvisoryHandling bool
	Counties         []County
	Broadcast        BroadcastProfile
}

// Zone is a configured coastal zone and its spoken name.
type Zone struct {
	Code ZoneCode
	Name string
}

// Breakpoint is a landmark splitting the coast into two zone groups, spoken as
// "coastal areas {direction} of {landmark}".
type Breakpoint struct {
	Landmark string
	Sides    [2]BreakpointSide
}

// BreakpointSide is one group of a breakpoint.
type BreakpointSide struct {
	Direction string
	Zones     []ZoneCode
}

// Phrase renders the spoken description of side i.
func (b Breakpoint) Phrase(i int) string {
	return "coastal areas " + b.Sides[i].Direction + " of " + b.Landmark
}

// ArrivalPoint is a forecast point whose arrival time is read on air. Name and
// Region together must appear in the bulletin's station column; Alias replaces
// the bulletin spelling when set.
type ArrivalPoint struct {
	Name   string
	Region string
	Alias  string
}

// Key is the upper-case "NAME REGION" string matched against station rows.
func (a ArrivalPoint) Key() string {
	return strings.ToUpper(strings.Join(strings.Fields(a.Name+" "+a.Region), " "))
}

// Spoken returns the alias when configured, else the key.
func (a ArrivalPoint) Spoken() string {
	if a.Alias != "" {
		return strings.ToUpper(a.Alias)
	}
	return a.Key()
}

// County maps a broadcast county/area code to the zones it covers.
type County struct {
	Code  string
	Zones []ZoneCode
}

// BroadcastProfile holds the radio header settings.
type BroadcastProfile struct {
	Node string
	PILs map[HazardKind]string
}

// Policy is the resolution policy derived from the site.
type Policy struct {
	AdvisoryHandling bool
}

// Policy returns the scenario policy of the site.
func (s Site) Policy() Policy {
	return Policy{AdvisoryHandling: s.AdvisoryHandling}
}

// ZoneCodes returns the configured zones in configuration order.
func (s Site) ZoneCodes() []ZoneCode {
	out := make([]ZoneCode, len(s.Zones))
	for i, z := range s.Zones {
		out[i] = z.Code
	}
	return out
}

// ZoneName returns the configured name of z.
func (s Site) ZoneName(z ZoneCode) (string, bool) {
	for _, zone := range s.Zones {
		if zone.Code == z && zone.Name != "" {
			return zone.Name, true
		}
	}
	return "", false
}

// CountyCodes returns the county codes touching any of zones, in
// configuration order.
func (s Site) CountyCodes(zones []ZoneCode) []string {
	var out []string
	for _, c := range s.Counties {
		if ZonesOverlap(c.Zones, zones) {
			out = append(out, c.Code)
		}
	}
	return out
}

func (s Site) zoneSet() map[ZoneCode]bool {
	return zoneSet(s.ZoneCodes())
}
