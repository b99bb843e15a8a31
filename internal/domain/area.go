package domain

import "strings"

// Placeholder marks text the operator must fill in by hand.
const Placeholder = "XXXXXX"

// AreaKind tells which rule produced an area phrase.
type AreaKind string

const (
	AreaLocal       AreaKind = "local"
	AreaBreakpoint  AreaKind = "breakpoint"
	AreaEnumerated  AreaKind = "enumerated"
	AreaPlaceholder AreaKind = "placeholder"
)

// AreaPhrase is the spoken description of one hazard's zones.
type AreaPhrase struct {
	Text string   `json:"text"`
	Kind AreaKind `json:"kind"`
}

// DescribeAreas returns an area phrase for each of kinds using the zone sets
// in info and the site's breakpoints, zone names and local phrase.
//
// Without breakpoints a hazard covering every site zone reads as the local
// phrase and anything else is enumerated. With breakpoints a single hazard
// may also match one side of a breakpoint exactly, and two hazards that
// together cover the site may match the two sides of one breakpoint. Three
// hazards, or two that leave zones uncovered, are always enumerated.
func DescribeAreas(info HazardInfo, kinds []HazardKind, site Site) map[HazardKind]AreaPhrase {
	out := make(map[HazardKind]AreaPhrase, len(kinds))
	full := site.ZoneCodes()

	enumerateAll := func() {
		for _, k := range kinds {
			out[k] = enumerateZones(info.ZonesFor(k), site)
		}
	}

	if len(site.Breakpoints) == 0 {
		for _, k := range kinds {
			out[k] = localOrEnumerated(info.ZonesFor(k), full, site)
		}
		return out
	}

	switch len(kinds) {
	case 0:
	case 1:
		k := kinds[0]
		zones := info.ZonesFor(k)
		if SameZones(zones, full) {
			out[k] = localOrEnumerated(zones, full, site)
			break
		}
		if phrase, ok := matchBreakpointSide(zones, site.Breakpoints); ok {
			out[k] = phrase
			break
		}
		out[k] = enumerateZones(zones, site)
	case 2:
		a, b := info.ZonesFor(kinds[0]), info.ZonesFor(kinds[1])
		union := normalizeZones(append(append([]ZoneCode{}, a...), b...))
		if !SameZones(union, full) {
			enumerateAll()
			break
		}
		pa, pb, ok := matchBreakpointPair(a, b, site.Breakpoints)
		if !ok {
			enumerateAll()
			break
		}
		out[kinds[0]], out[kinds[1]] = pa, pb
	default:
		enumerateAll()
	}
	return out
}

func localOrEnumerated(zones, full []ZoneCode, site Site) AreaPhrase {
	if site.LocalPhrase != "" && SameZones(zones, full) {
		return AreaPhrase{Text: site.LocalPhrase, Kind: AreaLocal}
	}
	return enumerateZones(zones, site)
}

func matchBreakpointSide(zones []ZoneCode, breakpoints []Breakpoint) (AreaPhrase, bool) {
	for _, bp := range breakpoints {
		for i := range bp.Sides {
			if len(bp.Sides[i].Zones) > 0 && SameZones(zones, bp.Sides[i].Zones) {
				return AreaPhrase{Text: bp.Phrase(i), Kind: AreaBreakpoint}, true
			}
		}
	}
	return AreaPhrase{}, false
}

func matchBreakpointPair(a, b []ZoneCode, breakpoints []Breakpoint) (AreaPhrase, AreaPhrase, bool) {
	for _, bp := range breakpoints {
		s0, s1 := bp.Sides[0].Zones, bp.Sides[1].Zones
		switch {
		case SameZones(a, s0) && SameZones(b, s1):
			return AreaPhrase{Text: bp.Phrase(0), Kind: AreaBreakpoint}, AreaPhrase{Text: bp.Phrase(1), Kind: AreaBreakpoint}, true
		case SameZones(a, s1) && SameZones(b, s0):
			return AreaPhrase{Text: bp.Phrase(1), Kind: AreaBreakpoint}, AreaPhrase{Text: bp.Phrase(0), Kind: AreaBreakpoint}, true
		}
	}
	return AreaPhrase{}, AreaPhrase{}, false
}

// enumerateZones lists zone names: "A", "A and B", "A, B, and C". A zone
// without a configured name turns the whole phrase into the placeholder.
func enumerateZones(zones []ZoneCode, site Site) AreaPhrase {
	if len(zones) == 0 {
		return AreaPhrase{Text: Placeholder, Kind: AreaPlaceholder}
	}
	names := make([]string, 0, len(zones))
	for _, z := range zones {
		name, ok := site.ZoneName(z)
		if !ok {
			return AreaPhrase{Text: Placeholder, Kind: AreaPlaceholder}
		}
		names = append(names, name)
	}
	var text string
	switch len(names) {
	case 1:
		text = names[0]
	case 2:
		text = names[0] + " and " + names[1]
	default:
		text = strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
	return AreaPhrase{Text: text, Kind: AreaEnumerated}
}
