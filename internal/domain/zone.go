package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ZoneCode is a six character public forecast zone identifier such as
// "CAZ039": two letter state, the letter Z, three digits.
type ZoneCode string

var (
	zoneCodePattern  = regexp.MustCompile(`^[A-Z]{2}Z\d{3}$`)
	zoneRangePattern = regexp.MustCompile(`(\d{3})>(\d{3})(-*)`)
)

// ParseZoneCode validates s and returns it as a ZoneCode.
func ParseZoneCode(s string) (ZoneCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !zoneCodePattern.MatchString(s) {
		return "", fmt.Errorf("invalid zone code %q", s)
	}
	return ZoneCode(s), nil
}

// Valid reports whether z has the zone code shape.
func (z ZoneCode) Valid() bool {
	return zoneCodePattern.MatchString(string(z))
}

// ExpandZoneRanges rewrites condensed ranges such as "CAZ039>041" into the
// explicit "CAZ039-040-041" form. A range whose start exceeds its end is left
// untouched. A run of dashes right after a range collapses to one; dashes
// elsewhere are kept.
func ExpandZoneRanges(text string) string {
	return zoneRangePattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := zoneRangePattern.FindStringSubmatch(m)
		start, _ := strconv.Atoi(parts[1])
		end, _ := strconv.Atoi(parts[2])
		if start > end {
			return m
		}
		nums := make([]string, 0, end-start+1)
		for i := start; i <= end; i++ {
			nums = append(nums, fmt.Sprintf("%03d", i))
		}
		out := strings.Join(nums, "-")
		if parts[3] != "" {
			out += "-"
		}
		return out
	})
}

// JoinZones renders zones dash-joined, the format used by the issuance log
// and the broadcast header.
func JoinZones(zones []ZoneCode) string {
	parts := make([]string, len(zones))
	for i, z := range zones {
		parts[i] = string(z)
	}
	return strings.Join(parts, "-")
}

// SplitZones is the inverse of JoinZones. Malformed entries are skipped.
func SplitZones(s string) []ZoneCode {
	var out []ZoneCode
	for _, part := range strings.Split(s, "-") {
		if z := ZoneCode(strings.TrimSpace(part)); z.Valid() {
			out = append(out, z)
		}
	}
	return normalizeZones(out)
}

// SameZones reports set equality.
func SameZones(a, b []ZoneCode) bool {
	as, bs := zoneSet(a), zoneSet(b)
	if len(as) != len(bs) {
		return false
	}
	for z := range as {
		if !bs[z] {
			return false
		}
	}
	return true
}

// ZonesOverlap reports whether a and b share at least one zone.
func ZonesOverlap(a, b []ZoneCode) bool {
	bs := zoneSet(b)
	for _, z := range a {
		if bs[z] {
			return true
		}
	}
	return false
}

func zoneSet(zones []ZoneCode) map[ZoneCode]bool {
	set := make(map[ZoneCode]bool, len(zones))
	for _, z := range zones {
		set[z] = true
	}
	return set
}

// normalizeZones deduplicates and sorts ascending.
func normalizeZones(zones []ZoneCode) []ZoneCode {
	set := zoneSet(zones)
	out := make([]ZoneCode, 0, len(set))
	for z := range set {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
