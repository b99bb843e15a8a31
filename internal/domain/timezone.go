package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timezone is the jurisdiction's standard time zone. OffsetHours is the
// number of hours local standard time is behind UTC (8 for Pacific).
type Timezone struct {
	ID          string
	OffsetHours int
	ObservesDST bool
}

// tzLongNames maps short zone ids to the spoken zone name.
var tzLongNames = map[string]string{
	"pst":  "PACIFIC",
	"akst": "ALASKA",
	"mst":  "MOUNTAIN",
	"cst":  "CENTRAL",
	"est":  "EASTERN",
	"ast":  "ATLANTIC",
	"hst":  "HAWAII",
	"chst": "CHAMORRO",
	"sst":  "SAMOA",
}

// spokenZoneOffsets is the UTC offset, in hours behind UTC, of each zone name
// that can appear in an earthquake sentence.
var spokenZoneOffsets = map[string]int{
	"ALASKAN":  9,
	"ALASKA":   9,
	"HAWAII":   10,
	"PACIFIC":  8,
	"MOUNTAIN": 7,
	"CENTRAL":  6,
	"EASTERN":  5,
	"ATLANTIC": 4,
}

// LongName returns the spoken zone name, defaulting to PACIFIC.
func (tz Timezone) LongName() string {
	if name, ok := tzLongNames[strings.ToLower(tz.ID)]; ok {
		return name
	}
	return "PACIFIC"
}

// Label renders e.g. "PACIFIC DAYLIGHT TIME".
func (tz Timezone) Label(daylight bool) string {
	if daylight {
		return tz.LongName() + " DAYLIGHT TIME"
	}
	return tz.LongName() + " STANDARD TIME"
}

// Standard converts t to local standard wall time, returned in UTC location so
// calendar fields read as local.
func (tz Timezone) Standard(t time.Time) time.Time {
	return t.UTC().Add(-time.Duration(tz.OffsetHours) * time.Hour)
}

// InDaylight reports whether daylight saving is in effect at t.
func (tz Timezone) InDaylight(t time.Time) bool {
	return tz.ObservesDST && IsDaylight(tz.Standard(t))
}

// IsDaylight reports whether daylight saving time applies on the calendar date
// of t: from the second Sunday of March up to, not including, the first
// Sunday of November.
func IsDaylight(t time.Time) bool {
	m, d := t.Month(), t.Day()
	switch {
	case m >= time.April && m <= time.October:
		return true
	case m == time.March:
		return d >= nthSunday(t.Year(), m, 2)
	case m == time.November:
		return d < nthSunday(t.Year(), m, 1)
	}
	return false
}

func nthSunday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	day := 1 + (7-int(first))%7
	return day + 7*(n-1)
}

// spokenClock renders a wall time the way bulletins do: "912 PM", "1055 AM".
func spokenClock(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	meridiem := "AM"
	if t.Hour() >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d%02d %s", h, t.Minute(), meridiem)
}

// parseSpokenClock parses "912" and "PM" into hour and minute on a 24h clock.
func parseSpokenClock(digits, meridiem string) (int, int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", digits, err)
	}
	h, m := n/100, n%100
	if h < 1 || h > 12 || m > 59 {
		return 0, 0, fmt.Errorf("parse clock %q: out of range", digits)
	}
	h %= 12
	if meridiem == "PM" {
		h += 12
	}
	return h, m, nil
}

var monthNames = []string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

const monthAlternation = `JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER`

// monthFromName accepts full or three-letter English month names.
func monthFromName(s string) (time.Month, bool) {
	s = strings.ToUpper(s)
	if len(s) < 3 {
		return 0, false
	}
	for i, name := range monthNames {
		if s == name || s == name[:3] {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

func monthName(m time.Month) string {
	return monthNames[m-1]
}
