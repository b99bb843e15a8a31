package domain

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	// standardArrivalRe matches the time columns of a standard arrival row after
	// non-word characters are blanked: " 700 PM EDT MARCH 28".
	standardArrivalRe = regexp.MustCompile(`\s(\d{3,4})\s+([AP]M)\s+([A-Z]{1,2}[SD]T)\s+([A-Z]+)\s+(\d{1,2})`)

	// forecastBeginRe matches the Caribbean sentence
	// "... AROUND 1109 PM AST ON FRIDAY JANUARY 29 2016 ...".
	forecastBeginRe = regexp.MustCompile(`AROUND (\d{3,4}) ([AP]M) ([A-Z]{2,4}) ON [A-Z]+ ([A-Z]+) (\d{1,2})`)

	nonWordRe = regexp.MustCompile(`\W`)
)

const (
	standardSectionStart    = "START"
	standardSectionTag      = "SELECTED"
	tabularSectionMarker    = "-ETA- OF THE INITIAL TSUNAMI WAVE"
	earliestMarkerPrimary   = "ESTIMATED TIME OF ARRIVAL OF THE INITIAL WAVE"
	earliestMarkerSecondary = "IF TSUNAMI WAVES IMPACT HAWAII THE ESTIMATED EARLIEST ARRIVAL"
	forecastBeginMarker     = "HAZARD IS FORECAST TO BEGIN"

	hawaiiStation    = "HAWAIIAN ISLANDS"
	caribbeanStation = "PUERTO RICO/VIRGIN ISLANDS"
)

// ArrivalAdapter extracts normalized arrival lines of the form
// "STATION ON MONTH DAY AT TIME AM/PM [ZONE]" from one bulletin segment.
type ArrivalAdapter interface {
	Arrivals(paragraphs []string) []string
}

// AdapterFor returns the arrival adapter matching variant.
func AdapterFor(variant Variant, points []ArrivalPoint, logger *slog.Logger) ArrivalAdapter {
	switch variant {
	case VariantTabular:
		return tabularAdapter{points: points, logger: logger}
	case VariantEarliestArrival:
		return earliestArrivalAdapter{}
	case VariantForecastBegin:
		return forecastBeginAdapter{}
	default:
		return standardAdapter{points: points, logger: logger}
	}
}

// detectVariant inspects the bulletin heading for the regional product id.
func detectVariant(heading string) Variant {
	switch {
	case strings.Contains(heading, "\nTSUHWX"):
		return VariantEarliestArrival
	case strings.Contains(heading, "\nTSUGUM"), strings.Contains(heading, "\nTSUPPG"):
		return VariantTabular
	case strings.Contains(heading, "\nTSUCA1"):
		return VariantForecastBegin
	}
	return VariantStandard
}

// splitParagraphs breaks a segment on blank lines. Lines are right-trimmed and
// a single leading space is dropped, matching the bulletin's wrap style.
func splitParagraphs(segment string) []string {
	lines := strings.Split(strings.ReplaceAll(segment, "\r", ""), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		lines[i] = strings.TrimPrefix(line, " ")
	}
	return strings.Split(strings.Join(lines, "\n"), "\n\n")
}

type standardAdapter struct {
	points []ArrivalPoint
	logger *slog.Logger
}

func (a standardAdapter) Arrivals(paragraphs []string) []string {
	table := tableAfter(paragraphs, func(p string) bool {
		return strings.Contains(p, standardSectionStart) && strings.Contains(p, standardSectionTag)
	})
	var out []string
	for _, row := range table {
		fields := strings.Fields(row)
		if len(fields) <= 5 {
			continue
		}
		station := strings.Join(fields[:len(fields)-5], " ")
		point, ok := matchPoint(a.points, station)
		if !ok {
			continue
		}
		m := standardArrivalRe.FindStringSubmatch(" " + nonWordRe.ReplaceAllString(row, " "))
		if m == nil {
			a.logger.Debug("arrival row without time", "station", station)
			continue
		}
		month := m[4]
		if mm, ok := monthFromName(month); ok {
			month = monthName(mm)
		}
		out = append(out, spokenStation(point, station)+" ON "+month+" "+trimZero(m[5])+" AT "+m[1]+" "+m[2])
	}
	return out
}

type tabularAdapter struct {
	points []ArrivalPoint
	logger *slog.Logger
}

func (a tabularAdapter) Arrivals(paragraphs []string) []string {
	table := tableAfter(paragraphs, func(p string) bool {
		return strings.Contains(p, tabularSectionMarker)
	})
	var out []string
	for _, row := range table {
		if (strings.Contains(row, "LOCATION") && strings.Contains(row, "REGION")) || strings.Contains(row, "------------") {
			continue
		}
		fields := strings.Fields(row)
		if len(fields) <= 5 {
			continue
		}
		start := len(fields) - 5
		station := strings.Join(fields[:start], " ")
		point, ok := matchPoint(a.points, station)
		if !ok {
			continue
		}
		line, err := tabularLine(spokenStation(point, station), fields[start+2], fields[start+3], fields[start+4])
		if err != nil {
			a.logger.Debug("skipping arrival row", "station", station, "error", err)
			continue
		}
		out = append(out, line)
	}
	return out
}

// tabularLine formats "817", "AM", "12/09" as "STATION ON DECEMBER 9 AT 817 AM".
func tabularLine(station, hhmm, meridiem, monthDay string) (string, error) {
	parts := strings.Split(monthDay, "/")
	if len(parts) != 2 {
		return "", errBadDate(monthDay)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", errBadDate(monthDay)
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", errBadDate(monthDay)
	}
	return station + " ON " + monthNames[month-1] + " " + trimZero(parts[1]) + " AT " + hhmm + " " + meridiem, nil
}

type earliestArrivalAdapter struct{}

// Arrivals reads the line following the earliest-arrival heading, e.g.
// "0327 PM HST MON 19 OCT 2020".
func (earliestArrivalAdapter) Arrivals(paragraphs []string) []string {
	for j, p := range paragraphs {
		if !strings.Contains(p, earliestMarkerPrimary) && !strings.Contains(p, earliestMarkerSecondary) {
			continue
		}
		if j+1 >= len(paragraphs) {
			return nil
		}
		fields := strings.Fields(paragraphs[j+1])
		if len(fields) < 6 || len(fields[0]) != 4 {
			return nil
		}
		zone := fields[2]
		if zone == "HST" {
			zone = "HAWAII STANDARD TIME"
		}
		month := fields[5]
		if m, ok := monthFromName(month); ok {
			month = monthName(m)
		}
		return []string{hawaiiStation + " ON " + month + " " + trimZero(fields[4]) + " AT " + trimZero(fields[0]) + " " + fields[1] + " " + zone}
	}
	return nil
}

type forecastBeginAdapter struct{}

// Arrivals joins the two-line forecast-begin sentence and rewrites it.
func (forecastBeginAdapter) Arrivals(paragraphs []string) []string {
	for _, p := range paragraphs {
		if !strings.Contains(p, forecastBeginMarker) {
			continue
		}
		lines := strings.Split(p, "\n")
		if len(lines) < 2 {
			return nil
		}
		m := forecastBeginRe.FindStringSubmatch(lines[0] + " " + lines[1])
		if m == nil {
			return nil
		}
		return []string{caribbeanStation + " ON " + m[4] + " " + trimZero(m[5]) + " AT " + m[1] + " " + m[2] + " " + m[3]}
	}
	return nil
}

// tableAfter finds the section heading and returns the rows of the first
// non-empty paragraph within the next two.
func tableAfter(paragraphs []string, isHeading func(string) bool) []string {
	for j, p := range paragraphs {
		if !isHeading(p) {
			continue
		}
		for k := j + 1; k <= j+2 && k < len(paragraphs); k++ {
			if strings.TrimSpace(paragraphs[k]) == "" {
				continue
			}
			return strings.Split(paragraphs[k], "\n")
		}
		return nil
	}
	return nil
}

func matchPoint(points []ArrivalPoint, station string) (ArrivalPoint, bool) {
	station = strings.ToUpper(station)
	for _, p := range points {
		if key := p.Key(); key != "" && strings.Contains(station, key) {
			return p, true
		}
	}
	return ArrivalPoint{}, false
}

func spokenStation(p ArrivalPoint, station string) string {
	if p.Alias != "" {
		return strings.ToUpper(p.Alias)
	}
	return strings.ToUpper(station)
}

func trimZero(s string) string {
	if len(s) > 1 && s[0] == '0' {
		return s[1:]
	}
	return s
}
