package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// quakeTimeRe matches "AT 1012 PM ALASKA DAYLIGHT TIME" in an earthquake sentence.
	quakeTimeRe = regexp.MustCompile(`AT (\d{3,4}) ([AP]M) (ALASKAN|ALASKA|HAWAII|PACIFIC|MOUNTAIN|CENTRAL|EASTERN|ATLANTIC) (?:(DAYLIGHT|STANDARD) )?TIME`)

	// quakeDateRe matches "JULY 21" with an optional year.
	quakeDateRe = regexp.MustCompile(`\b(` + monthAlternation + `) (\d{1,2})(?: (\d{4}))?\b`)

	// productTimeRe matches the issuance line "1012 PM AKDT TUE JUL 21 2020".
	productTimeRe = regexp.MustCompile(`\d{3,4} [AP]M [A-Z]{1,2}[DS]T [A-Z]{3} [A-Z]{3} \d{1,2} (\d{4})`)

	spaceRunRe = regexp.MustCompile(`[ \t]+`)
)

const structuredQuakeMarker = "AN EARTHQUAKE HAS OCCURRED WITH THESE"

// extractEarthquake returns the one-sentence earthquake description found in
// segment, before any time zone conversion.
func extractEarthquake(segment string, variant Variant) string {
	paragraphs := splitParagraphs(spaceRunRe.ReplaceAllString(segment, " "))
	if variant == VariantEarliestArrival {
		for j, p := range paragraphs {
			if strings.Contains(p, structuredQuakeMarker) && j+1 < len(paragraphs) {
				if s := structuredQuake(paragraphs[j+1]); s != "" {
					return s
				}
			}
		}
	}
	for _, p := range paragraphs {
		if strings.Contains(p, "EARTHQUAKE") && strings.Contains(p, "MAGNITUDE") {
			return proseQuake(p)
		}
	}
	return ""
}

// proseQuake normalizes the free-prose variant:
// "* AN EARTHQUAKE WITH PRELIMINARY MAGNITUDE 7.8 OCCURRED ..." becomes
// "AN EARTHQUAKE WITH A PRELIMINARY MAGNITUDE OF 7.8 OCCURRED ...".
func proseQuake(p string) string {
	s := strings.TrimPrefix(strings.TrimSpace(p), "* ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "WITH PRELIMINARY", "WITH A PRELIMINARY")
	s = strings.ReplaceAll(s, "MAGNITUDE", "MAGNITUDE OF")
	s = strings.ReplaceAll(s, "OF OF", "OF")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// structuredQuake builds the sentence from the labeled block:
//
//	ORIGIN TIME - 1055 AM HST 19 OCT 2020
//	COORDINATES - 54.7 NORTH 159.6 WEST
//	LOCATION - SOUTH OF ALASKA
//	MAGNITUDE - 7.5 MOMENT
func structuredQuake(p string) string {
	fields := make(map[string]string, 4)
	for _, line := range strings.Split(p, "\n") {
		idx := strings.Index(line, " - ")
		if idx < 0 {
			continue
		}
		fields[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+3:])
	}
	mag := strings.Fields(fields["MAGNITUDE"])
	location := fields["LOCATION"]
	if len(mag) == 0 || location == "" {
		return ""
	}
	s := "AN EARTHQUAKE WITH A PRELIMINARY MAGNITUDE OF " + mag[0] + " OCCURRED " + location
	if coords := fields["COORDINATES"]; coords != "" {
		s += " NEAR " + coords
	}
	if t := strings.Fields(fields["ORIGIN TIME"]); len(t) >= 6 {
		zone := t[2]
		if zone == "HST" {
			zone = "HAWAII STANDARD TIME"
		}
		month := t[4]
		if m, ok := monthFromName(month); ok {
			month = monthName(m)
		}
		s += " AT " + trimZero(t[0]) + " " + t[1] + " " + zone + " ON " + month + " " + trimZero(t[3]) + " " + t[5]
	}
	return s
}

// productYear returns the year of the bulletin issuance line, or fallback.
func productYear(text string, fallback int) int {
	m := productTimeRe.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return y
}

// localizeQuake rewrites the time clause of an earthquake sentence into the
// jurisdiction's zone and returns the rewritten sentence along with the local
// time string, e.g. "JULY 21 2020 AT 1112 PM PACIFIC DAYLIGHT TIME". When the
// sentence carries no recognizable time the local time is empty.
func localizeQuake(sentence string, tz Timezone, refYear int) (string, string) {
	m := quakeTimeRe.FindStringSubmatch(sentence)
	d := quakeDateRe.FindStringSubmatch(sentence)
	if m == nil || d == nil {
		return sentence, ""
	}
	month, _ := monthFromName(d[1])
	day, _ := strconv.Atoi(d[2])
	year := refYear
	if d[3] != "" {
		year, _ = strconv.Atoi(d[3])
	}
	hour, minute, err := parseSpokenClock(m[1], m[2])
	if err != nil {
		return sentence, ""
	}
	embedded := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	zone, qualifier := m[3], m[4]
	if zone == "ALASKAN" {
		zone = "ALASKA"
	}
	if zone == tz.LongName() {
		daylight := qualifier == "DAYLIGHT" || (qualifier == "" && tz.ObservesDST && IsDaylight(embedded))
		return sentence, localTimeString(embedded, tz.Label(daylight))
	}

	offset := spokenZoneOffsets[zone]
	if qualifier == "DAYLIGHT" {
		offset--
	}
	local := tz.Standard(embedded.Add(time.Duration(offset) * time.Hour))
	daylight := tz.ObservesDST && IsDaylight(local)
	if daylight {
		local = local.Add(time.Hour)
	}
	label := tz.Label(daylight)

	out := strings.Replace(sentence, m[0], "AT "+spokenClock(local)+" "+label, 1)
	date := monthName(local.Month()) + " " + strconv.Itoa(local.Day())
	if d[3] != "" {
		date += " " + strconv.Itoa(local.Year())
	}
	out = strings.Replace(out, d[0], date, 1)
	return out, localTimeString(local, label)
}

func localTimeString(t time.Time, label string) string {
	return fmt.Sprintf("%s %d %d AT %s %s", monthName(t.Month()), t.Day(), t.Year(), spokenClock(t), label)
}
