package domain

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// zoneLineStartRe matches the first line of a UGC block, e.g. "CAZ006-505-530-".
	zoneLineStartRe = regexp.MustCompile(`^[A-Z]{2}Z\d{3}-`)

	// zoneLineContRe matches a wrapped UGC continuation line.
	zoneLineContRe = regexp.MustCompile(`^[A-Z0-9>\-]+$`)

	purgeTimeRe  = regexp.MustCompile(`^\d{6}$`)
	zoneNumberRe = regexp.MustCompile(`^\d{3}$`)

	testMarkerRe = regexp.MustCompile(`\bTEST\b`)
)

// Parser turns tsunami bulletin text into HazardInfo for one site.
// A Parser holds only configuration and may be shared.
type Parser struct {
	site   Site
	logger *slog.Logger
}

// NewParser creates a Parser for site.
func NewParser(site Site, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{site: site, logger: logger}
}

// Parse extracts the hazards affecting the site from a bulletin. It never
// fails: a bulletin that cannot be read yields empty zone sets and a
// NoticeParseFailure notice, and a bulletin without hazards for the site
// yields NoticeNoHazard (or NoticeCancellation when every matching segment was
// ending its hazard). Test bulletins carry NoticeTest.
func (p *Parser) Parse(text string) (info HazardInfo) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("bulletin parse panicked", "panic", r)
			info = parseFailure()
		}
	}()

	if !utf8.ValidString(text) {
		p.logger.Warn("bulletin is not valid UTF-8")
		return parseFailure()
	}
	norm := strings.ToUpper(strings.ReplaceAll(text, "\r", ""))
	if strings.TrimSpace(norm) == "" {
		p.logger.Warn("bulletin is empty")
		return parseFailure()
	}

	info = newHazardInfo()
	segments := strings.Split(norm, "$$")
	info.Variant = detectVariant(segments[0])
	adapter := AdapterFor(info.Variant, p.site.ArrivalPoints, p.logger)
	allowed := p.site.zoneSet()

	testVTEC := false
	for i, segment := range segments {
		lines := scanVTEC(segment)
		for _, l := range lines {
			if l.test() {
				testVTEC = true
			}
		}
		vtec, ok := selectVTEC(lines)
		if !ok || vtec.kind == "" {
			continue
		}

		zones := p.extractZones(ExpandZoneRanges(segment), allowed)
		if len(zones) == 0 {
			continue
		}
		info.addStatus(vtec.status)
		if vtec.terminal() {
			p.logger.Debug("segment ends hazard", "segment", i, "hazard", vtec.kind, "action", vtec.action)
			continue
		}
		info.addZones(vtec.kind, zones)
		info.addArrivals(vtec.kind, adapter.Arrivals(splitParagraphs(segment)))
	}

	for _, segment := range segments {
		if strings.Contains(segment, "EARTHQUAKE") && strings.Contains(segment, "MAGNITUDE") {
			quake := extractEarthquake(segment, info.Variant)
			info.Earthquake, info.LocalTime = localizeQuake(quake, p.site.Timezone, productYear(norm, clock.Now().Year()))
			break
		}
	}

	info.Test = testVTEC || testMarkerRe.MatchString(norm)
	switch {
	case info.Test:
		info.Notice = Notice{Kind: NoticeTest, Message: msgTest}
	case len(info.ActiveKinds()) > 0:
	case info.OnlyFinal():
		info.Notice = Notice{Kind: NoticeCancellation, Message: msgCancellation}
	default:
		info.Notice = Notice{Kind: NoticeNoHazard, Message: msgNoHazard}
	}
	return info
}

// extractZones reads the segment's UGC block and returns the site zones it
// names. Three digit tokens inherit the state and Z prefix of the previous
// full code; purge times and county codes are skipped.
func (p *Parser) extractZones(segment string, allowed map[ZoneCode]bool) []ZoneCode {
	ugc := ugcBlock(segment)
	if ugc == "" {
		return nil
	}
	var zones []ZoneCode
	prefix := ""
	for _, tok := range strings.Split(ugc, "-") {
		var z ZoneCode
		switch {
		case tok == "":
			continue
		case zoneCodePattern.MatchString(tok):
			prefix = tok[:3]
			z = ZoneCode(tok)
		case zoneNumberRe.MatchString(tok) && prefix != "":
			z = ZoneCode(prefix + tok)
		case purgeTimeRe.MatchString(tok):
			continue
		default:
			p.logger.Debug("dropping unrecognized zone token", "token", tok)
			continue
		}
		if len(allowed) > 0 && !allowed[z] {
			p.logger.Debug("dropping zone outside jurisdiction", "zone", z)
			continue
		}
		zones = append(zones, z)
	}
	return normalizeZones(zones)
}

// ugcBlock joins the first UGC line with its wrapped continuation lines.
func ugcBlock(segment string) string {
	lines := strings.Split(segment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !zoneLineStartRe.MatchString(line) {
			continue
		}
		block := line
		for j := i + 1; j < len(lines) && strings.HasSuffix(block, "-"); j++ {
			next := strings.TrimSpace(lines[j])
			if !zoneLineContRe.MatchString(next) {
				break
			}
			block += next
		}
		return block
	}
	return ""
}

func parseFailure() HazardInfo {
	info := newHazardInfo()
	info.Notice = Notice{Kind: NoticeParseFailure, Message: msgParseFailure}
	return info
}
