package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	scriptStart = "\x1baT_ENG"
	scriptEnd   = "\x1bb"

	// toneFlags and silentFlags follow the 8-space gap of the header layout.
	toneFlags   = "        CD IA"
	silentFlags = "        CD IN"

	scriptTimeLayout = "0601021504"
)

var (
	scriptClockRe = regexp.MustCompile(`\b(\d{1,2})(\d{2}) (AM|PM)\b`)
	scriptDateRe  = regexp.MustCompile(`\b(` + monthAlternation + `) (\d{1,2})\b`)
	scriptSpaceRe = regexp.MustCompile(` {2,}`)
)

var ordinals = []string{
	"", "FIRST", "SECOND", "THIRD", "FOURTH", "FIFTH", "SIXTH", "SEVENTH", "EIGHTH", "NINTH", "TENTH",
	"ELEVENTH", "TWELFTH", "THIRTEENTH", "FOURTEENTH", "FIFTEENTH", "SIXTEENTH", "SEVENTEENTH",
	"EIGHTEENTH", "NINETEENTH", "TWENTIETH", "TWENTY FIRST", "TWENTY SECOND", "TWENTY THIRD",
	"TWENTY FOURTH", "TWENTY FIFTH", "TWENTY SIXTH", "TWENTY SEVENTH", "TWENTY EIGHTH",
	"TWENTY NINTH", "THIRTIETH", "THIRTY FIRST",
}

// BroadcastOptions controls the radio script header.
type BroadcastOptions struct {
	Kinds  []HazardKind
	Zones  []ZoneCode
	Tone   bool
	Expiry time.Duration
}

// FormatBroadcast wraps a statement in the radio script framing: a header
// with the product id of the most severe hazard, creation and effective
// times, the tone flag, the county list and the expiry time, followed by the
// body rewritten for speech. Advisories never tone.
func FormatBroadcast(text string, site Site, opts BroadcastOptions) string {
	now := clock.Now().UTC()
	kind := HighestPriority(opts.Kinds)

	var b strings.Builder
	b.WriteString(scriptStart)
	b.WriteString(productID(site.Broadcast, kind))
	created := now.Format(scriptTimeLayout)
	b.WriteString(created + created)
	if kind == Advisory || !opts.Tone {
		b.WriteString(silentFlags)
	} else {
		b.WriteString(toneFlags)
	}
	b.WriteString(strings.Join(site.CountyCodes(opts.Zones), "-"))
	b.WriteString("c" + now.Add(opts.Expiry).Format(scriptTimeLayout))
	b.WriteString("\n")
	b.WriteString(SpeechBody(text))
	b.WriteString(scriptEnd)
	return b.String()
}

// SpeechBody flattens statement text onto one line and rewrites clock
// times as "9:39 AM" and day numbers as ordinals ("JULY TWENTY FIRST").
func SpeechBody(text string) string {
	s := strings.ToUpper(text)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "...", ", ")
	s = scriptSpaceRe.ReplaceAllString(s, " ")
	s = scriptClockRe.ReplaceAllString(s, "$1:$2 $3")
	s = scriptDateRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := scriptDateRe.FindStringSubmatch(m)
		day, err := strconv.Atoi(parts[2])
		if err != nil || day < 1 || day >= len(ordinals) {
			return m
		}
		return parts[1] + " " + ordinals[day]
	})
	return strings.TrimSpace(s)
}

// productID prefixes the node to short product ids.
func productID(p BroadcastProfile, kind HazardKind) string {
	pil := p.PILs[kind]
	if len(pil) < 7 {
		return p.Node + pil
	}
	return pil
}
