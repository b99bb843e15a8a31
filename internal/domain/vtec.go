package domain

import "regexp"

// vtecPattern matches the tsunami P-VTEC string, e.g.
// "/O.NEW.PAAQ.TS.W.0001.200722T0555Z-000000T0000Z/".
// Groups: product class, action, office, significance.
var vtecPattern = regexp.MustCompile(`/([OTEX])\.([A-Z]{3})\.([A-Z]{4})\.TS\.([WAY])\.\d{4}\.`)

type vtecLine struct {
	class  string
	action string
	office string
	kind   HazardKind
	status IssuanceStatus
}

func (v vtecLine) terminal() bool { return v.status == StatusFinal }

func (v vtecLine) test() bool { return v.class == "T" }

func significanceKind(sig string) HazardKind {
	switch sig {
	case "W":
		return Warning
	case "A":
		return Watch
	case "Y":
		return Advisory
	}
	return ""
}

// actionStatus maps a VTEC action code to an issuance status. Codes outside
// the tsunami lifecycle (COR, ROU) are treated as a new issuance.
func actionStatus(action string) IssuanceStatus {
	switch action {
	case "NEW":
		return StatusNew
	case "CON", "EXT", "EXA", "EXB":
		return StatusContinue
	case "EXP", "CAN", "UPG":
		return StatusFinal
	}
	return StatusNew
}

// scanVTEC returns every tsunami VTEC string in a segment in text order.
func scanVTEC(segment string) []vtecLine {
	matches := vtecPattern.FindAllStringSubmatch(segment, -1)
	lines := make([]vtecLine, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, vtecLine{
			class:  m[1],
			action: m[2],
			office: m[3],
			kind:   significanceKind(m[4]),
			status: actionStatus(m[2]),
		})
	}
	return lines
}

// selectVTEC picks the governing line of a segment: the last non-terminal
// line. When only terminal lines exist the last of them is returned with
// ok=true so the caller can record the Final status.
func selectVTEC(lines []vtecLine) (vtecLine, bool) {
	if len(lines) == 0 {
		return vtecLine{}, false
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if !lines[i].terminal() {
			return lines[i], true
		}
	}
	return lines[len(lines)-1], true
}
