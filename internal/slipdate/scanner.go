package slipdate

import (
	"strconv"
	"strings"
)

// lineMark joins flattened lines. A plain space could merge a trailing day
// number with a leading month name on the next line into a bogus token; the
// marker keeps word boundaries intact without ever matching a pattern itself.
const lineMark = " ␤ "

type timeHit struct {
	raw      string
	hour     int
	minute   int
	second   int
	meridiem string // "am", "pm" or ""
}

type dateHit struct {
	form  dateForm
	raw   string
	year  string // capture as matched; semantics depend on form
	month string
	day   string
}

// flatten collapses multi-line text into a single scan target.
func flatten(text string) string {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, lineMark)
}

func scanTimes(blob string) []timeHit {
	var hits []timeHit
	for _, re := range timePatterns {
		for _, m := range re.FindAllStringSubmatch(blob, -1) {
			h := timeHit{
				raw:    m[0],
				hour:   atoi(m[1]),
				minute: atoi(m[2]),
				second: atoi(m[3]),
			}
			if mer := strings.ToLower(m[4]); mer == "am" || mer == "pm" {
				h.meridiem = mer
			}
			hits = append(hits, h)
		}
	}
	return hits
}

func scanDates(blob string) []dateHit {
	var hits []dateHit
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(blob, -1) {
			h := dateHit{form: p.form, raw: m[0]}
			switch p.form {
			case formYMD:
				h.year, h.month, h.day = m[1], m[2], m[3]
			default:
				h.day, h.month, h.year = m[1], m[2], m[3]
			}
			hits = append(hits, h)
		}
	}
	return hits
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
