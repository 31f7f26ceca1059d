package slipdate

import (
	"strings"
	"time"
)

// candidate is a fully resolved date+time hypothesis with its recency score.
type candidate struct {
	year, month, day int
	hour, minute     int
	second           int
	eraAdjusted      bool
	rawDate          string
	rawTime          string
	civil            time.Time // year/month/day + time, fixed UTC+7
	distanceDays     int
}

// normalizeDate resolves a raw hit into year/month/day. Years outside
// 1900-2100, months outside 1-12 and days outside 1-31 are dropped; day
// validity against the actual month is deliberately not checked.
func normalizeDate(h dateHit) (y, m, d int, eraAdjusted, ok bool) {
	switch h.form {
	case formYMD:
		y, m, d = atoi(h.year), atoi(h.month), atoi(h.day)
	case formDMY:
		d, m, y = atoi(h.day), atoi(h.month), atoi(h.year)
		if len(h.year) == 2 {
			if y >= 70 {
				y += 1900
			} else {
				y += 2000
			}
		}
		if y >= 2500 {
			y -= 543 // Thai Buddhist Era
			eraAdjusted = true
		}
	case formDayMonthEN:
		d, y = atoi(h.day), atoi(h.year)
		m = enMonths[strings.ToLower(h.month)]
	case formDayMonthTH:
		d, y = atoi(h.day), atoi(h.year)
		m = thMonths[h.month]
		if y >= 2500 {
			y -= 543
			eraAdjusted = true
		}
	}

	if y < 1900 || y > 2100 || m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, 0, false, false
	}
	return y, m, d, eraAdjusted, true
}

// resolveTime picks the first time-like match in the whole text, defaulting
// to noon, and applies the 12-hour correction.
func resolveTime(hits []timeHit) timeHit {
	t := timeHit{hour: 12}
	if len(hits) > 0 {
		t = hits[0]
	}
	if t.meridiem == "pm" && t.hour < 12 {
		t.hour += 12
	}
	if t.meridiem == "am" && t.hour == 12 {
		t.hour = 0
	}
	return t
}

// buildCandidates pairs every surviving date hit with the single resolved
// time and scores each by day distance from now. Overflowing days such as
// Feb 30 normalize forward the way time.Date does.
func buildCandidates(dates []dateHit, t timeHit, now time.Time) []candidate {
	var cands []candidate
	for _, h := range dates {
		y, m, d, era, ok := normalizeDate(h)
		if !ok {
			continue
		}
		civil := time.Date(y, time.Month(m), d, t.hour, t.minute, t.second, 0, bangkok)
		diff := civil.Sub(now)
		if diff < 0 {
			diff = -diff
		}
		cands = append(cands, candidate{
			year: y, month: m, day: d,
			hour: t.hour, minute: t.minute, second: t.second,
			eraAdjusted:  era,
			rawDate:      h.raw,
			rawTime:      t.raw,
			civil:        civil,
			distanceDays: int(diff.Hours() / 24),
		})
	}
	return cands
}
