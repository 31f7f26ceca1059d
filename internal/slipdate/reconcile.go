package slipdate

import (
	"strings"
	"time"
)

// Reconciliation strategies, in trust order.
const (
	StrategyModel    = "model"        // upstream-asserted datetime, window-checked
	StrategyRegex    = "regex"        // best pattern-derived candidate
	StrategyFallback = "fallback-now" // processing instant
)

const localLayout = "2006-01-02T15:04:05"

// plausibilityYears bounds how far an upstream-asserted datetime may sit from
// the processing instant before it is treated as hallucinated.
const plausibilityYears = 3

// Layouts accepted for the upstream-asserted datetime string. The model is
// prompted for ISO 8601 local time, but it drifts; this sweep mirrors the
// formats seen in practice.
var assertedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

func parseAsserted(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range assertedLayouts {
		if t, err := time.ParseInLocation(layout, s, bangkok); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func withinWindow(t, now time.Time) bool {
	return !t.Before(now.AddDate(-plausibilityYears, 0, 0)) &&
		!t.After(now.AddDate(plausibilityYears, 0, 0))
}

// CandidateInfo is a diagnostic view of one ranked candidate.
type CandidateInfo struct {
	Date         string `json:"date"`
	DistanceDays int    `json:"distance_days"`
	EraAdjusted  bool   `json:"era_adjusted"`
	RawDate      string `json:"raw_date"`
}

// Result is the reconciled transaction timestamp. DatetimeLocal and
// DatetimeUTC always denote the same instant under the fixed-offset
// assumption.
type Result struct {
	DatetimeLocal string          `json:"datetime_local"`
	DatetimeUTC   string          `json:"datetime_utc"`
	Strategy      string          `json:"strategy"`
	EraAdjusted   bool            `json:"era_adjusted"`
	FoundDateText string          `json:"found_date_text,omitempty"`
	FoundTimeText string          `json:"found_time_text,omitempty"`
	Candidates    []CandidateInfo `json:"candidates,omitempty"`
}

func formatLocal(t time.Time) string {
	return t.Format(localLayout)
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// reconcile merges the asserted datetime with the ranked candidates. The
// upstream source can hallucinate arbitrary dates, so it is trusted only
// inside the plausibility window; the regex pick is the fallback of record;
// now is the last resort so a timestamp is always produced.
func reconcile(asserted string, ranked []candidate, now time.Time) Result {
	res := Result{Candidates: diagnostics(ranked)}

	var chosen *candidate
	if len(ranked) > 0 {
		chosen = &ranked[0]
		res.EraAdjusted = chosen.eraAdjusted
		res.FoundDateText = chosen.rawDate
		res.FoundTimeText = chosen.rawTime
	}

	if t, ok := parseAsserted(asserted); ok && withinWindow(t, now) {
		res.Strategy = StrategyModel
		res.DatetimeLocal = formatLocal(t)
		res.DatetimeUTC = formatUTC(t)
		return res
	}

	if chosen != nil {
		res.Strategy = StrategyRegex
		res.DatetimeLocal = formatLocal(chosen.civil)
		res.DatetimeUTC = formatUTC(chosen.civil)
		return res
	}

	res.Strategy = StrategyFallback
	now = now.Truncate(time.Second)
	res.DatetimeLocal = formatLocal(now)
	res.DatetimeUTC = formatUTC(now)
	return res
}

func diagnostics(ranked []candidate) []CandidateInfo {
	n := len(ranked)
	if n > maxDiagnostics {
		n = maxDiagnostics
	}
	infos := make([]CandidateInfo, 0, n)
	for _, c := range ranked[:n] {
		infos = append(infos, CandidateInfo{
			Date:         c.civil.Format("2006-01-02"),
			DistanceDays: c.distanceDays,
			EraAdjusted:  c.eraAdjusted,
			RawDate:      c.rawDate,
		})
	}
	return infos
}
