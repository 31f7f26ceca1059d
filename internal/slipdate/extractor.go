// Package slipdate recovers the transaction timestamp from free-form
// Thai/English payment-slip text. Text produced by the upstream description
// service is noisy: mixed scripts, Buddhist-Era years, two-digit years,
// masked card numbers and reference codes that look like dates. The engine
// scans for every date- and time-like token, normalizes them into civil
// datetime candidates, prefers the candidate closest to the processing
// instant, and reconciles the pick with the datetime the model itself
// asserted. It never fails: any input degrades to the processing instant.
package slipdate

import "time"

// Extractor runs the extraction pipeline. It holds no per-request state and
// is safe for concurrent use; the pattern tables are process-wide constants.
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract resolves the most plausible transaction datetime from rawText and
// the optional upstream-asserted datetime string. The processing instant is
// read once and held fixed for the whole computation.
func (e *Extractor) Extract(rawText, assertedDateTime string) Result {
	return extractAt(rawText, assertedDateTime, e.now())
}

// ExtractAt is Extract with an explicit reference instant, for replaying
// historical slips and for the CLI.
func (e *Extractor) ExtractAt(rawText, assertedDateTime string, now time.Time) Result {
	return extractAt(rawText, assertedDateTime, now)
}

func extractAt(rawText, asserted string, now time.Time) Result {
	now = now.In(bangkok)
	blob := flatten(rawText)
	t := resolveTime(scanTimes(blob))
	ranked := rank(buildCandidates(scanDates(blob), t, now))
	return reconcile(asserted, ranked, now)
}
