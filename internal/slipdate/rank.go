package slipdate

import "sort"

// maxDiagnostics caps the candidate list carried on results for debugging.
const maxDiagnostics = 5

// rank orders candidates best-first: receipts are assumed recent, so the
// smallest day distance from now wins. That suppresses false positives like
// card expiry dates or date-shaped reference numbers whenever a closer
// alternative exists. Ties go to the larger year.
func rank(cands []candidate) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].distanceDays != cands[j].distanceDays {
			return cands[i].distanceDays < cands[j].distanceDays
		}
		return cands[i].year > cands[j].year
	})
	return cands
}
