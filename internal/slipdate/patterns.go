package slipdate

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Slips never carry zone information; the product serves a single locale, so
// civil times are interpreted at a fixed UTC+7 rather than through tzdata.
var bangkok = time.FixedZone("Asia/Bangkok", 7*60*60)

type dateForm int

const (
	formYMD        dateForm = iota // 2025-09-14 (also / and . separators)
	formDMY                        // 14/09/2025, 14-09-68, 14.09.2568
	formDayMonthEN                 // 14 Sep 2025
	formDayMonthTH                 // 14 ก.ย. 2568, 14 กันยายน 2568
)

type datePattern struct {
	form dateForm
	re   *regexp.Regexp
}

var thMonths = map[string]int{
	"ม.ค.": 1, "ก.พ.": 2, "มี.ค.": 3, "เม.ย.": 4, "พ.ค.": 5, "มิ.ย.": 6,
	"ก.ค.": 7, "ส.ค.": 8, "ก.ย.": 9, "ต.ค.": 10, "พ.ย.": 11, "ธ.ค.": 12,
	"มกราคม": 1, "กุมภาพันธ์": 2, "มีนาคม": 3, "เมษายน": 4, "พฤษภาคม": 5, "มิถุนายน": 6,
	"กรกฎาคม": 7, "สิงหาคม": 8, "กันยายน": 9, "ตุลาคม": 10, "พฤศจิกายน": 11, "ธันวาคม": 12,
}

var enMonths = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// thaiMonthAlternation builds the alternation for the Thai date pattern from
// the month table, longest keys first so full names win over abbreviations.
func thaiMonthAlternation() string {
	keys := make([]string, 0, len(thMonths))
	for k := range thMonths {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return strings.Join(keys, "|")
}

// All patterns are RE2, so scanning stays linear in the input length even for
// adversarial text coming out of the description service.
var (
	timePatterns = []*regexp.Regexp{
		// 13:45[:21] [AM/PM]
		regexp.MustCompile(`(?i)\b([01]?\d|2[0-3]):([0-5]\d)(?::([0-5]\d))?\s*(am|pm)?\b`),
		// 13.45 น. / 13:45 นาฬิกา
		regexp.MustCompile(`\b([01]?\d|2[0-3])[.:]([0-5]\d)(?:[:.]([0-5]\d))?(?:\s*(น\.|นาฬิกา))?`),
	}

	datePatterns = []datePattern{
		// 2025-09-14, 2025/09/14, 2025.09.14
		{formYMD, regexp.MustCompile(`\b(20\d{2}|19\d{2})[-/.](0?[1-9]|1[0-2])[-/.](0?[1-9]|[12]\d|3[01])\b`)},
		// 14/09/2025, 14-09-68, 14.09.2568
		{formDMY, regexp.MustCompile(`\b(0?[1-9]|[12]\d|3[01])[-/.](0?[1-9]|1[0-2])[-/.](\d{2,4})\b`)},
		// 14 Sep 2025 / 14 Sept 2025
		{formDayMonthEN, regexp.MustCompile(`(?i)\b(0?[1-9]|[12]\d|3[01])\s+(jan|feb|mar|apr|may|jun|jul|aug|sept|sep|oct|nov|dec)\s+(20\d{2}|19\d{2})\b`)},
		// 14 ก.ย. 2568 / 14 กันยายน 2568
		{formDayMonthTH, regexp.MustCompile(`\b(0?[1-9]|[12]\d|3[01])\s+(` + thaiMonthAlternation() + `)\s+(25\d{2}|20\d{2}|19\d{2})\b`)},
	}
)
