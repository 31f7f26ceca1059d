package ai

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// slipPrompt asks the model for strict JSON and an ISO 8601 local datetime.
// The datetime it returns is treated as an assertion, not as truth; the
// slipdate engine reconciles it against deterministic extraction.
const slipPrompt = `You are a receipt/slip parser for Thai/English payment slips.
Return STRICT JSON ONLY with keys:
{ "type":"income|expense", "amount": number, "category": string, "note": string, "datetime": string }
Rules:
- 'type' must be either 'income' or 'expense' (infer from context like 'paid', 'top up', 'received', 'transfer in/out').
- 'amount' is a number (THB).
- 'category' from {Shopping, Pay Bill, Food, Transport, Groceries, Health, Entertainment, Education, Salary, Transfer, Other}.
- 'note' is short free text (e.g., merchant, method, ref).
- 'datetime' MUST be ISO 8601 local time without timezone offset (e.g., 2025-09-14T13:45:00). If the slip shows date/time, use it. If multiple dates appear, pick the PAYMENT date.
- If you cannot find a clear date/time, leave 'datetime' empty (do NOT invent).

Examples of valid date/time on Thai slips (to recognize):
- 14/09/2025 13:45
- 14-09-2025 13:45:21
- 14.09.2025 13:45
- 2025-09-14 13:45
- 14 Sep 2025 1:45 PM
- 14 ก.ย. 2568 13:45
- 14 กันยายน 2568 13:45 น.
- เวลา 13:45 น. วันที่ 14/09/2568

Output JSON only. No markdown, no extra commentary.`

// SlipFields is the structured interpretation of a slip description.
type SlipFields struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
	Datetime string  `json:"datetime"`
}

var (
	labeledAmountRe = regexp.MustCompile(`(?i)(total|amount|ยอด|จำนวน|paid|sum)\s*[:=]?\s*([\d.]+)`)
	bareAmountRe    = regexp.MustCompile(`(?i)\b(\d+(?:\.\d{1,2})?)\s*(?:thb|baht|บาท|฿)`)
)

// ParseSlipFields interprets the raw model text. It first tries the strict
// JSON the prompt asks for (tolerating markdown fences, stray prose and
// synonym keys); when no usable JSON comes back it falls back to keyword
// heuristics over the text itself.
func ParseSlipFields(raw string, reg *CategoryRegistry) SlipFields {
	if f, ok := parseModelJSON(raw); ok {
		f.Type = NormalizeType(f.Type)
		f.Amount = NormalizeAmount(f.Amount)
		if f.Category == "" || !reg.Known(f.Category) {
			f.Category = reg.Classify(raw)
		}
		return f
	}
	return fieldsFromText(raw, reg)
}

func parseModelJSON(raw string) (SlipFields, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	jsonStr, ok := extractFirstJSONObject(cleaned)
	if !ok {
		return SlipFields{}, false
	}

	// Decode loosely: models rename keys and stringify numbers.
	var m map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &m); err != nil {
		return SlipFields{}, false
	}

	f := SlipFields{
		Type:     stringField(m, "type", "transaction_type"),
		Amount:   numberField(m, "amount", "total", "value"),
		Category: stringField(m, "category", "tag"),
		Note:     stringField(m, "note", "description"),
		Datetime: stringField(m, "datetime", "date"),
	}
	return f, true
}

func fieldsFromText(raw string, reg *CategoryRegistry) SlipFields {
	lower := strings.ToLower(raw)

	typ := "expense"
	for _, marker := range reg.IncomeMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			typ = "income"
			break
		}
	}

	return SlipFields{
		Type:     typ,
		Amount:   amountFromText(raw),
		Category: reg.Classify(raw),
	}
}

func amountFromText(raw string) float64 {
	noCommas := strings.ReplaceAll(raw, ",", "")
	if m := labeledAmountRe.FindStringSubmatch(noCommas); m != nil {
		if v, err := strconv.ParseFloat(strings.Trim(m[2], "."), 64); err == nil {
			return NormalizeAmount(v)
		}
	}
	if m := bareAmountRe.FindStringSubmatch(noCommas); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return NormalizeAmount(v)
		}
	}
	return 0
}

// NormalizeType collapses any model phrasing to income/expense.
func NormalizeType(t string) string {
	if strings.Contains(strings.ToLower(t), "income") {
		return "income"
	}
	return "expense"
}

// NormalizeAmount rejects negative and non-finite values.
func NormalizeAmount(a float64) float64 {
	if a != a || a < 0 {
		return 0
	}
	return a
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func numberField(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// extractFirstJSONObject finds the first outermost balanced {...},
// skipping braces inside string literals.
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if char == '{' {
				depth++
			} else if char == '}' {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
