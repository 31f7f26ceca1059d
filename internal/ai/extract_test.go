package ai

import (
	"testing"
)

func testRegistry(t *testing.T) *CategoryRegistry {
	t.Helper()
	reg, err := LoadCategoryRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func TestParseSlipFieldsStrictJSON(t *testing.T) {
	reg := testRegistry(t)

	raw := `{"type":"expense","amount":250.00,"category":"Food","note":"KFC","datetime":"2025-09-14T13:45:00"}`
	f := ParseSlipFields(raw, reg)

	if f.Type != "expense" {
		t.Errorf("type = %q, want expense", f.Type)
	}
	if f.Amount != 250.00 {
		t.Errorf("amount = %v, want 250", f.Amount)
	}
	if f.Category != "Food" {
		t.Errorf("category = %q, want Food", f.Category)
	}
	if f.Note != "KFC" {
		t.Errorf("note = %q, want KFC", f.Note)
	}
	if f.Datetime != "2025-09-14T13:45:00" {
		t.Errorf("datetime = %q", f.Datetime)
	}
}

func TestParseSlipFieldsFencedAndWrapped(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "markdown fence",
			raw:  "```json\n{\"type\":\"income\",\"amount\":1000,\"category\":\"Salary\",\"note\":\"\",\"datetime\":\"\"}\n```",
		},
		{
			name: "surrounding prose",
			raw:  "Here is the result:\n{\"type\":\"income\",\"amount\":1000,\"category\":\"Salary\",\"note\":\"\",\"datetime\":\"\"}\nHope that helps!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseSlipFields(tt.raw, reg)
			if f.Type != "income" {
				t.Errorf("type = %q, want income", f.Type)
			}
			if f.Amount != 1000 {
				t.Errorf("amount = %v, want 1000", f.Amount)
			}
			if f.Category != "Salary" {
				t.Errorf("category = %q, want Salary", f.Category)
			}
		})
	}
}

func TestParseSlipFieldsSynonymKeys(t *testing.T) {
	reg := testRegistry(t)

	raw := `{"transaction_type":"Income (salary)","total":"1,234","description":"monthly pay","date":"2025-09-01T09:00:00"}`
	f := ParseSlipFields(raw, reg)

	if f.Type != "income" {
		t.Errorf("type = %q, want income", f.Type)
	}
	// "1,234" fails strict float parsing; amount falls back to zero rather
	// than guessing.
	if f.Amount != 0 {
		t.Errorf("amount = %v, want 0", f.Amount)
	}
	if f.Note != "monthly pay" {
		t.Errorf("note = %q", f.Note)
	}
	if f.Datetime != "2025-09-01T09:00:00" {
		t.Errorf("datetime = %q", f.Datetime)
	}
}

func TestParseSlipFieldsStringAmount(t *testing.T) {
	reg := testRegistry(t)

	raw := `{"type":"expense","amount":"120.50","category":"Transport","note":"BTS","datetime":""}`
	f := ParseSlipFields(raw, reg)

	if f.Amount != 120.50 {
		t.Errorf("amount = %v, want 120.50", f.Amount)
	}
}

func TestParseSlipFieldsUnknownCategoryReclassified(t *testing.T) {
	reg := testRegistry(t)

	raw := `{"type":"expense","amount":85,"category":"Dining Out","note":"food court lunch","datetime":""}`
	f := ParseSlipFields(raw, reg)

	// "Dining Out" is not in the vocabulary; the keyword scan should land on
	// Food via "food".
	if f.Category != "Food" {
		t.Errorf("category = %q, want Food", f.Category)
	}
}

func TestParseSlipFieldsNegativeAmountRejected(t *testing.T) {
	reg := testRegistry(t)

	raw := `{"type":"expense","amount":-300,"category":"Other","note":"","datetime":""}`
	f := ParseSlipFields(raw, reg)

	if f.Amount != 0 {
		t.Errorf("amount = %v, want 0", f.Amount)
	}
}

func TestParseSlipFieldsTextFallback(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name       string
		raw        string
		wantType   string
		wantAmount float64
	}{
		{
			name:       "labeled amount and income marker",
			raw:        "Salary received. Total: 25,000.00 THB",
			wantType:   "income",
			wantAmount: 25000.00,
		},
		{
			name:       "thai labeled amount",
			raw:        "ชำระเงินสำเร็จ ยอดเงิน 250.00 บาท",
			wantType:   "expense",
			wantAmount: 250.00,
		},
		{
			name:       "bare amount with currency",
			raw:        "paid to shop 120.50 baht thank you",
			wantType:   "expense",
			wantAmount: 120.50,
		},
		{
			name:       "nothing usable",
			raw:        "illegible photograph",
			wantType:   "expense",
			wantAmount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseSlipFields(tt.raw, reg)
			if f.Type != tt.wantType {
				t.Errorf("type = %q, want %q", f.Type, tt.wantType)
			}
			if f.Amount != tt.wantAmount {
				t.Errorf("amount = %v, want %v", f.Amount, tt.wantAmount)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"income", "income"},
		{"Income", "income"},
		{"INCOME (transfer in)", "income"},
		{"expense", "expense"},
		{"debit", "expense"},
		{"", "expense"},
	}
	for _, tt := range tests {
		if got := NormalizeType(tt.in); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "plain object",
			in:     `{"a":1}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "nested braces",
			in:     `before {"a":{"b":2}} after`,
			want:   `{"a":{"b":2}}`,
			wantOK: true,
		},
		{
			name:   "braces inside string",
			in:     `{"note":"ref {x}"}`,
			want:   `{"note":"ref {x}"}`,
			wantOK: true,
		},
		{
			name:   "unterminated",
			in:     `{"a":1`,
			wantOK: false,
		},
		{
			name:   "no object",
			in:     `nothing here`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractFirstJSONObject(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
