package slipdate

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 9, 20, 10, 0, 0, 0, bangkok)

func TestExtract_ThaiSlipEndToEnd(t *testing.T) {
	res := extractAt("ชำระเงินสำเร็จ 14/09/2568 เวลา 13:45 น. ยอดเงิน 250.00 บาท", "", testNow)

	if res.Strategy != StrategyRegex {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyRegex)
	}
	if !res.EraAdjusted {
		t.Error("expected Buddhist-Era adjustment flag")
	}
	if res.DatetimeLocal != "2025-09-14T13:45:00" {
		t.Errorf("local = %q, want 2025-09-14T13:45:00", res.DatetimeLocal)
	}
	if res.DatetimeUTC != "2025-09-14T06:45:00Z" {
		t.Errorf("utc = %q, want 2025-09-14T06:45:00Z", res.DatetimeUTC)
	}
	if res.FoundDateText != "14/09/2568" {
		t.Errorf("found date text = %q", res.FoundDateText)
	}
}

func TestExtract_ISODateExactFields(t *testing.T) {
	res := extractAt("Payment 2025-09-14 13:45:21 ref 889900", "", testNow)
	if res.DatetimeLocal != "2025-09-14T13:45:21" {
		t.Errorf("local = %q", res.DatetimeLocal)
	}
	if res.Strategy != StrategyRegex {
		t.Errorf("strategy = %q", res.Strategy)
	}
}

func TestExtract_PrefersCandidateClosestToNow(t *testing.T) {
	// The far date appears first in the text; recency must win over position.
	res := extractAt("valid until 25/10/2026, paid on 01/09/2025 12:30", "", testNow)
	if res.DatetimeLocal != "2025-09-01T12:30:00" {
		t.Errorf("local = %q, want the distance-18 candidate over the distance-400 one", res.DatetimeLocal)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 diagnostic candidates, got %d", len(res.Candidates))
	}
	if res.Candidates[0].Date != "2025-09-01" {
		t.Errorf("ranked head = %+v", res.Candidates[0])
	}
}

func TestExtract_LoneFarCandidateStillSelected(t *testing.T) {
	// Distance scores rank, they never reject: a date-shaped far-future
	// reference is used when nothing better exists.
	res := extractAt("Total: 120.50 THB, Card ending 4455, Ref 2099-12-31", "", testNow)
	if res.Strategy != StrategyRegex {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyRegex)
	}
	if res.Candidates[0].Date != "2099-12-31" {
		t.Errorf("candidate = %+v", res.Candidates[0])
	}
}

func TestExtract_ModelBranchWinsInsideWindow(t *testing.T) {
	res := extractAt("paid 14/09/2568 13:45", "2025-12-01T09:30:00", testNow)
	if res.Strategy != StrategyModel {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyModel)
	}
	if res.DatetimeLocal != "2025-12-01T09:30:00" {
		t.Errorf("local = %q", res.DatetimeLocal)
	}
	if res.DatetimeUTC != "2025-12-01T02:30:00Z" {
		t.Errorf("utc = %q", res.DatetimeUTC)
	}
}

func TestExtract_ImplausibleAssertedFallsToRegex(t *testing.T) {
	res := extractAt("paid 14/09/2568 13:45", "2035-01-01T00:00:00", testNow)
	if res.Strategy != StrategyRegex {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyRegex)
	}
	if res.DatetimeLocal != "2025-09-14T13:45:00" {
		t.Errorf("local = %q", res.DatetimeLocal)
	}
}

func TestExtract_MalformedAssertedTreatedAsAbsent(t *testing.T) {
	res := extractAt("no dates here", "sometime last week", testNow)
	if res.Strategy != StrategyFallback {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyFallback)
	}
	if res.DatetimeLocal != "2025-09-20T10:00:00" {
		t.Errorf("local = %q, want the reference instant", res.DatetimeLocal)
	}
}

func TestExtract_GarbageInputFallsBackToNow(t *testing.T) {
	before := time.Now()
	res := NewExtractor().Extract("", "")
	if res.Strategy != StrategyFallback {
		t.Fatalf("strategy = %q", res.Strategy)
	}
	got, err := time.ParseInLocation(localLayout, res.DatetimeLocal, bangkok)
	if err != nil {
		t.Fatal(err)
	}
	if d := got.Sub(before); d < -time.Second || d > 2*time.Second {
		t.Errorf("fallback instant %v not near invocation time %v", got, before)
	}
}

func TestExtract_LocalAndUTCDenoteSameInstant(t *testing.T) {
	inputs := []struct {
		text     string
		asserted string
	}{
		{"ชำระเงินสำเร็จ 14/09/2568 เวลา 13:45 น.", ""},
		{"Paid 14 Sep 2025 1:45 PM", ""},
		{"nothing", "2025-12-01T09:30:00"},
		{"nothing", ""},
	}

	for _, in := range inputs {
		res := extractAt(in.text, in.asserted, testNow)
		local, err := time.ParseInLocation(localLayout, res.DatetimeLocal, bangkok)
		if err != nil {
			t.Fatalf("bad local %q: %v", res.DatetimeLocal, err)
		}
		utc, err := time.Parse(time.RFC3339, res.DatetimeUTC)
		if err != nil {
			t.Fatalf("bad utc %q: %v", res.DatetimeUTC, err)
		}
		if !local.Equal(utc) {
			t.Errorf("local %q and utc %q drifted apart (%s strategy)", res.DatetimeLocal, res.DatetimeUTC, res.Strategy)
		}
	}
}

func TestExtract_MeridiemEndToEnd(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"14 Sep 2025 1:45 PM", "2025-09-14T13:45:00"},
		{"14 Sep 2025 12:00 AM", "2025-09-14T00:00:00"},
		{"14 Sep 2025 12:00 PM", "2025-09-14T12:00:00"},
	}
	for _, tc := range tests {
		if res := extractAt(tc.in, "", testNow); res.DatetimeLocal != tc.want {
			t.Errorf("%q: local = %q, want %q", tc.in, res.DatetimeLocal, tc.want)
		}
	}
}

func TestExtract_DiagnosticsCappedAtFive(t *testing.T) {
	text := "01/09/2025 02/09/2025 03/09/2025 04/09/2025 05/09/2025 06/09/2025 07/09/2025"
	res := extractAt(text, "", testNow)
	if len(res.Candidates) != 5 {
		t.Fatalf("expected 5 capped candidates, got %d", len(res.Candidates))
	}
}
