package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type stubDescriber struct {
	text string
	err  error
}

func (s *stubDescriber) DescribeSlip(_ context.Context, _, _ string) (string, error) {
	return s.text, s.err
}

func newTestServer(t *testing.T, describer *stubDescriber) *Server {
	t.Helper()
	s, err := NewServer(nil, describer)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func doExtract(t *testing.T, s *Server, body string, debug bool) (int, extractResponse) {
	t.Helper()

	target := "/api/v1/ai/extract"
	if debug {
		target += "?debug=1"
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c := s.Echo.NewContext(req, rec)
	c.Set("user_id", uuid.New())

	if err := s.handleExtract(c); err != nil {
		t.Fatalf("handleExtract: %v", err)
	}

	var resp extractResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec.Code, resp
}

func TestHandleExtractImage(t *testing.T) {
	model := `{"type":"expense","amount":250,"category":"Food","note":"KFC","datetime":"2025-09-14T13:45:00"}`
	s := newTestServer(t, &stubDescriber{text: model})

	code, resp := doExtract(t, s, `{"mime":"image/jpeg","data_base64":"Zm9v"}`, false)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Type != "expense" || resp.Amount != 250 || resp.Category != "Food" {
		t.Errorf("fields = %+v", resp)
	}
	// The asserted datetime agrees with the date printed in the text, so the
	// model assertion wins.
	if resp.Strategy != "model" {
		t.Errorf("strategy = %q, want model", resp.Strategy)
	}
	if resp.Datetime != "2025-09-14T13:45:00" {
		t.Errorf("datetime = %q", resp.Datetime)
	}
	if resp.RawModelText != "" || resp.Candidates != nil {
		t.Errorf("debug fields must be empty without debug=1: %+v", resp)
	}
}

func TestHandleExtractPlainTextThaiSlip(t *testing.T) {
	s := newTestServer(t, &stubDescriber{})

	slip := "ชำระเงินสำเร็จ 14/09/2568 เวลา 13:45 น.\nยอดเงิน 250.00 บาท"
	body, _ := json.Marshal(map[string]string{
		"mime":        "text/plain",
		"data_base64": base64.StdEncoding.EncodeToString([]byte(slip)),
	})

	code, resp := doExtract(t, s, string(body), true)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Strategy != "regex" {
		t.Errorf("strategy = %q, want regex", resp.Strategy)
	}
	if !resp.EraAdjusted {
		t.Error("expected era_adjusted for a Buddhist-era year")
	}
	if resp.Datetime != "2025-09-14T13:45:00" {
		t.Errorf("datetime = %q", resp.Datetime)
	}
	if resp.Type != "expense" || resp.Amount != 250 {
		t.Errorf("fields = %+v", resp)
	}
	if len(resp.Candidates) == 0 {
		t.Error("debug=1 should include candidates")
	}
	if resp.FoundDateText != "14/09/2568" {
		t.Errorf("found_date_text = %q", resp.FoundDateText)
	}
}

func TestHandleExtractRejectsMissingFields(t *testing.T) {
	s := newTestServer(t, &stubDescriber{})

	code, _ := doExtract(t, s, `{"mime":"image/jpeg"}`, false)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestHandleExtractModelFailure(t *testing.T) {
	s := newTestServer(t, &stubDescriber{err: context.DeadlineExceeded})

	code, _ := doExtract(t, s, `{"mime":"image/png","data_base64":"Zm9v"}`, false)
	if code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", code)
	}
}
