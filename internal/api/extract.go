package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tanakrit/slipbook/internal/ai"
	"github.com/tanakrit/slipbook/internal/auth"
	"github.com/tanakrit/slipbook/internal/doctext"
	"github.com/tanakrit/slipbook/internal/slipdate"
)

type extractRequest struct {
	Mime       string `json:"mime"`
	DataBase64 string `json:"data_base64"`
}

type extractResponse struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Note        string  `json:"note,omitempty"`
	Datetime    string  `json:"datetime"`
	DatetimeUTC string  `json:"datetime_utc"`
	Strategy    string  `json:"strategy"`
	EraAdjusted bool    `json:"era_adjusted"`

	// Populated only when ?debug=1.
	RawModelText     string                   `json:"raw_model_text,omitempty"`
	ModelRawDatetime string                   `json:"model_raw_datetime,omitempty"`
	FoundDateText    string                   `json:"found_date_text,omitempty"`
	FoundTimeText    string                   `json:"found_time_text,omitempty"`
	Candidates       []slipdate.CandidateInfo `json:"candidates,omitempty"`
}

// handleExtract turns an uploaded slip (image, PDF, HTML or plain text)
// into structured entry fields. Images go through the vision model; the
// model's datetime is only an assertion that the slipdate engine checks
// against what the text itself says.
func (s *Server) handleExtract(c echo.Context) error {
	if _, err := auth.GetUserIDFromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	mime := strings.ToLower(strings.TrimSpace(req.Mime))
	if mime == "" || req.DataBase64 == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "mime and data_base64 are required"})
	}

	text, modelText, err := s.slipText(c.Request().Context(), mime, req.DataBase64)
	if err != nil {
		c.Logger().Errorf("Slip text extraction failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Could not read slip content"})
	}

	fields := ai.ParseSlipFields(text, s.Registry)
	result := s.Extractor.Extract(text, fields.Datetime)

	resp := extractResponse{
		Type:        fields.Type,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Note:        s.sanitizer.Sanitize(fields.Note),
		Datetime:    result.DatetimeLocal,
		DatetimeUTC: result.DatetimeUTC,
		Strategy:    result.Strategy,
		EraAdjusted: result.EraAdjusted,
	}

	if c.QueryParam("debug") == "1" {
		resp.RawModelText = modelText
		resp.ModelRawDatetime = fields.Datetime
		resp.FoundDateText = result.FoundDateText
		resp.FoundTimeText = result.FoundTimeText
		resp.Candidates = result.Candidates
	}

	return c.JSON(http.StatusOK, resp)
}

// slipText resolves the scannable text for a payload. The second return
// value is the raw model output for image payloads, empty otherwise.
func (s *Server) slipText(ctx context.Context, mime, dataBase64 string) (string, string, error) {
	if strings.HasPrefix(mime, "image/") {
		aiCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()

		modelText, err := s.AI.DescribeSlip(aiCtx, mime, dataBase64)
		if err != nil {
			return "", "", err
		}
		return modelText, modelText, nil
	}

	data, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		return "", "", err
	}

	switch {
	case mime == "application/pdf":
		text, err := doctext.FromPDF(data)
		return text, "", err
	case mime == "text/html":
		return doctext.FromHTML(string(data)), "", nil
	default:
		return string(data), "", nil
	}
}
