package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Describer produces a free-text description of a slip image.
type Describer interface {
	DescribeSlip(ctx context.Context, mime, dataBase64 string) (string, error)
}

type GeminiClient struct {
	BaseURL string
	APIKey  string
	Model   string

	httpClient *http.Client
}

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// DescribeSlip sends the slip image with the parsing prompt and returns the
// model's raw text, parts joined by newlines.
func (c *GeminiClient) DescribeSlip(ctx context.Context, mime, dataBase64 string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: slipPrompt},
				{InlineData: &inlineData{MimeType: mime, Data: dataBase64}},
			},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.BaseURL, c.Model, url.QueryEscape(c.APIKey))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status: %d", resp.StatusCode)
	}

	var parsedResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsedResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsedResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var parts []string
	for _, p := range parsedResp.Candidates[0].Content.Parts {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n"), nil
}
