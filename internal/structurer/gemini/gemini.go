package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"invoicereader/internal/config"
	"invoicereader/internal/domain"
	"invoicereader/internal/structurer"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Structurer implements port.Structurer using Google's Gemini API.
type Structurer struct {
	apiKey      string
	model       string
	temperature float64
	maxRetries  int
	endpoint    string
	client      *http.Client
}

// New creates a Gemini-based structurer from a provider config.
func New(cfg *config.LLMProviderConfig) *Structurer {
	return newStructurer(cfg, "")
}

// NewWithEndpoint creates a structurer pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Structurer {
	return newStructurer(cfg, endpoint)
}

func newStructurer(cfg *config.LLMProviderConfig, endpoint string) *Structurer {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Structurer{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

// Structure sends the extracted text to Gemini with the fixed extraction
// instruction and parses the response as a JSON object.
func (s *Structurer) Structure(ctx context.Context, text string) (json.RawMessage, error) {
	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": structurer.SystemPrompt},
			},
		},
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": text},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     s.temperature,
			"maxOutputTokens": 8192,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	return structurer.InvokeWithRetry(ctx, s.maxRetries, func() (json.RawMessage, error) {
		return s.invoke(ctx, bodyBytes)
	})
}

func (s *Structurer) invoke(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling gemini API: %v", domain.ErrModelInvocation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrModelInvocation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gemini API error (status %d): %s",
			domain.ErrModelInvocation, resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte) (json.RawMessage, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response envelope: %v", domain.ErrModelInvocation, err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from API", domain.ErrModelInvocation)
	}

	return structurer.ParseRecord(resp.Candidates[0].Content.Parts[0].Text)
}
