package openai

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

const apiURL = "https://api.openai.com/v1/chat/completions"

// Structurer implements port.Structurer using the OpenAI Chat Completions API.
type Structurer struct {
	apiKey      string
	model       string
	temperature float64
	maxRetries  int
	endpoint    string
	client      *http.Client
}

// New creates an OpenAI-based structurer from a provider config.
func New(cfg *config.LLMProviderConfig) *Structurer {
	return newStructurer(cfg, apiURL)
}

// NewWithEndpoint creates a structurer pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Structurer {
	return newStructurer(cfg, endpoint)
}

func newStructurer(cfg *config.LLMProviderConfig, endpoint string) *Structurer {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
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

// Structure sends the extracted text to the Chat Completions API with the
// fixed extraction instruction and parses the response as a JSON object.
func (s *Structurer) Structure(ctx context.Context, text string) (json.RawMessage, error) {
	reqBody := map[string]interface{}{
		"model":       s.model,
		"temperature": s.temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": structurer.SystemPrompt},
			{"role": "user", "content": text},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling openai API: %v", domain.ErrModelInvocation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrModelInvocation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: openai API error (status %d): %s",
			domain.ErrModelInvocation, resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (json.RawMessage, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response envelope: %v", domain.ErrModelInvocation, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from API: no choices", domain.ErrModelInvocation)
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("%w: output truncated (finish_reason: length)", domain.ErrModelInvocation)
	}

	return structurer.ParseRecord(resp.Choices[0].Message.Content)
}
