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
	"invoicereader/internal/port"
)

// Embedder implements port.Embedder against an OpenAI-compatible
// /v1/embeddings endpoint. Model and dimension are fixed at construction;
// embeddings for already-stored documents are only comparable while both
// stay unchanged.
type Embedder struct {
	apiKey    string
	model     string
	dimension int
	endpoint  string
	client    *http.Client
}

// New creates an embedder from the embedding config.
func New(cfg *config.EmbeddingConfig) *Embedder {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = 384
	}
	return &Embedder{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		dimension: dim,
		endpoint:  cfg.Endpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

var _ port.Embedder = (*Embedder)(nil)

// Dimension returns the configured vector dimensionality.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed computes the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	reqBody := map[string]interface{}{
		"model":      e.model,
		"input":      text,
		"dimensions": e.dimension,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling embeddings API: %v", domain.ErrModelInvocation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrModelInvocation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: embeddings API error (status %d): %s",
			domain.ErrModelInvocation, resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody, e.dimension)
}

// apiResponse models the OpenAI embeddings API response.
type apiResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func parseResponse(body []byte, wantDim int) (domain.EmbeddingVector, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response: %v", domain.ErrModelInvocation, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", domain.ErrModelInvocation)
	}
	vec := resp.Data[0].Embedding
	if len(vec) != wantDim {
		return nil, fmt.Errorf("%w: embedding dimension mismatch: got %d, want %d",
			domain.ErrModelInvocation, len(vec), wantDim)
	}
	return domain.EmbeddingVector(vec), nil
}
