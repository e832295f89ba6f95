package structurer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicereader/internal/config"
	"invoicereader/internal/domain"
	openai "invoicereader/internal/structurer/openai"
)

func newOpenAITestStructurer(serverURL string) *openai.Structurer {
	cfg := &config.LLMProviderConfig{
		Provider:    "openai",
		APIKey:      "test-openai-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		TimeoutSecs: 30,
	}
	return openai.NewWithEndpoint(cfg, serverURL)
}

func openaiSuccessResponse(content, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finishReason,
			},
		},
	}
}

func TestOpenAIStructurer_Structure_Success(t *testing.T) {
	llmJSON := `{"invoice_number":"INV-001","vendor":"Acme Corp"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)

		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, 0.1, reqBody["temperature"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
		assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
		assert.Equal(t, "Invoice text here", messages[1].(map[string]interface{})["content"])

		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(llmJSON, "stop"))
	}))
	defer server.Close()

	s := newOpenAITestStructurer(server.URL)

	result, err := s.Structure(context.Background(), "Invoice text here")

	require.NoError(t, err)
	assert.JSONEq(t, llmJSON, string(result))
}

func TestOpenAIStructurer_Structure_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(`{"partial":`, "length"))
	}))
	defer server.Close()

	s := newOpenAITestStructurer(server.URL)

	_, err := s.Structure(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrModelInvocation)
}

func TestOpenAIStructurer_Structure_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse("not json at all", "stop"))
	}))
	defer server.Close()

	s := newOpenAITestStructurer(server.URL)

	_, err := s.Structure(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrMalformedModelResponse)
}

func TestOpenAIStructurer_Structure_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	s := newOpenAITestStructurer(server.URL)

	_, err := s.Structure(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrModelInvocation)
}

func TestOpenAIStructurer_Structure_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	s := newOpenAITestStructurer(server.URL)

	_, err := s.Structure(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrModelInvocation)
}
