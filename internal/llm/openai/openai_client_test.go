package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/llm"
	"medchron/internal/llm/openai"
	"medchron/internal/port"
)

func newTestClient(serverURL string) *openai.Client {
	return openai.NewClient(&config.GenerationProviderConfig{
		Provider:    "openai",
		APIKey:      "test-api-key",
		Model:       "gpt-4o",
		BaseURL:     serverURL + "/v1",
		TimeoutSecs: 30,
	})
}

func TestOpenAIClient_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.Equal(t, float64(2048), reqBody["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-2024-08-06",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "04/01/2021 Follow-up visit."},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{
		Prompt:          "build the chronology",
		MaxOutputTokens: 2048,
	})

	require.NoError(t, err)
	assert.Equal(t, "04/01/2021 Follow-up visit.", out.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", out.ModelUsed)
	assert.Equal(t, "stop", out.StopReason)
}

func TestOpenAIClient_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "p", MaxOutputTokens: 10})

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, domain.ErrorKindRateLimit, genErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, genErr.StatusCode)
}

func TestOpenAIClient_Generate_UnauthorizedIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "p", MaxOutputTokens: 10})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorKindOther, llm.Classify(err))
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	_, err := openai.Factory(&config.GenerationProviderConfig{Provider: "openai"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
