package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/llm"
	"medchron/internal/llm/claude"
	"medchron/internal/port"
)

func newTestClient(serverURL string) *claude.Client {
	cfg := &config.GenerationProviderConfig{
		Provider:    "claude",
		APIKey:      "test-api-key",
		Model:       "claude-sonnet-4-5-20250929",
		TimeoutSecs: 30,
	}
	return claude.NewClientWithEndpoint(cfg, serverURL)
}

func TestClaudeClient_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-5-20250929", reqBody["model"])
		assert.Equal(t, float64(16000), reqBody["max_tokens"])
		assert.Equal(t, float64(0), reqBody["temperature"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "build the chronology", msg["content"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "03/15/2020 Seen in clinic."},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{
		Prompt:          "build the chronology",
		MaxOutputTokens: 16000,
	})

	require.NoError(t, err)
	assert.Equal(t, "03/15/2020 Seen in clinic.", out.Text)
	assert.Equal(t, "claude-sonnet-4-5-20250929", out.ModelUsed)
	assert.Equal(t, "end_turn", out.StopReason)
}

func TestClaudeClient_Generate_Overloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "p", MaxOutputTokens: 10})

	require.Error(t, err)
	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, domain.ErrorKindOverload, genErr.Kind)
	assert.Equal(t, 529, genErr.StatusCode)
}

func TestClaudeClient_Generate_RateLimitedWithRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "p", MaxOutputTokens: 10})

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, domain.ErrorKindRateLimit, genErr.Kind)
	assert.Equal(t, 12*time.Second, genErr.RetryAfter)
}

func TestClaudeClient_Generate_BadRequestIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"prompt is too long"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "p", MaxOutputTokens: 10})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorKindOther, llm.Classify(err))
	assert.Contains(t, err.Error(), "prompt is too long")
}

func TestClaudeClient_Generate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), port.GenerateInput{Prompt: "p", MaxOutputTokens: 10})

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	_, err := claude.Factory(&config.GenerationProviderConfig{Provider: "claude"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
