package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/llm"
	"medchron/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	providerName = "claude"
)

// Client implements port.TextGenerator using the Anthropic Messages API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a Claude-backed generator from a provider config.
func NewClient(cfg *config.GenerationProviderConfig) *Client {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return newClient(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.GenerationProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

// Factory adapts NewClient to llm.ProviderFactory.
func Factory(cfg *config.GenerationProviderConfig) (port.TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude: missing api key: %w", domain.ErrInvalidInput)
	}
	return NewClient(cfg), nil
}

func newClient(cfg *config.GenerationProviderConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	// Narrative responses run to many thousands of tokens; keep the timeout generous.
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	reqBody := apiRequest{
		Model:       c.model,
		MaxTokens:   input.MaxOutputTokens,
		Temperature: 0,
		Messages:    []message{{Role: "user", Content: input.Prompt}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, llm.NewGenerationError(providerName, domain.ErrorKindOther, 0,
			fmt.Errorf("calling anthropic API: %w", err), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody apiErrorBody
		_ = json.Unmarshal(respBody, &errBody)
		kind := llm.KindForStatus(resp.StatusCode, errBody.Error.Type)
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return nil, llm.NewGenerationError(providerName, kind, resp.StatusCode, baseErr, retryAfter)
	}

	return c.parseResponse(respBody)
}

func (c *Client) parseResponse(body []byte) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, domain.ErrEmptyResponse
	}

	return &port.GenerateOutput{
		Text:       resp.Content[0].Text,
		ModelUsed:  c.model,
		StopReason: resp.StopReason,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
