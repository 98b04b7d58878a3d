package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/llm"
	"medchron/internal/port"
)

const providerName = "gemini"

// Client implements port.TextGenerator using Google's Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed generator. BaseURL overrides the API
// endpoint (used by tests and proxies).
func NewClient(ctx context.Context, cfg *config.GenerationProviderConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing api key: %w", domain.ErrInvalidInput)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Factory adapts NewClient to llm.ProviderFactory.
func Factory(cfg *config.GenerationProviderConfig) (port.TextGenerator, error) {
	c, err := NewClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(input.Prompt),
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(input.MaxOutputTokens),
			Temperature:     genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return nil, classify(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, domain.ErrEmptyResponse
	}

	out := &port.GenerateOutput{Text: text, ModelUsed: c.model}
	if len(resp.Candidates) > 0 {
		out.StopReason = string(resp.Candidates[0].FinishReason)
	}
	return out, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewGenerationError(providerName, llm.KindForStatus(apiErr.Code, apiErr.Status), apiErr.Code,
			fmt.Errorf("gemini API error: %w", err), 0)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return llm.NewGenerationError(providerName, llm.KindForStatus(apiErrPtr.Code, apiErrPtr.Status), apiErrPtr.Code,
			fmt.Errorf("gemini API error: %w", err), 0)
	}
	return llm.NewGenerationError(providerName, domain.ErrorKindOther, 0, fmt.Errorf("calling gemini API: %w", err), 0)
}
