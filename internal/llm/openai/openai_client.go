package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"medchron/internal/config"
	"medchron/internal/domain"
	"medchron/internal/llm"
	"medchron/internal/port"
)

const providerName = "openai"

// Client implements port.TextGenerator using the OpenAI chat completions API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates an OpenAI-backed generator from a provider config.
func NewClient(cfg *config.GenerationProviderConfig) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &Client{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

// Factory adapts NewClient to llm.ProviderFactory.
func Factory(cfg *config.GenerationProviderConfig) (port.TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: missing api key: %w", domain.ErrInvalidInput)
	}
	return NewClient(cfg), nil
}

func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   input.MaxOutputTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: input.Prompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion returned no choices: %w", domain.ErrEmptyResponse)
	}

	return &port.GenerateOutput{
		Text:       resp.Choices[0].Message.Content,
		ModelUsed:  resp.Model,
		StopReason: string(resp.Choices[0].FinishReason),
	}, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewGenerationError(providerName, llm.KindForStatus(apiErr.HTTPStatusCode, apiErr.Type), apiErr.HTTPStatusCode,
			fmt.Errorf("create openai chat completion: %w", err), 0)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewGenerationError(providerName, llm.KindForStatus(reqErr.HTTPStatusCode, ""), reqErr.HTTPStatusCode,
			fmt.Errorf("create openai chat completion: %w", err), 0)
	}
	return llm.NewGenerationError(providerName, domain.ErrorKindOther, 0, fmt.Errorf("create openai chat completion: %w", err), 0)
}
