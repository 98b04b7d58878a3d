package llm

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"medchron/internal/domain"
	"medchron/internal/port"
)

const (
	defaultMaxAttempts = 5
	defaultBackoffBase = 2 * time.Second
	maxJitter          = time.Second
)

// RetryConfig holds the retry policy for a RetryingClient.
type RetryConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
}

// RetryingClient issues prompts to a TextGenerator, retrying overload and
// rate-limit failures with exponential backoff plus jitter. Every other
// failure is returned on its first occurrence.
type RetryingClient struct {
	gen         port.TextGenerator
	maxAttempts int
	base        time.Duration

	// sleep and jitter are replaceable in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewRetryingClient wraps gen with the given retry policy.
func NewRetryingClient(gen port.TextGenerator, cfg RetryConfig) *RetryingClient {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := cfg.BackoffBase
	if base <= 0 {
		base = defaultBackoffBase
	}
	return &RetryingClient{
		gen:         gen,
		maxAttempts: attempts,
		base:        base,
		sleep:       sleepContext,
		jitter:      randomJitter,
	}
}

// WithClock replaces the wait and jitter functions. Intended for tests.
func (c *RetryingClient) WithClock(sleep func(ctx context.Context, d time.Duration) error, jitter func() time.Duration) *RetryingClient {
	if sleep != nil {
		c.sleep = sleep
	}
	if jitter != nil {
		c.jitter = jitter
	}
	return c
}

// MaxAttempts returns the configured attempt ceiling.
func (c *RetryingClient) MaxAttempts() int {
	return c.maxAttempts
}

// Call sends prompt to the generation service and returns the trimmed primary
// text payload.
func (c *RetryingClient) Call(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	input := port.GenerateInput{Prompt: prompt, MaxOutputTokens: maxOutputTokens}

	var (
		lastErr   error
		prevDelay time.Duration
	)
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		out, err := c.gen.Generate(ctx, input)
		if err == nil {
			text := strings.TrimSpace(out.Text)
			if text == "" {
				return "", fmt.Errorf("attempt %d: %w", attempt+1, domain.ErrEmptyResponse)
			}
			if Truncated(out.StopReason) {
				log.Printf("llm.RetryingClient: WARNING: response truncated at the output limit (stop reason %s, max %d tokens); the last entry may be incomplete",
					out.StopReason, maxOutputTokens)
			}
			return text, nil
		}

		lastErr = err
		kind := Classify(err)
		if !kind.Retryable() {
			return "", fmt.Errorf("generation failed (%s): %w", kind, err)
		}
		if attempt == c.maxAttempts-1 {
			break
		}

		// Jitter must not make a later wait shorter than an earlier one.
		delay := c.Backoff(attempt)
		if delay < prevDelay {
			delay = prevDelay
		}
		prevDelay = delay
		log.Printf("llm.RetryingClient: attempt %d/%d failed (%s), retrying in %s: %v",
			attempt+1, c.maxAttempts, kind, delay.Round(time.Millisecond), err)
		if err := c.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("waiting to retry: %w", err)
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// Truncated reports whether a provider stop reason means the output hit the
// token limit: Claude "max_tokens", Gemini "MAX_TOKENS", OpenAI "length".
func Truncated(stopReason string) bool {
	switch strings.ToLower(stopReason) {
	case "max_tokens", "length":
		return true
	}
	return false
}

// Backoff returns the wait before retrying after the given 0-based attempt:
// base * 2^attempt plus jitter below one second.
func (c *RetryingClient) Backoff(attempt int) time.Duration {
	j := c.jitter()
	if j < 0 {
		j = 0
	}
	if j >= maxJitter {
		j = maxJitter - time.Nanosecond
	}
	return c.base*time.Duration(1<<uint(attempt)) + j
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter)))
}
