package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medchron/internal/domain"
)

// GenerationError is a provider failure carrying its classified kind.
type GenerationError struct {
	Provider   string
	Kind       domain.ErrorKind
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *GenerationError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s %s (status %d, retry after %s): %v", e.Provider, e.Kind, e.StatusCode, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a GenerationError. Rate-limit errors with no
// Retry-After hint default to 60s, which only drives fallback circuits.
func NewGenerationError(provider string, kind domain.ErrorKind, status int, err error, retryAfterSecs int) *GenerationError {
	if kind == domain.ErrorKindRateLimit && retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	if retryAfterSecs < 0 {
		retryAfterSecs = 0
	}
	return &GenerationError{
		Provider:   provider,
		Kind:       kind,
		StatusCode: status,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Err:        err,
	}
}

// KindForStatus maps an HTTP status and an optional provider error type to an error kind.
func KindForStatus(status int, errType string) domain.ErrorKind {
	switch strings.ToLower(errType) {
	case "overloaded_error", "overloaded", "unavailable":
		return domain.ErrorKindOverload
	case "rate_limit_error", "rate_limit_exceeded", "resource_exhausted":
		return domain.ErrorKindRateLimit
	}
	switch status {
	case http.StatusTooManyRequests:
		return domain.ErrorKindRateLimit
	case 529, http.StatusServiceUnavailable:
		return domain.ErrorKindOverload
	}
	return domain.ErrorKindOther
}

// Classify returns the error kind of err. A *GenerationError anywhere in the
// chain is authoritative; otherwise the message is inspected as a fallback.
func Classify(err error) domain.ErrorKind {
	if err == nil {
		return ""
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "529"):
		return domain.ErrorKindOverload
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429"):
		return domain.ErrorKindRateLimit
	}
	return domain.ErrorKindOther
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
