package model

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/openai/openai-go"
)

type ProviderErrorKind int

const (
	ProviderErrorKindUnknown ProviderErrorKind = iota
	ProviderErrorKindInvalidRequest
	ProviderErrorKindAuthentication
	ProviderErrorKindRateLimitExceeded
	ProviderErrorKindOverloaded
	ProviderErrorKindTimeout
	ProviderErrorKindCanceled
	ProviderErrorKindInternal
)

// ProviderError classifies a failed model call so callers can decide
// between retrying and surfacing the failure.
type ProviderError struct {
	Kind       ProviderErrorKind
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case ProviderErrorKindInvalidRequest:
		return fmt.Sprintf("invalid request: %v", e.Err)
	case ProviderErrorKindAuthentication:
		return fmt.Sprintf("authentication failed: %v", e.Err)
	case ProviderErrorKindRateLimitExceeded:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("rate limit exceeded, retry after %s: %v", e.RetryAfter, e.Err)
		}
		return fmt.Sprintf("rate limit exceeded: %v", e.Err)
	case ProviderErrorKindOverloaded:
		return fmt.Sprintf("provider temporarily overloaded: %v", e.Err)
	case ProviderErrorKindTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	case ProviderErrorKindCanceled:
		return fmt.Sprintf("request canceled: %v", e.Err)
	case ProviderErrorKindInternal:
		return fmt.Sprintf("provider internal error: %v", e.Err)
	}

	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a fresh attempt could plausibly succeed.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case ProviderErrorKindRateLimitExceeded, ProviderErrorKindOverloaded,
		ProviderErrorKindTimeout, ProviderErrorKindInternal:
		return true
	}

	return false
}

func classifyError(err error) *ProviderError {
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: ProviderErrorKindCanceled, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Kind: ProviderErrorKindTimeout, Err: err}
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &ProviderError{Kind: ProviderErrorKindUnknown, Err: err}
	}

	switch apiErr.StatusCode {
	case 400, 404, 422:
		return &ProviderError{Kind: ProviderErrorKindInvalidRequest, Err: err}
	case 401, 403:
		return &ProviderError{Kind: ProviderErrorKindAuthentication, Err: err}
	case 408:
		return &ProviderError{Kind: ProviderErrorKindTimeout, Err: err}
	case 429:
		return &ProviderError{
			Kind:       ProviderErrorKindRateLimitExceeded,
			RetryAfter: retryAfterHint(apiErr),
			Err:        err,
		}
	case 503, 529:
		return &ProviderError{Kind: ProviderErrorKindOverloaded, Err: err}
	}

	if apiErr.StatusCode >= 500 {
		return &ProviderError{Kind: ProviderErrorKindInternal, Err: err}
	}

	return &ProviderError{Kind: ProviderErrorKindUnknown, Err: err}
}

func retryAfterHint(apiErr *openai.Error) time.Duration {
	if apiErr.Response == nil {
		return 0
	}

	seconds, err := strconv.Atoi(apiErr.Response.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
