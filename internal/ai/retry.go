package ai

import (
	"context"
	"errors"
	"time"
)

const maxRetries = 2

// retryBaseDelay is the first backoff step; tests shrink it.
var retryBaseDelay = time.Second

var errEmptyResponse = errors.New("empty completion response")

type rateLimitError struct{ err error }

func (e *rateLimitError) Error() string { return "rate limited: " + e.err.Error() }
func (e *rateLimitError) Unwrap() error { return e.err }

type authError struct{ err error }

func (e *authError) Error() string { return "authentication failed: " + e.err.Error() }
func (e *authError) Unwrap() error { return e.err }

// retryWithBackoff retries fn only while it reports a rate limit.
func retryWithBackoff(ctx context.Context, retries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var rl *rateLimitError
		if !errors.As(lastErr, &rl) {
			return lastErr
		}
		if attempt < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay << attempt):
			}
		}
	}
	return lastErr
}
