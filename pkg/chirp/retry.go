package chirp

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryConfig tunes the Retrier decorator.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the initial try.
	MaxRetries int
	// RetryDelay is the base delay between retries, doubled each attempt.
	RetryDelay time.Duration
	// MaxDelay caps the backoff delay between retries.
	MaxDelay time.Duration
	// Jitter randomizes each delay in [delay/2, delay) to avoid thundering
	// herds.
	Jitter bool
	// RetryRateLimited also resubmits rate-limited calls, sleeping until the
	// reported window reset when the response carries one.
	RetryRateLimited bool
}

// DefaultRetryConfig returns default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		MaxDelay:   30 * time.Second,
		Jitter:     true,
	}
}

// Retrier is a Requester decorator that resubmits calls classified as
// temporary by the error model. Caller-input failures and permanent API
// errors are surfaced immediately; the wrapped pipeline itself never
// retries.
type Retrier struct {
	next   Requester
	config *RetryConfig
}

// NewRetrier wraps next with retry policy.
func NewRetrier(next Requester, config *RetryConfig) *Retrier {
	if config == nil {
		config = DefaultRetryConfig()
	}

	return &Retrier{next: next, config: config}
}

// Request implements Requester.
func (r *Retrier) Request(ctx context.Context, method, path string, args Args) (any, *RequestContext, error) {
	var (
		result any
		rc     *RequestContext
		err    error
	)

	for attempt := 0; ; attempt++ {
		result, rc, err = r.next.Request(ctx, method, path, args)
		if err == nil || attempt >= r.config.MaxRetries {
			return result, rc, err
		}

		delay, retryable := r.classify(err, attempt)
		if !retryable {
			return result, rc, err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return result, rc, ctx.Err()
		}
	}
}

// classify decides whether err warrants another attempt and how long to
// wait before it.
func (r *Retrier) classify(err error, attempt int) (time.Duration, bool) {
	apiErr := &APIError{}
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	if apiErr.IsRateLimited() {
		if !r.config.RetryRateLimited {
			return 0, false
		}

		if wait := untilReset(apiErr.RateLimit()); wait > 0 {
			return wait, true
		}

		return r.backoff(attempt), true
	}

	if apiErr.IsTemporaryError() {
		return r.backoff(attempt), true
	}

	return 0, false
}

// backoff computes the exponential delay for attempt, with optional jitter.
func (r *Retrier) backoff(attempt int) time.Duration {
	delay := r.config.RetryDelay
	for range attempt {
		delay *= 2
		if delay >= r.config.MaxDelay {
			delay = r.config.MaxDelay

			break
		}
	}

	if r.config.Jitter && delay > 0 {
		half := delay / 2
		delay = half + time.Duration(rand.Int63n(int64(half)))
	}

	return delay
}

func untilReset(limit RateLimit) time.Duration {
	if limit.Reset.IsZero() {
		return 0
	}

	wait := time.Until(limit.Reset)
	if wait < 0 {
		return 0
	}

	return wait
}
