package chirp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorContext(statusCode int, body any) *RequestContext {
	rc := &RequestContext{
		ID:     "test-request",
		Method: http.MethodGet,
		HTTPResponse: &Response{
			StatusCode: statusCode,
			Status:     http.StatusText(statusCode),
			Headers:    http.Header{},
		},
	}

	if body != nil {
		rc.SetResult(body)
	}

	return rc
}

func TestAPIError_ErrorText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     any
		expected string
	}{
		{
			name: "errors array envelope",
			body: map[string]any{
				"errors": []any{
					map[string]any{"code": float64(34), "message": "Sorry, that page does not exist"},
				},
			},
			expected: "Sorry, that page does not exist",
		},
		{
			name: "errors object envelope",
			body: map[string]any{
				"errors": map[string]any{"message": "Over capacity"},
			},
			expected: "Over capacity",
		},
		{
			name:     "bare error string",
			body:     map[string]any{"error": "Not authorized"},
			expected: "Not authorized",
		},
		{
			name:     "bare message string",
			body:     map[string]any{"message": "Over quota"},
			expected: "Over quota",
		},
		{
			name:     "status line fallback",
			body:     nil,
			expected: "Not Found",
		},
		{
			name:     "undecoded body falls back to the status line",
			body:     "raw text body",
			expected: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := NewAPIError(errorContext(http.StatusNotFound, tt.body))
			assert.Equal(t, tt.expected, apiErr.ErrorText())
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	t.Run("with code", func(t *testing.T) {
		t.Parallel()

		apiErr := NewAPIError(errorContext(http.StatusNotFound, map[string]any{
			"errors": []any{
				map[string]any{"code": float64(34), "message": "Sorry, that page does not exist"},
			},
		}))

		assert.Equal(t, "Sorry, that page does not exist (code: 34)", apiErr.Error())
		assert.Equal(t, 34, apiErr.ErrorCode())
	})

	t.Run("without code", func(t *testing.T) {
		t.Parallel()

		apiErr := NewAPIError(errorContext(http.StatusBadGateway, nil))
		assert.Equal(t, "Bad Gateway", apiErr.Error())
		assert.Equal(t, 0, apiErr.ErrorCode())
	})
}

func TestAPIError_Classification(t *testing.T) {
	t.Parallel()

	tokenEnvelope := func(code int) map[string]any {
		return map[string]any{
			"errors": []any{map[string]any{"code": float64(code), "message": "nope"}},
		}
	}

	t.Run("token error codes", func(t *testing.T) {
		t.Parallel()

		for _, code := range []int{32, 64, 88, 89, 99, 135, 136, 215, 226, 326} {
			apiErr := NewAPIError(errorContext(http.StatusUnauthorized, tokenEnvelope(code)))
			assert.True(t, apiErr.IsTokenError(), "code %d", code)
		}

		apiErr := NewAPIError(errorContext(http.StatusNotFound, tokenEnvelope(34)))
		assert.False(t, apiErr.IsTokenError())
	})

	t.Run("permanent versus temporary", func(t *testing.T) {
		t.Parallel()

		permanent := NewAPIError(errorContext(http.StatusNotFound, nil))
		assert.True(t, permanent.IsPermanentError())
		assert.False(t, permanent.IsTemporaryError())

		temporary := NewAPIError(errorContext(http.StatusServiceUnavailable, nil))
		assert.False(t, temporary.IsPermanentError())
		assert.True(t, temporary.IsTemporaryError())
	})

	t.Run("rate limited by status", func(t *testing.T) {
		t.Parallel()

		apiErr := NewAPIError(errorContext(http.StatusTooManyRequests, nil))
		assert.True(t, apiErr.IsRateLimited())
	})

	t.Run("rate limited by error code", func(t *testing.T) {
		t.Parallel()

		apiErr := NewAPIError(errorContext(http.StatusForbidden, tokenEnvelope(88)))
		assert.True(t, apiErr.IsRateLimited())
	})
}

func TestAPIError_RateLimit(t *testing.T) {
	t.Parallel()

	rc := errorContext(http.StatusTooManyRequests, nil)
	rc.HTTPResponse.Headers.Set("X-Rate-Limit-Limit", "15")
	rc.HTTPResponse.Headers.Set("X-Rate-Limit-Remaining", "0")
	rc.HTTPResponse.Headers.Set("X-Rate-Limit-Reset", "1704067200")

	apiErr := NewAPIError(rc)
	limit := apiErr.RateLimit()

	assert.Equal(t, 15, limit.Limit)
	assert.Equal(t, 0, limit.Remaining)
	assert.Equal(t, time.Unix(1704067200, 0), limit.Reset)
	assert.True(t, limit.Exhausted())
}

func TestAPIError_Accessors(t *testing.T) {
	t.Parallel()

	rc := errorContext(http.StatusNotFound, map[string]any{"error": "gone"})
	rc.HTTPRequest, _ = http.NewRequest(http.MethodGet, "https://api.twitter.com/1.1/users/show.json", nil)

	apiErr := NewAPIError(rc)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus())
	assert.Same(t, rc.HTTPRequest, apiErr.Request())
	assert.Same(t, rc.HTTPResponse, apiErr.Response())
	assert.NotNil(t, apiErr.Body())
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	tokenErr := NewAPIError(errorContext(http.StatusUnauthorized, map[string]any{
		"errors": []any{map[string]any{"code": float64(89), "message": "Invalid or expired token"}},
	}))
	serverErr := NewAPIError(errorContext(http.StatusServiceUnavailable, nil))
	limitErr := NewAPIError(errorContext(http.StatusTooManyRequests, nil))

	assert.True(t, IsTokenError(tokenErr))
	assert.True(t, IsTemporary(serverErr))
	assert.True(t, IsRateLimited(limitErr))

	// Wrapped errors still classify.
	wrapped := fmt.Errorf("calling users/show: %w", tokenErr)
	assert.True(t, IsTokenError(wrapped))

	// Non-API errors never classify.
	plain := errors.New("dial tcp: connection refused")
	require.Error(t, plain)
	assert.False(t, IsTokenError(plain))
	assert.False(t, IsTemporary(plain))
	assert.False(t, IsRateLimited(plain))
}
