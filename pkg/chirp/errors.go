package chirp

import (
	"errors"
	"fmt"
	"net/http"
)

// Common API error codes.
const (
	ErrorCodeCouldNotAuthenticate  = 32
	ErrorCodeAccountSuspended      = 64
	ErrorCodeRateLimitExceeded     = 88
	ErrorCodeInvalidOrExpiredToken = 89
	ErrorCodeUnableToVerify        = 99
	ErrorCodeTimestampOutOfBounds  = 135
	ErrorCodeBlocked               = 136
	ErrorCodeBadAuthenticationData = 215
	ErrorCodeAutomatedRequest      = 226
	ErrorCodeAccountLocked         = 326
)

// tokenErrorCodes are the API error codes that indicate an authentication or
// token problem rather than a resource problem.
var tokenErrorCodes = map[int]bool{
	ErrorCodeCouldNotAuthenticate:  true,
	ErrorCodeAccountSuspended:      true,
	ErrorCodeRateLimitExceeded:     true,
	ErrorCodeInvalidOrExpiredToken: true,
	ErrorCodeUnableToVerify:        true,
	ErrorCodeTimestampOutOfBounds:  true,
	ErrorCodeBlocked:               true,
	ErrorCodeBadAuthenticationData: true,
	ErrorCodeAutomatedRequest:      true,
	ErrorCodeAccountLocked:         true,
}

// Static errors for err113 compliance. Argument and credential failures are
// detected before any network I/O and are never retried.
var (
	ErrMissingArgument     = errors.New("missing required argument")
	ErrConflictingArgument = errors.New("argument supplied both positionally and by name")
	ErrMissingPathArgument = errors.New("missing path argument")
	ErrRequestBuild        = errors.New("request build failed")
	ErrMissingCredential   = errors.New("missing credential")
	ErrConfigRequired      = errors.New("config is required")
	ErrConsumerKeyRequired = errors.New("consumer key and secret are required")
	ErrHookRequired        = errors.New("hook is required")
	ErrNoMoreItems         = errors.New("no more items")
	ErrNotDeferred         = errors.New("request context already carries a response")
	ErrNoResponse          = errors.New("request context carries no response")
)

// APIError is the uniform outcome for a non-success response or a decode
// failure. It owns the completed RequestContext and therefore the wire
// request and response. Derived fields are computed once at construction.
type APIError struct {
	Context *RequestContext

	errorText string
	errorCode int
	body      any
}

// NewAPIError classifies a completed request context. The context must
// carry a response; an APIError is never constructed before one exists.
func NewAPIError(rc *RequestContext) *APIError {
	apiErr := &APIError{Context: rc}

	if rc.HasResult {
		apiErr.body = rc.Result
	}

	apiErr.errorCode = extractErrorCode(apiErr.body)

	text, ok := extractErrorText(apiErr.body)
	if !ok && rc.HTTPResponse != nil {
		text = rc.HTTPResponse.Status
	}

	apiErr.errorText = text

	return apiErr
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.errorCode != 0 {
		return fmt.Sprintf("%s (code: %d)", e.errorText, e.errorCode)
	}

	return e.errorText
}

// ErrorText is the human-readable message extracted from the error body,
// falling back to the response status line.
func (e *APIError) ErrorText() string { return e.errorText }

// ErrorCode is the numeric code from the first entry of an errors-array
// envelope, or 0.
func (e *APIError) ErrorCode() int { return e.errorCode }

// Body is the decoded error body, or nil when the body was absent or
// undecodable.
func (e *APIError) Body() any { return e.body }

// HTTPStatus is the response status code, or 0 when no response exists.
func (e *APIError) HTTPStatus() int {
	if e.Context == nil || e.Context.HTTPResponse == nil {
		return 0
	}

	return e.Context.HTTPResponse.StatusCode
}

// Request returns the wire request that produced this error.
func (e *APIError) Request() *http.Request {
	if e.Context == nil {
		return nil
	}

	return e.Context.HTTPRequest
}

// Response returns the wire response that produced this error.
func (e *APIError) Response() *Response {
	if e.Context == nil {
		return nil
	}

	return e.Context.HTTPResponse
}

// IsTokenError reports whether the error code indicates an authentication or
// token problem rather than a resource problem.
func (e *APIError) IsTokenError() bool { return tokenErrorCodes[e.errorCode] }

// IsPermanentError reports whether retrying is futile: any status below 500.
func (e *APIError) IsPermanentError() bool {
	return e.HTTPStatus() < http.StatusInternalServerError
}

// IsTemporaryError is the negation of IsPermanentError.
func (e *APIError) IsTemporaryError() bool { return !e.IsPermanentError() }

// IsRateLimited reports whether the call exhausted a rate limit window.
func (e *APIError) IsRateLimited() bool {
	return e.HTTPStatus() == http.StatusTooManyRequests ||
		e.errorCode == ErrorCodeRateLimitExceeded
}

// RateLimit returns the rate limit state of the failed response.
func (e *APIError) RateLimit() RateLimit {
	if e.Context == nil {
		return RateLimit{}
	}

	return e.Context.RateLimit()
}

// extractErrorText walks the decoded error body trying, in order: the first
// entry of an errors-array envelope, a single-error-object envelope, a bare
// "error" string, then a bare "message" string.
func extractErrorText(body any) (string, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return "", false
	}

	switch envelope := m["errors"].(type) {
	case []any:
		if len(envelope) > 0 {
			if entry, ok := envelope[0].(map[string]any); ok {
				if msg, ok := entry["message"].(string); ok {
					return msg, true
				}
			}
		}
	case map[string]any:
		if msg, ok := envelope["message"].(string); ok {
			return msg, true
		}
	}

	if msg, ok := m["error"].(string); ok {
		return msg, true
	}

	if msg, ok := m["message"].(string); ok {
		return msg, true
	}

	return "", false
}

// extractErrorCode returns the code of the first entry of an errors-array
// envelope, or 0.
func extractErrorCode(body any) int {
	m, ok := body.(map[string]any)
	if !ok {
		return 0
	}

	envelope, ok := m["errors"].([]any)
	if !ok || len(envelope) == 0 {
		return 0
	}

	entry, ok := envelope[0].(map[string]any)
	if !ok {
		return 0
	}

	code, ok := entry["code"].(float64)
	if !ok {
		return 0
	}

	return int(code)
}

// IsTokenError checks whether err is an *APIError classified as a token
// problem.
func IsTokenError(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr) && apiErr.IsTokenError()
}

// IsTemporary checks whether err is an *APIError worth resubmitting.
func IsTemporary(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr) && apiErr.IsTemporaryError()
}

// IsRateLimited checks whether err is an *APIError caused by rate limiting.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr) && apiErr.IsRateLimited()
}
