package chirp

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"
)

// OptionSigil prefixes argument keys that carry per-call options instead of
// wire parameters.
const OptionSigil = "-"

// IDSentinel marks a required parameter that accepts either a numeric user
// ID or a screen name; normalization names the captured value user_id or
// screen_name accordingly.
const IDSentinel = ":ID"

// Args is the named-argument bag for a logical call. Values may be strings,
// numbers, bools, string slices, or upload parts (File, []byte, io.Reader).
// Keys beginning with OptionSigil carry per-call options and are never
// transmitted.
type Args map[string]any

// Clone returns a shallow copy so the pipeline can consume entries without
// mutating the caller's bag.
func (a Args) Clone() Args {
	if a == nil {
		return Args{}
	}

	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}

	return out
}

// Sigil-stripped option keys as they appear in an Options map.
const (
	OptionKeyAccept             = "accept"
	OptionKeyToken              = "token"
	OptionKeyTokenSecret        = "token_secret"
	OptionKeyOAuthArgs          = "oauth_args"
	OptionKeyToJSON             = "to_json"
	OptionKeyMultipart          = "multipart_form_data"
	OptionKeyConsumerAuthHeader = "add_consumer_auth_header"
)

// Options holds per-call options extracted from sigil-prefixed argument
// keys, stored with the sigil stripped. Later pipeline stages consume them;
// they are never sent on the wire.
type Options map[string]any

// Accept returns the Accept header override, or "".
func (o Options) Accept() string { return o.stringValue(OptionKeyAccept) }

// Token returns the per-call token override, or "".
func (o Options) Token() string { return o.stringValue(OptionKeyToken) }

// TokenSecret returns the per-call token secret override, or "".
func (o Options) TokenSecret() string { return o.stringValue(OptionKeyTokenSecret) }

// OAuthArgs returns the raw protocol parameters for a handshake call, or
// nil. Presence of the key, even with an empty map, selects handshake
// authentication.
func (o Options) OAuthArgs() map[string]string {
	v, ok := o[OptionKeyOAuthArgs]
	if !ok {
		return nil
	}

	args, _ := v.(map[string]string)
	if args == nil {
		args = map[string]string{}
	}

	return args
}

// HasOAuthArgs reports whether the call carries raw handshake parameters.
func (o Options) HasOAuthArgs() bool {
	_, ok := o[OptionKeyOAuthArgs]

	return ok
}

// JSONPayload returns the value to JSON-encode as the request body and
// whether the option was supplied.
func (o Options) JSONPayload() (any, bool) {
	v, ok := o[OptionKeyToJSON]

	return v, ok
}

// Multipart reports whether multipart/form-data encoding was requested or
// inferred for this call.
func (o Options) Multipart() bool { return o.boolValue(OptionKeyMultipart) }

// ConsumerAuthHeader reports whether the call asked for HTTP Basic auth
// built from the consumer credentials instead of a signed or bearer header.
func (o Options) ConsumerAuthHeader() bool { return o.boolValue(OptionKeyConsumerAuthHeader) }

func (o Options) stringValue(key string) string {
	s, _ := o[key].(string)

	return s
}

func (o Options) boolValue(key string) bool {
	v, ok := o[key]
	if !ok {
		return false
	}

	b, ok := v.(bool)

	return !ok || b
}

// RequestContext is the mutable record threading through every pipeline
// stage for one logical call. It is owned exclusively by that call: never
// shared across calls, never reused. Stages run in strict order and each
// stage only reads fields already populated by its predecessors.
type RequestContext struct {
	// ID correlates log lines and hook invocations for one call.
	ID string

	// Method is the HTTP method of the logical call.
	Method string

	// URL starts as the caller's path template and ends as the absolute
	// request URL once the builder has run.
	URL string

	// Args is the call's named-argument bag, consumed in place: path
	// substitutions delete entries, body and query construction drains the
	// rest.
	Args Args

	// Options holds per-call options extracted from sigil-prefixed keys.
	Options Options

	// Header accumulates request headers, seeded from the client's default
	// header set and mutated by stages.
	Header http.Header

	// HTTPRequest is the built wire request, set once by the builder.
	HTTPRequest *http.Request

	// HTTPResponse is the wire response, set once by the dispatcher. It
	// stays nil when the transport defers execution.
	HTTPResponse *Response

	// Result is the decoded response body. HasResult distinguishes an
	// explicit empty or null result from one that was never set.
	Result    any
	HasResult bool
}

// SetResult records the decoded body.
func (rc *RequestContext) SetResult(v any) {
	rc.Result = v
	rc.HasResult = true
}

// RateLimit returns the rate limit state of the call's response, or the
// zero value when no response or headers are present.
func (rc *RequestContext) RateLimit() RateLimit {
	if rc.HTTPResponse == nil {
		return RateLimit{}
	}

	return rc.HTTPResponse.RateLimit()
}

// Response is the wire response captured from the transport: status, header
// mapping, and the fully read body.
type Response struct {
	StatusCode int         `json:"status_code" yaml:"status_code"`
	Status     string      `json:"status"      yaml:"status"`
	Headers    http.Header `json:"headers"     yaml:"headers"`
	Body       []byte      `json:"body"        yaml:"body"`
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// MediaType returns the response media type with parameters stripped, or ""
// when the Content-Type header is absent or malformed.
func (r *Response) MediaType() string {
	ct := r.Headers.Get("Content-Type")
	if ct == "" {
		return ""
	}

	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}

	return mt
}

// ContentLength returns the declared Content-Length, falling back to the
// read body size when the header is absent or malformed.
func (r *Response) ContentLength() int {
	if cl := r.Headers.Get("Content-Length"); cl != "" {
		n, err := strconv.Atoi(cl)
		if err == nil {
			return n
		}
	}

	return len(r.Body)
}

// RateLimit parses the X-Rate-Limit-* headers. Zero fields mean the header
// was absent.
func (r *Response) RateLimit() RateLimit {
	limit := RateLimit{}

	if v := r.Headers.Get("X-Rate-Limit-Limit"); v != "" {
		limit.Limit, _ = strconv.Atoi(v)
	}

	if v := r.Headers.Get("X-Rate-Limit-Remaining"); v != "" {
		limit.Remaining, _ = strconv.Atoi(v)
	}

	if v := r.Headers.Get("X-Rate-Limit-Reset"); v != "" {
		epoch, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			limit.Reset = time.Unix(epoch, 0)
		}
	}

	return limit
}

// RateLimit is the per-window request allowance reported by the API.
type RateLimit struct {
	Limit     int       `json:"limit"     yaml:"limit"`
	Remaining int       `json:"remaining" yaml:"remaining"`
	Reset     time.Time `json:"reset"     yaml:"reset"`
}

// Exhausted reports whether the window has no requests left.
func (l RateLimit) Exhausted() bool {
	return l.Limit > 0 && l.Remaining == 0
}

// File is an upload part for multipart requests. Exactly one of Content or
// Reader supplies the bytes; Name becomes the part's filename.
type File struct {
	Name        string
	ContentType string
	Content     []byte
	Reader      io.Reader
}

// TempCredentials is the token pair returned by the request-token handshake
// call.
type TempCredentials struct {
	Token             string `json:"oauth_token"              yaml:"oauth_token"`
	Secret            string `json:"oauth_token_secret"       yaml:"oauth_token_secret"`
	CallbackConfirmed bool   `json:"oauth_callback_confirmed" yaml:"oauth_callback_confirmed"`
}

// AccessToken is the token pair plus account identity returned by the
// access-token exchange.
type AccessToken struct {
	Token      string `json:"oauth_token"        yaml:"oauth_token"`
	Secret     string `json:"oauth_token_secret" yaml:"oauth_token_secret"`
	UserID     string `json:"user_id"            yaml:"user_id"`
	ScreenName string `json:"screen_name"        yaml:"screen_name"`
}

// AppToken is the bearer token returned by the application-only grant.
type AppToken struct {
	TokenType   string `json:"token_type"   yaml:"token_type"`
	AccessToken string `json:"access_token" yaml:"access_token"`
}
