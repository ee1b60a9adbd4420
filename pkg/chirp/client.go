package chirp

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Requester is the minimal surface a logical call needs: decorators such as
// Retrier and CachingRequester wrap it.
type Requester interface {
	// Request runs one logical call through the pipeline and returns the
	// decoded result together with the completed context. A nil result with
	// a nil error and a context without a response means the transport
	// deferred execution; finish the call with Complete.
	Request(ctx context.Context, method, path string, args Args) (any, *RequestContext, error)
}

// VerbRequester adds per-verb convenience wrappers around Request.
type VerbRequester interface {
	Requester

	Get(ctx context.Context, path string, args Args) (any, *RequestContext, error)
	Post(ctx context.Context, path string, args Args) (any, *RequestContext, error)
	Put(ctx context.Context, path string, args Args) (any, *RequestContext, error)
	Delete(ctx context.Context, path string, args Args) (any, *RequestContext, error)

	// Invoke is the positional-argument entry used by callers that declare
	// endpoint signatures: required names are satisfied left-to-right from
	// the positional values, with an optional trailing Args bag.
	Invoke(ctx context.Context, required []string, method, path string, args ...any) (any, *RequestContext, error)

	// Complete finishes a call whose transport deferred execution: it
	// records the supplied response on the context and runs inflation.
	Complete(ctx context.Context, rc *RequestContext, resp *Response) (any, error)
}

// OAuthFlows covers the fixed token-acquisition endpoints. The authorize
// and authenticate URL builders are pure; everything else runs through the
// pipeline.
type OAuthFlows interface {
	GetRequestToken(ctx context.Context, callbackURL string) (*TempCredentials, error)
	AuthorizationURL(token string, extra url.Values) (string, error)
	AuthenticationURL(token string, extra url.Values) (string, error)
	GetAccessToken(ctx context.Context, token, secret, verifier string) (*AccessToken, error)
	XAuthAccessToken(ctx context.Context, username, password string) (*AccessToken, error)
	GetAppToken(ctx context.Context) (*AppToken, error)
	InvalidateAppToken(ctx context.Context, token string) error
}

// CredentialManager mutates the client-level token state. The access token
// and its secret form an atomic pair: clearing one clears both.
type CredentialManager interface {
	SetAccessCredentials(token, secret string)
	ClearAccessCredentials()
	HasAccessCredentials() bool
	SetAppToken(token string)
	HasAppToken() bool
}

// Client is the full client surface.
type Client interface {
	VerbRequester
	OAuthFlows
	CredentialManager

	// UseHook appends a hook to the pipeline's ordered middleware chain.
	UseHook(h Hook)

	// URLFor joins the configured API endpoint, version segment, and
	// extension around path, mirroring what the builder does for relative
	// paths.
	URLFor(path string) string

	// UploadURLFor is URLFor against the configured upload endpoint.
	UploadURLFor(path string) string
}

// Transport is the swappable boundary that executes wire requests. A nil
// response with a nil error means the transport deferred execution and the
// pipeline must halt after dispatch.
type Transport interface {
	Send(ctx context.Context, req *http.Request) (*Response, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a chirp.Client.
//
// # Authentication
//
// ConsumerKey and ConsumerSecret are required and immutable for the client's
// lifetime. The remaining credential fields select the strategy applied by
// the concrete client implementation (see pkg/chirpclient and
// internal/client):
//  1. AccessToken + AccessTokenSecret: OAuth 1.0a signed requests on behalf
//     of a user. The pair is mutable at runtime via SetAccessCredentials and
//     clearable as a unit.
//  2. AppAuth with BearerToken: OAuth2 application-only requests. When
//     BearerToken is empty, obtain one with GetAppToken.
//  3. Neither: only handshake calls (request token, access token, app token)
//     can succeed; protected-resource calls fail with ErrMissingCredential.
//
// Per-call "-token"/"-token_secret" options override the stored pair for a
// single request.
//
// # Timeouts, retries, and TLS
//
// Per-request deadlines should generally be controlled via the context
// passed to client methods; HTTPTimeout bounds the transport as a whole.
// Retry behavior of the default transport is tuned via RetryMax,
// RetryWaitMin, and RetryWaitMax and only resubmits connection errors and
// 5xx/429 responses. SkipTLSVerify is honored exactly as configured; it is
// intended for local development against self-signed endpoints and nothing
// else.
type Config struct {
	// APIEndpoint: base URL for the REST API. Constructors normalize this
	// value by trimming a trailing slash and adding "https://" if no scheme
	// is present.
	APIEndpoint string `validate:"omitempty,url"`
	// UploadEndpoint: base URL for the media upload host, normalized the
	// same way.
	UploadEndpoint string `validate:"omitempty,url"`
	// APIVersion: version segment inserted between endpoint and path for
	// relative paths ("1.1" unless overridden).
	APIVersion string
	// Extension: representation suffix appended to relative paths (".json"
	// unless overridden; set to "-" to suppress).
	Extension string

	// ConsumerKey identifies the application.
	ConsumerKey string `validate:"required"`
	// ConsumerSecret signs on behalf of the application.
	ConsumerSecret string `validate:"required"`
	// AccessToken: user token for OAuth 1.0a signed requests.
	AccessToken string
	// AccessTokenSecret: secret paired with AccessToken. Must be supplied
	// together with it.
	AccessTokenSecret string
	// BearerToken: application-only bearer token used when AppAuth is set.
	BearerToken string
	// AppAuth selects OAuth2 application-only authentication instead of
	// OAuth 1.0a.
	AppAuth bool

	// HTTPTimeout: overall transport timeout. Most calls should rely on
	// context deadlines; this bounds the worst case.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport retries for transient failures.
	// Negative disables retries; 0 selects the default.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool
	// Logger: optional structured logger used by the transport and helpers.
	Logger Logger
	// SkipTLSVerify: disables TLS certificate verification in the default
	// transport. Local development only.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// DefaultHeaders: header set seeded into every request context before
	// the pipeline runs.
	DefaultHeaders map[string]string

	// Transport: injected wire executor. When nil, constructors build the
	// default retrying transport.
	Transport Transport
	// Hooks: initial ordered middleware chain; UseHook appends more.
	Hooks []Hook
}
