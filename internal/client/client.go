// Package client implements the request pipeline behind the public
// chirp.Client interface: argument normalization, request building,
// authorization, dispatch, and response inflation, in that order, with a
// hook chain interleaved at the stage boundaries.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chirpd-io/chirp/internal/auth"
	"github.com/chirpd-io/chirp/internal/constants"
	internalhttp "github.com/chirpd-io/chirp/internal/http"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// Client runs logical calls through the pipeline. It implements
// chirp.Client.
type Client struct {
	config *chirp.Config

	api    Endpoints
	upload Endpoints

	builder   *RequestBuilder
	transport chirp.Transport

	strategy    auth.Strategy
	oauth1      *auth.OAuth1Strategy
	credentials *auth.CredentialStore
	appTokens   *auth.AppTokenStore

	hooks  *chirp.HookChain
	logger chirp.Logger
}

// New creates a pipeline client from the configuration. The consumer pair
// is required; endpoint fields default to the public API hosts.
func New(config *chirp.Config) (*Client, error) {
	if config == nil {
		return nil, chirp.ErrConfigRequired
	}

	if config.ConsumerKey == "" || config.ConsumerSecret == "" {
		return nil, chirp.ErrConsumerKeyRequired
	}

	api := Endpoints{
		Base:      endpointOrDefault(config.APIEndpoint, constants.DefaultAPIEndpoint),
		Version:   valueOrDefault(config.APIVersion, constants.DefaultAPIVersion),
		Extension: valueOrDefault(config.Extension, constants.DefaultExtension),
	}
	upload := Endpoints{
		Base:      endpointOrDefault(config.UploadEndpoint, constants.DefaultUploadEndpoint),
		Version:   api.Version,
		Extension: api.Extension,
	}

	credentials := auth.NewCredentialStore()
	if config.AccessToken != "" && config.AccessTokenSecret != "" {
		credentials.Set(config.AccessToken, config.AccessTokenSecret)
	}

	appTokens := auth.NewAppTokenStore()
	if config.BearerToken != "" {
		appTokens.Set(config.BearerToken)
	}

	oauth1 := auth.NewOAuth1Strategy(config.ConsumerKey, config.ConsumerSecret, api.Base, credentials)

	var strategy auth.Strategy = oauth1
	if config.AppAuth {
		strategy = auth.NewOAuth2Strategy(config.ConsumerKey, config.ConsumerSecret, appTokens)
	}

	client := &Client{
		config:      config,
		api:         api,
		upload:      upload,
		builder:     NewRequestBuilder(api),
		transport:   config.Transport,
		strategy:    strategy,
		oauth1:      oauth1,
		credentials: credentials,
		appTokens:   appTokens,
		hooks:       chirp.NewHookChain(config.Hooks...),
		logger:      config.Logger,
	}

	if client.transport == nil {
		client.transport = internalhttp.NewClient(transportOptions(config)...)
	}

	return client, nil
}

// transportOptions builds default transport options from config.
func transportOptions(config *chirp.Config) []internalhttp.Option {
	var opts []internalhttp.Option

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax != 0 {
		retryMax := config.RetryMax
		if retryMax < 0 {
			retryMax = 0
		}

		waitMin := constants.DefaultRetryWaitMin
		waitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			waitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			waitMax = config.RetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(retryMax, waitMin, waitMax))
	}

	if config.SkipTLSVerify {
		opts = append(opts, internalhttp.WithTLSSkipVerify(true))
	}

	return opts
}

func endpointOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return strings.TrimSuffix(value, "/")
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

// UseHook appends a hook to the pipeline's middleware chain.
func (c *Client) UseHook(h chirp.Hook) {
	c.hooks.Use(h)
}

// URLFor resolves a relative path against the API endpoint configuration.
func (c *Client) URLFor(path string) string {
	return c.api.URLFor(path)
}

// UploadURLFor resolves a relative path against the upload endpoint
// configuration.
func (c *Client) UploadURLFor(path string) string {
	return c.upload.URLFor(path)
}

// Request implements chirp.Requester.
func (c *Client) Request(ctx context.Context, method, path string, args chirp.Args) (any, *chirp.RequestContext, error) {
	return c.do(ctx, strings.ToUpper(method), path, args.Clone())
}

// Get issues a GET call.
func (c *Client) Get(ctx context.Context, path string, args chirp.Args) (any, *chirp.RequestContext, error) {
	return c.do(ctx, http.MethodGet, path, args.Clone())
}

// Post issues a POST call.
func (c *Client) Post(ctx context.Context, path string, args chirp.Args) (any, *chirp.RequestContext, error) {
	return c.do(ctx, http.MethodPost, path, args.Clone())
}

// Put issues a PUT call.
func (c *Client) Put(ctx context.Context, path string, args chirp.Args) (any, *chirp.RequestContext, error) {
	return c.do(ctx, http.MethodPut, path, args.Clone())
}

// Delete issues a DELETE call.
func (c *Client) Delete(ctx context.Context, path string, args chirp.Args) (any, *chirp.RequestContext, error) {
	return c.do(ctx, http.MethodDelete, path, args.Clone())
}

// Invoke resolves a positional call against a declared parameter list and
// runs it.
func (c *Client) Invoke(ctx context.Context, required []string, method, path string, args ...any) (any, *chirp.RequestContext, error) {
	bag, err := NormalizeArgs(required, args)
	if err != nil {
		return nil, nil, err
	}

	return c.do(ctx, strings.ToUpper(method), path, bag)
}

// do runs the pipeline stages in order for one call. The returned context
// always reflects how far the call progressed.
func (c *Client) do(ctx context.Context, method, path string, args chirp.Args) (any, *chirp.RequestContext, error) {
	rc := &chirp.RequestContext{
		ID:      uuid.NewString(),
		Method:  method,
		URL:     path,
		Args:    args,
		Options: chirp.Options{},
		Header:  c.seedHeaders(),
	}

	if err := c.hooks.RunBeforeBuild(ctx, rc); err != nil {
		return nil, rc, err
	}

	if err := c.builder.Build(ctx, rc); err != nil {
		return nil, rc, err
	}

	if err := c.authorize(ctx, rc); err != nil {
		return nil, rc, err
	}

	if err := c.hooks.RunAfterAuth(ctx, rc); err != nil {
		return nil, rc, err
	}

	resp, err := c.transport.Send(ctx, rc.HTTPRequest)
	if err != nil {
		return nil, rc, fmt.Errorf("dispatching request: %w", err)
	}

	if resp == nil {
		// Deferred transport: the caller finishes the call with Complete.
		return nil, rc, nil
	}

	rc.HTTPResponse = resp

	return c.inflate(ctx, rc)
}

// authorize picks the strategy for this call. Handshake calls always sign
// with OAuth 1.0a regardless of the configured strategy; everything else
// uses the client's configured one.
func (c *Client) authorize(ctx context.Context, rc *chirp.RequestContext) error {
	if rc.Options.HasOAuthArgs() {
		return c.oauth1.Authorize(ctx, rc)
	}

	return c.strategy.Authorize(ctx, rc)
}

// inflate decodes, runs the trailing hooks, and classifies.
func (c *Client) inflate(ctx context.Context, rc *chirp.RequestContext) (any, *chirp.RequestContext, error) {
	result, inflateErr := Inflate(rc)

	if hookErr := c.hooks.RunAfterInflate(ctx, rc); hookErr != nil && inflateErr == nil {
		return nil, rc, hookErr
	}

	if inflateErr != nil {
		return nil, rc, inflateErr
	}

	return result, rc, nil
}

// Complete finishes a deferred call with the response its transport
// eventually produced.
func (c *Client) Complete(ctx context.Context, rc *chirp.RequestContext, resp *chirp.Response) (any, error) {
	if rc == nil || rc.HTTPRequest == nil {
		return nil, chirp.ErrNotDeferred
	}

	if rc.HTTPResponse != nil {
		return nil, chirp.ErrNotDeferred
	}

	if resp == nil {
		return nil, chirp.ErrNoResponse
	}

	rc.HTTPResponse = resp

	result, _, err := c.inflate(ctx, rc)

	return result, err
}

// SetAccessCredentials stores the user token pair.
func (c *Client) SetAccessCredentials(token, secret string) {
	c.credentials.Set(token, secret)
}

// ClearAccessCredentials removes both halves of the user token pair.
func (c *Client) ClearAccessCredentials() {
	c.credentials.Clear()
}

// HasAccessCredentials reports whether a usable token pair is stored.
func (c *Client) HasAccessCredentials() bool {
	return c.credentials.Present()
}

// SetAppToken stores the application-only bearer token.
func (c *Client) SetAppToken(token string) {
	c.appTokens.Set(token)
}

// HasAppToken reports whether a bearer token is stored.
func (c *Client) HasAppToken() bool {
	return c.appTokens.Present()
}

// seedHeaders builds the initial header set for one call.
func (c *Client) seedHeaders() http.Header {
	header := http.Header{}
	header.Set("Accept", constants.MediaTypeJSON)

	if c.config.UserAgent != "" {
		header.Set("User-Agent", c.config.UserAgent)
	}

	for key, value := range c.config.DefaultHeaders {
		header.Set(key, value)
	}

	return header
}
