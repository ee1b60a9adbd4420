package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// Static errors for err113 compliance.
var (
	ErrMalformedTokenReply = errors.New("malformed token endpoint reply")
)

// GetRequestToken begins the three-legged handshake: a consumer-signed call
// that yields the temporary credential pair. An empty callbackURL selects
// PIN-based (out-of-band) authorization.
func (c *Client) GetRequestToken(ctx context.Context, callbackURL string) (*chirp.TempCredentials, error) {
	if callbackURL == "" {
		callbackURL = constants.OOBCallback
	}

	args := chirp.Args{
		constants.OptionOAuthArgs: map[string]string{"oauth_callback": callbackURL},
		constants.OptionAccept:    constants.MediaTypeForm,
	}

	result, _, err := c.do(ctx, http.MethodPost, c.api.Base+constants.PathRequestToken, args)
	if err != nil {
		return nil, fmt.Errorf("getting request token: %w", err)
	}

	form, err := formResult(result)
	if err != nil {
		return nil, err
	}

	creds := &chirp.TempCredentials{
		Token:             form.Get("oauth_token"),
		Secret:            form.Get("oauth_token_secret"),
		CallbackConfirmed: form.Get("oauth_callback_confirmed") == "true",
	}

	if creds.Token == "" || creds.Secret == "" {
		return nil, fmt.Errorf("%w: missing oauth_token or oauth_token_secret", ErrMalformedTokenReply)
	}

	return creds, nil
}

// AuthorizationURL builds the URL the resource owner visits to approve a
// request token. No request is made.
func (c *Client) AuthorizationURL(token string, extra url.Values) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: request token", chirp.ErrMissingArgument)
	}

	return c.oauth1.AuthorizationURL(token, extra), nil
}

// AuthenticationURL builds the sign-in-with variant of AuthorizationURL.
func (c *Client) AuthenticationURL(token string, extra url.Values) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: request token", chirp.ErrMissingArgument)
	}

	return c.oauth1.AuthenticationURL(token, extra), nil
}

// GetAccessToken exchanges an authorized request token for the user's
// access token pair. verifier is the PIN or oauth_verifier callback value.
func (c *Client) GetAccessToken(ctx context.Context, token, secret, verifier string) (*chirp.AccessToken, error) {
	args := chirp.Args{
		constants.OptionOAuthArgs: map[string]string{
			"token":          token,
			"token_secret":   secret,
			"oauth_verifier": verifier,
		},
		constants.OptionAccept: constants.MediaTypeForm,
	}

	result, _, err := c.do(ctx, http.MethodPost, c.api.Base+constants.PathAccessToken, args)
	if err != nil {
		return nil, fmt.Errorf("getting access token: %w", err)
	}

	return accessTokenResult(result)
}

// XAuthAccessToken exchanges a username and password directly for an access
// token pair. The consumer key must be xAuth-enabled by the provider.
func (c *Client) XAuthAccessToken(ctx context.Context, username, password string) (*chirp.AccessToken, error) {
	args := chirp.Args{
		constants.OptionOAuthArgs: map[string]string{
			"x_auth_mode":     "client_auth",
			"x_auth_username": username,
			"x_auth_password": password,
		},
		constants.OptionAccept: constants.MediaTypeForm,
	}

	result, _, err := c.do(ctx, http.MethodPost, c.api.Base+constants.PathAccessToken, args)
	if err != nil {
		return nil, fmt.Errorf("exchanging xauth credentials: %w", err)
	}

	return accessTokenResult(result)
}

// GetAppToken performs the application-only client-credentials grant. The
// returned bearer token is not stored automatically; pass it to SetAppToken
// to use it for subsequent calls.
func (c *Client) GetAppToken(ctx context.Context) (*chirp.AppToken, error) {
	args := chirp.Args{
		"grant_type":                       "client_credentials",
		constants.OptionConsumerAuthHeader: true,
	}

	result, _, err := c.do(ctx, http.MethodPost, c.api.Base+constants.PathAppToken, args)
	if err != nil {
		return nil, fmt.Errorf("getting app token: %w", err)
	}

	body, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a json object", ErrMalformedTokenReply)
	}

	token := &chirp.AppToken{}
	token.TokenType, _ = body["token_type"].(string)
	token.AccessToken, _ = body["access_token"].(string)

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrMalformedTokenReply)
	}

	return token, nil
}

// InvalidateAppToken revokes an application-only bearer token. An empty
// token revokes the stored one; revoking the stored token also clears it.
func (c *Client) InvalidateAppToken(ctx context.Context, token string) error {
	stored := c.appTokens.Get()
	if token == "" {
		token = stored
	}

	if token == "" {
		return fmt.Errorf("%w: no bearer token to invalidate", chirp.ErrMissingCredential)
	}

	args := chirp.Args{
		"access_token":                     token,
		constants.OptionConsumerAuthHeader: true,
	}

	_, _, err := c.do(ctx, http.MethodPost, c.api.Base+constants.PathInvalidateAppToken, args)
	if err != nil {
		return fmt.Errorf("invalidating app token: %w", err)
	}

	if token == stored {
		c.appTokens.Clear()
	}

	return nil
}

// formResult coerces an inflated handshake result into form values.
func formResult(result any) (url.Values, error) {
	switch v := result.(type) {
	case url.Values:
		return v, nil
	case string:
		form, err := url.ParseQuery(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTokenReply, err)
		}

		return form, nil
	default:
		return nil, fmt.Errorf("%w: expected form-encoded body", ErrMalformedTokenReply)
	}
}

func accessTokenResult(result any) (*chirp.AccessToken, error) {
	form, err := formResult(result)
	if err != nil {
		return nil, err
	}

	token := &chirp.AccessToken{
		Token:      form.Get("oauth_token"),
		Secret:     form.Get("oauth_token_secret"),
		UserID:     form.Get("user_id"),
		ScreenName: form.Get("screen_name"),
	}

	if token.Token == "" || token.Secret == "" {
		return nil, fmt.Errorf("%w: missing oauth_token or oauth_token_secret", ErrMalformedTokenReply)
	}

	return token, nil
}
