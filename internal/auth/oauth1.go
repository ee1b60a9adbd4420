package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chirpd-io/chirp/pkg/chirp"
	"github.com/gomodule/oauth1/oauth"
)

// OAuth1Strategy signs requests with OAuth 1.0a. Signature computation is
// delegated to the oauth collaborator; this strategy assembles the correct
// credential set for the call's mode.
//
// Two disjoint modes, selected by whether the call carries raw handshake
// parameters in its options:
//
//   - Handshake mode signs with the consumer credentials plus whatever
//     token the handshake parameters supply (none for the request-token
//     call, the temporary pair for the access-token exchange). The
//     remaining protocol parameters are moved into the form body, which
//     the signature covers.
//   - Protected-resource mode signs with a full access token pair,
//     resolved per-call option first, then the client-level store.
type OAuth1Strategy struct {
	client *oauth.Client
	store  *CredentialStore
}

// NewOAuth1Strategy creates a strategy for the consumer pair. endpoint is
// the API base used to derive the handshake URIs.
func NewOAuth1Strategy(consumerKey, consumerSecret, endpoint string, store *CredentialStore) *OAuth1Strategy {
	return &OAuth1Strategy{
		client: &oauth.Client{
			Credentials: oauth.Credentials{
				Token:  consumerKey,
				Secret: consumerSecret,
			},
			TemporaryCredentialRequestURI: endpoint + "/oauth/request_token",
			ResourceOwnerAuthorizationURI: endpoint + "/oauth/authorize",
			TokenRequestURI:               endpoint + "/oauth/access_token",
		},
		store: store,
	}
}

// Authorize implements Strategy.
func (s *OAuth1Strategy) Authorize(_ context.Context, rc *chirp.RequestContext) error {
	if rc.Options.ConsumerAuthHeader() {
		setConsumerBasicAuth(rc.HTTPRequest, s.client.Credentials.Token, s.client.Credentials.Secret)

		return nil
	}

	if rc.Options.HasOAuthArgs() {
		return s.authorizeHandshake(rc)
	}

	return s.authorizeProtected(rc)
}

// authorizeHandshake signs a token-acquisition call. Token credentials, if
// any, come from the handshake parameters themselves; no stored access
// token is involved.
func (s *OAuth1Strategy) authorizeHandshake(rc *chirp.RequestContext) error {
	oauthArgs := rc.Options.OAuthArgs()

	var credentials *oauth.Credentials
	if token, ok := oauthArgs["token"]; ok {
		credentials = &oauth.Credentials{
			Token:  token,
			Secret: oauthArgs["token_secret"],
		}
	}

	form, err := formBody(rc.HTTPRequest)
	if err != nil {
		return err
	}

	protocol := url.Values{}

	for key, value := range oauthArgs {
		if key == "token" || key == "token_secret" {
			continue
		}

		protocol.Set(key, value)
	}

	if len(protocol) > 0 {
		if form == nil {
			form = url.Values{}
		}

		for key, values := range protocol {
			for _, value := range values {
				form.Set(key, value)
			}
		}

		replaceFormBody(rc.HTTPRequest, form)
	}

	err = s.client.SetAuthorizationHeader(rc.HTTPRequest.Header, credentials, rc.Method, rc.HTTPRequest.URL, form)
	if err != nil {
		return fmt.Errorf("signing handshake request: %w", err)
	}

	return nil
}

// authorizeProtected signs a protected-resource call with the resolved
// access token pair.
func (s *OAuth1Strategy) authorizeProtected(rc *chirp.RequestContext) error {
	token := rc.Options.Token()
	secret := rc.Options.TokenSecret()

	if token == "" || secret == "" {
		storedToken, storedSecret, _ := s.store.Get()
		if token == "" {
			token = storedToken
		}

		if secret == "" {
			secret = storedSecret
		}
	}

	if token == "" || secret == "" {
		return fmt.Errorf("%w: request requires an access token and secret", chirp.ErrMissingCredential)
	}

	form, err := formBody(rc.HTTPRequest)
	if err != nil {
		return err
	}

	credentials := &oauth.Credentials{Token: token, Secret: secret}

	err = s.client.SetAuthorizationHeader(rc.HTTPRequest.Header, credentials, rc.Method, rc.HTTPRequest.URL, form)
	if err != nil {
		return fmt.Errorf("signing request: %w", err)
	}

	return nil
}

// AuthorizationURL builds the resource-owner authorization URL for a
// request token. Pure URL construction, no request.
func (s *OAuth1Strategy) AuthorizationURL(token string, extra url.Values) string {
	return s.client.AuthorizationURL(&oauth.Credentials{Token: token}, extra)
}

// AuthenticationURL builds the sign-in-with variant of the authorization
// URL.
func (s *OAuth1Strategy) AuthenticationURL(token string, extra url.Values) string {
	authorize := s.AuthorizationURL(token, extra)

	u, err := url.Parse(authorize)
	if err != nil {
		return authorize
	}

	u.Path = "/oauth/authenticate"

	return u.String()
}
