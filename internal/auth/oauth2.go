package auth

import (
	"context"
	"fmt"

	"github.com/chirpd-io/chirp/pkg/chirp"
)

// OAuth2Strategy attaches application-only bearer authorization. The
// bearer token resolves per-call option first, then the client-level app
// token store; no secret is involved. The token grant and invalidation
// calls themselves request HTTP Basic consumer auth instead via the
// consumer-auth-header option.
type OAuth2Strategy struct {
	consumerKey    string
	consumerSecret string
	store          *AppTokenStore
}

// NewOAuth2Strategy creates a strategy for the consumer pair.
func NewOAuth2Strategy(consumerKey, consumerSecret string, store *AppTokenStore) *OAuth2Strategy {
	return &OAuth2Strategy{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		store:          store,
	}
}

// Authorize implements Strategy.
func (s *OAuth2Strategy) Authorize(_ context.Context, rc *chirp.RequestContext) error {
	if rc.Options.ConsumerAuthHeader() {
		setConsumerBasicAuth(rc.HTTPRequest, s.consumerKey, s.consumerSecret)

		return nil
	}

	token := rc.Options.Token()
	if token == "" {
		token = s.store.Get()
	}

	if token == "" {
		return fmt.Errorf("%w: request requires a bearer token", chirp.ErrMissingCredential)
	}

	rc.HTTPRequest.Header.Set("Authorization", "Bearer "+token)

	return nil
}
