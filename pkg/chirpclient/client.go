// Package chirpclient provides the main entry point for creating chirp API clients
package chirpclient

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/chirpd-io/chirp/internal/client"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// New creates a new API client from the configuration. Endpoint values are
// normalized before validation: a trailing slash is trimmed and "https://"
// is assumed when no scheme is present.
func New(config *chirp.Config) (chirp.Client, error) {
	if config == nil {
		return nil, chirp.ErrConfigRequired
	}

	config.APIEndpoint = normalizeEndpoint(config.APIEndpoint)
	config.UploadEndpoint = normalizeEndpoint(config.UploadEndpoint)

	if err := getValidator().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	pipeline, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return pipeline, nil
}

// normalizeEndpoint trims a trailing slash and defaults the scheme.
func normalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return ""
	}

	endpoint = strings.TrimSuffix(endpoint, "/")

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithAccessToken creates a client signing requests with a user's OAuth
// 1.0a access token pair.
func NewWithAccessToken(consumerKey, consumerSecret, accessToken, accessTokenSecret string) (chirp.Client, error) {
	return New(&chirp.Config{
		ConsumerKey:       consumerKey,
		ConsumerSecret:    consumerSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
	})
}

// NewWithAppAuth creates an application-only client with no bearer token
// yet; obtain one with GetAppToken and store it with SetAppToken.
func NewWithAppAuth(consumerKey, consumerSecret string) (chirp.Client, error) {
	return New(&chirp.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		AppAuth:        true,
	})
}

// NewWithBearerToken creates an application-only client around an existing
// bearer token.
func NewWithBearerToken(consumerKey, consumerSecret, bearerToken string) (chirp.Client, error) {
	return New(&chirp.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		BearerToken:    bearerToken,
		AppAuth:        true,
	})
}
