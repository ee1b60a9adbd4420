package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirpd-io/chirp/pkg/chirp"
	"github.com/chirpd-io/chirp/pkg/chirpclient"
)

// TestWorkflow_PINAuthorization walks the complete PIN-based handshake: a
// consumer-only client obtains temporary credentials, the user authorizes
// out of band, and the verifier exchanges for a usable token pair.
func TestWorkflow_PINAuthorization(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)

	client, err := chirpclient.New(&chirp.Config{
		APIEndpoint:    api.URL(),
		ConsumerKey:    "integration-consumer-key",
		ConsumerSecret: "integration-consumer-secret",
		RetryMax:       -1,
	})
	require.NoError(t, err)
	assert.False(t, client.HasAccessCredentials())

	ctx := context.Background()

	temp, err := client.GetRequestToken(ctx, "oob")
	require.NoError(t, err)
	assert.Equal(t, "temp-token", temp.Token)
	assert.Equal(t, "temp-secret", temp.Secret)
	assert.True(t, temp.CallbackConfirmed)

	authorizeURL, err := client.AuthorizationURL(temp.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, api.URL()+"/oauth/authorize?oauth_token=temp-token", authorizeURL)

	token, err := client.GetAccessToken(ctx, temp.Token, temp.Secret, "1234567")
	require.NoError(t, err)
	assert.Equal(t, "final-token", token.Token)
	assert.Equal(t, "final-secret", token.Secret)
	assert.Equal(t, "semifor", token.ScreenName)
	assert.Equal(t, "8675429", token.UserID)

	// The exchange never mutates client state; adopt the pair explicitly.
	client.SetAccessCredentials(token.Token, token.Secret)
	assert.True(t, client.HasAccessCredentials())

	result, _, err := client.Get(ctx, "account/verify_credentials", nil)
	require.NoError(t, err)

	account, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "semifor", account["screen_name"])

	assert.Equal(t, 1, api.Hits("/oauth/request_token"))
	assert.Equal(t, 1, api.Hits("/oauth/access_token"))
	assert.Equal(t, 1, api.Hits("/1.1/account/verify_credentials.json"))
}

// TestWorkflow_ApplicationOnly exercises the bearer token lifecycle: grant,
// adopt, call, revoke.
func TestWorkflow_ApplicationOnly(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)

	client, err := chirpclient.New(&chirp.Config{
		APIEndpoint:    api.URL(),
		ConsumerKey:    "integration-consumer-key",
		ConsumerSecret: "integration-consumer-secret",
		AppAuth:        true,
		RetryMax:       -1,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Protected calls fail locally before a token exists.
	_, _, err = client.Get(ctx, "users/show", chirp.Args{"screen_name": "semifor"})
	require.ErrorIs(t, err, chirp.ErrMissingCredential)
	assert.Equal(t, 0, api.Hits("/1.1/users/show.json"))

	token, err := client.GetAppToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.False(t, client.HasAppToken())

	client.SetAppToken(token.AccessToken)
	assert.True(t, client.HasAppToken())

	result, _, err := client.Get(ctx, "users/show", chirp.Args{"screen_name": "semifor"})
	require.NoError(t, err)

	profile, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "semifor", profile["screen_name"])

	// Revoking the stored token also forgets it.
	require.NoError(t, client.InvalidateAppToken(ctx, token.AccessToken))
	assert.False(t, client.HasAppToken())
}

// TestWorkflow_StatusLifecycle posts a status, deletes it through a
// templated path, and verifies the delete is not repeatable.
func TestWorkflow_StatusLifecycle(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api)
	ctx := context.Background()

	result, _, err := client.Post(ctx, "statuses/update", chirp.Args{
		"status":    "integration hello",
		"trim_user": true,
	})
	require.NoError(t, err)

	tweet, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integration hello", tweet["text"])

	id, ok := tweet["id_str"].(string)
	require.True(t, ok)

	result, _, err = client.Post(ctx, "statuses/destroy/:id", chirp.Args{"id": id})
	require.NoError(t, err)

	destroyed, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, id, destroyed["id_str"])

	// A second delete finds nothing.
	_, _, err = client.Post(ctx, "statuses/destroy/:id", chirp.Args{"id": id})
	require.Error(t, err)

	var apiErr *chirp.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 144, apiErr.ErrorCode())
}

// TestWorkflow_FollowerPagination walks a cursored collection end to end.
func TestWorkflow_FollowerPagination(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api)

	pager := chirp.NewCursorPager(client, "followers/ids", "ids", chirp.Args{
		"screen_name": "semifor",
	})

	ids, err := pager.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 6)
	assert.False(t, pager.HasNext())
	assert.Equal(t, 3, api.Hits("/1.1/followers/ids.json"))
}

// TestWorkflow_CachedRequests verifies repeat GETs are served locally.
func TestWorkflow_CachedRequests(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api)

	cached := chirp.NewCachingRequester(client, chirp.NewMemoryCache(100), nil, time.Minute)
	ctx := context.Background()
	args := chirp.Args{"screen_name": "semifor"}

	first, _, err := cached.Request(ctx, "GET", "users/show", args)
	require.NoError(t, err)

	second, _, err := cached.Request(ctx, "GET", "users/show", args)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.Hits("/1.1/users/show.json"))

	stats := cached.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

// TestWorkflow_RetriedTransientFailures verifies the retrier rides out
// temporary server errors.
func TestWorkflow_RetriedTransientFailures(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api)

	api.FailNext("/1.1/users/show.json", 2)

	retrier := chirp.NewRetrier(client, &chirp.RetryConfig{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
	})

	result, _, err := retrier.Request(context.Background(), "GET", "users/show", chirp.Args{
		"screen_name": "semifor",
	})
	require.NoError(t, err)

	profile, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "semifor", profile["screen_name"])
	assert.Equal(t, 3, api.Hits("/1.1/users/show.json"))
}

// TestWorkflow_MediaUpload uploads a file to the media endpoint and
// attaches it to a status.
func TestWorkflow_MediaUpload(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api)
	ctx := context.Background()

	result, _, err := client.Post(ctx, client.UploadURLFor("media/upload"), chirp.Args{
		"media": &chirp.File{Name: "photo.jpg", ContentType: "image/jpeg", Content: []byte("jpeg-bytes")},
	})
	require.NoError(t, err)

	upload, ok := result.(map[string]any)
	require.True(t, ok)

	mediaID, ok := upload["media_id_string"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, mediaID)

	result, _, err = client.Post(ctx, "statuses/update", chirp.Args{
		"status":    "integration with media",
		"media_ids": []string{mediaID},
	})
	require.NoError(t, err)

	tweet, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, mediaID, tweet["media_ids"])
}
