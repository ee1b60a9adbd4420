package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chirpd-io/chirp/pkg/chirp"
)

// fakeTransport satisfies chirp.Transport with a test-provided function.
type fakeTransport struct {
	calls int
	send  func(ctx context.Context, req *http.Request) (*chirp.Response, error)
}

func (f *fakeTransport) Send(ctx context.Context, req *http.Request) (*chirp.Response, error) {
	f.calls++

	return f.send(ctx, req)
}

func jsonResponse(statusCode int, body string) *chirp.Response {
	return &chirp.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func newUserClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	client, err := New(&chirp.Config{
		ConsumerKey:       "consumer-key",
		ConsumerSecret:    "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-secret",
		APIEndpoint:       endpoint,
		RetryMax:          -1,
	})
	require.NoError(t, err)

	return client
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("config is required", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil)
		require.ErrorIs(t, err, chirp.ErrConfigRequired)
	})

	t.Run("consumer pair is required", func(t *testing.T) {
		t.Parallel()

		_, err := New(&chirp.Config{ConsumerKey: "key-only"})
		require.ErrorIs(t, err, chirp.ErrConsumerKeyRequired)
	})

	t.Run("endpoint defaults", func(t *testing.T) {
		t.Parallel()

		client, err := New(&chirp.Config{ConsumerKey: "k", ConsumerSecret: "s"})
		require.NoError(t, err)
		assert.Equal(t, "https://api.twitter.com/1.1/statuses/home_timeline.json",
			client.URLFor("statuses/home_timeline"))
		assert.Equal(t, "https://upload.twitter.com/1.1/media/upload.json",
			client.UploadURLFor("media/upload"))
	})

	t.Run("trailing endpoint slash is trimmed", func(t *testing.T) {
		t.Parallel()

		client, err := New(&chirp.Config{
			ConsumerKey:    "k",
			ConsumerSecret: "s",
			APIEndpoint:    "https://api.example.com/",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/1.1/users/show.json", client.URLFor("users/show"))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientRequests(t *testing.T) {
	t.Parallel()

	t.Run("signed GET round trip", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/1.1/users/show.json", r.URL.Path)
			assert.Equal(t, "semifor", r.URL.Query().Get("screen_name"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			auth := r.Header.Get("Authorization")
			assert.True(t, strings.HasPrefix(auth, "OAuth "))
			assert.Contains(t, auth, `oauth_token="access-token"`)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": 8675429, "screen_name": "semifor"}`))
		}))
		defer server.Close()

		result, rc, err := newUserClient(t, server.URL).Get(
			context.Background(), "users/show", chirp.Args{"screen_name": "semifor"})
		require.NoError(t, err)

		user, ok := result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "semifor", user["screen_name"])

		require.NotNil(t, rc)
		assert.NotEmpty(t, rc.ID)
		assert.NotNil(t, rc.HTTPRequest)
		assert.NotNil(t, rc.HTTPResponse)
		assert.True(t, rc.HasResult)
	})

	t.Run("POST form body round trip", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "hello world", r.PostForm.Get("status"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": 1, "text": "hello world"}`))
		}))
		defer server.Close()

		result, _, err := newUserClient(t, server.URL).Post(
			context.Background(), "statuses/update", chirp.Args{"status": "hello world"})
		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("app auth sends a bearer token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer AAAA-app-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client, err := New(&chirp.Config{
			ConsumerKey:    "consumer-key",
			ConsumerSecret: "consumer-secret",
			BearerToken:    "AAAA-app-token",
			AppAuth:        true,
			APIEndpoint:    server.URL,
			RetryMax:       -1,
		})
		require.NoError(t, err)

		_, _, err = client.Get(context.Background(), "search/tweets", chirp.Args{"q": "golang"})
		require.NoError(t, err)
	})

	t.Run("method names are case-insensitive", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, _, err := newUserClient(t, server.URL).Request(
			context.Background(), "get", "account/verify_credentials", nil)
		require.NoError(t, err)
	})

	t.Run("default headers and user agent are seeded", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "chirp-tests/1.0", r.Header.Get("User-Agent"))
			assert.Equal(t, "custom-value", r.Header.Get("X-Custom-Header"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client, err := New(&chirp.Config{
			ConsumerKey:       "consumer-key",
			ConsumerSecret:    "consumer-secret",
			AccessToken:       "access-token",
			AccessTokenSecret: "access-secret",
			APIEndpoint:       server.URL,
			UserAgent:         "chirp-tests/1.0",
			DefaultHeaders:    map[string]string{"X-Custom-Header": "custom-value"},
			RetryMax:          -1,
		})
		require.NoError(t, err)

		_, _, err = client.Get(context.Background(), "account/settings", chirp.Args{})
		require.NoError(t, err)
	})

	t.Run("error responses become api errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors": [{"code": 34, "message": "Sorry, that page does not exist"}]}`))
		}))
		defer server.Close()

		result, rc, err := newUserClient(t, server.URL).Get(
			context.Background(), "users/show", chirp.Args{"screen_name": "nonesuch"})
		require.Error(t, err)
		assert.Nil(t, result)
		require.NotNil(t, rc)

		var apiErr *chirp.APIError

		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 34, apiErr.ErrorCode())
		assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus())
	})
}

func TestInvoke(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		query := r.URL.Query()

		switch {
		case query.Get("screen_name") != "":
			_, _ = w.Write([]byte(`{"screen_name": "` + query.Get("screen_name") + `"}`))
		case query.Get("user_id") != "":
			_, _ = w.Write([]byte(`{"id": ` + query.Get("user_id") + `}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "no identifier"}`))
		}
	}))
	t.Cleanup(server.Close)

	client := newUserClient(t, server.URL)

	t.Run("screen name identifier", func(t *testing.T) {
		t.Parallel()

		result, _, err := client.Invoke(context.Background(),
			[]string{":ID"}, http.MethodGet, "users/show", "semifor")
		require.NoError(t, err)

		user, ok := result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "semifor", user["screen_name"])
	})

	t.Run("numeric identifier", func(t *testing.T) {
		t.Parallel()

		result, _, err := client.Invoke(context.Background(),
			[]string{":ID"}, http.MethodGet, "users/show", 8675429)
		require.NoError(t, err)

		user, ok := result.(map[string]any)
		require.True(t, ok)
		assert.InEpsilon(t, float64(8675429), user["id"], 0.01)
	})

	t.Run("missing argument fails before dispatch", func(t *testing.T) {
		t.Parallel()

		_, _, err := client.Invoke(context.Background(),
			[]string{"slug", "owner_screen_name"}, http.MethodGet, "lists/show", "golang")
		require.Error(t, err)
		assert.ErrorIs(t, err, chirp.ErrMissingArgument)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDeferredCompletion(t *testing.T) {
	t.Parallel()

	newDeferredClient := func(t *testing.T) (*Client, *fakeTransport) {
		t.Helper()

		transport := &fakeTransport{
			send: func(_ context.Context, _ *http.Request) (*chirp.Response, error) {
				return nil, nil //nolint:nilnil // A nil response defers inflation to Complete.
			},
		}

		client, err := New(&chirp.Config{
			ConsumerKey:       "consumer-key",
			ConsumerSecret:    "consumer-secret",
			AccessToken:       "access-token",
			AccessTokenSecret: "access-secret",
			Transport:         transport,
		})
		require.NoError(t, err)

		return client, transport
	}

	t.Run("deferred call completes later", func(t *testing.T) {
		t.Parallel()

		client, transport := newDeferredClient(t)

		result, rc, err := client.Get(context.Background(), "users/show", chirp.Args{"user_id": 123})
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, 1, transport.calls)

		require.NotNil(t, rc)
		require.NotNil(t, rc.HTTPRequest)
		assert.Nil(t, rc.HTTPResponse)

		completed, err := client.Complete(context.Background(), rc,
			jsonResponse(http.StatusOK, `{"id": 123}`))
		require.NoError(t, err)

		user, ok := completed.(map[string]any)
		require.True(t, ok)
		assert.InEpsilon(t, float64(123), user["id"], 0.01)
	})

	t.Run("completing twice", func(t *testing.T) {
		t.Parallel()

		client, _ := newDeferredClient(t)

		_, rc, err := client.Get(context.Background(), "users/show", chirp.Args{"user_id": 123})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), rc, jsonResponse(http.StatusOK, `{}`))
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), rc, jsonResponse(http.StatusOK, `{}`))
		require.ErrorIs(t, err, chirp.ErrNotDeferred)
	})

	t.Run("completing without a response", func(t *testing.T) {
		t.Parallel()

		client, _ := newDeferredClient(t)

		_, rc, err := client.Get(context.Background(), "users/show", chirp.Args{"user_id": 123})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), rc, nil)
		require.ErrorIs(t, err, chirp.ErrNoResponse)
	})

	t.Run("completing an unbuilt context", func(t *testing.T) {
		t.Parallel()

		client, _ := newDeferredClient(t)

		_, err := client.Complete(context.Background(), nil, jsonResponse(http.StatusOK, `{}`))
		require.ErrorIs(t, err, chirp.ErrNotDeferred)

		_, err = client.Complete(context.Background(), &chirp.RequestContext{},
			jsonResponse(http.StatusOK, `{}`))
		require.ErrorIs(t, err, chirp.ErrNotDeferred)
	})

	t.Run("completed error responses classify", func(t *testing.T) {
		t.Parallel()

		client, _ := newDeferredClient(t)

		_, rc, err := client.Get(context.Background(), "users/show", chirp.Args{"user_id": 123})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), rc,
			jsonResponse(http.StatusTooManyRequests, `{"errors": [{"code": 88, "message": "Rate limit exceeded"}]}`))
		require.Error(t, err)

		var apiErr *chirp.APIError

		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsRateLimited())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientHooks(t *testing.T) {
	t.Parallel()

	errHookFailed := errors.New("hook failed")

	t.Run("before-build hooks mutate the argument bag", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "20", r.URL.Query().Get("count"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := newUserClient(t, server.URL)
		client.UseHook(&argInjectingHook{key: "count", value: 20})

		_, _, err := client.Get(context.Background(), "statuses/home_timeline", chirp.Args{})
		require.NoError(t, err)
	})

	t.Run("before-build errors abort before dispatch", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{
			send: func(_ context.Context, _ *http.Request) (*chirp.Response, error) {
				return jsonResponse(http.StatusOK, `{}`), nil
			},
		}

		client, err := New(&chirp.Config{
			ConsumerKey:       "consumer-key",
			ConsumerSecret:    "consumer-secret",
			AccessToken:       "access-token",
			AccessTokenSecret: "access-secret",
			Transport:         transport,
			Hooks:             []chirp.Hook{&failingHook{stage: "before", err: errHookFailed}},
		})
		require.NoError(t, err)

		_, rc, err := client.Get(context.Background(), "users/show", chirp.Args{"user_id": 1})
		require.ErrorIs(t, err, errHookFailed)
		require.NotNil(t, rc)
		assert.Equal(t, 0, transport.calls)
	})

	t.Run("after-auth hooks see the signed request", func(t *testing.T) {
		t.Parallel()

		var sawAuthorization bool

		transport := &fakeTransport{
			send: func(_ context.Context, _ *http.Request) (*chirp.Response, error) {
				return jsonResponse(http.StatusOK, `{}`), nil
			},
		}

		client, err := New(&chirp.Config{
			ConsumerKey:       "consumer-key",
			ConsumerSecret:    "consumer-secret",
			AccessToken:       "access-token",
			AccessTokenSecret: "access-secret",
			Transport:         transport,
		})
		require.NoError(t, err)

		client.UseHook(&observingHook{observe: func(rc *chirp.RequestContext) {
			sawAuthorization = rc.HTTPRequest.Header.Get("Authorization") != ""
		}})

		_, _, err = client.Get(context.Background(), "users/show", chirp.Args{"user_id": 1})
		require.NoError(t, err)
		assert.True(t, sawAuthorization)
	})

	t.Run("after-inflate errors surface on success", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{
			send: func(_ context.Context, _ *http.Request) (*chirp.Response, error) {
				return jsonResponse(http.StatusOK, `{}`), nil
			},
		}

		client, err := New(&chirp.Config{
			ConsumerKey:       "consumer-key",
			ConsumerSecret:    "consumer-secret",
			AccessToken:       "access-token",
			AccessTokenSecret: "access-secret",
			Transport:         transport,
			Hooks:             []chirp.Hook{&failingHook{stage: "inflate", err: errHookFailed}},
		})
		require.NoError(t, err)

		result, _, err := client.Get(context.Background(), "users/show", chirp.Args{"user_id": 1})
		require.ErrorIs(t, err, errHookFailed)
		assert.Nil(t, result)
	})

	t.Run("inflation errors win over after-inflate hook errors", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{
			send: func(_ context.Context, _ *http.Request) (*chirp.Response, error) {
				return jsonResponse(http.StatusNotFound, `{"error": "not found"}`), nil
			},
		}

		client, err := New(&chirp.Config{
			ConsumerKey:       "consumer-key",
			ConsumerSecret:    "consumer-secret",
			AccessToken:       "access-token",
			AccessTokenSecret: "access-secret",
			Transport:         transport,
			Hooks:             []chirp.Hook{&failingHook{stage: "inflate", err: errHookFailed}},
		})
		require.NoError(t, err)

		_, _, err = client.Get(context.Background(), "users/show", chirp.Args{"user_id": 1})
		require.Error(t, err)

		var apiErr *chirp.APIError

		require.ErrorAs(t, err, &apiErr)
		assert.NotErrorIs(t, err, errHookFailed)
	})
}

func TestCredentialManagement(t *testing.T) {
	t.Parallel()

	client, err := New(&chirp.Config{ConsumerKey: "k", ConsumerSecret: "s"})
	require.NoError(t, err)

	assert.False(t, client.HasAccessCredentials())
	assert.False(t, client.HasAppToken())

	client.SetAccessCredentials("token", "secret")
	assert.True(t, client.HasAccessCredentials())

	client.ClearAccessCredentials()
	assert.False(t, client.HasAccessCredentials())

	client.SetAppToken("AAAA-bearer")
	assert.True(t, client.HasAppToken())
}

// argInjectingHook adds a default argument before the request is built.
type argInjectingHook struct {
	chirp.NopHook

	key   string
	value any
}

func (h *argInjectingHook) BeforeBuild(_ context.Context, rc *chirp.RequestContext) error {
	if _, ok := rc.Args[h.key]; !ok {
		rc.Args[h.key] = h.value
	}

	return nil
}

// failingHook fails at one named stage.
type failingHook struct {
	chirp.NopHook

	stage string
	err   error
}

func (h *failingHook) BeforeBuild(_ context.Context, _ *chirp.RequestContext) error {
	if h.stage == "before" {
		return h.err
	}

	return nil
}

func (h *failingHook) AfterInflate(_ context.Context, _ *chirp.RequestContext) error {
	if h.stage == "inflate" {
		return h.err
	}

	return nil
}

// observingHook records what the signed wire request looked like.
type observingHook struct {
	chirp.NopHook

	observe func(rc *chirp.RequestContext)
}

func (h *observingHook) AfterAuth(_ context.Context, rc *chirp.RequestContext) error {
	h.observe(rc)

	return nil
}
