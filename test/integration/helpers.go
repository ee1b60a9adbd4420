package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/chirpd-io/chirp/pkg/chirp"
	"github.com/chirpd-io/chirp/pkg/chirpclient"
)

// fakeAPI is an in-process stand-in for a Twitter-compatible REST API. It
// serves the OAuth handshake endpoints plus a small set of resource
// endpoints and counts the requests each path receives.
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]int
	tweets   map[string]map[string]any
	nextID   int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		hits:     map[string]int{},
		failures: map[string]int{},
		tweets:   map[string]map[string]any{},
		nextID:   710511363345354753,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", api.handleRequestToken)
	mux.HandleFunc("/oauth/access_token", api.handleAccessToken)
	mux.HandleFunc("/oauth2/token", api.handleAppToken)
	mux.HandleFunc("/oauth2/invalidate_token", api.handleInvalidateToken)
	mux.HandleFunc("/1.1/account/verify_credentials.json", api.handleVerifyCredentials)
	mux.HandleFunc("/1.1/users/show.json", api.handleUsersShow)
	mux.HandleFunc("/1.1/statuses/update.json", api.handleStatusUpdate)
	mux.HandleFunc("/1.1/statuses/destroy/", api.handleStatusDestroy)
	mux.HandleFunc("/1.1/followers/ids.json", api.handleFollowerIDs)
	mux.HandleFunc("/1.1/media/upload.json", api.handleMediaUpload)

	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.consumeFailure(r.URL.Path) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "Over capacity"})

			return
		}

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.server.Close)

	return api
}

// URL returns the base URL clients should target.
func (a *fakeAPI) URL() string {
	return a.server.URL
}

// Hits returns how many requests the path received.
func (a *fakeAPI) Hits(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.hits[path]
}

// FailNext makes the next count requests to path reply 503.
func (a *fakeAPI) FailNext(path string, count int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failures[path] = count
}

func (a *fakeAPI) consumeFailure(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failures[path] <= 0 {
		return false
	}

	a.failures[path]--
	a.hits[path]++

	return true
}

func (a *fakeAPI) record(r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.hits[r.URL.Path]++
}

// requireOAuthHeader replies 401 unless the request carries an OAuth or
// Bearer Authorization header.
func requireOAuthHeader(w http.ResponseWriter, r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "OAuth ") || strings.HasPrefix(auth, "Bearer ") {
		return true
	}

	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"errors": []any{map[string]any{"code": 32, "message": "Could not authenticate you"}},
	})

	return false
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeForm replies with a url-encoded body labeled text/html, matching
// the mislabeled handshake replies real endpoints produce.
func writeForm(w http.ResponseWriter, values url.Values) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(values.Encode()))
}

func (a *fakeAPI) handleRequestToken(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	writeForm(w, url.Values{
		"oauth_token":              {"temp-token"},
		"oauth_token_secret":       {"temp-secret"},
		"oauth_callback_confirmed": {"true"},
	})
}

func (a *fakeAPI) handleAccessToken(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	_ = r.ParseForm()

	if r.PostForm.Get("oauth_verifier") == "" && r.PostForm.Get("x_auth_mode") != "client_auth" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"errors": []any{
			map[string]any{"code": 32, "message": "Could not authenticate you"},
		}})

		return
	}

	writeForm(w, url.Values{
		"oauth_token":        {"final-token"},
		"oauth_token_secret": {"final-secret"},
		"user_id":            {"8675429"},
		"screen_name":        {"semifor"},
	})
}

func (a *fakeAPI) handleAppToken(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	username, password, ok := r.BasicAuth()
	if !ok || username == "" || password == "" {
		writeJSON(w, http.StatusForbidden, map[string]any{"errors": []any{
			map[string]any{"code": 99, "message": "Unable to verify your credentials"},
		}})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token_type":   "bearer",
		"access_token": "AAAA-integration-bearer",
	})
}

func (a *fakeAPI) handleInvalidateToken(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	_ = r.ParseForm()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": r.PostForm.Get("access_token"),
	})
}

func (a *fakeAPI) handleVerifyCredentials(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id_str":      "8675429",
		"screen_name": "semifor",
	})
}

func (a *fakeAPI) handleUsersShow(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	query := r.URL.Query()

	screenName := query.Get("screen_name")
	if screenName == "" && query.Get("user_id") == "" {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []any{
			map[string]any{"code": 34, "message": "Sorry, that page does not exist"},
		}})

		return
	}

	if screenName == "" {
		screenName = "semifor"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id_str":          "8675429",
		"screen_name":     screenName,
		"name":            "Marc Mims",
		"followers_count": 512,
	})
}

func (a *fakeAPI) handleStatusUpdate(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	_ = r.ParseForm()

	status := r.PostForm.Get("status")
	if status == "" {
		writeJSON(w, http.StatusForbidden, map[string]any{"errors": []any{
			map[string]any{"code": 170, "message": "Missing required parameter: status"},
		}})

		return
	}

	a.mu.Lock()
	a.nextID++
	id := fmt.Sprintf("%d", a.nextID)
	tweet := map[string]any{
		"id_str": id,
		"text":   status,
		"user":   map[string]any{"screen_name": "semifor"},
	}

	if mediaIDs := r.PostForm.Get("media_ids"); mediaIDs != "" {
		tweet["media_ids"] = mediaIDs
	}

	a.tweets[id] = tweet
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, tweet)
}

func (a *fakeAPI) handleStatusDestroy(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/1.1/statuses/destroy/")
	id := strings.TrimSuffix(path, ".json")

	a.mu.Lock()
	tweet, ok := a.tweets[id]
	delete(a.tweets, id)
	a.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []any{
			map[string]any{"code": 144, "message": "No status found with that ID"},
		}})

		return
	}

	writeJSON(w, http.StatusOK, tweet)
}

func (a *fakeAPI) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	err := r.ParseMultipartForm(16 << 20)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "media parameter is invalid"})

		return
	}

	_, header, err := r.FormFile("media")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "media parameter is missing"})

		return
	}

	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"media_id":        id,
		"media_id_string": fmt.Sprintf("%d", id),
		"size":            header.Size,
	})
}

// handleFollowerIDs serves a three-page cursored collection.
func (a *fakeAPI) handleFollowerIDs(w http.ResponseWriter, r *http.Request) {
	a.record(r)

	if !requireOAuthHeader(w, r) {
		return
	}

	pages := map[string]map[string]any{
		"-1": {
			"ids":             []any{1, 2, 3},
			"next_cursor":     1465531903289246596,
			"next_cursor_str": "1465531903289246596",
		},
		"1465531903289246596": {
			"ids":             []any{4, 5},
			"next_cursor":     2143322875534918478,
			"next_cursor_str": "2143322875534918478",
		},
		"2143322875534918478": {
			"ids":             []any{6},
			"next_cursor":     0,
			"next_cursor_str": "0",
		},
	}

	page, ok := pages[r.URL.Query().Get("cursor")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []any{
			map[string]any{"code": 34, "message": "Sorry, that page does not exist"},
		}})

		return
	}

	writeJSON(w, http.StatusOK, page)
}

// newTestClient builds a client with user credentials aimed at the fake
// API. Transport retries are disabled so tests observe every wire call.
func newTestClient(t *testing.T, api *fakeAPI) chirp.Client {
	t.Helper()

	client, err := chirpclient.New(&chirp.Config{
		APIEndpoint:       api.URL(),
		UploadEndpoint:    api.URL(),
		ConsumerKey:       "integration-consumer-key",
		ConsumerSecret:    "integration-consumer-secret",
		AccessToken:       "integration-access-token",
		AccessTokenSecret: "integration-access-secret",
		RetryMax:          -1,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}
