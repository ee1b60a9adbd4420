// Package auth implements the authentication strategies the request
// pipeline attaches at its authorization stage: OAuth 1.0a signing for
// user-context calls (including the handshake endpoints) and OAuth2 bearer
// headers for application-only calls.
package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/chirpd-io/chirp/pkg/chirp"
)

// Strategy attaches authorization to a built wire request, mutating its
// headers in place.
type Strategy interface {
	Authorize(ctx context.Context, rc *chirp.RequestContext) error
}

// setConsumerBasicAuth attaches HTTP Basic auth built from the
// percent-encoded consumer credential pair, the scheme the application-only
// token grant and invalidation endpoints require.
func setConsumerBasicAuth(req *http.Request, consumerKey, consumerSecret string) {
	req.SetBasicAuth(url.QueryEscape(consumerKey), url.QueryEscape(consumerSecret))
}

// formBody returns the request's form-urlencoded body parameters, or nil
// when the body uses another encoding. OAuth 1.0a signatures must cover
// form parameters, so the signing path re-reads them from the built
// request.
func formBody(req *http.Request) (url.Values, error) {
	if req == nil || req.Body == nil || req.GetBody == nil {
		return nil, nil
	}

	mt, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mt != "application/x-www-form-urlencoded" {
		return nil, nil //nolint:nilerr // non-form bodies are excluded from the signature base
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	form, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing form body: %w", err)
	}

	return form, nil
}

// replaceFormBody swaps the request's body for the encoded form, keeping
// Content-Length and GetBody consistent.
func replaceFormBody(req *http.Request, form url.Values) {
	encoded := form.Encode()

	req.Body = io.NopCloser(strings.NewReader(encoded))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(encoded)), nil
	}
	req.ContentLength = int64(len(encoded))
	req.Header.Set("Content-Length", fmt.Sprint(len(encoded)))

	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	}
}

// bodyBytes is a GetBody-friendly reader constructor used by tests.
func bodyBytes(data []byte) (io.ReadCloser, func() (io.ReadCloser, error)) {
	reader := io.NopCloser(bytes.NewReader(data))
	getBody := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	return reader, getBody
}
