package client

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// Inflate decodes the dispatched response into the context's result and
// classifies the outcome: a decoded result on a 2xx response returns
// normally, anything else becomes an APIError carrying the full context.
func Inflate(rc *chirp.RequestContext) (any, error) {
	decodeResponse(rc)

	if rc.HasResult && rc.HTTPResponse.Success() {
		return rc.Result, nil
	}

	return nil, chirp.NewAPIError(rc)
}

// decodeResponse applies the decoding rules in priority order: JSON media
// type, explicitly empty body, form-encoded Accept override, otherwise the
// result stays unset. A decode failure rewrites the response as a server
// error with the failure message as its status text so the uniform error
// path reports it.
func decodeResponse(rc *chirp.RequestContext) {
	resp := rc.HTTPResponse

	switch {
	case resp.MediaType() == constants.MediaTypeJSON:
		var result any

		if err := json.Unmarshal(resp.Body, &result); err != nil {
			markDecodeFailure(resp, err)

			return
		}

		rc.SetResult(result)
	case resp.ContentLength() == 0:
		rc.SetResult("")
	case rc.Options.Accept() == constants.MediaTypeForm:
		form, err := url.ParseQuery(string(resp.Body))
		if err != nil {
			markDecodeFailure(resp, err)

			return
		}

		rc.SetResult(form)
	}
}

// markDecodeFailure rewrites the response in place as a 500 so the caller
// sees one uniform error shape for malformed payloads.
func markDecodeFailure(resp *chirp.Response, err error) {
	resp.StatusCode = http.StatusInternalServerError
	resp.Status = err.Error()
}
