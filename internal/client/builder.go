package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// pathToken matches :name placeholders in a path template. Tokens start
// with a letter or underscore so host ports in absolute URLs never match.
var pathToken = regexp.MustCompile(`:([A-Za-z_]\w*)`)

// Endpoints is the URL-construction configuration for one host: base URL,
// version segment, and representation extension.
type Endpoints struct {
	Base      string
	Version   string
	Extension string
}

// URLFor joins the endpoint configuration around a relative path, the same
// way the builder resolves one. Absolute paths pass through verbatim.
func (e Endpoints) URLFor(path string) string {
	if isAbsoluteURL(path) {
		return path
	}

	var sb strings.Builder

	sb.WriteString(strings.TrimSuffix(e.Base, "/"))

	if e.Version != "" {
		sb.WriteString("/")
		sb.WriteString(strings.Trim(e.Version, "/"))
	}

	sb.WriteString("/")
	sb.WriteString(strings.TrimPrefix(path, "/"))

	if ext := e.extension(); ext != "" && !strings.HasSuffix(path, ext) {
		sb.WriteString(ext)
	}

	return sb.String()
}

func (e Endpoints) extension() string {
	if e.Extension == constants.ExtensionNone {
		return ""
	}

	return e.Extension
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RequestBuilder turns a normalized request context into a wire request:
// option extraction, value flattening, path templating, URL resolution,
// and body or query construction ordered by a per-method dispatch table.
type RequestBuilder struct {
	endpoints Endpoints
}

// NewRequestBuilder creates a builder resolving relative paths against the
// given endpoint configuration.
func NewRequestBuilder(endpoints Endpoints) *RequestBuilder {
	return &RequestBuilder{endpoints: endpoints}
}

// buildFunc constructs the query or body for one method family.
type buildFunc func(b *RequestBuilder, ctx context.Context, rc *chirp.RequestContext) error

// bodyBuilders dispatches construction on the HTTP method.
var bodyBuilders = map[string]buildFunc{
	http.MethodGet:    (*RequestBuilder).buildQueryRequest,
	http.MethodDelete: (*RequestBuilder).buildQueryRequest,
	http.MethodPost:   (*RequestBuilder).buildBodyRequest,
	http.MethodPut:    (*RequestBuilder).buildBodyRequest,
}

// Build runs the construction steps in order and sets rc.HTTPRequest. The
// argument bag is consumed: option keys move into rc.Options, path keys
// into the URL, and the rest into the query or body.
func (b *RequestBuilder) Build(ctx context.Context, rc *chirp.RequestContext) error {
	args, extracted := ExtractOptions(rc.Args)
	rc.Args = args

	if rc.Options == nil {
		rc.Options = chirp.Options{}
	}

	for key, value := range extracted {
		rc.Options[key] = value
	}

	b.flattenArgs(rc)

	if rc.Method == http.MethodPost && !rc.Options.Multipart() && hasUploadValue(rc.Args) {
		rc.Options[chirp.OptionKeyMultipart] = true
	}

	if err := templatePath(rc); err != nil {
		return err
	}

	rc.URL = b.endpoints.URLFor(rc.URL)

	build, ok := bodyBuilders[rc.Method]
	if !ok {
		return fmt.Errorf("%w: unsupported method %s", chirp.ErrRequestBuild, rc.Method)
	}

	if err := build(b, ctx, rc); err != nil {
		return err
	}

	if accept := rc.Options.Accept(); accept != "" {
		rc.HTTPRequest.Header.Set("Accept", accept)
	}

	rc.Header = rc.HTTPRequest.Header

	return nil
}

// flattenArgs collapses slice values to comma-joined strings: every
// argument for GET, designated fields only for body methods.
func (b *RequestBuilder) flattenArgs(rc *chirp.RequestContext) {
	for key, value := range rc.Args {
		if rc.Method != http.MethodGet && !commaJoinedKeys[key] {
			continue
		}

		rc.Args[key] = flattenValue(value)
	}
}

// templatePath substitutes :name placeholders from the argument bag,
// consuming each matched key.
func templatePath(rc *chirp.RequestContext) error {
	matches := pathToken.FindAllStringSubmatch(rc.URL, -1)
	if len(matches) == 0 {
		return nil
	}

	templated := rc.URL

	for _, match := range matches {
		token, key := match[0], match[1]

		value, ok := rc.Args[key]
		if !ok {
			return fmt.Errorf("%w: %s", chirp.ErrMissingPathArgument, token)
		}

		templated = strings.Replace(templated, token, url.PathEscape(stringifyValue(value)), 1)

		delete(rc.Args, key)
	}

	rc.URL = templated

	return nil
}

// buildQueryRequest appends the remaining arguments as a sorted,
// percent-encoded query string and issues a bodiless request.
func (b *RequestBuilder) buildQueryRequest(ctx context.Context, rc *chirp.RequestContext) error {
	target := rc.URL

	if len(rc.Args) > 0 {
		query := argsToValues(rc.Args).Encode()

		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}

		target += separator + query
	}

	rc.URL = target

	req, err := http.NewRequestWithContext(ctx, rc.Method, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", chirp.ErrRequestBuild, err)
	}

	mergeHeaders(req, rc.Header)
	rc.HTTPRequest = req

	return nil
}

// buildBodyRequest constructs the request body, branching on the multipart
// and JSON options, defaulting to sorted form encoding.
func (b *RequestBuilder) buildBodyRequest(ctx context.Context, rc *chirp.RequestContext) error {
	var (
		body        []byte
		contentType string
		err         error
	)

	switch {
	case rc.Options.Multipart():
		body, contentType, err = encodeMultipart(rc.Args)
	case hasJSONPayload(rc.Options):
		body, err = encodeJSON(rc)
		contentType = constants.MediaTypeJSON
	default:
		body = []byte(argsToValues(rc.Args).Encode())
		contentType = constants.MediaTypeFormCharset
	}

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, rc.Method, rc.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", chirp.ErrRequestBuild, err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))

	mergeHeaders(req, rc.Header)
	req.Header.Set("Content-Type", contentType)

	rc.HTTPRequest = req

	return nil
}

func hasJSONPayload(options chirp.Options) bool {
	_, ok := options.JSONPayload()

	return ok
}

// encodeJSON marshals the JSON body: the option's own value when it is a
// payload, the remaining argument bag when the option is bare true.
func encodeJSON(rc *chirp.RequestContext) ([]byte, error) {
	payload, _ := rc.Options.JSONPayload()

	if flag, ok := payload.(bool); ok && flag {
		payload = map[string]any(rc.Args)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling json body: %v", chirp.ErrRequestBuild, err)
	}

	return body, nil
}

// encodeMultipart writes the argument bag as multipart/form-data: upload
// values become file parts, scalars become fields. Keys are written in
// sorted order for deterministic bodies.
func encodeMultipart(args chirp.Args) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if err := writeMultipartValue(writer, key, args[key]); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: closing multipart body: %v", chirp.ErrRequestBuild, err)
	}

	contentType := writer.FormDataContentType() + "; charset=" + constants.MultipartCharset

	return buf.Bytes(), contentType, nil
}

func writeMultipartValue(writer *multipart.Writer, key string, value any) error {
	switch v := value.(type) {
	case chirp.File:
		return writeFilePart(writer, key, v)
	case *chirp.File:
		return writeFilePart(writer, key, *v)
	case []byte:
		part, err := writer.CreateFormFile(key, key)
		if err != nil {
			return fmt.Errorf("%w: creating form file %s: %v", chirp.ErrRequestBuild, key, err)
		}

		if _, err := part.Write(v); err != nil {
			return fmt.Errorf("%w: writing form file %s: %v", chirp.ErrRequestBuild, key, err)
		}

		return nil
	case io.Reader:
		part, err := writer.CreateFormFile(key, key)
		if err != nil {
			return fmt.Errorf("%w: creating form file %s: %v", chirp.ErrRequestBuild, key, err)
		}

		if _, err := io.Copy(part, v); err != nil {
			return fmt.Errorf("%w: copying form file %s: %v", chirp.ErrRequestBuild, key, err)
		}

		return nil
	default:
		if err := writer.WriteField(key, stringifyValue(v)); err != nil {
			return fmt.Errorf("%w: writing form field %s: %v", chirp.ErrRequestBuild, key, err)
		}

		return nil
	}
}

func writeFilePart(writer *multipart.Writer, key string, file chirp.File) error {
	name := file.Name
	if name == "" {
		name = key
	}

	var (
		part io.Writer
		err  error
	)

	if file.ContentType != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, key, name))
		header.Set("Content-Type", file.ContentType)
		part, err = writer.CreatePart(header)
	} else {
		part, err = writer.CreateFormFile(key, name)
	}

	if err != nil {
		return fmt.Errorf("%w: creating form file %s: %v", chirp.ErrRequestBuild, key, err)
	}

	source := file.Reader
	if source == nil {
		source = bytes.NewReader(file.Content)
	}

	if _, err := io.Copy(part, source); err != nil {
		return fmt.Errorf("%w: writing form file %s: %v", chirp.ErrRequestBuild, key, err)
	}

	return nil
}

// mergeHeaders copies the context's accumulated headers onto the built
// request, replacing any same-named defaults net/http seeded.
func mergeHeaders(req *http.Request, header http.Header) {
	for key, values := range header {
		req.Header.Del(key)

		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
}

// hasUploadValue reports whether any argument value needs multipart
// transport.
func hasUploadValue(args chirp.Args) bool {
	for _, value := range args {
		if !isScalar(value) {
			return true
		}
	}

	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// argsToValues stringifies the bag into url.Values; Encode sorts keys.
func argsToValues(args chirp.Args) url.Values {
	values := url.Values{}

	for key, value := range args {
		values.Set(key, stringifyValue(value))
	}

	return values
}

func stringifyValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case []string:
		return strings.Join(s, ",")
	default:
		return fmt.Sprint(v)
	}
}

// flattenValue joins slice elements with commas; non-slice values and raw
// byte blobs pass through.
func flattenValue(v any) any {
	switch s := v.(type) {
	case []string:
		return strings.Join(s, ",")
	case []byte:
		return v
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return v
	}

	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(rv.Index(i).Interface())
	}

	return strings.Join(parts, ",")
}
