package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoint defaults.
const (
	// DefaultAPIEndpoint is the REST API host used when none is configured.
	DefaultAPIEndpoint = "https://api.twitter.com"

	// DefaultUploadEndpoint is the media upload host used when none is configured.
	DefaultUploadEndpoint = "https://upload.twitter.com"

	// DefaultAPIVersion is the API version segment inserted into request paths.
	DefaultAPIVersion = "1.1"

	// DefaultExtension is the representation extension appended to request paths.
	DefaultExtension = ".json"

	// ExtensionNone suppresses the representation extension entirely.
	ExtensionNone = "-"
)

// OAuth endpoint paths. Handshake paths are versionless: they are joined to
// the API endpoint without the version segment or extension.
const (
	// PathRequestToken is the temporary-credential request path.
	PathRequestToken = "/oauth/request_token"

	// PathAccessToken is the token-credential exchange path.
	PathAccessToken = "/oauth/access_token"

	// PathAuthorize is the resource-owner authorization path.
	PathAuthorize = "/oauth/authorize"

	// PathAuthenticate is the sign-in-with variant of the authorization path.
	PathAuthenticate = "/oauth/authenticate"

	// PathAppToken is the application-only bearer token grant path.
	PathAppToken = "/oauth2/token"

	// PathInvalidateAppToken revokes an application-only bearer token.
	PathInvalidateAppToken = "/oauth2/invalidate_token"

	// OOBCallback selects PIN-based authorization instead of a callback URL.
	OOBCallback = "oob"
)

// Reserved argument option names. Keys with the option sigil are consumed by
// the pipeline and never transmitted.
const (
	// OptionAccept overrides the Accept header for one call.
	OptionAccept = "-accept"

	// OptionToken overrides the client-level access or bearer token.
	OptionToken = "-token"

	// OptionTokenSecret overrides the client-level access token secret.
	OptionTokenSecret = "-token_secret"

	// OptionOAuthArgs carries raw protocol parameters for handshake calls.
	OptionOAuthArgs = "-oauth_args"

	// OptionToJSON sends the remaining arguments as a JSON request body.
	OptionToJSON = "-to_json"

	// OptionMultipart forces multipart/form-data encoding for a POST body.
	OptionMultipart = "-multipart_form_data"

	// OptionConsumerAuthHeader requests HTTP Basic auth built from the
	// consumer credentials instead of a signed or bearer header.
	OptionConsumerAuthHeader = "-add_consumer_auth_header"
)

// Wire header and media type values.
const (
	// MediaTypeJSON is the only media type the inflator decodes as JSON.
	MediaTypeJSON = "application/json"

	// MediaTypeForm is the url-encoded media type used by handshake replies.
	MediaTypeForm = "application/x-www-form-urlencoded"

	// MediaTypeFormCharset is the Content-Type sent with url-encoded bodies.
	MediaTypeFormCharset = "application/x-www-form-urlencoded; charset=utf-8"

	// MultipartCharset is the charset parameter appended to multipart bodies.
	MultipartCharset = "UTF-8"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry and concurrency limits.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3

	// MaxWorkers is the default number of workers for concurrent operations.
	MaxWorkers = 10
)

// Cache size and lifetime constants.
const (
	// DefaultCacheSize is the default cache entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// CacheMinTTL is the minimum cache time-to-live.
	CacheMinTTL = 30 * time.Second

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)

// Pagination and display limits.
const (
	// DefaultTimelineCount is the default number of statuses requested.
	DefaultTimelineCount = 20

	// MaxTimelineCount is the API ceiling for one timeline page.
	MaxTimelineCount = 200

	// MaxPages is used to prevent infinite loops in pagination.
	MaxPages = 50
)

// Rate limit header names.
const (
	// HeaderRateLimitLimit carries the request ceiling for the window.
	HeaderRateLimitLimit = "X-Rate-Limit-Limit"

	// HeaderRateLimitRemaining carries the requests left in the window.
	HeaderRateLimitRemaining = "X-Rate-Limit-Remaining"

	// HeaderRateLimitReset carries the epoch second the window resets.
	HeaderRateLimitReset = "X-Rate-Limit-Reset"

	// HeaderRetryAfter is the standard retry delay header.
	HeaderRetryAfter = "Retry-After"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// JSONIndent is the indent string for rendered JSON output.
	JSONIndent = "  "

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 80
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for tabular output format.
	FormatTable = "table"
)

// Key-value parsing constants.
const (
	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2
)
