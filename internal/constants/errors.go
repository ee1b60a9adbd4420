package constants

import "errors"

// Configuration errors.
var (
	ErrNoConsumerKey    = errors.New("no consumer key configured, set chirp_consumer_key or pass --consumer-key")
	ErrNoConsumerSecret = errors.New("no consumer secret configured, set chirp_consumer_secret or pass --consumer-secret")
	ErrNoAccessToken    = errors.New("not logged in, run 'chirp login' first")
	ErrNoBearerToken    = errors.New("no bearer token configured, run 'chirp app-token' first")
	ErrConfigNotFound   = errors.New("configuration file not found")
)

// Command argument errors.
var (
	ErrStatusTextRequired = errors.New("status text required")
	ErrIdentifierRequired = errors.New("user identifier required")
	ErrMethodPathRequired = errors.New("method and path arguments required")
	ErrInvalidMethod      = errors.New("method must be one of GET, POST, PUT, DELETE")
	ErrInvalidOutput      = errors.New("output must be one of table, json, yaml")
	ErrMalformedArgument  = errors.New("arguments must be key=value pairs")
	ErrUnexpectedReply    = errors.New("unexpected reply shape")
)

// Login flow errors.
var (
	ErrCallbackNotConfirmed = errors.New("request token callback was not confirmed")
	ErrEmptyPIN             = errors.New("empty PIN entered")
	ErrEmptyUsername        = errors.New("empty username entered")
)

// File system errors.
var (
	ErrNotRegularFile             = errors.New("path is not a regular file")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)
