// Package chirp provides types, interfaces, and helpers for working with
// Twitter-compatible microblogging REST APIs.
//
// # Overview
//
// The chirp package defines the request pipeline's data carrier
// (RequestContext), the wire-level Response, the argument bag (Args) and
// per-call option conventions, the structured APIError model with its
// classification predicates, and the Hook seams the pipeline exposes for
// pluggable behaviors. A concrete implementation of the Client interface is
// provided by the chirpclient package, which wires configuration, transport,
// and authentication. Most consumers should import chirpclient to construct
// a client and then interact with the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/chirpd-io/chirp/pkg/chirp"
//	  "github.com/chirpd-io/chirp/pkg/chirpclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := chirpclient.New(&chirp.Config{
//	    ConsumerKey:       "key",
//	    ConsumerSecret:    "secret",
//	    AccessToken:       "token",
//	    AccessTokenSecret: "token-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  result, _, err := cli.Get(ctx, "account/verify_credentials", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = result
//	}
//
// # Arguments and options
//
// Calls take an Args bag. Keys prefixed with "-" are per-call options
// consumed by the pipeline rather than sent on the wire: "-accept",
// "-token", "-token_secret", "-oauth_args", "-to_json",
// "-multipart_form_data", and "-add_consumer_auth_header". Path templates
// use ":name" placeholders filled from (and removed from) the bag:
//
//	result, _, err := cli.Get(ctx, "statuses/show/:id", chirp.Args{"id": "42"})
//
// # Errors
//
// Failed calls return *APIError carrying the completed RequestContext and
// therefore the wire request and response. Classification predicates
// (IsTokenError, IsPermanentError, IsTemporaryError, IsRateLimited) let
// layered policies such as Retrier decide whether to resubmit; the pipeline
// itself never retries.
//
// # Hooks, retries, caching, pagination
//
// The package includes generic building blocks layered outside the core
// pipeline: ordered Hook middleware (boolean normalization, HTML entity
// decoding, client-side rate limiting, logging), a Retrier decorator driven
// by the error classification, a pluggable response Cache with memory and
// NATS-backed implementations, a cursor Pager, and a concurrent batch
// executor. The chirpclient package composes a sensible default client;
// applications with advanced needs can use these primitives directly.
package chirp
