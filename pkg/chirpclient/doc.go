// Package chirpclient provides the primary entry point for constructing a
// chirp API client that implements the chirp.Client interface.
//
// It layers configuration validation, HTTP transport, and authentication on
// top of the pipeline and types defined in the chirp package. Most
// applications should import chirpclient to build a client, then use the
// returned chirp.Client for API calls, OAuth flows, and credential
// management.
//
// Quick start
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
//
//	  // With a user's access token pair (OAuth 1.0a signed requests):
//	  cli, err := chirpclient.New(&chirp.Config{
//	    ConsumerKey:       "consumer-key",
//	    ConsumerSecret:    "consumer-secret",
//	    AccessToken:       "access-token",
//	    AccessTokenSecret: "access-token-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or application-only (OAuth2 bearer token):
//	  cli, err = chirpclient.New(&chirp.Config{
//	    ConsumerKey:    "consumer-key",
//	    ConsumerSecret: "consumer-secret",
//	    AppAuth:        true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Without stored user credentials the client can still run the
//	  // 3-legged handshake:
//	  creds, err := cli.GetRequestToken(ctx, "")
//	  if err != nil { log.Fatal(err) }
//	  _ = creds
//
//	  result, _, err := cli.Get(ctx, "statuses/home_timeline", chirp.Args{"count": 20})
//	  if err != nil { log.Fatal(err) }
//	  _ = result
//	}
//
// # Endpoint normalization
//
// Config.APIEndpoint and Config.UploadEndpoint accept bare hostnames; a
// missing scheme defaults to https and a trailing slash is trimmed. The
// normalized values must parse as URLs or New fails before any network
// activity.
//
// # Helpers
//
// The package also provides convenience constructors NewWithAccessToken,
// NewWithAppAuth, and NewWithBearerToken that wrap New with the appropriate
// configuration.
package chirpclient
