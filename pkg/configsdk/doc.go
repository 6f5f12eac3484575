/*
Package configsdk provides a client for the Configurine configuration service.

# Overview

A Client retrieves named configuration entries over HTTP. Before each lookup
it makes sure it holds a valid bearer token, acquiring one from the token
endpoint when its cache is empty or the cached token has expired:

	client, err := configsdk.NewClient(configsdk.Options{
		Host:      "http://127.0.0.1:8080",
		ClientID:  "fnord",
		SharedKey: "a1c1f962-bc57-4109-8d49-bee9f562b321",
	})
	if err != nil {
		log.Fatal(err)
	}

	entries, err := client.GetConfigByName(ctx, "loglevel", nil)

Lookups can be narrowed by application release and environment:

	entries, err := client.GetConfigByName(ctx, "loglevel", &configsdk.GetOptions{
		Associations: &configsdk.Associations{
			Applications: []configsdk.Application{{Name: "myapp", Version: "1.0.0"}},
			Environments: []string{"production"},
		},
	})

which sends

	GET /config?isActive=true&names=loglevel&associations=application%7Cmyapp%7C1.0.0&associations=environment%7Cproduction

# Token Cache

Each Client caches one token, independent of the names and filters looked up.
The token is reused until the instant it expires (or WithExpiryLeeway earlier)
and is then replaced wholesale. Concurrent callers that find the cache empty
share a single acquisition. A failed acquisition leaves the cache as it was,
so the next call simply tries again. Two Clients never share a token.

Tokens are read in the service's legacy form

	owner:issuedAtMillis:expiresAtMillis:signature

or as a JWT carrying an exp claim.

# Error Handling

Every call returns either entries or one error, never both, and nothing is
retried:

  - *AuthError: the token endpoint rejected the client, could not be reached,
    or issued a token that could not be read (KindMalformedToken)
  - *ConfigError: the configuration endpoint rejected the lookup, could not
    be reached, or answered 200 with an undecodable body

Rejections carry the HTTP status and the body as a ServerMessage, which holds
either the structured {code, error, message} object or the raw text:

	var cerr *configsdk.ConfigError
	if errors.As(err, &cerr) && cerr.StatusCode == http.StatusNotFound {
		fmt.Println(cerr.Message)
	}

	if errors.Is(err, &configsdk.AuthError{Kind: configsdk.KindTransport}) {
		// token endpoint unreachable
	}

# Thread Safety

Clients are safe for concurrent use.
*/
package configsdk
