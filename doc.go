// Package auth0client authenticates a service against an Auth0-style
// identity provider and verifies bearer tokens presented by third
// parties against the provider's published key set.
//
// A Client performs the OAuth2 client-credentials exchange and holds the
// resulting access token:
//
//	client, err := auth0client.New(clientID, clientSecret, "https://tenant.auth0.com", audience)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Authenticate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	token, ok := client.AccessToken()
//
// Independently of its own credentials, the client verifies tokens
// presented to it, running a caller-chosen set of claim checks:
//
//	decoded, err := client.ValidateJWT(ctx, presentedToken, "https://tenant.auth0.com",
//	    []validator.Check{validator.SubjectPresent(), validator.NotExpired()})
//
// Every failure is a *core.Error carrying a Kind from the taxonomy in
// the core package, so callers can route operational failures (key set
// unreachable) to retry paths and security failures (bad signature,
// failed claim check) to hard rejection.
package auth0client
