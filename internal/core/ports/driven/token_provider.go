package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
//
// The first successful token is reused for the lifetime of the provider.
// There is no refresh on expiry: a rejected token surfaces as a request
// failure at the caller.
type TokenProvider interface {
	// GetToken returns the bearer token, fetching it on first use.
	GetToken(ctx context.Context) (string, error)
}
