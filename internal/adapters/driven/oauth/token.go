// Package oauth provides the Zoho refresh-token exchange.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

const (
	// DefaultTokenURL is the Zoho accounts token endpoint (US data centre).
	DefaultTokenURL = "https://accounts.zoho.com/oauth/v2/token"

	// DefaultTimeout bounds the exchange request.
	DefaultTimeout = 10 * time.Second
)

// Ensure RefreshTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*RefreshTokenProvider)(nil)

// Credentials are the long-lived secrets exchanged for a bearer token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// RefreshTokenProvider exchanges a refresh token for an access token once
// and memoises the result for its lifetime. Expiry is not tracked.
type RefreshTokenProvider struct {
	config       *oauth2.Config
	refreshToken string
	httpClient   *http.Client

	mu    sync.Mutex
	token string
}

// NewRefreshTokenProvider creates a provider. An empty tokenURL selects DefaultTokenURL.
func NewRefreshTokenProvider(tokenURL string, creds Credentials) *RefreshTokenProvider {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &RefreshTokenProvider{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: creds.RefreshToken,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
	}
}

// GetToken returns the cached token, performing the exchange on first use.
// Failed exchanges are not cached.
func (p *RefreshTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: p.refreshToken})

	tok, err := src.Token()
	if err != nil {
		return "", toAuthError(err)
	}
	if tok.AccessToken == "" {
		return "", &domain.AuthError{Err: domain.ErrMissingToken}
	}

	logger.Debug("obtained zoho access token (type %q)", tok.TokenType)
	p.token = tok.AccessToken
	return p.token, nil
}

// toAuthError maps oauth2 failures onto the domain error.
func toAuthError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		detail := rErr.ErrorCode
		if detail == "" {
			detail = string(rErr.Body)
		}
		return &domain.AuthError{StatusCode: status, Err: fmt.Errorf("%s", detail)}
	}
	return &domain.AuthError{Err: err}
}
