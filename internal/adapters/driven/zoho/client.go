package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

const (
	// DefaultBaseURL is the Zoho Books v3 API root (US data centre).
	DefaultBaseURL = "https://www.zohoapis.com/books/v3"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxAttempts bounds retries of non-429 failures.
	MaxAttempts = 2

	// maxErrorBody is how much of a failed response body is kept in errors.
	maxErrorBody = 512
)

// Options configures a Client.
type Options struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// OrganizationID is sent as organization_id on every request. Required.
	OrganizationID string

	// RequestsPerMinute throttles requests. Zero or negative disables it.
	RequestsPerMinute float64

	// Timeout defaults to DefaultTimeout. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// APIResponse is the status envelope Zoho returns on mutations.
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client issues authenticated requests against the Zoho Books API.
// It is not safe for concurrent use.
type Client struct {
	baseURL     string
	orgID       string
	tokens      driven.TokenProvider
	httpClient  *http.Client
	rateLimiter *RateLimiter
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Zoho Books client.
func NewClient(tokens driven.TokenProvider, opts Options) (*Client, error) {
	if opts.OrganizationID == "" {
		return nil, &domain.ValidationError{Field: "organization_id"}
	}
	if tokens == nil {
		return nil, errors.New("zoho: token provider is required")
	}

	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(base, "/"),
		orgID:       opts.OrganizationID,
		tokens:      tokens,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(opts.RequestsPerMinute),
		sleep:       sleepContext,
	}, nil
}

// Get fetches path and decodes the JSON response into out.
// An undecodable 2xx body is a *domain.ParseError.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ParseError{URL: c.endpoint(path), Err: err}
	}
	return nil
}

// Put sends payload as JSON to path and decodes the response into out.
// A non-JSON 2xx body is logged and accepted.
func (c *Client) Put(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling payload: %w", err)
	}
	body, err := c.do(ctx, http.MethodPut, path, nil, data)
	if err != nil {
		return err
	}
	c.decodeLenient(http.MethodPut, path, body, out)
	return nil
}

// DeleteCard detaches the stored card from a recurring invoice.
func (c *Client) DeleteCard(ctx context.Context, profileID string) (*APIResponse, error) {
	path := "recurringinvoices/" + url.PathEscape(profileID) + "/card"
	body, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var resp APIResponse
	c.decodeLenient(http.MethodDelete, path, body, &resp)
	return &resp, nil
}

// do runs one logical request through the retry policy and returns the body
// of the first 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	target := c.endpoint(path)
	params := url.Values{}
	for k, v := range query {
		params[k] = append([]string(nil), v...)
	}
	params.Set("organization_id", c.orgID)
	fullURL := target + "?" + params.Encode()

	for attempt := 1; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		status, body, failure := c.send(ctx, method, fullURL, token, payload)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		switch {
		case failure == nil && status == http.StatusTooManyRequests:
			wait := Backoff(attempt)
			logger.Warn("rate limited, backing off for %s", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		case failure == nil && status >= 200 && status < 300:
			logger.Debug("%s %s -> %d", method, target, status)
			return body, nil
		}

		if attempt >= MaxAttempts {
			rErr := &domain.RemoteError{
				Method:   method,
				URL:      target,
				Attempts: attempt,
				Err:      failure,
			}
			if failure == nil {
				rErr.StatusCode = status
				rErr.Body = truncate(string(body), maxErrorBody)
			}
			return nil, rErr
		}

		if failure != nil {
			logger.Warn("%s %s attempt %d failed: %v, retrying", method, target, attempt, failure)
		} else {
			logger.Warn("%s %s attempt %d failed with status %d, retrying", method, target, attempt, status)
		}
		if err := c.sleep(ctx, Backoff(attempt)); err != nil {
			return nil, err
		}
	}
}

// send performs a single HTTP round trip. A non-nil error means the request
// never produced a readable response.
func (c *Client) send(
	ctx context.Context,
	method, fullURL, token string,
	payload []byte,
) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// decodeLenient logs a mutation response and decodes it into out when possible.
func (c *Client) decodeLenient(method, path string, body []byte, out any) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		logger.Warn("%s %s response is not JSON: %s", method, path, truncate(string(body), maxErrorBody))
		return
	}
	logger.Debug("Zoho %s response JSON:\n%s", method, pretty.String())

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			logger.Warn("%s %s response did not match the expected shape: %v", method, path, err)
		}
	}
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
