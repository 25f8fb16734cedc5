package zoho

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// staticTokens implements driven.TokenProvider for testing.
type staticTokens struct {
	token string
	err   error
	calls int
}

func (s *staticTokens) GetToken(_ context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

// newTestClient points a client at srv and records sleeps instead of sleeping.
func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *[]time.Duration) {
	t.Helper()

	c, err := NewClient(&staticTokens{token: "tok"}, Options{
		BaseURL:        srv.URL + "/books/v3",
		OrganizationID: "org-1",
		HTTPClient:     srv.Client(),
	})
	require.NoError(t, err)

	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestNewClient_RequiresOrganization(t *testing.T) {
	_, err := NewClient(&staticTokens{token: "tok"}, Options{})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "organization_id", vErr.Field)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(&staticTokens{token: "tok"}, Options{OrganizationID: "org"})

	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{100, 60 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestGet_InjectsAuthAndOrganization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/books/v3/recurringinvoices", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.URL.Query().Get("organization_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"code":0,"message":"success"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	var out APIResponse
	err := c.Get(context.Background(), "recurringinvoices", map[string][]string{"page": {"2"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "success", out.Message)
}

func TestGet_RateLimitedThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"code":0,"message":"ok"}`))
	}))
	defer srv.Close()

	c, sleeps := newTestClient(t, srv)

	var out APIResponse
	err := c.Get(context.Background(), "recurringinvoices", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Message)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, []time.Duration{2 * time.Second}, *sleeps)
}

func TestGet_RateLimitNeverGivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) <= 7 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, sleeps := newTestClient(t, srv)

	require.NoError(t, c.Get(context.Background(), "x", nil, nil))
	assert.Equal(t, int32(8), hits.Load())
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
		32 * time.Second, 60 * time.Second, 60 * time.Second,
	}, *sleeps)
}

func TestGet_ServerErrorFailsAfterTwoAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":1,"message":"internal"}`))
	}))
	defer srv.Close()

	c, sleeps := newTestClient(t, srv)

	err := c.Get(context.Background(), "recurringinvoices", nil, nil)

	var rErr *domain.RemoteError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, 2, rErr.Attempts)
	assert.Equal(t, http.StatusInternalServerError, rErr.StatusCode)
	assert.Contains(t, rErr.Body, "internal")
	assert.Equal(t, int32(2), hits.Load(), "exactly two attempts")
	assert.Equal(t, []time.Duration{2 * time.Second}, *sleeps)
}

func TestGet_TransportErrorFailsAfterTwoAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, sleeps := newTestClient(t, srv)
	srv.Close()

	err := c.Get(context.Background(), "recurringinvoices", nil, nil)

	var rErr *domain.RemoteError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, 2, rErr.Attempts)
	assert.Zero(t, rErr.StatusCode)
	assert.NotNil(t, rErr.Err)
	assert.Len(t, *sleeps, 1)
}

func TestGet_RateLimitThenFailureUsesSharedCounter(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	err := c.Get(context.Background(), "x", nil, nil)

	var rErr *domain.RemoteError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, int32(2), hits.Load())
}

func TestGet_InvalidJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	var out APIResponse
	err := c.Get(context.Background(), "x", nil, &out)

	var pErr *domain.ParseError
	assert.True(t, errors.As(err, &pErr))
}

func TestGet_TokenFailureMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	tokens := &staticTokens{err: &domain.AuthError{Err: domain.ErrMissingToken}}
	c, err := NewClient(tokens, Options{BaseURL: srv.URL, OrganizationID: "org"})
	require.NoError(t, err)

	err = c.Get(context.Background(), "x", nil, nil)

	var authErr *domain.AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Zero(t, hits.Load())
}

func TestGet_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)
	c.sleep = sleepContext

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "x", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPut_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/books/v3/recurringinvoices/r1", r.URL.Path)
		assert.Equal(t, "org-1", r.URL.Query().Get("organization_id"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"recurring_invoice_id":"r1","card_id":"","is_autobill_enabled":false}`, string(body))
		_, _ = w.Write([]byte(`{"code":0,"message":"Recurring invoice updated"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	var out APIResponse
	err := c.Put(context.Background(), "recurringinvoices/r1", domain.MutationPayload{RecurringInvoiceID: "r1"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "Recurring invoice updated", out.Message)
}

func TestPut_NonJSONResponseIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`updated`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	var out APIResponse
	assert.NoError(t, c.Put(context.Background(), "recurringinvoices/r1", map[string]string{}, &out))
}

func TestDeleteCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/books/v3/recurringinvoices/r1/card", r.URL.Path)
		assert.Equal(t, "org-1", r.URL.Query().Get("organization_id"))
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"code":0,"message":"The card has been removed."}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	resp, err := c.DeleteCard(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, "The card has been removed.", resp.Message)
}

func TestDeleteCard_NonJSONResponseIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	resp, err := c.DeleteCard(context.Background(), "r1")
	require.NoError(t, err)
	assert.Zero(t, resp.Code)
}

func TestDeleteCard_RateLimitedThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	c, sleeps := newTestClient(t, srv)

	_, err := c.DeleteCard(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestRateLimiter(t *testing.T) {
	unlimited := NewRateLimiter(0)
	for i := 0; i < 5; i++ {
		assert.NoError(t, unlimited.Wait(context.Background()))
	}

	limited := NewRateLimiter(60)
	require.NoError(t, limited.Wait(context.Background()), "burst of one")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, limited.Wait(ctx), "next token is a second away")
}
