package zoho

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute stays under the Zoho Books quota of 100 per minute.
const DefaultRequestsPerMinute = 90

// RateLimiter provides proactive throttling for Zoho API requests.
// It uses a token bucket with a burst of one request.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing perMinute requests per minute.
// Zero or negative disables throttling.
func NewRateLimiter(perMinute float64) *RateLimiter {
	if perMinute <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Duration(float64(time.Minute)/perMinute)), 1),
	}
}

// Wait blocks until a request can be made without exceeding the rate.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
