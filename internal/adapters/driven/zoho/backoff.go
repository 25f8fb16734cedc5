package zoho

import (
	"context"
	"time"
)

// MaxBackoff caps the exponential backoff.
const MaxBackoff = 60 * time.Second

// Backoff returns min(60, 2^attempt) seconds.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 6 {
		return MaxBackoff
	}
	d := time.Duration(1<<attempt) * time.Second
	if d > MaxBackoff {
		return MaxBackoff
	}
	return d
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
