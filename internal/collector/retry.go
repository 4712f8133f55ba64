package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
)

// Retry calls fn up to attempts times with exponential backoff starting at
// backoff. It stops early when ctx is done.
func Retry(ctx context.Context, attempts int, backoff time.Duration, what string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		wait := backoff * time.Duration(1<<uint(i))
		log.Warn().Str("op", what).Int("attempt", i+1).Int("of", attempts).Dur("retry_in", wait).Err(lastErr).Msg("call failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s: %d attempts failed: %w", what, attempts, lastErr)
}
