package rpc

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for user-triggered calls.
// Poll cycles never retry; the next tick is their retry.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    200 * time.Millisecond,
	MaxDelay:        2 * time.Second,
	BackoffMultiple: 2.0,
}

// callWithRetry retries fn while it fails with a transport error.
// Application and RPC errors are returned immediately.
func callWithRetry(
	ctx context.Context,
	config RetryConfig,
	fn func(ctx context.Context) (*Result, error),
) (*Result, error) {
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !IsTransport(err) {
			return nil, err
		}

		if attempt == attempts-1 {
			break
		}

		delay := calculateBackoff(attempt, config)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if attempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
