package llm

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts (default: 2)
	BaseDelay  time.Duration // Initial delay between retries (default: 200ms)
	MaxDelay   time.Duration // Maximum delay between retries (default: 5s)
	Multiplier float64       // Delay multiplier for exponential backoff (default: 2.0)
	EnableLog  bool          // Whether to log retry attempts
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		EnableLog:  true,
	}
}

// WithRetry runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted.
func WithRetry[T any](ctx context.Context, service string, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 && cfg.EnableLog {
				log.Printf("[llm/%s] Succeeded on attempt %d", service, attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !shouldRetry(err) {
			if cfg.EnableLog {
				log.Printf("[llm/%s] Non-retryable error: %v", service, err)
			}
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := calculateDelay(attempt, cfg)
			if cfg.EnableLog {
				log.Printf("[llm/%s] Attempt %d failed (%v), retrying in %v...", service, attempt+1, err, delay)
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}

	if cfg.EnableLog {
		log.Printf("[llm/%s] All %d attempts failed", service, cfg.MaxRetries+1)
	}

	var serviceErr *ServiceError
	if errors.As(lastErr, &serviceErr) {
		serviceErr.Retryable = false // Already exhausted retries
		return zero, lastErr
	}

	return zero, &ServiceError{
		Service:   service,
		Operation: "generate",
		Err:       lastErr,
		Retryable: false,
	}
}

// shouldRetry determines if an error should be retried
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Retryable
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}

	var circuitErr *CircuitOpenError
	if errors.As(err, &circuitErr) {
		return false
	}

	// Unusable replies are not retried.
	var replyErr *ReplyError
	if errors.As(err, &replyErr) {
		return false
	}

	if isCanceled(err) {
		return false
	}

	return isRetryableError(err)
}

// calculateDelay computes the delay for the given attempt using exponential backoff with jitter
func calculateDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	// Randomize between 80% and 120% of delay
	jitter := 0.8 + rand.Float64()*0.4
	delay *= jitter

	return time.Duration(delay)
}
