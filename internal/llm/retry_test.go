package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(max int) RetryConfig {
	return RetryConfig{
		MaxRetries: max,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}
}

func TestWithRetrySuccess(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), "test", fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if result != "ok" {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestWithRetryRetryableError(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), "test", fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		return "", &ServiceError{Service: "test", Operation: "request", Err: errors.New("timeout"), Retryable: true}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Errorf("expected 4 calls (1 initial + 3 retries), got %d", calls)
	}
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Retryable {
		t.Errorf("expected exhausted ServiceError, got %v", err)
	}
}

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), "test", fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &HTTPError{Service: "test", StatusCode: 503, Status: "Service Unavailable"}
		}
		return "done", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || result != "done" {
		t.Errorf("calls = %d, result = %q", calls, result)
	}
}

func TestWithRetryNonRetryableErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"bad request", &HTTPError{Service: "test", StatusCode: 400, Status: "Bad Request"}},
		{"unusable reply", &ReplyError{Service: "test", Reason: "not json"}},
		{"circuit open", &CircuitOpenError{Service: "test"}},
		{"plain error", errors.New("invalid model")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := WithRetry(context.Background(), "test", fastRetry(3), func(ctx context.Context) (string, error) {
				calls++
				return "", tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Errorf("expected original error, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
		})
	}
}

func TestWithRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry(5)
	cfg.BaseDelay = time.Second
	cfg.MaxDelay = time.Second

	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := WithRetry(ctx, "test", cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", &HTTPError{Service: "test", StatusCode: 502, Status: "Bad Gateway"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancel, got %d", calls)
	}
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2.0}

	for attempt := 0; attempt < 6; attempt++ {
		delay := calculateDelay(attempt, cfg)
		if delay > 1200*time.Millisecond {
			t.Errorf("attempt %d: delay %v exceeds max with jitter", attempt, delay)
		}
		if delay < 80*time.Millisecond {
			t.Errorf("attempt %d: delay %v below base with jitter", attempt, delay)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("read: connection reset by peer"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("model not found"), false},
		{&HTTPError{StatusCode: 429}, true},
		{&HTTPError{StatusCode: 404}, false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
