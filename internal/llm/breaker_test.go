package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreaker(trips int) (*Breaker, *time.Time) {
	now := time.Unix(1700000000, 0)
	b := NewBreaker("test", BreakerConfig{Trips: trips, Window: time.Minute, Cooldown: 10 * time.Second, Quiet: true})
	b.now = func() time.Time { return now }
	return b, &now
}

func unavailable(ctx context.Context) (string, error) {
	return "", &HTTPError{Service: "test", StatusCode: 503, Status: "Service Unavailable"}
}

func answered(ctx context.Context) (string, error) {
	return `{"blocks":[]}`, nil
}

func TestBreakerMarksServiceDown(t *testing.T) {
	b, _ := testBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.Call(ctx, unavailable)
		require.Error(t, err)
	}
	assert.Equal(t, ServiceDown, b.State())

	calls := 0
	_, err := b.Call(ctx, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	var openErr *CircuitOpenError
	assert.True(t, errors.As(err, &openErr))
	assert.Equal(t, 0, calls, "service is not called while down")
}

func TestBreakerTrialCallRecovers(t *testing.T) {
	b, now := testBreaker(1)
	ctx := context.Background()

	_, _ = b.Call(ctx, unavailable)
	require.Equal(t, ServiceDown, b.State())

	*now = now.Add(11 * time.Second)
	out, err := b.Call(ctx, answered)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, ServiceHealthy, b.State())
}

func TestBreakerFailedTrialGoesBackDown(t *testing.T) {
	b, now := testBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = b.Call(ctx, unavailable)
	}
	*now = now.Add(11 * time.Second)
	_, _ = b.Call(ctx, unavailable)

	assert.Equal(t, ServiceDown, b.State(), "one failed trial call is enough")
}

func TestBreakerAllowsOneTrialAtATime(t *testing.T) {
	b, now := testBreaker(1)
	ctx := context.Background()

	_, _ = b.Call(ctx, unavailable)
	*now = now.Add(11 * time.Second)

	_, err := b.Call(ctx, func(ctx context.Context) (string, error) {
		// A second generate request while the trial call is in flight falls back.
		_, inner := b.Call(ctx, answered)
		var openErr *CircuitOpenError
		assert.True(t, errors.As(inner, &openErr))
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, ServiceHealthy, b.State())
}

func TestBreakerIgnoresUnusableReplies(t *testing.T) {
	b, _ := testBreaker(1)

	_, err := b.Call(context.Background(), func(ctx context.Context) (string, error) {
		return "", &ReplyError{Service: "test", Reason: "not json"}
	})
	require.Error(t, err)
	assert.Equal(t, ServiceHealthy, b.State())

	_, _ = b.Call(context.Background(), func(ctx context.Context) (string, error) {
		return "", context.Canceled
	})
	assert.Equal(t, ServiceHealthy, b.State())
}

func TestBreakerForgetsOldMisses(t *testing.T) {
	b, now := testBreaker(2)
	ctx := context.Background()

	_, _ = b.Call(ctx, unavailable)
	*now = now.Add(2 * time.Minute)
	_, _ = b.Call(ctx, unavailable)

	assert.Equal(t, ServiceHealthy, b.State())
}

func TestBreakerReset(t *testing.T) {
	b, _ := testBreaker(1)
	_, _ = b.Call(context.Background(), unavailable)
	require.Equal(t, ServiceDown, b.State())

	b.Reset()
	assert.Equal(t, ServiceHealthy, b.State())
	assert.Equal(t, "healthy", b.State().String())
}

func TestNewBreakerDefaults(t *testing.T) {
	b := NewBreaker("svc", BreakerConfig{})
	assert.Equal(t, DefaultBreakerConfig(), b.cfg)
}
