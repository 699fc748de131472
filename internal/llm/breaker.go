package llm

import (
	"context"
	"log"
	"sync"
	"time"
)

// BreakerState is the health view a Breaker holds of the generation service.
type BreakerState int

const (
	// ServiceHealthy lets every generate call through.
	ServiceHealthy BreakerState = iota
	// ServiceDown short-circuits calls to the keyword fallback.
	ServiceDown
	// ServiceRetrying lets a single trial call through to see if the service is back.
	ServiceRetrying
)

func (s BreakerState) String() string {
	switch s {
	case ServiceHealthy:
		return "healthy"
	case ServiceDown:
		return "down"
	case ServiceRetrying:
		return "retrying"
	}
	return "unknown"
}

// BreakerConfig tunes when the service is considered down.
type BreakerConfig struct {
	Trips    int           // unavailable answers within Window that mark the service down
	Window   time.Duration // how far back unavailable answers count
	Cooldown time.Duration // how long to stay down before a trial call
	Quiet    bool          // suppress state change logs
}

// DefaultBreakerConfig marks the service down after 5 unavailable answers in
// a minute and tries again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Trips: 5, Window: time.Minute, Cooldown: 30 * time.Second}
}

// Breaker stops calling an unreachable generation service for a cooldown so
// generate requests fall back at once instead of waiting on timeouts.
//
// Only unavailability counts against the service. A reply that arrives but
// cannot be used still proves the service is up.
type Breaker struct {
	service string
	cfg     BreakerConfig
	now     func() time.Time

	mu       sync.Mutex
	state    BreakerState
	misses   []time.Time
	downAt   time.Time
	trialOut bool
}

// NewBreaker creates a breaker for service. Zero config fields take the
// defaults.
func NewBreaker(service string, cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.Trips <= 0 {
		cfg.Trips = def.Trips
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &Breaker{service: service, cfg: cfg, now: time.Now}
}

// Call runs fn unless the service is down. While retrying, concurrent calls
// are short-circuited until the trial call reports back.
func (b *Breaker) Call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if !b.admit() {
		return "", &CircuitOpenError{Service: b.service}
	}
	out, err := fn(ctx)
	b.report(err)
	return out, err
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case ServiceDown:
		if b.now().Sub(b.downAt) < b.cfg.Cooldown {
			return false
		}
		b.setState(ServiceRetrying)
		b.trialOut = true
		return true
	case ServiceRetrying:
		if b.trialOut {
			return false
		}
		b.trialOut = true
		return true
	}
	return true
}

func (b *Breaker) report(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == ServiceRetrying {
		b.trialOut = false
	}
	switch {
	case isCanceled(err):
		// The caller went away; nothing was learned about the service.
	case err != nil && IsUnavailable(err):
		b.miss()
	default:
		b.misses = b.misses[:0]
		b.setState(ServiceHealthy)
	}
}

func (b *Breaker) miss() {
	now := b.now()
	if b.state == ServiceRetrying {
		b.goDown(now)
		return
	}

	cutoff := now.Add(-b.cfg.Window)
	kept := b.misses[:0]
	for _, t := range b.misses {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.misses = append(kept, now)
	if len(b.misses) >= b.cfg.Trips {
		b.goDown(now)
	}
}

func (b *Breaker) goDown(now time.Time) {
	b.downAt = now
	b.misses = b.misses[:0]
	b.setState(ServiceDown)
}

func (b *Breaker) setState(s BreakerState) {
	if b.state == s {
		return
	}
	if !b.cfg.Quiet {
		log.Printf("[circuit/%s] Generation service %s -> %s", b.service, b.state, s)
	}
	b.state = s
}

// State reports the breaker's current view of the service.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset marks the service healthy again.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.misses = b.misses[:0]
	b.trialOut = false
	b.setState(ServiceHealthy)
}
