package server

import (
	"container/list"
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxClients = 10000
	clientIdleTTL     = 10 * time.Minute
	sweepInterval     = 5 * time.Minute

	// evictionLogInterval is the minimum time between eviction log lines.
	evictionLogInterval = 30 * time.Second
)

// clientBucket is the token bucket of one editor client.
type clientBucket struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientBuckets holds at most max token buckets keyed by client IP, in
// least-recently-used order (front is most recent).
type clientBuckets struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	max     int
	byIP    map[string]*list.Element
	recency *list.List
	now     func() time.Time

	evicted      int
	lastEvictLog time.Time
}

func newClientBuckets(rps float64, burst, max int) *clientBuckets {
	if max <= 0 {
		max = defaultMaxClients
	}
	return &clientBuckets{
		rps:     rate.Limit(rps),
		burst:   burst,
		max:     max,
		byIP:    make(map[string]*list.Element),
		recency: list.New(),
		now:     time.Now,
	}
}

// allow takes a token from ip's bucket, creating the bucket on first use.
// At capacity the least recently used bucket makes room.
func (c *clientBuckets) allow(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.byIP[ip]; ok {
		c.recency.MoveToFront(elem)
		b := elem.Value.(*clientBucket)
		b.lastSeen = now
		return b.limiter.Allow()
	}

	if c.recency.Len() >= c.max {
		c.evictOldest(now)
	}
	b := &clientBucket{ip: ip, limiter: rate.NewLimiter(c.rps, c.burst), lastSeen: now}
	c.byIP[ip] = c.recency.PushFront(b)
	return b.limiter.Allow()
}

func (c *clientBuckets) evictOldest(now time.Time) {
	oldest := c.recency.Back()
	if oldest == nil {
		return
	}
	c.recency.Remove(oldest)
	delete(c.byIP, oldest.Value.(*clientBucket).ip)

	c.evicted++
	if now.Sub(c.lastEvictLog) >= evictionLogInterval {
		log.Printf("[RateLimit] Evicted %d least-recent IP(s) (at capacity: %d IPs)", c.evicted, c.max)
		c.lastEvictLog = now
		c.evicted = 0
	}
}

// sweep drops buckets idle for longer than clientIdleTTL. Recency follows
// access, not lastSeen, so the whole list is scanned.
func (c *clientBuckets) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for e := c.recency.Back(); e != nil; {
		prev := e.Prev()
		if b := e.Value.(*clientBucket); now.Sub(b.lastSeen) > clientIdleTTL {
			c.recency.Remove(e)
			delete(c.byIP, b.ip)
		}
		e = prev
	}
}

func (c *clientBuckets) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// RateLimitMiddleware limits API requests with a token bucket per client IP.
// At most maxIPs buckets are kept.
//
// Idle buckets are swept until ctx is cancelled; the returned channel is
// closed when the sweeper exits.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, maxIPs int) (Middleware, <-chan struct{}) {
	buckets := newClientBuckets(rps, burst, maxIPs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				buckets.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !buckets.allow(getClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}, done
}

// getClientIP returns the editor client's address. Forwarding headers are
// honored only when the peer is loopback or private, i.e. a reverse proxy.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer := net.ParseIP(host)
	if peer == nil {
		return host
	}
	if peer.IsLoopback() || peer.IsPrivate() {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	return peer.String()
}
