package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/calc-content-backend/internal/config"
)

// RateLimiter keeps one token bucket per client IP. Clients are keyed on the
// socket peer unless the config trusts X-Forwarded-For.
type RateLimiter struct {
	limit          rate.Limit
	burst          int
	idleTTL        time.Duration
	trustForwarded bool
	now            func() time.Time

	clients sync.Map // map[string]*client
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with background cleanup.
// Call Stop() on shutdown.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	rl := &RateLimiter{
		limit:          rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:          burst,
		idleTTL:        cfg.IdleTTL,
		trustForwarded: cfg.TrustForwardedFor,
		now:            time.Now,
		stop:           make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go rl.cleanup(cfg.CleanupInterval)
	}
	return rl
}

// Stop terminates the background cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Middleware rejects requests over the per-IP budget with 429 and Retry-After.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := rl.client(rl.clientKey(r))

			res := c.limiter.ReserveN(rl.now(), 1)
			if delay := res.DelayFrom(rl.now()); !res.OK() || delay > 0 {
				res.CancelAt(rl.now())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.trustForwarded {
		return clientIP(r)
	}
	return remoteHost(r)
}

// Len reports how many clients are tracked.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (rl *RateLimiter) client(ip string) *client {
	now := rl.now()
	val, ok := rl.clients.Load(ip)
	if !ok {
		val, _ = rl.clients.LoadOrStore(ip, &client{
			limiter:  rate.NewLimiter(rl.limit, rl.burst),
			lastSeen: now,
		})
	}
	c := val.(*client)
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
	return c
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	now := rl.now()
	rl.clients.Range(func(key, value any) bool {
		c := value.(*client)
		c.mu.Lock()
		idle := now.Sub(c.lastSeen)
		c.mu.Unlock()
		if idle > rl.idleTTL {
			rl.clients.Delete(key)
		}
		return true
	})
}

func retryAfterSeconds(delay time.Duration) int {
	s := int(math.Ceil(delay.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
