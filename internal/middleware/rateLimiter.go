package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"memorial/internal/config"
	"memorial/pkg/utils"

	"golang.org/x/time/rate"
)

// Configuration
const (
	// Rate Limit Rules
	DefaultRequests = 20 // Steady state rate (token refilling speed)

	BurstSize = 50 // Max burst capacity (bucket size) for traffic spikes

	// Garbage Collection
	VisitorTTL      = 5 * time.Minute // Time before an inactive IP is removed from memory
	CleanupInterval = 3 * time.Minute // Frequency of the cleanup routine
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int

	// Proxies are the peers allowed to name the client in forwarding
	// headers. Empty keys every request on its socket address.
	Proxies utils.ProxyList

	// Code and Message shape the 429 response.
	Code    string
	Message string
}

func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if requests <= 0 {
		requests = DefaultRequests
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = BurstSize
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		Code:     utils.ErrRequestRateLimitExceeded,
		Message:  "Too many requests. Please wait a moment.",
	}
}

// FromConfig builds the global limiter. It returns nil when rate limiting
// is disabled.
func FromConfig(conf config.RateLimitConfig) *RateLimiter {
	if !conf.Enabled {
		return nil
	}
	return NewRateLimiter(conf.Requests, utils.ParseDuration(conf.Window, time.Second), conf.Burst)
}

// Allow takes a token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Cleanup removes visitors idle for longer than ttl.
func (rl *RateLimiter) Cleanup(ttl time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > ttl {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}

// StartCleanup evicts stale visitors until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(VisitorTTL)
		}
	}
}

// Middleware enforces the quota per client IP. A nil limiter passes
// everything through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.Proxies.ClientIP(r)) {
			utils.WriteError(w, http.StatusTooManyRequests, rl.Code, rl.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
