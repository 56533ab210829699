package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter is an in-process per-client token bucket. Buckets refill at
// rate tokens per second up to burst. State lives in memory and resets
// on restart, which is acceptable for a limiter.
type Limiter struct {
	mu       sync.Mutex
	rate     int
	burst    int
	tokens   map[string]int
	lastSeen map[string]time.Time
	now      func() time.Time
}

// NewLimiter creates a Limiter allowing rate requests per second with
// the given burst capacity per client.
func NewLimiter(rate, burst int) *Limiter {
	if burst < rate {
		burst = rate
	}
	return &Limiter{
		rate:     rate,
		burst:    burst,
		tokens:   make(map[string]int),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// WithClock overrides the refill clock for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow consumes one token for key, reporting false when the bucket is
// empty. The refill timestamp only advances when at least one token was
// added, so rapid sub-second calls cannot starve the bucket forever.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if _, ok := l.tokens[key]; !ok {
		l.tokens[key] = l.burst
		l.lastSeen[key] = now
	}

	refill := int(now.Sub(l.lastSeen[key]).Seconds()) * l.rate
	if refill > 0 {
		l.lastSeen[key] = now
		l.tokens[key] += refill
		if l.tokens[key] > l.burst {
			l.tokens[key] = l.burst
		}
	}

	if l.tokens[key] <= 0 {
		return false
	}
	l.tokens[key]--
	return true
}

// RateLimit returns middleware that applies per-client-IP rate limiting
// using the provided Limiter.
func RateLimit(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(extractClientIP(r)) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractClientIP attempts to determine the real client IP from standard
// proxy headers, falling back to the direct remote address.
func extractClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
