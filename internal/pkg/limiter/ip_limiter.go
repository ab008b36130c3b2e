/*
Package limiter provides per-IP request rate limiting.

It uses token buckets (rate.Limiter) keyed by client IP and periodically discards
limiters whose buckets have refilled, so the map does not grow without bound. This
is the request-level limiter; the per-user chat-flood window lives in the game
package and has different semantics.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/resp"
)

// cleanupInterval is how often idle per-IP limiters are discarded.
const cleanupInterval = 3 * time.Minute

// IPRateLimiter applies a token-bucket rate limit per client IP address.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter

	// r and b define the refill rate and burst capacity of each bucket.
	r rate.Limit
	b int
}

// NewIPRateLimiter creates a limiter with the given rate and burst and starts the
// background cleanup of idle entries.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go l.cleanupIdle()

	return l
}

// GetLimiter returns the limiter for the given IP, creating it on first use.
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limits[ip]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists = l.limits[ip]; !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limits[ip] = limiter
	}
	return limiter
}

// cleanupIdle periodically removes limiters whose buckets are full again, meaning
// the IP has been quiet for at least a full refill.
func (l *IPRateLimiter) cleanupIdle() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		removed := 0
		for ip, limiter := range l.limits {
			if limiter.TokensAt(time.Now()) >= float64(limiter.Burst()) {
				delete(l.limits, ip)
				removed++
			}
		}
		remaining := len(l.limits)
		l.mu.Unlock()

		logx.Info("Rate limiter cleanup finished", "removed", removed, "remaining", remaining)
	}
}

// ClientIP extracts the client address from a request, falling back to the raw
// RemoteAddr when it has no port.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}

// Middleware returns an HTTP middleware that rejects requests above the limit with
// a 429 response.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.GetLimiter(ClientIP(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
