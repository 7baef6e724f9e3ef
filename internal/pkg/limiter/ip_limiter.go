/*
Package limiter provides per-IP rate limiting for connection attempts.

It keeps one token bucket (rate.Limiter) per client IP and periodically
drops buckets that have refilled completely, so idle IPs do not accumulate.
*/
package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gorelay/internal/pkg/logx"
)

// cleanupInterval is how often full, inactive buckets are swept.
const cleanupInterval = 3 * time.Minute

// IPRateLimiter maps client IP addresses to token buckets sharing one
// rate/burst configuration.
type IPRateLimiter struct {
	// mu protects concurrent access to the limits map.
	mu *sync.RWMutex

	// limits stores the per-IP rate.Limiter instances.
	limits map[string]*rate.Limiter

	// r is the sustained event rate allowed per IP.
	r rate.Limit

	// b is the burst size of each bucket.
	b int
}

// NewIPRateLimiter creates an IPRateLimiter with the given rate and burst,
// and starts the background sweep of inactive buckets.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		mu:     &sync.RWMutex{},
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanUpVisitors()

	return i
}

// GetLimiter returns the bucket for the given IP, creating it on first use.
// Creation uses double-checked locking to stay safe under concurrent misses.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if !exists {
		i.mu.Lock()
		limiter, exists = i.limits[ip]
		if !exists {
			limiter = rate.NewLimiter(i.r, i.b)
			i.limits[ip] = limiter
		}
		i.mu.Unlock()
	}

	return limiter
}

// cleanUpVisitors removes buckets whose tokens have fully refilled, meaning
// the IP has been quiet for at least a burst's worth of refill time.
func (i *IPRateLimiter) cleanUpVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		i.mu.Lock()
		count := 0
		for ip, limiter := range i.limits {
			if limiter.TokensAt(time.Now()) >= float64(limiter.Burst()) {
				delete(i.limits, ip)
				count++
			}
		}
		remaining := len(i.limits)
		i.mu.Unlock()

		logx.Info("Rate limiter cleanup finished.", "removed", count, "remaining", remaining)
	}
}
