package limiter

import (
	"testing"

	"golang.org/x/time/rate"
)

// TestGetLimiterReusesBucket verifies one bucket per IP is created and
// reused across calls.
func TestGetLimiterReusesBucket(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 2)

	first := l.GetLimiter("10.0.0.1")
	second := l.GetLimiter("10.0.0.1")
	other := l.GetLimiter("10.0.0.2")

	if first != second {
		t.Error("expected the same bucket for repeated IP")
	}
	if first == other {
		t.Error("expected distinct buckets for distinct IPs")
	}
}

// TestBurstExhaustion verifies requests beyond the burst are denied.
func TestBurstExhaustion(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 2)
	bucket := l.GetLimiter("10.0.0.3")

	if !bucket.Allow() || !bucket.Allow() {
		t.Fatal("expected the burst to be allowed")
	}
	if bucket.Allow() {
		t.Error("expected denial after the burst is spent")
	}
}
