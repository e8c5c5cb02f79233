package api

import (
	"net/http"
	"testing"
	"time"
)

// TestIPRateLimiterAllowsWithinBurst verifies requests within the
// configured burst succeed before the limiter starts rejecting.
func TestIPRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 3, CleanupInterval: time.Hour})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("expected request %d within burst to be allowed", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("expected the request beyond burst to be rejected")
	}
}

// TestIPRateLimiterTracksIPsIndependently verifies one IP exhausting its
// burst doesn't affect another IP's allowance.
func TestIPRateLimiterTracksIPsIndependently(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected the first request from 1.1.1.1 to be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("expected the second request from 1.1.1.1 to be rejected")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("expected 2.2.2.2's first request to be allowed regardless of 1.1.1.1's state")
	}
}

// TestGetClientIPPrefersForwardedFor verifies the X-Forwarded-For header
// takes priority and only the first (original client) address is used.
func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	req.RemoteAddr = "192.168.1.1:12345"

	if got := GetClientIP(req); got != "10.0.0.1" {
		t.Errorf("expected 10.0.0.1, got %q", got)
	}
}

// TestGetClientIPFallsBackToRemoteAddr verifies a request with neither
// forwarding header falls back to the TCP peer address.
func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	req, _ := http.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.5:54321"

	if got := GetClientIP(req); got != "203.0.113.5" {
		t.Errorf("expected 203.0.113.5, got %q", got)
	}
}

// TestWebSocketRateLimiterCapsConcurrentConnections verifies the limiter
// rejects once the per-IP cap is hit, then allows again after Release.
func TestWebSocketRateLimiterCapsConcurrentConnections(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("5.5.5.5") || !wrl.Allow("5.5.5.5") {
		t.Fatal("expected the first two connections to be allowed")
	}
	if wrl.Allow("5.5.5.5") {
		t.Error("expected the third concurrent connection to be rejected")
	}

	wrl.Release("5.5.5.5")
	if !wrl.Allow("5.5.5.5") {
		t.Error("expected a connection to be allowed again after a release")
	}
}

// TestIsAllowedOriginAcceptsLocalhostAnyPort verifies any localhost origin
// is accepted, while an unlisted external origin is rejected.
func TestIsAllowedOriginAcceptsLocalhostAnyPort(t *testing.T) {
	if !IsAllowedOrigin("http://localhost:9999") {
		t.Error("expected any localhost origin to be allowed")
	}
	if IsAllowedOrigin("http://evil.example.com") {
		t.Error("expected an unlisted external origin to be rejected")
	}
	if IsAllowedOrigin("") {
		t.Error("expected an empty origin to be rejected")
	}
}
