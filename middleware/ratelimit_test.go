// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func post(h http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(3)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Limit(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(h, "10.0.0.1"), "attempt %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.1"))

	// Other clients have their own budget
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.2"))

	// One token refills every 20 seconds at 3 per minute
	now = now.Add(21 * time.Second)
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.1"))
}

func postVia(h http.Handler, remote, xff string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remote + ":5000"
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterIgnoresForwardedForFromClients(t *testing.T) {
	rl := NewRateLimiter(2)
	h := rl.Limit(okHandler())

	allowed := 0
	for i := 0; i < 50; i++ {
		if postVia(h, "203.0.113.9", fmt.Sprintf("10.0.0.%d", i)) == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
	assert.Equal(t, 1, rl.Size())
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	rl := NewRateLimiter(2).TrustProxies([]netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")})
	h := rl.Limit(okHandler())

	// Clients behind the proxy have their own budgets
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, postVia(h, "10.0.0.5", "198.51.100.7"))
		assert.Equal(t, http.StatusOK, postVia(h, "10.0.0.5", "198.51.100.8"))
	}
	assert.Equal(t, http.StatusTooManyRequests, postVia(h, "10.0.0.5", "198.51.100.7"))

	// Entries the client prepends are ignored; the proxy's hop counts
	for i := 0; i < 5; i++ {
		code := postVia(h, "10.0.0.5", fmt.Sprintf("192.0.2.%d, 198.51.100.8", i))
		assert.Equal(t, http.StatusTooManyRequests, code)
	}
}

func TestRateLimiterIgnoresGET(t *testing.T) {
	rl := NewRateLimiter(1)
	h := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 0, rl.Size())
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Limit(okHandler())

	post(h, "10.0.0.1")
	now = now.Add(10 * time.Minute)
	post(h, "10.0.0.2")

	assert.Equal(t, 1, rl.Cleanup(5*time.Minute))
	assert.Equal(t, 1, rl.Size())
}
