package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, period time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, period)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)
	defer rl.Stop()

	for i := range 3 {
		if ok, _ := rl.allow("a"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, retry := rl.allow("a")
	if ok {
		t.Fatal("4th request should be limited")
	}
	if retry != time.Minute {
		t.Errorf("retryAfter = %v, want 1m", retry)
	}
	if ok, _ := rl.allow("b"); !ok {
		t.Error("other client should be allowed")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Minute)
	defer rl.Stop()

	rl.allow("a")
	clock.advance(30 * time.Second)
	rl.allow("a")

	if ok, retry := rl.allow("a"); ok || retry != 30*time.Second {
		t.Fatalf("allow = %v, %v; want false, 30s", ok, retry)
	}

	clock.advance(31 * time.Second)
	if ok, _ := rl.allow("a"); !ok {
		t.Error("oldest request left the window, should be allowed")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl, clock := newTestLimiter(10, time.Minute)
	defer rl.Stop()

	rl.allow("old")
	clock.advance(50 * time.Second)
	rl.allow("fresh")
	clock.advance(20 * time.Second)

	rl.prune()

	rl.mu.Lock()
	_, oldExists := rl.clients["old"]
	_, freshExists := rl.clients["fresh"]
	rl.mu.Unlock()

	if oldExists {
		t.Error("idle client should be pruned")
	}
	if !freshExists {
		t.Error("active client should be kept")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(2, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := range 2 {
		if rr := send(); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, rr.Code)
		}
	}
	rr := send()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name       string
		trusted    []netip.Prefix
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", want: "192.168.1.1"},
		{name: "ipv6 remote addr", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "forwarded ignored without trusted proxies", xff: "203.0.113.9", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "real ip ignored without trusted proxies", xri: "203.0.113.9", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "forwarded ignored from untrusted peer", trusted: proxies, xff: "203.0.113.9", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "single hop behind proxy", trusted: proxies, xff: "203.0.113.9", remoteAddr: "10.0.0.2:1234", want: "203.0.113.9"},
		{name: "spoofed leftmost entry ignored", trusted: proxies, xff: "1.2.3.4, 203.0.113.9", remoteAddr: "10.0.0.2:1234", want: "203.0.113.9"},
		{name: "trusted hops skipped", trusted: proxies, xff: "203.0.113.9, 10.0.0.7", remoteAddr: "10.0.0.2:1234", want: "203.0.113.9"},
		{name: "garbage hop falls back to peer", trusted: proxies, xff: "1.2.3.4, not-an-ip", remoteAddr: "10.0.0.2:1234", want: "10.0.0.2"},
		{name: "real ip behind proxy", trusted: proxies, xri: "203.0.113.9", remoteAddr: "10.0.0.2:1234", want: "203.0.113.9"},
		{name: "only trusted hops", trusted: proxies, xff: "10.0.0.9", remoteAddr: "10.0.0.2:1234", want: "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req, tt.trusted); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterIgnoresRotatedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	passed := 0
	for i := range 10 {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "192.0.2.50:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			passed++
		}
	}
	if passed != 2 {
		t.Errorf("%d of 10 requests passed, want 2", passed)
	}
}
