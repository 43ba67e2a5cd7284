package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fn := KeyByUserOrIP()
	if key := fn(c); key == "" || key[:3] != "ip:" {
		t.Fatalf("fallback key = %q, want ip: prefix", key)
	}
	c.Set("userID", "u1")
	if key := fn(c); key != "user:u1" {
		t.Fatalf("user key = %q", key)
	}
}

func TestRateLimiter_AllowsBurstThen429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// 0 rps with burst 2: exactly two requests pass, then every request fails.
	rl := NewRateLimiter(0, 2, func(*gin.Context) string { return "fixed" })
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests must pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests || codes[3] != http.StatusTooManyRequests {
		t.Fatalf("over-burst requests must 429, got %v", codes)
	}
}

func TestRateLimiter_429CarriesRetryAfterAndEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 1, func(*gin.Context) string { return "fixed" })
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Fatalf("missing Retry-After header")
	}
	if body := w.Body.String(); !containsAll(body, "rate_limited", "rate limit exceeded") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestRateLimiter_ReplayBypassesLimiting(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 1, func(*gin.Context) string { return "fixed" })
	r.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true) }, rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Far beyond the burst, every bypass request still passes.
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("bypass request %d got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 1, func(c *gin.Context) string { return c.GetHeader("X-Key") })
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, key := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Key", key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("fresh key %q got %d", key, w.Code)
		}
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
