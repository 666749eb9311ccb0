package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterAllow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	if rl.Allow("a") {
		t.Fatal("fourth request allowed")
	}
	if !rl.Allow("b") {
		t.Fatal("separate key shares the bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("bucket not refilled after interval")
	}

	rl.Forget("a")
	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d after forget rejected", i+1)
		}
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 1000; i++ {
		if !rl.Allow("a") {
			t.Fatal("disabled limiter rejected a request")
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(10 * time.Minute)
	rl.Allow("fresh")
	rl.cleanup()

	if _, ok := rl.visitors["stale"]; ok {
		t.Error("stale visitor kept")
	}
	if _, ok := rl.visitors["fresh"]; !ok {
		t.Error("fresh visitor dropped")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, time.Minute)

	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/x", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("first status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/x", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
}
