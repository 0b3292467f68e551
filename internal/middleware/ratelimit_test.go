package middleware

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_Handler(t *testing.T) {
	var buf strings.Builder
	rl := NewRateLimiter(1, 2, time.Minute, newTestLogger(&buf))
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return frozen }

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/api/v1/diets", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = doGet(r, "/api/v1/diets", nil).Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}
	if !strings.Contains(buf.String(), "rate limit exceeded") {
		t.Errorf("rejection not logged: %s", buf.String())
	}

	frozen = frozen.Add(time.Second)
	if code := doGet(r, "/api/v1/diets", nil).Code; code != http.StatusOK {
		t.Errorf("after refill code = %d, want 200", code)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10, 10, time.Minute, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(2 * time.Minute)
	rl.allow("10.0.0.2")

	if left := rl.Sweep(); left != 1 {
		t.Errorf("Sweep() left %d buckets, want 1", left)
	}
}
