package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestTimeout(t *testing.T) {
	tests := []struct {
		name         string
		d            time.Duration
		wantDeadline bool
	}{
		{"bounded", time.Minute, true},
		{"disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Timeout(tt.d))
			r.GET("/", func(c *gin.Context) {
				deadline, ok := c.Request.Context().Deadline()
				if ok != tt.wantDeadline {
					t.Errorf("deadline set = %v, want %v", ok, tt.wantDeadline)
				}
				if ok && time.Until(deadline) > tt.d {
					t.Errorf("deadline %v exceeds %v", time.Until(deadline), tt.d)
				}
				c.Status(http.StatusNoContent)
			})

			if w := doGet(r, "/", nil); w.Code != http.StatusNoContent {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
}
