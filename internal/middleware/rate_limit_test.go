package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(1, 2))
	r.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("burst_then_limited", func(t *testing.T) {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Errorf("first request: status = %d, want 200", code)
		}
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Errorf("second request: status = %d, want 200", code)
		}
		if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
			t.Errorf("third request: status = %d, want 429", code)
		}
	})

	t.Run("limits_are_per_ip", func(t *testing.T) {
		if code := send("10.0.0.2"); code != http.StatusOK {
			t.Errorf("fresh ip: status = %d, want 200", code)
		}
	})
}
