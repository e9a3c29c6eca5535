package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP. Entries expire a
// minute after creation so the map does not grow with every address the
// gateway ever used.
type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newIPLimiter(perSecond, burst int) *ipLimiter {
	return &ipLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.clients[ip]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.clients[ip] = limiter

		go func() {
			time.Sleep(time.Minute)
			l.mu.Lock()
			delete(l.clients, ip)
			l.mu.Unlock()
		}()
	}
	return limiter
}

// RateLimiter returns a Gin middleware that limits requests per client IP.
// It guards the webhook endpoint against a misbehaving gateway.
func RateLimiter(perSecond, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(perSecond, burst)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": gin.H{"code": "RATE_LIMITED", "message": "Too many requests"}})
			return
		}
		c.Next()
	}
}
