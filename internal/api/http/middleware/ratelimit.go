package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps a token bucket per client. Clients are keyed by
// authenticated subject when available, falling back to remote address.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	maxIdle  time.Duration
	lastSeen time.Time
}

// NewRateLimiter allows ratePerMin requests per minute with the given burst.
func NewRateLimiter(ratePerMin float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(ratePerMin / 60.0),
		burst:   burst,
		maxIdle: 10 * time.Minute,
	}
}

// Middleware rejects over-budget requests with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("subject_id")
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastAccess = now

	// Piggyback idle-entry cleanup on traffic instead of a background goroutine
	if now.Sub(rl.lastSeen) > rl.maxIdle {
		for k, v := range rl.clients {
			if now.Sub(v.lastAccess) > rl.maxIdle {
				delete(rl.clients, k)
			}
		}
	}
	rl.lastSeen = now
	rl.mu.Unlock()

	return cl.limiter.Allow()
}
