package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// rateLimiter keeps one token bucket per client IP. State is
// per-instance so separate route groups don't share buckets.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      int
	burst    int
}

func (l *rateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (l *rateLimiter) cleanup(ttl, interval time.Duration) {
	for {
		time.Sleep(interval)
		l.mu.Lock()
		for ip, v := range l.visitors {
			if time.Since(v.lastSeen) > ttl {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	l := &rateLimiter{
		visitors: make(map[string]*visitor),
		rps:      config.RequestsPerSecond,
		burst:    config.Burst,
	}

	go l.cleanup(config.TTL, config.CleanupInterval)

	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
