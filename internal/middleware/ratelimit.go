package middleware

import (
	"net/http" // HTTP status codes
	"strconv"  // Header formatting
	"sync"     // Limiter map
	"time"     // Windows and cleanup

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/time/rate"     // Token buckets
)

// ipLimiter keeps one token bucket per client IP
type ipLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	l.maybeCleanup() // Before storing, so the new bucket survives it
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	return actual.(*rate.Limiter)
}

// maybeCleanup drops buckets that refilled completely, at most every five minutes
func (l *ipLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitByIP allows requests per window for each client IP, all usable as a burst
func RateLimitByIP(requests int, window time.Duration) gin.HandlerFunc {
	l := &ipLimiter{
		rate:        rate.Limit(float64(requests) / window.Seconds()),
		burst:       requests,
		lastCleanup: time.Now(),
	}
	return func(c *gin.Context) {
		ip := c.ClientIP() // Honours the trusted proxy list
		limiter := l.get(ip)
		if limiter.Allow() {
			c.Next()
			return
		}
		reservation := limiter.Reserve() // When the next token arrives
		retryAfter := max(int(reservation.Delay().Seconds()), 1)
		reservation.Cancel()

		logrus.WithFields(logrus.Fields{
			"ip":          ip,                 // Client IP
			"path":        c.Request.URL.Path, // Request path
			"retry_after": retryAfter,         // Seconds to wait
		}).Warn("Rate limit exceeded")
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
	}
}
