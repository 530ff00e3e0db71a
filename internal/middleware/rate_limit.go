package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// idleLimiterTTL is how long an unused per-IP limiter is kept
	idleLimiterTTL = 10 * time.Minute
	// limiterCleanupInterval spaces out scans for idle limiters
	limiterCleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time

	lastCleanup time.Time
}

// NewRateLimiter allows perMinute requests per IP with the given burst. A
// non-positive perMinute turns limiting off.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		limit:       limit,
		burst:       burst,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Allow reports whether ip may make another request now
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	if now.Sub(l.lastCleanup) >= limiterCleanupInterval {
		l.cleanup(now)
	}

	return v.limiter.AllowN(now, 1)
}

// cleanup drops limiters idle for longer than idleLimiterTTL. Callers hold mu.
func (l *RateLimiter) cleanup(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleLimiterTTL {
			delete(l.visitors, key)
		}
	}
	l.lastCleanup = now
}

// Middleware rejects over-limit clients with 429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := utils.GetRealIP(c)
		if !l.Allow(ip) {
			logrus.WithFields(logrus.Fields{
				"ip":   ip,
				"path": c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests. Try again later.",
				"code":    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
