package middleware

import (
	"net/http"
	"sync"
	"time"

	"barberhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	perMin   int
}

// NewRateLimiter allows perMin requests per minute per IP, with the same
// burst. A non-positive perMin falls back to 100.
func NewRateLimiter(perMin int) *RateLimiter {
	if perMin <= 0 {
		perMin = 100
	}
	return &RateLimiter{visitors: make(map[string]*visitor), perMin: perMin}
}

func (l *RateLimiter) getLimiter(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// evictIdle drops buckets that have not been used for limiterIdleTTL.
func (l *RateLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

// StartJanitor evicts idle buckets every interval until stop is closed.
func (l *RateLimiter) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				l.evictIdle(now)
			case <-stop:
				return
			}
		}
	}()
}

// Middleware limits requests per IP address.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		if !l.getLimiter(ip, time.Now()).Allow() {
			utils.GetLogger().Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorResponse{Message: "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
