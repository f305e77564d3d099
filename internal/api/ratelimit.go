package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	infrajwt "github.com/jonesrussell/north-cloud/spotlight/infrastructure/jwt"
)

// idleTTL is how long a caller's limiter survives without requests.
const idleTTL = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// WriteLimiter throttles mutating requests per caller. Callers are keyed by
// token subject, falling back to the client IP.
type WriteLimiter struct {
	rps   rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	callers   map[string]*callerLimiter
	lastPrune time.Time
}

// NewWriteLimiter returns nil when rps is not positive, which disables
// throttling.
func NewWriteLimiter(rps, burst int) *WriteLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = rps
	}

	return &WriteLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
		callers: make(map[string]*callerLimiter),
	}
}

// Allow reports whether key may make another request now.
func (l *WriteLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > idleTTL {
		for k, c := range l.callers {
			if now.Sub(c.lastSeen) > idleTTL {
				delete(l.callers, k)
			}
		}
		l.lastPrune = now
	}

	c, ok := l.callers[key]
	if !ok {
		c = &callerLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.callers[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Middleware aborts with 429 once a caller exceeds its budget. A nil
// limiter passes every request through.
func (l *WriteLimiter) Middleware() gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := infrajwt.GetClaims(c); ok && claims.Sub != "" {
			key = "sub:" + claims.Sub
		}

		if !l.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
