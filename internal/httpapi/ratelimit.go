package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientEntry holds a rate limiter and its last access time.
type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// clientLimiter hands out a token-bucket limiter per client IP and
// drops entries that have been idle long enough to refill completely.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	maxIdle time.Duration
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		maxIdle: 3 * time.Minute,
	}
}

func (l *clientLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.clients[clientIP]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientIP] = entry
	}
	entry.lastAccess = now

	if len(l.clients) > 1 {
		l.evictIdle(now)
	}

	return entry.limiter.Allow()
}

func (l *clientLimiter) evictIdle(now time.Time) {
	for ip, entry := range l.clients {
		if now.Sub(entry.lastAccess) > l.maxIdle {
			delete(l.clients, ip)
		}
	}
}

// RateLimitMiddleware returns an Echo middleware enforcing a per-client
// request rate. Over-limit requests get 429 without reaching the
// handler.
func RateLimitMiddleware(perSecond float64, burst int, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := newClientLimiter(perSecond, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !limiter.allow(ip) {
				logger.Warn("rate limit exceeded", zap.String("client_ip", ip))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
