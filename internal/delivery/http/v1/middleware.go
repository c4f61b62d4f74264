package v1

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/services"
)

const userCtxKey = "user"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		abort(c, newUnauthorizedError(services.ErrMissingToken.Error()))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
		h.logger.Error().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(services.ErrInvalidToken.Error()))
		return
	}

	user, err := h.auth.Authenticate(c, parts[1])
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to authenticate")
		h.abortWithServiceError(c, err)
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// RequestLogger writes one log line per handled request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("handled request")
	}
}

// Recovery turns panics into the generic 500 envelope.
func Recovery(logger zerolog.Logger, exposeErrors bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		logger.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		abort(c, newServerError(err, exposeErrors))
	})
}

// visitorTTL is how long an idle client keeps its limiter.
const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipRateLimiter struct {
	r   rate.Limit
	b   int
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newIPRateLimiter(r rate.Limit, b int, ttl time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		r:        r,
		b:        b,
		ttl:      ttl,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// RateLimiter allows r requests per second with burst b for every client IP.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return newIPRateLimiter(r, b, visitorTTL).handle
}

func (l *ipRateLimiter) handle(c *gin.Context) {
	if !l.limiter(c.ClientIP()).Allow() {
		abort(c, newAPIError(http.StatusTooManyRequests, errTooManyRequests.Error()))
		return
	}
	c.Next()
}

func (l *ipRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.r, l.b)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops visitors idle for longer than ttl. Callers hold mu.
func (l *ipRateLimiter) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}
