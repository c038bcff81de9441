package api

import (
	"alcyxob/dieta-core/internal/metrics"
	"alcyxob/dieta-core/internal/result"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Too many requests. Please try again later."

// LoginLimiterConfig sets the per-IP budget for login attempts.
type LoginLimiterConfig struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginLimiter throttles login attempts per client IP. Idle entries are
// dropped by a background loop until Stop is called.
type LoginLimiter struct {
	limit    rate.Limit
	burst    int
	interval time.Duration
	rec      metrics.Recorder
	log      *zap.Logger

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopCh chan struct{}
	once   sync.Once
}

// NewLoginLimiter creates the limiter and starts its cleanup loop.
func NewLoginLimiter(cfg LoginLimiterConfig, rec metrics.Recorder, log *zap.Logger) *LoginLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	l := &LoginLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    cfg.Burst,
		interval: cfg.CleanupInterval,
		rec:      rec,
		log:      log,
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.once.Do(func() { close(l.stopCh) })
}

// Middleware rejects requests over budget with 429 and a Retry-After header.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if l.get(ip).Allow() {
			c.Next()
			return
		}

		l.rec.LoginThrottled()
		l.log.Warn("login rate limit exceeded", zap.String("clientIP", ip))

		retryAfter := int(math.Ceil(1.0 / float64(l.limit)))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			result.Failure[any](result.Code(http.StatusTooManyRequests), msgTooManyRequests))
	}
}

func (l *LoginLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter
}

func (l *LoginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops entries idle for more than two intervals.
func (l *LoginLimiter) cleanup(now time.Time) {
	ttl := l.interval * 2
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > ttl {
			delete(l.limiters, ip)
		}
	}
}
