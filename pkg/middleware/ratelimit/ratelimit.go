package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/inventory/pkg/logging"
)

type Config struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		PerMinute:       30,
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per client IP.
type Limiter struct {
	perMinute int
	limit     rate.Limit
	burst     int
	ttl       time.Duration

	mu      sync.RWMutex
	clients map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = def.PerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		perMinute: cfg.PerMinute,
		limit:     rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:     cfg.Burst,
		ttl:       cfg.CleanupInterval * 2,
		clients:   make(map[string]*clientLimiter),
		stopCh:    make(chan struct{}),
	}
	go l.cleanupLoop(cfg.CleanupInterval)
	return l
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if l.get(ip).Allow() {
				return next(c)
			}

			logging.FromContext(c.Request().Context()).Warn("rate_limit_exceeded",
				"status", 429, "remote_ip", ip, "path", c.Path())

			c.Response().Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
		}
	}
}

func (l *Limiter) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	cl, ok := l.clients[key]
	l.mu.RUnlock()

	if ok {
		l.mu.Lock()
		cl.lastAccess = time.Now()
		l.mu.Unlock()
		return cl.limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cl, ok := l.clients[key]; ok {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	l.clients[key] = &clientLimiter{limiter: lim, lastAccess: time.Now()}
	return lim
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
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

func (l *Limiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, cl := range l.clients {
		if now.Sub(cl.lastAccess) > l.ttl {
			delete(l.clients, key)
		}
	}
}

func (l *Limiter) retryAfterSeconds() int {
	sec := int(math.Ceil(60.0 / float64(l.perMinute)))
	if sec < 1 {
		sec = 1
	}
	return sec
}
