package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leafmark/leafmark/internal/config"
)

// LoginLimiter throttles login attempts per IP+email using a sliding window
// with a lockout once the attempt budget is spent.
type LoginLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*loginAttempts
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	stop        chan struct{}
}

type loginAttempts struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

const limiterCleanupInterval = 5 * time.Minute

// NewLoginLimiter creates a login limiter from auth configuration and starts
// its background cleanup goroutine. Call Stop when shutting down.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		attempts:    make(map[string]*loginAttempts),
		maxAttempts: cfg.MaxLoginAttempts,
		window:      cfg.RateLimitWindow,
		lockout:     cfg.LockoutDuration,
		stop:        make(chan struct{}),
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.cleanupLoop()

	return l
}

// Stop terminates the background cleanup goroutine.
func (l *LoginLimiter) Stop() {
	close(l.stop)
}

func limiterKey(ip, email string) string {
	return ip + "|" + NormalizeEmail(email)
}

// Allow reports whether a login attempt may proceed. When denied, retryAfter
// tells the caller how long until the lockout expires.
func (l *LoginLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[limiterKey(ip, email)]
	if !ok {
		return true, 0
	}

	if now.Before(rec.lockedUntil) {
		return false, rec.lockedUntil.Sub(now)
	}

	if now.Sub(rec.windowStart) > l.window {
		return true, 0
	}

	if rec.count < l.maxAttempts {
		return true, 0
	}

	return false, l.lockout
}

// RecordFailure counts a failed login. Crossing the attempt budget starts the
// lockout.
func (l *LoginLimiter) RecordFailure(ip, email string) {
	key := limiterKey(ip, email)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[key]
	if !ok || now.Sub(rec.windowStart) > l.window {
		rec = &loginAttempts{windowStart: now}
		l.attempts[key] = rec
	}

	rec.count++
	if rec.count >= l.maxAttempts {
		rec.lockedUntil = now.Add(l.lockout)
	}
}

// RecordSuccess clears the failure record after a successful login.
func (l *LoginLimiter) RecordSuccess(ip, email string) {
	l.mu.Lock()
	delete(l.attempts, limiterKey(ip, email))
	l.mu.Unlock()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) cleanup() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, rec := range l.attempts {
		windowExpired := now.Sub(rec.windowStart) > l.window+l.lockout
		lockoutExpired := now.After(rec.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(l.attempts, key)
		}
	}
}

// Reject writes the 429 response for a locked-out login attempt.
func (l *LoginLimiter) Reject(c *gin.Context, retryAfter time.Duration) {
	c.Header("Retry-After", retryAfter.String())
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many login attempts",
		"retry_after": retryAfter.String(),
	})
}
