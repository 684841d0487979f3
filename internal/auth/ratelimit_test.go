package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leafmark/leafmark/internal/config"
)

func newTestLimiter() *LoginLimiter {
	return NewLoginLimiter(config.Auth{
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	})
}

func TestLoginLimiter_LocksAfterMaxFailures(t *testing.T) {
	l := newTestLimiter()
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("1.2.3.4", "reader@example.com")
		assert.True(t, allowed)
		l.RecordFailure("1.2.3.4", "reader@example.com")
	}

	allowed, retryAfter := l.Allow("1.2.3.4", "reader@example.com")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestLoginLimiter_SuccessResets(t *testing.T) {
	l := newTestLimiter()
	defer l.Stop()

	l.RecordFailure("1.2.3.4", "reader@example.com")
	l.RecordFailure("1.2.3.4", "reader@example.com")
	l.RecordSuccess("1.2.3.4", "reader@example.com")

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("1.2.3.4", "reader@example.com")
		assert.True(t, allowed)
		l.RecordFailure("1.2.3.4", "reader@example.com")
	}
}

func TestLoginLimiter_KeysAreIndependent(t *testing.T) {
	l := newTestLimiter()
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.RecordFailure("1.2.3.4", "reader@example.com")
	}

	allowed, _ := l.Allow("5.6.7.8", "reader@example.com")
	assert.True(t, allowed, "different IP should not be locked")

	allowed, _ = l.Allow("1.2.3.4", "other@example.com")
	assert.True(t, allowed, "different email should not be locked")
}
