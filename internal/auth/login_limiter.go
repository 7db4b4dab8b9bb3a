package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// LoginLimiter throttles login attempts with fixed-window counters keyed by
// username and client address. It guards only the credential check; it never
// caches a permission decision.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginLimiter builds a limiter. A nil client disables throttling.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window, logger: logger}
}

// Allow records one attempt and reports whether the caller is still within
// the window. Redis unavailability fails open: login stays reachable when the
// throttle store is down.
func (l *LoginLimiter) Allow(ctx context.Context, username, remoteAddr string) error {
	if l == nil || l.client == nil || l.maxAttempts <= 0 {
		return nil
	}

	keys := []string{loginAttemptKey("u", username)}
	if remoteAddr != "" {
		keys = append(keys, loginAttemptKey("ip", remoteAddr))
	}

	for _, key := range keys {
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("login throttle unavailable", zap.Error(err))
			return nil
		}
		if count == 1 {
			if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
				l.logger.Warn("login throttle expire failed", zap.Error(err))
			}
		}
		if count > int64(l.maxAttempts) {
			return apperrors.NewRateLimited("too many login attempts")
		}
	}
	return nil
}

// Reset clears the username counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}
	if err := l.client.Del(ctx, loginAttemptKey("u", username)).Err(); err != nil {
		l.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}

func loginAttemptKey(kind, value string) string {
	return fmt.Sprintf("login_attempts:%s:%s", kind, value)
}
