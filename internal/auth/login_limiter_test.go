package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

func newTestLimiter(t *testing.T, maxAttempts int) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginLimiter(client, maxAttempts, time.Minute, zap.NewNop()), mr
}

func TestLoginLimiterAllowsWithinWindow(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, "alice", "10.0.0.1"))
	}
}

func TestLoginLimiterRejectsExcessAttempts(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "alice", "10.0.0.1"))
	require.NoError(t, limiter.Allow(ctx, "alice", "10.0.0.1"))

	err := limiter.Allow(ctx, "alice", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, "RATE_LIMITED", apperrors.CodeOf(err))
}

func TestLoginLimiterResetClearsCounter(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "alice", ""))
	require.NoError(t, limiter.Allow(ctx, "alice", ""))
	limiter.Reset(ctx, "alice")

	assert.NoError(t, limiter.Allow(ctx, "alice", ""))
}

func TestLoginLimiterExpiresWindow(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "alice", ""))
	require.Error(t, limiter.Allow(ctx, "alice", ""))

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, limiter.Allow(ctx, "alice", ""))
}

func TestLoginLimiterFailsOpen(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	mr.Close()
	assert.NoError(t, limiter.Allow(ctx, "alice", ""),
		"an unreachable throttle store must not lock out logins")
}

func TestLoginLimiterDisabledWithoutClient(t *testing.T) {
	limiter := NewLoginLimiter(nil, 1, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, limiter.Allow(ctx, "alice", ""))
	assert.NoError(t, limiter.Allow(ctx, "alice", ""))
	limiter.Reset(ctx, "alice")
}
