package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginLimiter bounds authentication attempts per username and source
// address inside a fixed window.
type LoginLimiter interface {
	Allow(ctx context.Context, username, remoteAddr string) bool
}

type redisLoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewRedisLoginLimiter builds a fixed-window limiter on Redis INCR+EXPIRE.
func NewRedisLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &redisLoginLimiter{client: client, maxAttempts: maxAttempts, window: window, logger: logger}
}

// Allow counts the attempt and reports whether it is within the window
// budget. A Redis outage fails open: login availability is preferred over
// limiter strictness.
func (l *redisLoginLimiter) Allow(ctx context.Context, username, remoteAddr string) bool {
	key := fmt.Sprintf("login_attempts:%s:%s", username, remoteAddr)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}
	return count <= int64(l.maxAttempts)
}
