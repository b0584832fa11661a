package security

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userCommentRateKey = "comment_rate_limit:%s"

// SlidingWindowLimiter allows at most MaxRequests per key within any
// Window-long interval. State lives in a redis sorted set per key so every
// API instance shares it.
type SlidingWindowLimiter struct {
	redis       *redis.Client
	window      time.Duration
	maxRequests int64
	now         func() time.Time
}

func NewSlidingWindowLimiter(client *redis.Client, window time.Duration, maxRequests int64) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:       client,
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}
}

// Allow records one request for key and reports whether it is within the
// limit. Rejected requests are recorded too, so a client hammering the limit
// stays blocked until it backs off for a full window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	windowStart := now.Add(-l.window)
	redisKey := fmt.Sprintf(userCommentRateKey, key)

	pipe := l.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return countCmd.Val() <= l.maxRequests, nil
}
