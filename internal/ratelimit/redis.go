package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/casesimpli/assistant-backend/internal/cache/redis"
)

const redisKeyPrefix = "ratelimit:chat:"

// slidingWindowScript keeps one sorted set per user scored by admission time in milliseconds.
// Returns {1, 0} when admitted and {0, retry_ms} when rejected.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, tonumber(oldest[2]) + window - now}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// Redis is a sliding window limiter shared by every replica using the same Redis.
type Redis struct {
	client *redis.Client
	window time.Duration
	max    int
	now    func() time.Time
}

// NewRedis creates a Redis backed limiter.
func NewRedis(client *redis.Client, window time.Duration, max int) *Redis {
	return &Redis{client: client, window: window, max: max, now: time.Now}
}

// Admit records a request for userID if the window has room.
func (r *Redis) Admit(ctx context.Context, userID string) (Decision, error) {
	now := r.now().UnixMilli()
	res, err := r.client.RunInts(ctx, slidingWindowScript,
		[]string{redisKeyPrefix + userID},
		now,
		r.window.Milliseconds(),
		r.max,
		strconv.FormatInt(now, 10)+"-"+uuid.NewString(),
	)
	if err != nil {
		return Decision{}, fmt.Errorf("run sliding window script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected sliding window reply %v", res)
	}
	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return rejectAfter(time.Duration(res[1])*time.Millisecond, r.window), nil
}
