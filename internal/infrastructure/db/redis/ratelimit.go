package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// incrExpire increments the window counter and starts its TTL on the first
// hit, atomically. Returns {count, ttl_ms}.
var incrExpire = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the time left until the current window closes.
	Reset time.Duration
}

// FixedWindowLimiter counts hits per key in fixed windows stored in Redis.
type FixedWindowLimiter struct {
	client *redis.Client
}

func NewFixedWindowLimiter(client *redis.Client) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client}
}

// Allow records a hit for key and reports whether it is within max per window.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	res, err := incrExpire.Run(ctx, l.client, []string{keyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit incr: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= max,
		Limit:     max,
		Remaining: remaining,
		Reset:     ttl,
	}, nil
}
