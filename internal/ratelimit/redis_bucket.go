package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 回傳 1 代表放行
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1])
local lastRefill = tonumber(bucket[2])

if tokens == nil then
	tokens = capacity
	lastRefill = now
end

local elapsed = (now - lastRefill) / 1000000000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('EXPIRE', key, math.ceil(capacity / rate) + 1)
return allowed
`)

/*
RedisTokenBucket 多個 instance 共用額度
桶的狀態放在 redis hash, 由 lua script 原子更新
*/
type RedisTokenBucket struct {
	LimiterConfig
	client redis.Scripter
	now    func() time.Time
}

var _ ILimiter = (*RedisTokenBucket)(nil)

func NewRedisTokenBucket(client redis.Scripter, config LimiterConfig) *RedisTokenBucket {
	return &RedisTokenBucket{
		LimiterConfig: config.withDefaults(),
		client:        client,
		now:           time.Now,
	}
}

func (r *RedisTokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	result, err := tokenBucketScript.Run(ctx, r.client,
		[]string{fmt.Sprintf("%s:%s", r.Prefix, key)},
		r.Capacity,
		r.RatePS,
		r.now().UnixNano(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("run token bucket script: %w", err)
	}
	return result == 1, nil
}
