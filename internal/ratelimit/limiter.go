package ratelimit

import (
	"context"
	"time"
)

// ILimiter 每個 key 各自計算額度
type ILimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type LimiterConfig struct {
	// Prefix redis key 前綴
	Prefix string
	// Capacity 視窗內或桶內最多可用的次數
	Capacity int
	// RatePS 每秒補充的 token 數, 只有 token bucket 使用
	RatePS int
	// Window 固定視窗長度
	Window time.Duration
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Prefix:   "ratelimit",
		Capacity: 100,
		RatePS:   10,
		Window:   time.Second,
	}
}

func (c LimiterConfig) withDefaults() LimiterConfig {
	def := GetDefaultLimiterConfig()
	if c.Prefix == "" {
		c.Prefix = def.Prefix
	}
	if c.Capacity <= 0 {
		c.Capacity = def.Capacity
	}
	if c.RatePS <= 0 {
		c.RatePS = def.RatePS
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	return c
}
