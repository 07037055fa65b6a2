package redis

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

var ErrNoAddr = errors.New("redis address is required")

// ClientConfig 對應 REDIS_* 設定, 零值欄位使用 go-redis 預設
type ClientConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

func (c ClientConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	return opts
}

func (c ClientConfig) poolKey() string {
	return fmt.Sprintf("%s/%d", c.Addr, c.DB)
}

// 以 addr/db 為 key 的共用 client
var pools sync.Map

/*
SharedClient store 與 rate limiter 共用同一個連線池
同一個 addr/db 只會建立一個 client, 之後的呼叫忽略 Password 與 PoolSize
*/
func SharedClient(cfg ClientConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, ErrNoAddr
	}
	key := cfg.poolKey()
	if client, ok := pools.Load(key); ok {
		return client.(*redis.Client), nil
	}
	created := redis.NewClient(cfg.options())
	client, loaded := pools.LoadOrStore(key, created)
	if loaded {
		_ = created.Close()
	}
	return client.(*redis.Client), nil
}

// CloseSharedClients 程式結束時呼叫
func CloseSharedClients() error {
	var errs []error
	pools.Range(func(key, value any) bool {
		pools.Delete(key)
		if err := value.(*redis.Client).Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis %s: %w", key, err))
		}
		return true
	})
	return errors.Join(errs...)
}
