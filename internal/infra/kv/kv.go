// Package kv defines the persistent key-value store the collections live in.
//
// Each logical collection is stored under one key as a JSON document. Backends must make a
// single Update atomic across every key it touches.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound key 不存在
	ErrNotFound = errors.New("key not found")
	// ErrConflict 樂觀交易重試次數用完
	ErrConflict = errors.New("transaction conflict")
	// ErrClosed store 已關閉
	ErrClosed = errors.New("store is closed")
)

// Reader 讀取單一 key, 不存在時回傳 ErrNotFound
type Reader interface {
	Get(key string) ([]byte, error)
}

// Txn 交易內的讀寫, 同一交易內可以讀到自己寫入的值
type Txn interface {
	Reader
	Put(key string, value []byte) error
	Delete(key string) error
}

type Store interface {
	// View 唯讀交易
	View(ctx context.Context, fn func(r Reader) error) error
	// Update 讀寫交易, 樂觀實作在衝突時會重跑 fn, fn 不可有外部副作用
	Update(ctx context.Context, fn func(tx Txn) error) error
	Close() error
}
