package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
)

type validator interface {
	Validate() error
}

// Singleton 單一物件, 例如 settings 與目前登入的使用者
type Singleton[T any] struct {
	key    string
	opts   Options
	decode func(data []byte) (T, error)
}

func NewSingleton[T any](key string, opts Options) *Singleton[T] {
	return &Singleton[T]{key: key, opts: opts.withDefaults(), decode: decodeOne[T]}
}

// WithDecoder 替換預設的 json.Unmarshal
func (s *Singleton[T]) WithDecoder(decode func(data []byte) (T, error)) *Singleton[T] {
	s.decode = decode
	return s
}

func decodeOne[T any](data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}

func (s *Singleton[T]) Key() string {
	return s.key
}

// Get 不存在或無法解析時 found 為 false
func (s *Singleton[T]) Get(r kv.Reader) (T, bool, error) {
	var value T
	data, err := r.Get(s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("read %s: %w", s.key, err)
	}
	value, err = s.decode(data)
	if err != nil {
		s.opts.Logger.Warn().Str("collection", s.key).Err(err).Msg("malformed singleton, ignoring")
		var zero T
		return zero, false, nil
	}
	if v, ok := any(&value).(validator); ok {
		if err := v.Validate(); err != nil {
			s.opts.Logger.Warn().Str("collection", s.key).Err(err).Msg("invalid singleton, ignoring")
			var zero T
			return zero, false, nil
		}
	}
	return value, true, nil
}

// Put 整份覆寫, 不與舊值合併
func (s *Singleton[T]) Put(tx kv.Txn, value T) error {
	if v, ok := any(&value).(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := tx.Put(s.key, data); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

func (s *Singleton[T]) Delete(tx kv.Txn) error {
	return tx.Delete(s.key)
}
