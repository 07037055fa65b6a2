package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("record not found")

// Record 集合內的紀錄都內嵌 model.Base
type Record interface {
	GetID() string
	Meta() *model.Base
	Validate() error
}

type Options struct {
	Logger *zerolog.Logger
	Now    func() time.Time
	NewID  func() string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Decoder 解析整個集合, 回傳 nil slice 代表整份資料無法解析,
// 非 nil slice 加上 error 代表部分紀錄被丟棄
type Decoder[T any] func(data []byte) ([]T, error)

/*
Collection 一個 key 存一整個 JSON 陣列
讀取:
  - key 不存在: 空集合
  - JSON 壞掉: 記 log, 當作空集合
  - 不符合驗證的紀錄: 記 log, 丟棄

寫入一律整份覆寫
*/
type Collection[T any, P interface {
	*T
	Record
}] struct {
	key    string
	opts   Options
	decode Decoder[T]
}

func NewCollection[T any, P interface {
	*T
	Record
}](key string, opts Options) *Collection[T, P] {
	return &Collection[T, P]{
		key:    key,
		opts:   opts.withDefaults(),
		decode: decodeEach[T],
	}
}

// WithDecoder 替換預設的解析方式, 例如需要相容舊格式的集合
func (c *Collection[T, P]) WithDecoder(decode Decoder[T]) *Collection[T, P] {
	c.decode = decode
	return c
}

func (c *Collection[T, P]) Key() string {
	return c.key
}

func decodeEach[T any](data []byte) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	items := make([]T, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			errs = append(errs, fmt.Errorf("[%d]: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	return items, errors.Join(errs...)
}

func (c *Collection[T, P]) List(r kv.Reader) ([]T, error) {
	data, err := r.Get(c.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}

	items, err := c.decode(data)
	if items == nil {
		c.opts.Logger.Warn().Str("collection", c.key).Err(err).Msg("malformed collection, treating as empty")
		return []T{}, nil
	}
	if err != nil {
		c.opts.Logger.Warn().Str("collection", c.key).Err(err).Msg("dropped undecodable records")
	}

	valid := items[:0]
	for _, item := range items {
		if err := P(&item).Validate(); err != nil {
			c.opts.Logger.Warn().
				Str("collection", c.key).
				Str("id", P(&item).GetID()).
				Err(err).
				Msg("dropped invalid record")
			continue
		}
		valid = append(valid, item)
	}
	return valid, nil
}

// Get 以 id 線性搜尋
// 錯誤:
//   - ErrNotFound: 不存在
func (c *Collection[T, P]) Get(r kv.Reader, id string) (T, error) {
	item, ok, err := c.Find(r, func(item T) bool { return P(&item).GetID() == id })
	if err != nil {
		return item, err
	}
	if !ok {
		return item, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
	}
	return item, nil
}

func (c *Collection[T, P]) Find(r kv.Reader, pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := c.List(r)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if pred(item) {
			return item, true, nil
		}
	}
	return zero, false, nil
}

func (c *Collection[T, P]) Filter(r kv.Reader, pred func(T) bool) ([]T, error) {
	items, err := c.List(r)
	if err != nil {
		return nil, err
	}
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Add 驗證後產生新的 id 與時間戳, created_at == updated_at
func (c *Collection[T, P]) Add(tx kv.Txn, record T) (T, error) {
	var zero T
	if err := P(&record).Validate(); err != nil {
		return zero, err
	}
	items, err := c.List(tx)
	if err != nil {
		return zero, err
	}

	now := c.now()
	meta := P(&record).Meta()
	meta.ID = c.opts.NewID()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := c.write(tx, append(items, record)); err != nil {
		return zero, err
	}
	return record, nil
}

/*
Update 在複本上執行 mutate, 驗證通過才寫回
id 與 created_at 不可被修改, updated_at 一定比原本的晚
錯誤:
  - ErrNotFound: 不存在, 集合不變
  - mutate 或驗證回傳的錯誤
*/
func (c *Collection[T, P]) Update(tx kv.Txn, id string, mutate func(P) error) (T, error) {
	var zero T
	items, err := c.List(tx)
	if err != nil {
		return zero, err
	}

	idx := -1
	for i := range items {
		if P(&items[i]).GetID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zero, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
	}

	updated := items[idx]
	prev := *P(&updated).Meta()
	if err := mutate(P(&updated)); err != nil {
		return zero, err
	}
	meta := P(&updated).Meta()
	meta.ID = prev.ID
	meta.CreatedAt = prev.CreatedAt
	meta.UpdatedAt = c.later(prev.UpdatedAt)

	if err := P(&updated).Validate(); err != nil {
		return zero, err
	}
	items[idx] = updated
	if err := c.write(tx, items); err != nil {
		return zero, err
	}
	return updated, nil
}

// Remove 沒有符合的紀錄時回傳 false, 不寫入
func (c *Collection[T, P]) Remove(tx kv.Txn, id string) (bool, error) {
	removed, err := c.RemoveWhere(tx, func(item T) bool { return P(&item).GetID() == id })
	if err != nil {
		return false, err
	}
	return len(removed) > 0, nil
}

// RemoveWhere 回傳被刪除的紀錄
func (c *Collection[T, P]) RemoveWhere(tx kv.Txn, pred func(T) bool) ([]T, error) {
	items, err := c.List(tx)
	if err != nil {
		return nil, err
	}
	kept := make([]T, 0, len(items))
	var removed []T
	for _, item := range items {
		if pred(item) {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := c.write(tx, kept); err != nil {
		return nil, err
	}
	return removed, nil
}

// Replace 整份覆寫, 用於資料遷移
func (c *Collection[T, P]) Replace(tx kv.Txn, items []T) error {
	for _, item := range items {
		if err := P(&item).Validate(); err != nil {
			return err
		}
	}
	if items == nil {
		items = []T{}
	}
	return c.write(tx, items)
}

func (c *Collection[T, P]) write(tx kv.Txn, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := tx.Put(c.key, data); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T, P]) now() time.Time {
	return c.opts.Now().UTC().Round(0)
}

// later 時鐘沒有前進時往後推 1ns
func (c *Collection[T, P]) later(prev time.Time) time.Time {
	now := c.now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}
