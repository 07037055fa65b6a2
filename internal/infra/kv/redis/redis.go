package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/redis/go-redis/v9"
)

const defaultMaxRetries = 5

/*
RedisStore 每個集合一個 string key, 格式:

	{prefix}:{collection}

View 與 Update 都使用 WATCH/MULTI/EXEC:
  - 交易內第一次讀某個 key 之前先 WATCH
  - 寫入先暫存, 最後在 MULTI 內一次送出
  - 被 watch 的 key 被其他人修改時 EXEC 失敗, 重跑整個 fn
*/
type RedisStore struct {
	client     *redis.Client
	prefix     string
	maxRetries int
}

var _ kv.Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, prefix string, maxRetries int) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &RedisStore{
		client:     client,
		prefix:     prefix,
		maxRetries: maxRetries,
	}
}

func (r *RedisStore) setPrefixKey(key string) string {
	if r.prefix == "" {
		return key
	}
	var builder strings.Builder
	builder.Grow(len(r.prefix) + 1 + len(key))
	builder.WriteString(r.prefix)
	builder.WriteString(":")
	builder.WriteString(key)
	return builder.String()
}

func (r *RedisStore) Ping(ctx context.Context) (string, error) {
	return r.client.Ping(ctx).Result()
}

// View 讀到的 key 都先 WATCH, 讀超過一個 key 時最後以 MULTI/EXEC 確認期間沒有被修改,
// 被修改就重跑 fn, 所以 fn 看到的是同一個時間點的資料
func (r *RedisStore) View(ctx context.Context, fn func(kv.Reader) error) error {
	return r.watchRetry(ctx, func(t *txn) error {
		if err := fn(snapshot{t: t}); err != nil {
			return err
		}
		return t.validate()
	})
}

func (r *RedisStore) Update(ctx context.Context, fn func(kv.Txn) error) error {
	return r.watchRetry(ctx, func(t *txn) error {
		if err := fn(t); err != nil {
			return err
		}
		return t.commit()
	})
}

// watchRetry EXEC 因 watch 的 key 被修改而失敗時重跑, 超過 maxRetries 回傳 kv.ErrConflict
func (r *RedisStore) watchRetry(ctx context.Context, fn func(*txn) error) error {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			return fn(&txn{
				reader: reader{ctx: ctx, store: r, cmd: tx},
				tx:     tx,
				writes: make(map[string]write),
			})
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: gave up after %d attempts", kv.ErrConflict, r.maxRetries)
}

// Close 共用 client 由 CloseSharedClients 關閉, 這裡不處理
func (r *RedisStore) Close() error {
	return nil
}

// client 與 tx 共用的讀取介面
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type reader struct {
	ctx   context.Context
	store *RedisStore
	cmd   getter
}

func (rd *reader) Get(key string) ([]byte, error) {
	value, err := rd.cmd.Get(rd.ctx, rd.store.setPrefixKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// snapshot View 用的唯讀 txn
type snapshot struct {
	t *txn
}

func (s snapshot) Get(key string) ([]byte, error) {
	return s.t.Get(key)
}

type write struct {
	value   []byte
	deleted bool
}

type txn struct {
	reader
	tx      *redis.Tx
	watched map[string]struct{}
	writes  map[string]write
}

func (t *txn) Get(key string) ([]byte, error) {
	if w, ok := t.writes[key]; ok {
		if w.deleted {
			return nil, kv.ErrNotFound
		}
		return w.value, nil
	}
	if err := t.watch(key); err != nil {
		return nil, err
	}
	return t.reader.Get(key)
}

func (t *txn) Put(key string, value []byte) error {
	t.writes[key] = write{value: value}
	return nil
}

func (t *txn) Delete(key string) error {
	t.writes[key] = write{deleted: true}
	return nil
}

func (t *txn) watch(key string) error {
	if t.watched == nil {
		t.watched = make(map[string]struct{})
	}
	if _, ok := t.watched[key]; ok {
		return nil
	}
	if err := t.tx.Watch(t.ctx, t.store.setPrefixKey(key)).Err(); err != nil {
		return err
	}
	t.watched[key] = struct{}{}
	return nil
}

// validate 單一 key 的 GET 本身就是一致的, 多個 key 才送一個只含 PING 的 MULTI/EXEC 確認
func (t *txn) validate() error {
	if len(t.watched) < 2 {
		return nil
	}
	_, err := t.tx.TxPipelined(t.ctx, func(pipe redis.Pipeliner) error {
		pipe.Ping(t.ctx)
		return nil
	})
	return err
}

func (t *txn) commit() error {
	if len(t.writes) == 0 {
		return nil
	}
	_, err := t.tx.TxPipelined(t.ctx, func(pipe redis.Pipeliner) error {
		for key, w := range t.writes {
			if w.deleted {
				pipe.Del(t.ctx, t.store.setPrefixKey(key))
				continue
			}
			pipe.Set(t.ctx, t.store.setPrefixKey(key), w.value, 0)
		}
		return nil
	})
	return err
}
