// Package kvtest holds behaviour checks shared by every kv.Store backend.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

// Run 對 store 跑一輪共用檢查, newStore 每個子測試呼叫一次
func Run(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Run("missing key", func(t *testing.T) {
		store := newStore(t)
		err := store.View(context.Background(), func(r kv.Reader) error {
			_, err := r.Get("absent")
			return err
		})
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Update(ctx, func(tx kv.Txn) error {
			return tx.Put("products", []byte(`[{"id":"1"}]`))
		}))

		var got []byte
		require.NoError(t, store.View(ctx, func(r kv.Reader) error {
			var err error
			got, err = r.Get("products")
			return err
		}))
		require.Equal(t, `[{"id":"1"}]`, string(got))
	})

	t.Run("overwrite and delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Update(ctx, func(tx kv.Txn) error {
			if err := tx.Put("k", []byte("a")); err != nil {
				return err
			}
			return tx.Put("k", []byte("b"))
		}))
		require.Equal(t, "b", string(mustGet(t, store, "k")))

		require.NoError(t, store.Update(ctx, func(tx kv.Txn) error {
			return tx.Delete("k")
		}))
		err := store.View(ctx, func(r kv.Reader) error {
			_, err := r.Get("k")
			return err
		})
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("read own writes", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Update(context.Background(), func(tx kv.Txn) error {
			if err := tx.Put("k", []byte("v")); err != nil {
				return err
			}
			got, err := tx.Get("k")
			if err != nil {
				return err
			}
			require.Equal(t, "v", string(got))
			return nil
		}))
	})

	t.Run("rollback on error", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Update(ctx, func(tx kv.Txn) error {
			return tx.Put("a", []byte("1"))
		}))

		err := store.Update(ctx, func(tx kv.Txn) error {
			if err := tx.Put("a", []byte("2")); err != nil {
				return err
			}
			if err := tx.Put("b", []byte("2")); err != nil {
				return err
			}
			return errAbort
		})
		require.ErrorIs(t, err, errAbort)
		require.Equal(t, "1", string(mustGet(t, store, "a")))

		err = store.View(ctx, func(r kv.Reader) error {
			_, err := r.Get("b")
			return err
		})
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := store.Update(ctx, func(tx kv.Txn) error {
			return tx.Put("k", []byte("v"))
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func mustGet(t *testing.T, store kv.Store, key string) []byte {
	t.Helper()
	var got []byte
	require.NoError(t, store.View(context.Background(), func(r kv.Reader) error {
		var err error
		got, err = r.Get(key)
		return err
	}))
	return got
}
