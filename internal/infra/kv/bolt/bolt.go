package bolt

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"go.etcd.io/bbolt"
)

const collectionBucket = "collections"

// Store provides a BoltDB-backed key-value store. bbolt allows a single writer,
// so every Update is serialized and atomic.
type Store struct {
	db *bbolt.DB
}

var _ kv.Store = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) View(ctx context.Context, fn func(r kv.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return kv.ErrClosed
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collectionBucket))
		if bucket == nil {
			return fmt.Errorf("collection bucket is missing")
		}
		return fn(&txn{bucket: bucket})
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx kv.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return kv.ErrClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collectionBucket))
		if bucket == nil {
			return fmt.Errorf("collection bucket is missing")
		}
		return fn(&txn{bucket: bucket})
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(collectionBucket))
		if err != nil {
			return fmt.Errorf("create collection bucket: %w", err)
		}
		return nil
	})
}

type txn struct {
	bucket *bbolt.Bucket
}

// Get 回傳的 slice 只在交易內有效, 需要複製
func (t *txn) Get(key string) ([]byte, error) {
	value := t.bucket.Get([]byte(key))
	if value == nil {
		return nil, kv.ErrNotFound
	}
	return bytes.Clone(value), nil
}

func (t *txn) Put(key string, value []byte) error {
	return t.bucket.Put([]byte(key), value)
}

func (t *txn) Delete(key string) error {
	return t.bucket.Delete([]byte(key))
}
