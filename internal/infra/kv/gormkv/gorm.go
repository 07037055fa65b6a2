package gormkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KvEntry 一個集合一列
type KvEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(255)"`
	Value     []byte    `gorm:"type:bytea;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KvEntry) TableName() string {
	return "kv_entries"
}

func GetDSN(dbname, host, port, user, pas string) string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, pas, host, port, dbname)
}

func GetDbConn(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Update 共用的 advisory lock
const storeLockKey = "storefront:kv"

/*
GormStore postgres 上的 key-value
Update 一開始取得整個 store 的 transaction 層級 advisory lock, 寫入依序執行,
不會因為 key 的存取順序不同而互相等待, 鎖在 commit/rollback 時釋放
View 使用 REPEATABLE READ 唯讀交易, 所有讀取看到同一個 snapshot
*/
type GormStore struct {
	db *gorm.DB
}

var _ kv.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// InitMigrate 初始化 db schema, 冪等
func (s *GormStore) InitMigrate() error {
	return s.db.AutoMigrate(&KvEntry{})
}

func (s *GormStore) View(ctx context.Context, fn func(kv.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txn{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

func (s *GormStore) Update(ctx context.Context, fn func(kv.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", storeLockKey).Error; err != nil {
			return fmt.Errorf("lock store: %w", err)
		}
		return fn(&txn{tx: tx})
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type txn struct {
	tx *gorm.DB
}

func (t *txn) Get(key string) ([]byte, error) {
	var entry KvEntry
	err := t.tx.Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (t *txn) Put(key string, value []byte) error {
	entry := KvEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return t.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (t *txn) Delete(key string) error {
	return t.tx.Where("entry_key = ?", key).Delete(&KvEntry{}).Error
}
