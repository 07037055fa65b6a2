package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no user is logged in")
)

// Publisher 交易提交後送出事件
type Publisher interface {
	Publish(ctx context.Context, events ...model.Event) error
}

type Deps struct {
	Store     kv.Store
	Repos     *repository.Repositories
	Logger    *zerolog.Logger
	Publisher Publisher
	Now       func() time.Time
	// 庫存低於此數量視為低庫存
	LowStockThreshold int
	PasswordCost      int
}

// base 所有 service 共用, 交易內的 helper 都掛在這裡
type base struct {
	Deps
}

func newBase(deps Deps) base {
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	if deps.Publisher == nil {
		deps.Publisher = producer.NopPublisher{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.LowStockThreshold <= 0 {
		deps.LowStockThreshold = constants.DefaultLowStockThreshold
	}
	if deps.PasswordCost == 0 {
		deps.PasswordCost = bcrypt.DefaultCost
	}
	return base{Deps: deps}
}

func (b base) now() time.Time {
	return b.Now().UTC().Round(0)
}

// publish 失敗只記 log, 資料已經提交
func (b base) publish(ctx context.Context, events []model.Event) {
	if len(events) == 0 {
		return
	}
	if err := b.Publisher.Publish(ctx, events...); err != nil {
		b.Logger.Error().Err(err).Int("events", len(events)).Msg("failed to publish events")
	}
}

func (b base) view(ctx context.Context, fn func(r kv.Reader) error) error {
	return b.Store.View(ctx, fn)
}

func (b base) update(ctx context.Context, fn func(tx kv.Txn) error) error {
	return b.Store.Update(ctx, fn)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
