package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
)

type ISettingsService interface {
	Get(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, settings model.Settings) (model.Settings, error)
}

type SettingsService struct {
	base
}

func NewSettingsService(deps Deps) *SettingsService {
	return &SettingsService{base: newBase(deps)}
}

// Get 沒有設定或設定壞掉時回傳預設值
func (s *SettingsService) Get(ctx context.Context) (settings model.Settings, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		var found bool
		settings, found, err = s.Repos.Settings.Get(r)
		if err != nil {
			return err
		}
		if !found {
			settings = model.DefaultSettings()
		}
		return nil
	})
	return settings, err
}

// Save 整份覆寫, 沒有傳的欄位不會保留舊值
func (s *SettingsService) Save(ctx context.Context, settings model.Settings) (model.Settings, error) {
	err := s.update(ctx, func(tx kv.Txn) error {
		return s.Repos.Settings.Put(tx, settings)
	})
	if err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

var _ ISettingsService = (*SettingsService)(nil)
