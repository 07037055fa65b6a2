package service

import (
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SettingsTestSuite struct {
	serviceSuite
}

func (s *SettingsTestSuite) TestDefaultsWhenMissing() {
	got, err := s.settings.Get(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "E-Commerce Store", got.StoreName)
	assert.Equal(s.T(), "OMR", got.Currency)
	assert.True(s.T(), got.TaxRate.Equal(decimal.NewFromInt(10)))
	assert.True(s.T(), got.ShippingFee.Equal(decimal.RequireFromString("2.5")))
}

func (s *SettingsTestSuite) TestDefaultsWhenMalformed() {
	require.NoError(s.T(), s.store.Update(s.ctx, func(tx kv.Txn) error {
		return tx.Put(constants.KeySettings, []byte("{broken"))
	}))
	got, err := s.settings.Get(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "E-Commerce Store", got.StoreName)
}

func (s *SettingsTestSuite) TestSaveOverwritesWholesale() {
	_, err := s.settings.Save(s.ctx, model.Settings{StoreName: "First", TaxRate: decimal.NewFromInt(10)})
	require.NoError(s.T(), err)
	_, err = s.settings.Save(s.ctx, model.Settings{TaxRate: decimal.NewFromInt(15)})
	require.NoError(s.T(), err)

	got, err := s.settings.Get(s.ctx)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.TaxRate.Equal(decimal.NewFromInt(15)))
	assert.Empty(s.T(), got.StoreName)
}

func (s *SettingsTestSuite) TestSaveValidates() {
	_, err := s.settings.Save(s.ctx, model.Settings{TaxRate: decimal.NewFromInt(101)})
	assert.ErrorIs(s.T(), err, model.ErrValidation)
	_, err = s.settings.Save(s.ctx, model.Settings{ShippingFee: decimal.NewFromInt(-1)})
	assert.ErrorIs(s.T(), err, model.ErrValidation)
}
