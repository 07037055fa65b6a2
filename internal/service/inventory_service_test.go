package service

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type InventoryTestSuite struct {
	serviceSuite
}

func (s *InventoryTestSuite) TestRecordSaleFloorsAtZero() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "Widget", "9.990")
	s.mustStock(p.ID, 10)

	_, err := s.inventory.RecordSale(s.ctx, model.OrderItem{ProductID: p.ID, Quantity: 3, Price: p.Price})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 7, s.quantityOf(p.ID))

	_, err = s.inventory.RecordSale(s.ctx, model.OrderItem{ProductID: p.ID, Quantity: 20, Price: p.Price})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, s.quantityOf(p.ID))
}

func (s *InventoryTestSuite) TestRecordSaleWithoutInventoryIsNoop() {
	saved, err := s.inventory.RecordSale(s.ctx, model.OrderItem{ProductID: "ghost", Quantity: 1, Price: decimal.NewFromInt(1)})
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), saved.ID)

	rows, err := s.inventory.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), rows)
}

func (s *InventoryTestSuite) TestLowStockEventOnlyWhenCrossing() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "Widget", "9.990")
	s.mustStock(p.ID, 6)

	_, err := s.inventory.RecordSale(s.ctx, model.OrderItem{ProductID: p.ID, Quantity: 2, Price: p.Price})
	require.NoError(s.T(), err)
	_, err = s.inventory.RecordSale(s.ctx, model.OrderItem{ProductID: p.ID, Quantity: 1, Price: p.Price})
	require.NoError(s.T(), err)

	low := 0
	for _, t := range s.published.types() {
		if t == model.EventInventoryLow {
			low++
		}
	}
	assert.Equal(s.T(), 1, low)

	rows, err := s.inventory.LowStock(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 1)
	assert.Equal(s.T(), 3, rows[0].Quantity)
}

func (s *InventoryTestSuite) TestSetQuantityRejectsNegative() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "Widget", "9.990")
	row := s.mustStock(p.ID, 4)

	_, err := s.inventory.SetQuantity(s.ctx, row.ID, -1)
	assert.ErrorIs(s.T(), err, model.ErrValidation)
	assert.Equal(s.T(), 4, s.quantityOf(p.ID))
}
