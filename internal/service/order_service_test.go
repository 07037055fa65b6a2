package service

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type OrderTestSuite struct {
	serviceSuite
}

func (s *OrderTestSuite) placeSimple(productID string, qty int) model.Order {
	order, err := s.orders.PlaceOrder(s.ctx, PlaceOrderInput{
		UserID:   "u1",
		Lines:    []LineInput{{ProductID: productID, Quantity: qty}},
		Shipping: shipping(),
	})
	require.NoError(s.T(), err)
	return order
}

func (s *OrderTestSuite) TestPlaceOrderComputesTotalsAndDecrementsStock() {
	cat := s.mustCategory("Gadgets")
	a := s.mustProduct(cat.ID, "A", "25.500")
	b := s.mustProduct(cat.ID, "B", "15.750")
	s.mustStock(a.ID, 6)
	s.mustStock(b.ID, 1)

	order, err := s.orders.PlaceOrder(s.ctx, PlaceOrderInput{
		UserID:   "u1",
		Lines:    []LineInput{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 3}},
		Shipping: shipping(),
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), model.OrderStatusPending, order.Status)
	assert.Equal(s.T(), "Cash on Delivery", order.PaymentMethod)
	assert.True(s.T(), order.Subtotal.Equal(decimal.RequireFromString("98.25")), order.Subtotal.String())
	assert.True(s.T(), order.Tax.Equal(decimal.RequireFromString("9.825")), order.Tax.String())
	assert.True(s.T(), order.ShippingFee.Equal(decimal.RequireFromString("2.5")))
	assert.True(s.T(), order.Total.Equal(decimal.RequireFromString("110.575")), order.Total.String())
	assert.True(s.T(), order.Items[1].Total.Equal(decimal.RequireFromString("47.25")))

	assert.Equal(s.T(), 4, s.quantityOf(a.ID))
	// 庫存不足不拒絕, 最低為0
	assert.Equal(s.T(), 0, s.quantityOf(b.ID))

	types := s.published.types()
	require.NotEmpty(s.T(), types)
	assert.Contains(s.T(), types, model.EventOrderPlaced)
	assert.Contains(s.T(), types, model.EventInventoryLow)
}

func (s *OrderTestSuite) TestPlaceOrderUsesSavedSettings() {
	settings := model.DefaultSettings()
	settings.TaxRate = decimal.NewFromInt(5)
	settings.ShippingFee = decimal.RequireFromString("1.250")
	_, err := s.settings.Save(s.ctx, settings)
	require.NoError(s.T(), err)

	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "A", "10.000")
	order := s.placeSimple(p.ID, 1)

	assert.True(s.T(), order.Tax.Equal(decimal.RequireFromString("0.5")))
	assert.True(s.T(), order.Total.Equal(decimal.RequireFromString("11.75")))
}

func (s *OrderTestSuite) TestPlaceOrderRejectsUnknownProductAtomically() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "A", "10.000")
	s.mustStock(p.ID, 10)

	_, err := s.orders.PlaceOrder(s.ctx, PlaceOrderInput{
		UserID:   "u1",
		Lines:    []LineInput{{ProductID: p.ID, Quantity: 1}, {ProductID: "ghost", Quantity: 1}},
		Shipping: shipping(),
	})
	var verr *model.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Equal(s.T(), "items[1].product_id", verr.Field)

	orders, err := s.orders.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), orders)
	assert.Equal(s.T(), 10, s.quantityOf(p.ID))
}

func (s *OrderTestSuite) TestPlaceOrderValidation() {
	_, err := s.orders.PlaceOrder(s.ctx, PlaceOrderInput{UserID: "u1", Shipping: shipping()})
	assert.ErrorIs(s.T(), err, model.ErrValidation)

	_, err = s.orders.PlaceOrder(s.ctx, PlaceOrderInput{
		UserID:   "u1",
		Lines:    []LineInput{{ProductID: "p", Quantity: 0}},
		Shipping: shipping(),
	})
	assert.ErrorIs(s.T(), err, model.ErrValidation)

	_, err = s.orders.PlaceOrder(s.ctx, PlaceOrderInput{
		UserID: "u1",
		Lines:  []LineInput{{ProductID: "p", Quantity: 1}},
	})
	var verr *model.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Equal(s.T(), "shipping.full_name", verr.Field)
}

func (s *OrderTestSuite) TestStatusTransitions() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "A", "10.000")
	order := s.placeSimple(p.ID, 1)

	_, err := s.orders.UpdateStatus(s.ctx, order.ID, model.OrderStatusDelivered)
	assert.ErrorIs(s.T(), err, model.ErrInvalidTransition)

	_, err = s.orders.UpdateStatus(s.ctx, order.ID, model.OrderStatusPending)
	assert.ErrorIs(s.T(), err, model.ErrInvalidTransition)

	for _, next := range []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered} {
		updated, err := s.orders.UpdateStatus(s.ctx, order.ID, next)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), next, updated.Status)
	}

	_, err = s.orders.UpdateStatus(s.ctx, order.ID, model.OrderStatusCancelled)
	assert.ErrorIs(s.T(), err, model.ErrInvalidTransition)

	got, err := s.orders.Get(s.ctx, order.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.OrderStatusDelivered, got.Status)
	assert.True(s.T(), got.Total.Equal(order.Total))

	_, err = s.orders.UpdateStatus(s.ctx, "missing", model.OrderStatusProcessing)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	_, err = s.orders.UpdateStatus(s.ctx, order.ID, model.OrderStatus("lost"))
	assert.ErrorIs(s.T(), err, model.ErrValidation)
}

func (s *OrderTestSuite) TestSearchAndListByUser() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "A", "10.000")
	first := s.placeSimple(p.ID, 1)

	other, err := s.orders.PlaceOrder(s.ctx, PlaceOrderInput{
		UserID: "u2",
		Lines:  []LineInput{{ProductID: p.ID, Quantity: 1}},
		Shipping: model.ShippingAddress{
			FullName: "Maryam", PhoneNumber: "1", Address: "x", City: "Sohar",
		},
	})
	require.NoError(s.T(), err)
	_, err = s.orders.UpdateStatus(s.ctx, other.ID, model.OrderStatusProcessing)
	require.NoError(s.T(), err)

	found, err := s.orders.Search(s.ctx, "SALIM", "")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	assert.Equal(s.T(), first.ID, found[0].ID)

	found, err = s.orders.Search(s.ctx, "", model.OrderStatusProcessing)
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	assert.Equal(s.T(), other.ID, found[0].ID)

	found, err = s.orders.Search(s.ctx, other.ID[:8], "")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), found)

	mine, err := s.orders.ListByUser(s.ctx, "u2")
	require.NoError(s.T(), err)
	require.Len(s.T(), mine, 1)
	assert.Equal(s.T(), other.ID, mine[0].ID)
}

func (s *OrderTestSuite) TestDashboardStats() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "A", "10.000")
	s.mustStock(p.ID, 20)
	for i := 0; i < 6; i++ {
		s.placeSimple(p.ID, 1)
	}

	stats, err := s.dashboard.Stats(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 6, stats.OrderCount)
	assert.Equal(s.T(), 1, stats.ProductCount)
	assert.Equal(s.T(), 1, stats.CategoryCount)
	assert.Len(s.T(), stats.RecentOrders, 5)
	// 每筆 10 + 1 稅 + 2.5 運費
	assert.True(s.T(), stats.TotalSales.Equal(decimal.RequireFromString("81")), stats.TotalSales.String())
	assert.Equal(s.T(), 0, stats.LowStockCount)
}
