package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

/*
訂單狀態轉換:

	pending    -> processing, cancelled
	processing -> shipped, cancelled
	shipped    -> delivered

delivered 與 cancelled 為終態
*/
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses 目前狀態可以轉換的狀態
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// ParseOrderStatus 不分大小寫, 舊資料會存 "Delivered"
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("%q is not a known order status", raw))
	}
	return status, nil
}

// OrderLine 訂單內嵌的明細, 下單時的商品快照
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

func NewOrderLine(product Product, quantity int) OrderLine {
	return OrderLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Total:     product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

type ShippingAddress struct {
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	DeliveryNotes string `json:"delivery_notes"`
}

func (a ShippingAddress) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"shipping.full_name", a.FullName},
		{"shipping.phone_number", a.PhoneNumber},
		{"shipping.address", a.Address},
		{"shipping.city", a.City},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// Order 金額在建立時計算一次, 之後不再重算
type Order struct {
	Base
	UserID        string          `json:"user_id"`
	Items         []OrderLine     `json:"items"`
	Shipping      ShippingAddress `json:"shipping"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
}

func (o Order) Validate() error {
	if err := required("user_id", o.UserID); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return NewValidationError("items", "must contain at least one line")
	}
	for i, line := range o.Items {
		if err := required(fmt.Sprintf("items[%d].product_id", i), line.ProductID); err != nil {
			return err
		}
		if line.Quantity <= 0 {
			return NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}
	if !o.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("%q is not a known order status", o.Status))
	}
	return nil
}

// ApplyTotals total = subtotal + tax + shipping_fee, 稅率為百分比
func (o *Order) ApplyTotals(taxRate, shippingFee decimal.Decimal, scale int32) {
	subtotal := decimal.Zero
	for _, line := range o.Items {
		subtotal = subtotal.Add(line.Total)
	}
	o.Subtotal = subtotal.Round(scale)
	o.ShippingFee = shippingFee.Round(scale)
	o.Tax = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(scale)
	o.Total = o.Subtotal.Add(o.Tax).Add(o.ShippingFee)
}

// OrderItem 單獨保存的已售明細, 寫入時會扣庫存
type OrderItem struct {
	Base
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i OrderItem) Validate() error {
	if err := required("product_id", i.ProductID); err != nil {
		return err
	}
	if i.Quantity <= 0 {
		return NewValidationError("quantity", "must be greater than zero")
	}
	return nonNegative("price", i.Price)
}
