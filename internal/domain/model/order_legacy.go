package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrUnknownOrderShape = errors.New("order has no items field")

/*
DecodeOrder 把單筆訂單轉成 snake_case 的標準格式
每個欄位都先讀 snake_case, 沒有才讀 camelCase,
結帳頁寫的是兩種拼法混用的訂單 (user_id 與 shippingFee 同時出現)
*/
func DecodeOrder(raw []byte) (Order, error) {
	f, err := newFieldSet(raw)
	if err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}
	if !f.has("items") {
		return Order{}, ErrUnknownOrderShape
	}

	order := Order{Base: f.base()}
	var (
		rawItems    []json.RawMessage
		rawShipping json.RawMessage
		status      string
	)
	f.read(&order.UserID, "user_id", "userId")
	f.read(&rawItems, "items")
	f.read(&rawShipping, "shipping")
	f.read(&order.Subtotal, "subtotal")
	f.read(&order.ShippingFee, "shipping_fee", "shippingFee")
	f.read(&order.Tax, "tax")
	f.read(&order.Total, "total")
	f.read(&order.PaymentMethod, "payment_method", "paymentMethod")
	f.read(&status, "status")
	if f.err != nil {
		return Order{}, fmt.Errorf("decode order: %w", f.err)
	}

	order.Status, err = ParseOrderStatus(status)
	if err != nil {
		return Order{}, err
	}

	order.Items = make([]OrderLine, 0, len(rawItems))
	for i, rawLine := range rawItems {
		line, err := decodeOrderLine(rawLine)
		if err != nil {
			return Order{}, fmt.Errorf("decode order items[%d]: %w", i, err)
		}
		order.Items = append(order.Items, line)
	}

	if rawShipping != nil {
		order.Shipping, err = decodeShipping(rawShipping)
		if err != nil {
			return Order{}, fmt.Errorf("decode order shipping: %w", err)
		}
	}
	return order, nil
}

// 明細缺 total 時以 price * quantity 補上
func decodeOrderLine(raw []byte) (OrderLine, error) {
	f, err := newFieldSet(raw)
	if err != nil {
		return OrderLine{}, err
	}
	var line OrderLine
	f.read(&line.ProductID, "product_id", "productId")
	f.read(&line.Name, "name")
	f.read(&line.Price, "price")
	f.read(&line.Quantity, "quantity")
	if !f.read(&line.Total, "total") {
		line.Total = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
	}
	return line, f.err
}

func decodeShipping(raw []byte) (ShippingAddress, error) {
	f, err := newFieldSet(raw)
	if err != nil {
		return ShippingAddress{}, err
	}
	var addr ShippingAddress
	f.read(&addr.FullName, "full_name", "fullName")
	f.read(&addr.PhoneNumber, "phone_number", "phoneNumber")
	f.read(&addr.Address, "address")
	f.read(&addr.City, "city")
	f.read(&addr.Region, "region")
	f.read(&addr.PostalCode, "postal_code", "postalCode")
	f.read(&addr.DeliveryNotes, "delivery_notes", "deliveryNotes")
	return addr, f.err
}

// DecodeOrders 解析整個 orders 集合, 規則同 decodeRecords
func DecodeOrders(data []byte) ([]Order, error) {
	return decodeRecords(data, "orders", DecodeOrder)
}
