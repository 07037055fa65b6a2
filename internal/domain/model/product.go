package model

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c Category) Validate() error {
	return required("name", c.Name)
}

// Product 商品, 建立時 category_id 必須存在
type Product struct {
	Base
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CategoryID  string          `json:"category_id"`
}

func (p Product) Validate() error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if err := positive("price", p.Price); err != nil {
		return err
	}
	return required("category_id", p.CategoryID)
}

// Inventory 每個商品恰好一筆庫存
type Inventory struct {
	Base
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (i Inventory) Validate() error {
	if err := required("product_id", i.ProductID); err != nil {
		return err
	}
	if i.Quantity < 0 {
		return NewValidationError("quantity", "must not be negative")
	}
	return nil
}

// 扣減庫存, 最少為0
func (i *Inventory) Deduct(quantity int) {
	i.Quantity = max(0, i.Quantity-quantity)
}
