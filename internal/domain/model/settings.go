package model

import (
	"github.com/shopspring/decimal"
)

// Settings 單例, 儲存時整份覆寫
// 只有一種既有格式, 沿用 camelCase
type Settings struct {
	StoreName           string          `json:"storeName"`
	StoreEmail          string          `json:"storeEmail"`
	StorePhone          string          `json:"storePhone"`
	StoreAddress        string          `json:"storeAddress"`
	Currency            string          `json:"currency"`
	TaxRate             decimal.Decimal `json:"taxRate"`
	ShippingFee         decimal.Decimal `json:"shippingFee"`
	EnableRegistration  bool            `json:"enableRegistration"`
	EnableGuestCheckout bool            `json:"enableGuestCheckout"`
	EnableReviews       bool            `json:"enableReviews"`
	EnableWishlist      bool            `json:"enableWishlist"`
	EnableComparisons   bool            `json:"enableComparisons"`
	EnableNotifications bool            `json:"enableNotifications"`
}

var hundred = decimal.NewFromInt(100)

func (s Settings) Validate() error {
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(hundred) {
		return NewValidationError("taxRate", "must be between 0 and 100")
	}
	return nonNegative("shippingFee", s.ShippingFee)
}

func DefaultSettings() Settings {
	return Settings{
		StoreName:           "E-Commerce Store",
		StoreEmail:          "info@example.com",
		StorePhone:          "+968 1234 5678",
		StoreAddress:        "Muscat, Oman",
		Currency:            "OMR",
		TaxRate:             decimal.NewFromInt(10),
		ShippingFee:         decimal.RequireFromString("2.500"),
		EnableRegistration:  true,
		EnableGuestCheckout: false,
		EnableReviews:       true,
		EnableWishlist:      false,
		EnableComparisons:   false,
		EnableNotifications: true,
	}
}
