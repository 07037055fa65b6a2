package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 與舊資料相容: 金額以 JSON number 存放
	decimal.MarshalJSONWithoutQuotes = true
}

// Base 每個集合紀錄共用的欄位
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Base) GetID() string {
	return b.ID
}

// Meta 讓 repository 可以改寫 id 與時間戳
func (b *Base) Meta() *Base {
	return b
}
