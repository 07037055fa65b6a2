package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

type IInventoryService interface {
	List(ctx context.Context) ([]model.Inventory, error)
	Get(ctx context.Context, id string) (model.Inventory, error)
	GetByProduct(ctx context.Context, productID string) (model.Inventory, error)
	SetQuantity(ctx context.Context, id string, quantity int) (model.Inventory, error)
	RecordSale(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
	LowStock(ctx context.Context) ([]model.Inventory, error)
}

type InventoryService struct {
	base
}

func NewInventoryService(deps Deps) *InventoryService {
	return &InventoryService{base: newBase(deps)}
}

func (s *InventoryService) List(ctx context.Context) (rows []model.Inventory, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		rows, err = s.Repos.Inventory.List(r)
		return err
	})
	return rows, err
}

func (s *InventoryService) Get(ctx context.Context, id string) (row model.Inventory, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		row, err = s.Repos.Inventory.Get(r, id)
		return err
	})
	return row, err
}

// 錯誤:
//   - repository.ErrNotFound: 該商品沒有庫存紀錄
func (s *InventoryService) GetByProduct(ctx context.Context, productID string) (row model.Inventory, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		var ok bool
		row, ok, err = s.Repos.Inventory.Find(r, func(i model.Inventory) bool { return i.ProductID == productID })
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("inventory for product %q: %w", productID, repository.ErrNotFound)
		}
		return nil
	})
	return row, err
}

func (s *InventoryService) SetQuantity(ctx context.Context, id string, quantity int) (row model.Inventory, err error) {
	if quantity < 0 {
		return row, model.NewValidationError("quantity", "must not be negative")
	}
	var before int
	err = s.update(ctx, func(tx kv.Txn) error {
		row, err = s.Repos.Inventory.Update(tx, id, func(i *model.Inventory) error {
			before = i.Quantity
			i.Quantity = quantity
			return nil
		})
		return err
	})
	if err != nil {
		return row, err
	}
	if before >= s.LowStockThreshold && row.Quantity < s.LowStockThreshold {
		s.publish(ctx, []model.Event{model.NewEvent(model.EventInventoryLow, row.ProductID, row, s.now())})
	}
	return row, nil
}

// RecordSale 保存一筆已售明細並扣庫存
func (s *InventoryService) RecordSale(ctx context.Context, item model.OrderItem) (saved model.OrderItem, err error) {
	var low []model.Event
	err = s.update(ctx, func(tx kv.Txn) error {
		var evt *model.Event
		saved, evt, err = s.recordSale(tx, item)
		low = nil
		if evt != nil {
			low = append(low, *evt)
		}
		return err
	})
	if err != nil {
		return saved, err
	}
	s.publish(ctx, low)
	return saved, nil
}

/*
recordSale 在交易內:
  - 新增 order_items 紀錄
  - 對應的庫存 quantity = max(0, quantity - sold), 沒有庫存紀錄時不動作

庫存從門檻以上掉到門檻以下時回傳 inventory_low 事件
*/
func (b base) recordSale(tx kv.Txn, item model.OrderItem) (model.OrderItem, *model.Event, error) {
	saved, err := b.Repos.OrderItems.Add(tx, item)
	if err != nil {
		return model.OrderItem{}, nil, err
	}

	row, ok, err := b.Repos.Inventory.Find(tx, func(i model.Inventory) bool { return i.ProductID == item.ProductID })
	if err != nil {
		return model.OrderItem{}, nil, err
	}
	if !ok {
		return saved, nil, nil
	}

	before := row.Quantity
	row, err = b.Repos.Inventory.Update(tx, row.ID, func(i *model.Inventory) error {
		i.Deduct(item.Quantity)
		return nil
	})
	if err != nil {
		return model.OrderItem{}, nil, err
	}

	if before >= b.LowStockThreshold && row.Quantity < b.LowStockThreshold {
		evt := model.NewEvent(model.EventInventoryLow, row.ProductID, row, b.now())
		return saved, &evt, nil
	}
	return saved, nil, nil
}

// LowStock 數量低於門檻的庫存
func (s *InventoryService) LowStock(ctx context.Context) (rows []model.Inventory, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		rows, err = s.lowStock(r)
		return err
	})
	return rows, err
}

func (b base) lowStock(r kv.Reader) ([]model.Inventory, error) {
	return b.Repos.Inventory.Filter(r, func(i model.Inventory) bool { return i.Quantity < b.LowStockThreshold })
}

var _ IInventoryService = (*InventoryService)(nil)
