package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
)

type LineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	UserID        string                `json:"user_id"`
	Lines         []LineInput           `json:"items"`
	Shipping      model.ShippingAddress `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
}

type IOrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, id string) (model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	Search(ctx context.Context, term string, status model.OrderStatus) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, next model.OrderStatus) (model.Order, error)
}

type OrderService struct {
	base
}

func NewOrderService(deps Deps) *OrderService {
	return &OrderService{base: newBase(deps)}
}

/*
PlaceOrder 建立訂單, 全部在同一個交易:
  - 價格與名稱取自目前的商品資料
  - 金額依 settings 的稅率與運費計算一次, 之後不再重算
  - 每一筆明細寫入 order_items 並扣庫存 (最低為0, 不因庫存不足拒絕)

提交後送出 order_placed, 以及掉到低庫存的 inventory_low
錯誤:
  - *model.ValidationError: 缺少欄位, 商品不存在, 數量不為正
*/
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (order model.Order, err error) {
	if err := s.validatePlaceOrder(in); err != nil {
		return order, err
	}

	var events []model.Event
	err = s.update(ctx, func(tx kv.Txn) error {
		events = events[:0]

		settings, found, err := s.Repos.Settings.Get(tx)
		if err != nil {
			return err
		}
		if !found {
			settings = model.DefaultSettings()
		}

		lines := make([]model.OrderLine, 0, len(in.Lines))
		for i, line := range in.Lines {
			product, ok, err := s.Repos.Products.Find(tx, func(p model.Product) bool { return p.ID == line.ProductID })
			if err != nil {
				return err
			}
			if !ok {
				return model.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "does not reference an existing product")
			}
			lines = append(lines, model.NewOrderLine(product, line.Quantity))
		}

		paymentMethod := strings.TrimSpace(in.PaymentMethod)
		if paymentMethod == "" {
			paymentMethod = constants.DefaultPaymentMethod
		}
		draft := model.Order{
			UserID:        in.UserID,
			Items:         lines,
			Shipping:      in.Shipping,
			PaymentMethod: paymentMethod,
			Status:        model.OrderStatusPending,
		}
		draft.ApplyTotals(settings.TaxRate, settings.ShippingFee, constants.MoneyScale)

		order, err = s.Repos.Orders.Add(tx, draft)
		if err != nil {
			return err
		}

		for _, line := range order.Items {
			_, evt, err := s.recordSale(tx, model.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
			if err != nil {
				return err
			}
			if evt != nil {
				events = append(events, *evt)
			}
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	events = append([]model.Event{model.NewEvent(model.EventOrderPlaced, order.ID, order, s.now())}, events...)
	s.publish(ctx, events)
	return order, nil
}

func (s *OrderService) validatePlaceOrder(in PlaceOrderInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return model.NewValidationError("user_id", "is required")
	}
	if len(in.Lines) == 0 {
		return model.NewValidationError("items", "must contain at least one line")
	}
	for i, line := range in.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return model.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if line.Quantity <= 0 {
			return model.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
	}
	return in.Shipping.Validate()
}

func (s *OrderService) List(ctx context.Context) (orders []model.Order, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		orders, err = s.Repos.Orders.List(r)
		return err
	})
	return orders, err
}

func (s *OrderService) Get(ctx context.Context, id string) (order model.Order, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		order, err = s.Repos.Orders.Get(r, id)
		return err
	})
	return order, err
}

// ListByUser 新的在前
func (s *OrderService) ListByUser(ctx context.Context, userID string) (orders []model.Order, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		orders, err = s.Repos.Orders.Filter(r, func(o model.Order) bool { return o.UserID == userID })
		return err
	})
	sortNewestFirst(orders)
	return orders, err
}

// Search 以訂單 id 或收件人姓名搜尋, 不分大小寫; status 為空時不篩選
func (s *OrderService) Search(ctx context.Context, term string, status model.OrderStatus) (orders []model.Order, err error) {
	term = strings.ToLower(strings.TrimSpace(term))
	err = s.view(ctx, func(r kv.Reader) error {
		orders, err = s.Repos.Orders.Filter(r, func(o model.Order) bool {
			if status != "" && o.Status != status {
				return false
			}
			if term == "" {
				return true
			}
			return strings.Contains(strings.ToLower(o.ID), term) ||
				strings.Contains(strings.ToLower(o.Shipping.FullName), term)
		})
		return err
	})
	sortNewestFirst(orders)
	return orders, err
}

/*
UpdateStatus 依狀態表轉換
錯誤:
  - model.ErrInvalidTransition: 不允許的轉換, 包含轉成相同狀態
  - repository.ErrNotFound: 訂單不存在
*/
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next model.OrderStatus) (order model.Order, err error) {
	if !next.Valid() {
		return order, model.NewValidationError("status", fmt.Sprintf("%q is not a known order status", next))
	}
	var prev model.OrderStatus
	err = s.update(ctx, func(tx kv.Txn) error {
		order, err = s.Repos.Orders.Update(tx, id, func(o *model.Order) error {
			if !o.Status.CanTransitionTo(next) {
				return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, o.Status, next)
			}
			prev = o.Status
			o.Status = next
			return nil
		})
		return err
	})
	if err != nil {
		return model.Order{}, err
	}

	s.publish(ctx, []model.Event{model.NewEvent(model.EventOrderStatusChanged, order.ID, map[string]any{
		"id":   order.ID,
		"from": prev,
		"to":   next,
	}, s.now())})
	return order, nil
}

func sortNewestFirst(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

var _ IOrderService = (*OrderService)(nil)
