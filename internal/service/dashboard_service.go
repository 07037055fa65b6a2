package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalSales    decimal.Decimal   `json:"total_sales"`
	OrderCount    int               `json:"order_count"`
	ProductCount  int               `json:"product_count"`
	CategoryCount int               `json:"category_count"`
	CustomerCount int               `json:"customer_count"`
	LowStockCount int               `json:"low_stock_count"`
	RecentOrders  []model.Order     `json:"recent_orders"`
	LowStock      []model.Inventory `json:"low_stock"`
}

type IDashboardService interface {
	Stats(ctx context.Context) (Stats, error)
}

type DashboardService struct {
	base
}

func NewDashboardService(deps Deps) *DashboardService {
	return &DashboardService{base: newBase(deps)}
}

// Stats 所有數字在同一個唯讀交易內取得
func (s *DashboardService) Stats(ctx context.Context) (stats Stats, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		orders, err := s.Repos.Orders.List(r)
		if err != nil {
			return err
		}
		products, err := s.Repos.Products.List(r)
		if err != nil {
			return err
		}
		categories, err := s.Repos.Categories.List(r)
		if err != nil {
			return err
		}
		users, err := s.Repos.Users.List(r)
		if err != nil {
			return err
		}
		low, err := s.lowStock(r)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, o := range orders {
			total = total.Add(o.Total)
		}
		customers := 0
		for _, u := range users {
			if !u.IsAdmin() {
				customers++
			}
		}

		sortNewestFirst(orders)
		recent := orders[:min(len(orders), constants.DefaultRecentOrders)]

		stats = Stats{
			TotalSales:    total,
			OrderCount:    len(orders),
			ProductCount:  len(products),
			CategoryCount: len(categories),
			CustomerCount: customers,
			LowStockCount: len(low),
			RecentOrders:  recent,
			LowStock:      low,
		}
		return nil
	})
	return stats, err
}

var _ IDashboardService = (*DashboardService)(nil)
