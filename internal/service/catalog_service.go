package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CategoryID  string          `json:"category_id"`
}

// ProductPatch nil 欄位不修改
type ProductPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	CategoryID  *string          `json:"category_id"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ICatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]model.Product, error)
	AddProduct(ctx context.Context, in ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (model.Category, error)
	AddCategory(ctx context.Context, in CategoryInput) (model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (model.Category, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

type CatalogService struct {
	base
}

func NewCatalogService(deps Deps) *CatalogService {
	return &CatalogService{base: newBase(deps)}
}

func (s *CatalogService) ListProducts(ctx context.Context) (products []model.Product, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		products, err = s.Repos.Products.List(r)
		return err
	})
	return products, err
}

// 錯誤:
//   - repository.ErrNotFound: 商品不存在
func (s *CatalogService) GetProduct(ctx context.Context, id string) (product model.Product, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		product, err = s.Repos.Products.Get(r, id)
		return err
	})
	return product, err
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryID string) (products []model.Product, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		products, err = s.Repos.Products.Filter(r, func(p model.Product) bool { return p.CategoryID == categoryID })
		return err
	})
	return products, err
}

/*
AddProduct 新增商品, 同一個交易內建立數量為0的庫存
錯誤:
  - *model.ValidationError: 欄位錯誤, 或 category_id 不存在
*/
func (s *CatalogService) AddProduct(ctx context.Context, in ProductInput) (product model.Product, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		product, _, err = s.addProduct(tx, in, 0)
		return err
	})
	return product, err
}

func (b base) addProduct(tx kv.Txn, in ProductInput, stock int) (model.Product, model.Inventory, error) {
	product := model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
	}
	if err := product.Validate(); err != nil {
		return model.Product{}, model.Inventory{}, err
	}
	if err := b.requireCategory(tx, in.CategoryID); err != nil {
		return model.Product{}, model.Inventory{}, err
	}

	product, err := b.Repos.Products.Add(tx, product)
	if err != nil {
		return model.Product{}, model.Inventory{}, err
	}
	inv, err := b.Repos.Inventory.Add(tx, model.Inventory{ProductID: product.ID, Quantity: stock})
	if err != nil {
		return model.Product{}, model.Inventory{}, err
	}
	return product, inv, nil
}

func (b base) requireCategory(r kv.Reader, categoryID string) error {
	_, ok, err := b.Repos.Categories.Find(r, func(c model.Category) bool { return c.ID == categoryID })
	if err != nil {
		return err
	}
	if !ok {
		return model.NewValidationError("category_id", "does not reference an existing category")
	}
	return nil
}

// UpdateProduct 只在 category_id 改變時重新檢查分類是否存在
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (product model.Product, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		product, err = s.Repos.Products.Update(tx, id, func(p *model.Product) error {
			if patch.CategoryID != nil && *patch.CategoryID != p.CategoryID {
				if err := s.requireCategory(tx, *patch.CategoryID); err != nil {
					return err
				}
				p.CategoryID = *patch.CategoryID
			}
			if patch.Name != nil {
				p.Name = *patch.Name
			}
			if patch.Description != nil {
				p.Description = *patch.Description
			}
			if patch.Price != nil {
				p.Price = *patch.Price
			}
			if patch.ImageURL != nil {
				p.ImageURL = *patch.ImageURL
			}
			return nil
		})
		return err
	})
	return product, err
}

// DeleteProduct 同時刪除該商品的庫存, 商品不存在回傳 false
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (removed bool, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		removed, err = s.Repos.Products.Remove(tx, id)
		if err != nil || !removed {
			return err
		}
		_, err = s.Repos.Inventory.RemoveWhere(tx, func(i model.Inventory) bool { return i.ProductID == id })
		return err
	})
	return removed, err
}

func (s *CatalogService) ListCategories(ctx context.Context) (categories []model.Category, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		categories, err = s.Repos.Categories.List(r)
		return err
	})
	return categories, err
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (category model.Category, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		category, err = s.Repos.Categories.Get(r, id)
		return err
	})
	return category, err
}

func (s *CatalogService) AddCategory(ctx context.Context, in CategoryInput) (category model.Category, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		category, err = s.Repos.Categories.Add(tx, model.Category{Name: in.Name, Description: in.Description})
		return err
	})
	return category, err
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (category model.Category, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		category, err = s.Repos.Categories.Update(tx, id, func(c *model.Category) error {
			if patch.Name != nil {
				c.Name = *patch.Name
			}
			if patch.Description != nil {
				c.Description = *patch.Description
			}
			return nil
		})
		return err
	})
	return category, err
}

/*
DeleteCategory 刪除分類與底下所有商品及其庫存, 全部在同一個交易
先列出商品再刪除分類
分類不存在時回傳 false, 不做任何修改
*/
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) (removed bool, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		removed = false
		if _, err := s.Repos.Categories.Get(tx, id); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}

		products, err := s.Repos.Products.RemoveWhere(tx, func(p model.Product) bool { return p.CategoryID == id })
		if err != nil {
			return err
		}
		productIDs := make(map[string]struct{}, len(products))
		for _, p := range products {
			productIDs[p.ID] = struct{}{}
		}
		if len(productIDs) > 0 {
			_, err = s.Repos.Inventory.RemoveWhere(tx, func(i model.Inventory) bool {
				_, ok := productIDs[i.ProductID]
				return ok
			})
			if err != nil {
				return err
			}
		}

		removed, err = s.Repos.Categories.Remove(tx, id)
		return err
	})
	return removed, err
}

var _ ICatalogService = (*CatalogService)(nil)
