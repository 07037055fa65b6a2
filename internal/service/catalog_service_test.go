package service

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CatalogTestSuite struct {
	serviceSuite
}

func (s *CatalogTestSuite) TestAddProductCreatesEmptyInventory() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "Widget", "9.990")

	assert.NotEmpty(s.T(), p.ID)
	assert.True(s.T(), p.CreatedAt.Equal(p.UpdatedAt))

	got, err := s.catalog.GetProduct(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), p.Name, got.Name)
	assert.True(s.T(), got.Price.Equal(decimal.RequireFromString("9.99")))

	row, err := s.inventory.GetByProduct(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, row.Quantity)
}

func (s *CatalogTestSuite) TestAddProductValidation() {
	cat := s.mustCategory("Gadgets")

	_, err := s.catalog.AddProduct(s.ctx, ProductInput{Name: "Free", Price: decimal.Zero, CategoryID: cat.ID})
	var verr *model.ValidationError
	require.ErrorAs(s.T(), err, &verr)
	assert.Equal(s.T(), "price", verr.Field)

	_, err = s.catalog.AddProduct(s.ctx, ProductInput{Name: "Orphan", Price: decimal.NewFromInt(1), CategoryID: "cat-missing"})
	require.ErrorAs(s.T(), err, &verr)
	assert.Equal(s.T(), "category_id", verr.Field)

	products, err := s.catalog.ListProducts(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), products)
	rows, err := s.inventory.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), rows)
}

func (s *CatalogTestSuite) TestUpdateProductPatch() {
	cat := s.mustCategory("Gadgets")
	other := s.mustCategory("Tools")
	p := s.mustProduct(cat.ID, "Widget", "9.990")

	name := "Widget Pro"
	updated, err := s.catalog.UpdateProduct(s.ctx, p.ID, ProductPatch{Name: &name, CategoryID: &other.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Widget Pro", updated.Name)
	assert.Equal(s.T(), other.ID, updated.CategoryID)
	assert.True(s.T(), updated.Price.Equal(p.Price))
	assert.True(s.T(), updated.UpdatedAt.After(p.UpdatedAt))

	missing := "nope"
	_, err = s.catalog.UpdateProduct(s.ctx, p.ID, ProductPatch{CategoryID: &missing})
	assert.ErrorIs(s.T(), err, model.ErrValidation)

	_, err = s.catalog.UpdateProduct(s.ctx, "nope", ProductPatch{Name: &name})
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *CatalogTestSuite) TestDeleteProductRemovesInventory() {
	cat := s.mustCategory("Gadgets")
	p := s.mustProduct(cat.ID, "Widget", "9.990")
	keep := s.mustProduct(cat.ID, "Gizmo", "1.000")

	removed, err := s.catalog.DeleteProduct(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), removed)

	_, err = s.inventory.GetByProduct(s.ctx, p.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	_, err = s.inventory.GetByProduct(s.ctx, keep.ID)
	assert.NoError(s.T(), err)

	removed, err = s.catalog.DeleteProduct(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), removed)
}

func (s *CatalogTestSuite) TestDeleteCategoryCascades() {
	doomed := s.mustCategory("Doomed")
	kept := s.mustCategory("Kept")
	var doomedIDs []string
	for _, name := range []string{"A", "B", "C"} {
		doomedIDs = append(doomedIDs, s.mustProduct(doomed.ID, name, "2.000").ID)
	}
	survivor := s.mustProduct(kept.ID, "D", "3.000")

	removed, err := s.catalog.DeleteCategory(s.ctx, doomed.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), removed)

	products, err := s.catalog.ProductsByCategory(s.ctx, doomed.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), products)

	rows, err := s.inventory.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 1)
	assert.Equal(s.T(), survivor.ID, rows[0].ProductID)
	for _, id := range doomedIDs {
		assert.NotEqual(s.T(), id, rows[0].ProductID)
	}

	_, err = s.catalog.GetCategory(s.ctx, doomed.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *CatalogTestSuite) TestDeleteMissingCategoryChangesNothing() {
	cat := s.mustCategory("Gadgets")
	s.mustProduct(cat.ID, "Widget", "9.990")

	removed, err := s.catalog.DeleteCategory(s.ctx, "missing")
	require.NoError(s.T(), err)
	assert.False(s.T(), removed)

	categories, err := s.catalog.ListCategories(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), categories, 1)
	products, err := s.catalog.ListProducts(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), products, 1)
}

func (s *CatalogTestSuite) TestUpdateCategory() {
	cat := s.mustCategory("Gadgets")
	desc := "small things"
	updated, err := s.catalog.UpdateCategory(s.ctx, cat.ID, CategoryPatch{Description: &desc})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Gadgets", updated.Name)
	assert.Equal(s.T(), desc, updated.Description)

	empty := " "
	_, err = s.catalog.UpdateCategory(s.ctx, cat.ID, CategoryPatch{Name: &empty})
	assert.ErrorIs(s.T(), err, model.ErrValidation)
}
