package repository

import (
	"testing"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return testDB, NewProductRepository(testDB)
}

func createProduct(t *testing.T, repo ProductRepository, title, price string, active bool) *model.Product {
	product := &model.Product{
		Title:  title,
		Price:  decimal.RequireFromString(price),
		Active: active,
		Variations: []model.Variation{
			{Title: "Default", Price: decimal.RequireFromString(price), Active: true},
		},
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestProductRepository_FindByID_PreloadsVariations(t *testing.T) {
	_, repo := setupProductRepositoryTest(t)

	created := createProduct(t, repo, "Shirt", "20.00", true)

	found, err := repo.FindByID(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Shirt", found.Title)
	require.Len(t, found.Variations, 1)
	assert.Equal(t, "Default", found.Variations[0].Title)
}

func TestProductRepository_FindAll_ActiveOnly(t *testing.T) {
	_, repo := setupProductRepositoryTest(t)

	createProduct(t, repo, "Visible", "20.00", true)
	createProduct(t, repo, "Hidden", "20.00", false)

	products, err := repo.FindAll(ProductFilter{})
	assert.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Visible", products[0].Title)
}

func TestProductRepository_FindAll_PriceBounds(t *testing.T) {
	_, repo := setupProductRepositoryTest(t)

	createProduct(t, repo, "Cheap", "5.00", true)
	createProduct(t, repo, "Mid", "20.00", true)
	createProduct(t, repo, "Dear", "80.00", true)

	min := decimal.RequireFromString("10.00")
	max := decimal.RequireFromString("50.00")
	products, err := repo.FindAll(ProductFilter{MinPrice: &min, MaxPrice: &max})
	assert.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mid", products[0].Title)
}

func TestProductRepository_FindAll_CategoryBySlug(t *testing.T) {
	testDB, repo := setupProductRepositoryTest(t)

	shirt := createProduct(t, repo, "Shirt", "20.00", true)
	createProduct(t, repo, "Mug", "8.00", true)

	category := &model.Category{Title: "Apparel", Slug: "apparel", Active: true}
	require.NoError(t, testDB.Create(category).Error)
	require.NoError(t, testDB.Exec(
		"INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)",
		shirt.ID, category.ID,
	).Error)

	bySlug, err := repo.FindAll(ProductFilter{Category: "apparel"})
	assert.NoError(t, err)
	require.Len(t, bySlug, 1)
	assert.Equal(t, "Shirt", bySlug[0].Title)

	byTitle, err := repo.FindAll(ProductFilter{Category: "Apparel"})
	assert.NoError(t, err)
	assert.Len(t, byTitle, 1)
}

func TestProductRepository_Variations(t *testing.T) {
	_, repo := setupProductRepositoryTest(t)

	product := createProduct(t, repo, "Shirt", "20.00", true)

	count, err := repo.CountVariations(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.CreateVariation(&model.Variation{
		ProductID: product.ID,
		Title:     "Large",
		Price:     decimal.RequireFromString("22.00"),
		Active:    true,
	}))

	variations, err := repo.FindVariationsByProduct(product.ID)
	assert.NoError(t, err)
	assert.Len(t, variations, 2)

	found, err := repo.FindVariationByID(variations[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, product.ID, found.Product.ID)
}
