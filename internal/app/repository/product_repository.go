package repository

import (
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFilter narrows catalog listings. Zero values mean "no constraint".
type ProductFilter struct {
	Category string
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindAll(filter ProductFilter) ([]model.Product, error)
	Update(product *model.Product) error
	CountVariations(productID uint) (int64, error)
	CreateVariation(variation *model.Variation) error
	FindVariationByID(id uint) (*model.Variation, error)
	FindVariationsByProduct(productID uint) ([]model.Variation, error)
	UpdateVariation(variation *model.Variation) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Variations").
		Preload("Categories").
		Preload("DefaultCategory").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{}).
		Where("products.active = ?", true).
		Preload("Variations").
		Preload("Categories")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("products.title LIKE ? OR products.description LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.
			Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Joins("JOIN categories c ON c.id = pc.category_id").
			Where("c.title = ? OR c.slug = ?", filter.Category, filter.Category).
			Distinct("products.*")
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		query = query.Joins("JOIN variations v ON v.product_id = products.id AND v.deleted_at IS NULL")
		if filter.MinPrice != nil {
			query = query.Where("v.price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			query = query.Where("v.price <= ?", *filter.MaxPrice)
		}
		query = query.Distinct("products.*")
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"category": filter.Category,
			"query":    filter.Query,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) CountVariations(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Variation{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) CreateVariation(variation *model.Variation) error {
	if err := r.db.Create(variation).Error; err != nil {
		logger.Error("Failed to create variation in database", err, map[string]interface{}{
			"product_id": variation.ProductID,
			"title":      variation.Title,
		})
		return err
	}

	logger.Debug("Variation created in database", map[string]interface{}{
		"variation_id": variation.ID,
		"product_id":   variation.ProductID,
	})
	return nil
}

func (r *productRepository) FindVariationByID(id uint) (*model.Variation, error) {
	var variation model.Variation
	err := r.db.Preload("Product").First(&variation, id).Error
	if err != nil {
		return nil, err
	}
	return &variation, nil
}

func (r *productRepository) FindVariationsByProduct(productID uint) ([]model.Variation, error) {
	var variations []model.Variation
	err := r.db.Where("product_id = ?", productID).Find(&variations).Error
	if err != nil {
		return nil, err
	}
	return variations, nil
}

func (r *productRepository) UpdateVariation(variation *model.Variation) error {
	if err := r.db.Save(variation).Error; err != nil {
		logger.Error("Failed to update variation in database", err, map[string]interface{}{
			"variation_id": variation.ID,
		})
		return err
	}
	return nil
}
