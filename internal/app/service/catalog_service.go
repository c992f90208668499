package service

import (
	"errors"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariationNotFound = errors.New("variation not found")
)

// VariationUpdate is one row of a bulk inventory/pricing edit.
type VariationUpdate struct {
	ID            uint                `json:"id"`
	Title         string              `json:"title"`
	InventorySize *int                `json:"inventory_size"`
	Price         decimal.Decimal     `json:"price"`
	SalePrice     decimal.NullDecimal `json:"sale_price"`
	Active        bool                `json:"active"`
}

type CatalogService interface {
	CreateProduct(product *model.Product) error
	GetProduct(id uint) (*model.Product, error)
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	ListVariations(productID uint) ([]model.Variation, error)
	UpdateVariations(productID uint, updates []VariationUpdate) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// CreateProduct persists the product and provisions a default variation when
// none was supplied, so every product is purchasable immediately.
func (s *catalogService) CreateProduct(product *model.Product) error {
	logger.Info("Creating product", map[string]interface{}{
		"title": product.Title,
	})

	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	if err := s.ensureDefaultVariation(product); err != nil {
		logger.Error("Failed to provision default variation", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// ensureDefaultVariation runs after product creation; it replaces the hidden
// persistence hook of earlier revisions with an auditable call site.
func (s *catalogService) ensureDefaultVariation(product *model.Product) error {
	count, err := s.productRepo.CountVariations(product.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	variation := &model.Variation{
		ProductID: product.ID,
		Title:     "Default",
		Price:     product.Price,
		Active:    true,
	}
	if err := s.productRepo.CreateVariation(variation); err != nil {
		return err
	}

	product.Variations = append(product.Variations, *variation)
	logger.Debug("Default variation provisioned", map[string]interface{}{
		"product_id":   product.ID,
		"variation_id": variation.ID,
	})
	return nil
}

func (s *catalogService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	if !product.Active {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *catalogService) ListVariations(productID uint) ([]model.Variation, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.productRepo.FindVariationsByProduct(productID)
}

// UpdateVariations applies a bulk inventory and pricing edit to a product's
// variations. Rows naming a variation that does not belong to the product are
// rejected.
func (s *catalogService) UpdateVariations(productID uint, updates []VariationUpdate) error {
	logger.Info("Updating variations", map[string]interface{}{
		"product_id": productID,
		"rows":       len(updates),
	})

	for _, update := range updates {
		variation, err := s.productRepo.FindVariationByID(update.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVariationNotFound
			}
			return err
		}
		if variation.ProductID != productID {
			logger.Warn("Variation does not belong to product", map[string]interface{}{
				"product_id":   productID,
				"variation_id": update.ID,
			})
			return ErrVariationNotFound
		}

		if update.Title != "" {
			variation.Title = update.Title
		}
		variation.InventorySize = update.InventorySize
		if !update.Price.IsZero() {
			variation.Price = update.Price
		}
		variation.SalePrice = update.SalePrice
		variation.Active = update.Active

		if err := s.productRepo.UpdateVariation(variation); err != nil {
			return err
		}
	}
	return nil
}
