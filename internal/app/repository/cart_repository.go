package repository

import (
	"time"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	CreateCart(cart *model.Cart) error
	FindCartByID(id uint) (*model.Cart, error)
	UpdateCart(cart *model.Cart) error
	FindItem(cartID, variationID uint) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	UpdateItem(item *model.CartItem) error
	DeleteItem(cartID, variationID uint) error
	CountItems(cartID uint) (int64, error)
	DeleteStaleAnonymous(cutoff time.Time) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) CreateCart(cart *model.Cart) error {
	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err)
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

func (r *cartRepository) FindCartByID(id uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.
		Preload("Items.Variation").
		First(&cart, id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) UpdateCart(cart *model.Cart) error {
	if err := r.db.Save(cart).Error; err != nil {
		logger.Error("Failed to update cart in database", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindItem(cartID, variationID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.
		Where("cart_id = ? AND variation_id = ?", cartID, variationID).
		Preload("Variation").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":      item.CartID,
			"variation_id": item.VariationID,
			"quantity":     item.Quantity,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"cart_id":      item.CartID,
		"variation_id": item.VariationID,
	})
	return nil
}

func (r *cartRepository) UpdateItem(item *model.CartItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
			"cart_id":      item.CartID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(cartID, variationID uint) error {
	// Hard delete; the (cart_id, variation_id) unique index must stay free
	// for the pair to be re-added.
	err := r.db.
		Where("cart_id = ? AND variation_id = ?", cartID, variationID).
		Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_id":      cartID,
			"variation_id": variationID,
		})
		return err
	}

	logger.Debug("Cart item deleted from database", map[string]interface{}{
		"cart_id":      cartID,
		"variation_id": variationID,
	})
	return nil
}

func (r *cartRepository) CountItems(cartID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error
	return count, err
}

// DeleteStaleAnonymous removes anonymous carts that were last touched before
// the cutoff and were never reconciled into an order.
func (r *cartRepository) DeleteStaleAnonymous(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("user_id IS NULL AND updated_at < ?", cutoff).
		Where("id NOT IN (?)", r.db.Model(&model.Order{}).Select("cart_id")).
		Delete(&model.Cart{})
	if result.Error != nil {
		logger.Error("Failed to delete stale carts from database", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
