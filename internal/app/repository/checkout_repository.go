package repository

import (
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CheckoutRepository interface {
	Create(checkout *model.UserCheckout) error
	FindByID(id uint) (*model.UserCheckout, error)
	FindByEmail(email string) (*model.UserCheckout, error)
	FindByUserID(userID uint) (*model.UserCheckout, error)
	Update(checkout *model.UserCheckout) error
}

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(checkout *model.UserCheckout) error {
	if err := r.db.Create(checkout).Error; err != nil {
		logger.Error("Failed to create checkout profile in database", err, map[string]interface{}{
			"email": checkout.Email,
		})
		return err
	}

	logger.Debug("Checkout profile created in database", map[string]interface{}{
		"checkout_id": checkout.ID,
		"email":       checkout.Email,
	})
	return nil
}

func (r *checkoutRepository) FindByID(id uint) (*model.UserCheckout, error) {
	var checkout model.UserCheckout
	if err := r.db.First(&checkout, id).Error; err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *checkoutRepository) FindByEmail(email string) (*model.UserCheckout, error) {
	var checkout model.UserCheckout
	if err := r.db.Where("email = ?", email).First(&checkout).Error; err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *checkoutRepository) FindByUserID(userID uint) (*model.UserCheckout, error) {
	var checkout model.UserCheckout
	if err := r.db.Where("user_id = ?", userID).First(&checkout).Error; err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *checkoutRepository) Update(checkout *model.UserCheckout) error {
	if err := r.db.Save(checkout).Error; err != nil {
		logger.Error("Failed to update checkout profile in database", err, map[string]interface{}{
			"checkout_id": checkout.ID,
		})
		return err
	}
	return nil
}
