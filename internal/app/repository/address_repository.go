package repository

import (
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(address *model.UserAddress) error
	FindByID(id uint) (*model.UserAddress, error)
	FindByCheckout(checkoutID uint) ([]model.UserAddress, error)
	FindByCheckoutAndType(checkoutID uint, addrType model.AddressType) ([]model.UserAddress, error)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(address *model.UserAddress) error {
	if err := r.db.Create(address).Error; err != nil {
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"checkout_id": address.CheckoutID,
			"type":        address.Type,
		})
		return err
	}

	logger.Debug("Address created in database", map[string]interface{}{
		"address_id":  address.ID,
		"checkout_id": address.CheckoutID,
		"type":        address.Type,
	})
	return nil
}

func (r *addressRepository) FindByID(id uint) (*model.UserAddress, error) {
	var address model.UserAddress
	if err := r.db.First(&address, id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) FindByCheckout(checkoutID uint) ([]model.UserAddress, error) {
	var addresses []model.UserAddress
	err := r.db.Where("checkout_id = ?", checkoutID).Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) FindByCheckoutAndType(checkoutID uint, addrType model.AddressType) ([]model.UserAddress, error) {
	var addresses []model.UserAddress
	err := r.db.
		Where("checkout_id = ? AND type = ?", checkoutID, addrType).
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}
