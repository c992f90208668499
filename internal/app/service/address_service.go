package service

import (
	"errors"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound    = errors.New("address not found")
	ErrInvalidAddressType = errors.New("invalid address type")
)

type AddressService interface {
	ListByType(checkoutID uint, addrType model.AddressType) ([]model.UserAddress, error)
	Create(checkoutID uint, address *model.UserAddress) error
	GetOwned(checkoutID, addressID uint, addrType model.AddressType) (*model.UserAddress, error)
	HasBothTypes(checkoutID uint) (bool, bool, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) ListByType(checkoutID uint, addrType model.AddressType) ([]model.UserAddress, error) {
	if addrType != model.AddressBilling && addrType != model.AddressShipping {
		return nil, ErrInvalidAddressType
	}
	return s.addressRepo.FindByCheckoutAndType(checkoutID, addrType)
}

// Create attaches the address to the checkout profile. The profile id always
// comes from the resolved session profile, never from the request body.
func (s *addressService) Create(checkoutID uint, address *model.UserAddress) error {
	if address.Type != model.AddressBilling && address.Type != model.AddressShipping {
		return ErrInvalidAddressType
	}

	address.CheckoutID = checkoutID
	if err := s.addressRepo.Create(address); err != nil {
		return err
	}

	logger.Info("Address created", map[string]interface{}{
		"address_id":  address.ID,
		"checkout_id": checkoutID,
		"type":        address.Type,
	})
	return nil
}

// GetOwned fetches an address and verifies it belongs to the profile and has
// the expected type. Ownership mismatches are reported as not-found so the
// response does not leak other profiles' address ids.
func (s *addressService) GetOwned(checkoutID, addressID uint, addrType model.AddressType) (*model.UserAddress, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	if address.CheckoutID != checkoutID || address.Type != addrType {
		logger.Warn("Address access denied: ownership or type mismatch", map[string]interface{}{
			"address_id":  addressID,
			"checkout_id": checkoutID,
			"expected":    addrType,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// HasBothTypes reports whether the profile has at least one billing and one
// shipping address. The checkout flow refuses to show an empty selector.
func (s *addressService) HasBothTypes(checkoutID uint) (bool, bool, error) {
	addresses, err := s.addressRepo.FindByCheckout(checkoutID)
	if err != nil {
		return false, false, err
	}

	var hasBilling, hasShipping bool
	for i := range addresses {
		switch addresses[i].Type {
		case model.AddressBilling:
			hasBilling = true
		case model.AddressShipping:
			hasShipping = true
		}
	}
	return hasBilling, hasShipping, nil
}
