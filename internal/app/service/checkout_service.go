package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/mstasiak/storefront-backend/pkg/payment/braintree"
	"gorm.io/gorm"
)

var (
	ErrCheckoutNotFound = errors.New("checkout profile not found")
	ErrEmailMismatch    = errors.New("emails do not match")
	ErrEmailRegistered  = errors.New("email belongs to a registered account")
)

type CheckoutService interface {
	ResolveGuest(email, confirm string) (*model.UserCheckout, error)
	ResolveUser(userID uint, email string) (*model.UserCheckout, error)
	GetProfile(checkoutID uint) (*model.UserCheckout, error)
	EnsureCustomerRef(ctx context.Context, checkoutID uint) (string, error)
	ClientToken(ctx context.Context, checkoutID uint) (string, error)
}

type checkoutService struct {
	checkoutRepo repository.CheckoutRepository
	userRepo     repository.UserRepository
	gateway      braintree.Gateway
}

func NewCheckoutService(
	checkoutRepo repository.CheckoutRepository,
	userRepo repository.UserRepository,
	gateway braintree.Gateway,
) CheckoutService {
	return &checkoutService{
		checkoutRepo: checkoutRepo,
		userRepo:     userRepo,
		gateway:      gateway,
	}
}

// ResolveGuest turns a confirmed guest email into a checkout profile. The
// email is the identity key: resolving the same address twice returns the
// same profile. Emails owned by registered accounts are rejected so guests
// are pushed to log in instead.
func (s *checkoutService) ResolveGuest(email, confirm string) (*model.UserCheckout, error) {
	email = normalizeEmail(email)
	confirm = normalizeEmail(confirm)

	if email == "" || email != confirm {
		logger.Warn("Guest email confirmation mismatch", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailMismatch
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		logger.Warn("Guest checkout attempted with registered email", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.findOrCreateByEmail(email, nil)
}

// ResolveUser finds the profile for an authenticated user. An existing guest
// profile with the same email is bound to the account rather than duplicated.
func (s *checkoutService) ResolveUser(userID uint, email string) (*model.UserCheckout, error) {
	email = normalizeEmail(email)

	checkout, err := s.checkoutRepo.FindByUserID(userID)
	if err == nil {
		return checkout, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.findOrCreateByEmail(email, &userID)
}

func (s *checkoutService) findOrCreateByEmail(email string, userID *uint) (*model.UserCheckout, error) {
	checkout, err := s.checkoutRepo.FindByEmail(email)
	if err == nil {
		if userID != nil && checkout.UserID == nil {
			checkout.UserID = userID
			if err := s.checkoutRepo.Update(checkout); err != nil {
				return nil, err
			}
			logger.Info("Guest checkout profile bound to user", map[string]interface{}{
				"checkout_id": checkout.ID,
				"user_id":     *userID,
			})
		}
		return checkout, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	checkout = &model.UserCheckout{
		Email:  email,
		UserID: userID,
	}
	if err := s.checkoutRepo.Create(checkout); err != nil {
		return nil, err
	}

	logger.Info("Checkout profile created", map[string]interface{}{
		"checkout_id": checkout.ID,
		"email":       email,
		"guest":       userID == nil,
	})
	return checkout, nil
}

func (s *checkoutService) GetProfile(checkoutID uint) (*model.UserCheckout, error) {
	checkout, err := s.checkoutRepo.FindByID(checkoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}
	return checkout, nil
}

// EnsureCustomerRef lazily creates the payment processor customer for the
// profile and stores its id. Subsequent calls return the stored ref.
func (s *checkoutService) EnsureCustomerRef(ctx context.Context, checkoutID uint) (string, error) {
	checkout, err := s.GetProfile(checkoutID)
	if err != nil {
		return "", err
	}

	if checkout.BraintreeID != "" {
		return checkout.BraintreeID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, checkout.Email)
	if err != nil {
		logger.Error("Failed to create payment customer", err, map[string]interface{}{
			"checkout_id": checkoutID,
		})
		return "", err
	}

	checkout.BraintreeID = customerID
	if err := s.checkoutRepo.Update(checkout); err != nil {
		return "", err
	}

	logger.Info("Payment customer created", map[string]interface{}{
		"checkout_id": checkoutID,
	})
	return customerID, nil
}

// ClientToken issues a payment-form token scoped to the profile's customer.
func (s *checkoutService) ClientToken(ctx context.Context, checkoutID uint) (string, error) {
	customerID, err := s.EnsureCustomerRef(ctx, checkoutID)
	if err != nil {
		return "", err
	}
	return s.gateway.GenerateClientToken(ctx, customerID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
