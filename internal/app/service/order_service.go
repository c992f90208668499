package service

import (
	"context"
	"errors"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/mstasiak/storefront-backend/pkg/payment/braintree"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderNotPayable = errors.New("order is not ready for payment")
)

type OrderService interface {
	GetOrCreateOrder(cartID uint, orderID *uint) (*model.Order, bool, error)
	GetOrder(orderID uint) (*model.Order, error)
	ListByCheckout(checkoutID uint) ([]model.Order, error)
	AttachIdentity(orderID, checkoutID, billingID, shippingID uint) (*model.Order, error)
	MarkPaid(orderID uint, externalID string) (*model.Order, error)
	Pay(ctx context.Context, orderID uint, nonce string) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	addressRepo  repository.AddressRepository
	checkoutRepo repository.CheckoutRepository
	gateway      braintree.Gateway
	shippingFee  decimal.Decimal
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	checkoutRepo repository.CheckoutRepository,
	gateway braintree.Gateway,
	shippingFee decimal.Decimal,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		addressRepo:  addressRepo,
		checkoutRepo: checkoutRepo,
		gateway:      gateway,
		shippingFee:  shippingFee,
	}
}

// GetOrCreateOrder returns the session's order, creating one for the cart when
// the session has none yet. A stale order id is not recoverable here: the
// caller restarts the checkout instead of silently opening a second order.
func (s *orderService) GetOrCreateOrder(cartID uint, orderID *uint) (*model.Order, bool, error) {
	if orderID != nil {
		order, err := s.orderRepo.FindByID(*orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Session referenced unknown order", map[string]interface{}{
					"order_id": *orderID,
				})
				return nil, false, ErrOrderNotFound
			}
			return nil, false, err
		}
		return order, false, nil
	}

	cart, err := s.cartRepo.FindCartByID(cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrCartNotFound
		}
		return nil, false, err
	}
	if len(cart.Items) == 0 {
		logger.Warn("Cannot open order: cart is empty", map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, false, ErrEmptyCart
	}

	order := &model.Order{
		Status:        model.OrderStatusCreated,
		CartID:        cartID,
		ShippingTotal: s.shippingFee,
		OrderTotal:    s.shippingFee.Add(cart.Total),
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, false, err
	}

	logger.Info("Order opened for cart", map[string]interface{}{
		"order_id": order.ID,
		"cart_id":  cartID,
	})
	return order, true, nil
}

func (s *orderService) GetOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListByCheckout(checkoutID uint) ([]model.Order, error) {
	return s.orderRepo.FindByCheckoutID(checkoutID)
}

// AttachIdentity binds the resolved profile and its selected addresses to the
// order. Address ownership is re-checked here because the ids travelled
// through the session.
func (s *orderService) AttachIdentity(orderID, checkoutID, billingID, shippingID uint) (*model.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkoutRepo.FindByID(checkoutID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}

	billing, err := s.ownedAddress(checkoutID, billingID, model.AddressBilling)
	if err != nil {
		return nil, err
	}
	shipping, err := s.ownedAddress(checkoutID, shippingID, model.AddressShipping)
	if err != nil {
		return nil, err
	}

	order.CheckoutID = &checkoutID
	order.BillingAddressID = &billing.ID
	order.ShippingAddressID = &shipping.ID

	if err := s.save(order); err != nil {
		return nil, err
	}

	logger.Info("Identity attached to order", map[string]interface{}{
		"order_id":    orderID,
		"checkout_id": checkoutID,
	})
	return order, nil
}

// MarkPaid moves the order to its terminal paid status. The external payment
// reference is stored only when none is present, so repeating the call never
// erases the original reference.
func (s *orderService) MarkPaid(orderID uint, externalID string) (*model.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusPaid
	if externalID != "" && order.ExternalID == "" {
		order.ExternalID = externalID
	}

	if err := s.save(order); err != nil {
		return nil, err
	}

	logger.Info("Order marked paid", map[string]interface{}{
		"order_id":    orderID,
		"external_id": order.ExternalID,
	})
	return order, nil
}

// Pay charges the profile's payment customer for the order total and marks the
// order paid with the processor's transaction id. Paying an already paid order
// is a no-op returning the stored state.
func (s *orderService) Pay(ctx context.Context, orderID uint, nonce string) (*model.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == model.OrderStatusPaid {
		return order, nil
	}
	if order.CheckoutID == nil || order.BillingAddressID == nil || order.ShippingAddressID == nil {
		return nil, ErrOrderNotPayable
	}

	checkout, err := s.checkoutRepo.FindByID(*order.CheckoutID)
	if err != nil {
		return nil, err
	}
	if checkout.BraintreeID == "" {
		customerID, err := s.gateway.CreateCustomer(ctx, checkout.Email)
		if err != nil {
			return nil, err
		}
		checkout.BraintreeID = customerID
		if err := s.checkoutRepo.Update(checkout); err != nil {
			return nil, err
		}
	}

	// The cart may have changed since the order was finalized. Refresh the
	// stored total first so the captured amount always equals the recorded
	// order_total.
	if err := s.save(order); err != nil {
		return nil, err
	}

	txID, err := s.gateway.Sale(ctx, checkout.BraintreeID, nonce, order.OrderTotal)
	if err != nil {
		logger.Error("Payment capture failed", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	return s.MarkPaid(orderID, txID)
}

func (s *orderService) ownedAddress(checkoutID, addressID uint, addrType model.AddressType) (*model.UserAddress, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.CheckoutID != checkoutID || address.Type != addrType {
		logger.Warn("Order address rejected: ownership or type mismatch", map[string]interface{}{
			"address_id":  addressID,
			"checkout_id": checkoutID,
			"expected":    addrType,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// save recomputes order_total before persisting. Every mutation of an order
// funnels through here so the stored total always equals shipping plus the
// cart total.
func (s *orderService) save(order *model.Order) error {
	cart, err := s.cartRepo.FindCartByID(order.CartID)
	if err != nil {
		return err
	}

	order.OrderTotal = order.ShippingTotal.Add(cart.Total)
	return s.orderRepo.Update(order)
}
