package service

import (
	"errors"
	"time"

	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrVariationInactive = errors.New("variation is not available")
)

// CartTotals is the derived money view of a cart.
type CartTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxTotal  decimal.Decimal `json:"tax_total"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type CartService interface {
	GetOrCreateCart(cartID *uint) (*model.Cart, bool, error)
	GetCart(cartID uint) (*model.Cart, error)
	AttachUser(cartID, userID uint) error
	UpsertItem(cartID, variationID uint, quantity int) (*model.CartItem, bool, error)
	RemoveItem(cartID, variationID uint) error
	Totals(cartID uint) (*CartTotals, error)
	ItemCount(cartID uint) (int64, error)
	PurgeStaleAnonymous(maxAge time.Duration) (int64, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	taxRate     decimal.Decimal
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	taxRate decimal.Decimal,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		taxRate:     taxRate,
	}
}

// GetOrCreateCart returns the cart for the session-carried id, or a fresh
// empty cart when no id is given. A stale id is reported as ErrCartNotFound;
// the caller decides whether to fall back to a new cart.
func (s *cartService) GetOrCreateCart(cartID *uint) (*model.Cart, bool, error) {
	if cartID == nil {
		cart := &model.Cart{
			TaxTotal: decimal.Zero,
			Total:    decimal.Zero,
		}
		if err := s.cartRepo.CreateCart(cart); err != nil {
			return nil, false, err
		}
		logger.Info("Created new session cart", map[string]interface{}{
			"cart_id": cart.ID,
		})
		return cart, true, nil
	}

	cart, err := s.cartRepo.FindCartByID(*cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Session referenced unknown cart", map[string]interface{}{
				"cart_id": *cartID,
			})
			return nil, false, ErrCartNotFound
		}
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"cart_id": *cartID,
		})
		return nil, false, err
	}
	return cart, false, nil
}

func (s *cartService) GetCart(cartID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindCartByID(cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

// AttachUser binds the cart to an authenticated user. Idempotent.
func (s *cartService) AttachUser(cartID, userID uint) error {
	cart, err := s.GetCart(cartID)
	if err != nil {
		return err
	}

	if cart.UserID != nil && *cart.UserID == userID {
		return nil
	}

	cart.UserID = &userID
	if err := s.cartRepo.UpdateCart(cart); err != nil {
		return err
	}

	logger.Info("Cart bound to user", map[string]interface{}{
		"cart_id": cartID,
		"user_id": userID,
	})
	return nil
}

// UpsertItem sets the quantity for the (cart, variation) line. A quantity
// below one removes the line. The returned flag reports whether the line was
// newly created, which drives "added" vs "quantity updated" messaging.
func (s *cartService) UpsertItem(cartID, variationID uint, quantity int) (*model.CartItem, bool, error) {
	logger.Info("Upserting cart item", map[string]interface{}{
		"cart_id":      cartID,
		"variation_id": variationID,
		"quantity":     quantity,
	})

	if quantity < 1 {
		if err := s.RemoveItem(cartID, variationID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	if _, err := s.GetCart(cartID); err != nil {
		return nil, false, err
	}

	variation, err := s.productRepo.FindVariationByID(variationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: variation not found", map[string]interface{}{
				"variation_id": variationID,
			})
			return nil, false, ErrVariationNotFound
		}
		logger.Error("Failed to fetch variation", err, map[string]interface{}{
			"variation_id": variationID,
		})
		return nil, false, err
	}

	if !variation.Active {
		logger.Warn("Cannot add to cart: variation inactive", map[string]interface{}{
			"variation_id": variationID,
		})
		return nil, false, ErrVariationInactive
	}

	item, err := s.cartRepo.FindItem(cartID, variationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"cart_id":      cartID,
			"variation_id": variationID,
		})
		return nil, false, err
	}

	created := false
	if item == nil {
		item = &model.CartItem{
			CartID:      cartID,
			VariationID: variationID,
			Quantity:    quantity,
		}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, false, err
		}
		item.Variation = *variation
		created = true
	} else {
		item.Quantity = quantity
		if err := s.cartRepo.UpdateItem(item); err != nil {
			return nil, false, err
		}
	}

	if err := s.recomputeTotals(cartID); err != nil {
		return nil, false, err
	}

	logger.Info("Cart item upserted", map[string]interface{}{
		"cart_item_id": item.ID,
		"cart_id":      cartID,
		"created":      created,
	})
	return item, created, nil
}

// RemoveItem deletes the (cart, variation) line. Removing an absent line is
// not an error.
func (s *cartService) RemoveItem(cartID, variationID uint) error {
	if _, err := s.GetCart(cartID); err != nil {
		return err
	}

	if err := s.cartRepo.DeleteItem(cartID, variationID); err != nil {
		return err
	}

	return s.recomputeTotals(cartID)
}

func (s *cartService) Totals(cartID uint) (*CartTotals, error) {
	cart, err := s.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	return s.totalsOf(cart), nil
}

func (s *cartService) ItemCount(cartID uint) (int64, error) {
	return s.cartRepo.CountItems(cartID)
}

// PurgeStaleAnonymous deletes anonymous carts idle longer than maxAge that
// were never turned into an order.
func (s *cartService) PurgeStaleAnonymous(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	removed, err := s.cartRepo.DeleteStaleAnonymous(cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		logger.Info("Purged stale anonymous carts", map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff,
		})
	}
	return removed, nil
}

// recomputeTotals rederives the cart's tax_total and total from its lines and
// persists them. Every item mutation ends here so the stored cart never
// diverges from its contents.
func (s *cartService) recomputeTotals(cartID uint) error {
	cart, err := s.cartRepo.FindCartByID(cartID)
	if err != nil {
		return err
	}

	totals := s.totalsOf(cart)
	cart.TaxTotal = totals.TaxTotal
	cart.Total = totals.Total

	if err := s.cartRepo.UpdateCart(cart); err != nil {
		return err
	}

	logger.Debug("Cart totals recomputed", map[string]interface{}{
		"cart_id":   cartID,
		"subtotal":  totals.Subtotal.String(),
		"tax_total": totals.TaxTotal.String(),
		"total":     totals.Total.String(),
	})
	return nil
}

func (s *cartService) totalsOf(cart *model.Cart) *CartTotals {
	subtotal := decimal.Zero
	for i := range cart.Items {
		subtotal = subtotal.Add(cart.Items[i].LineTotal())
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	return &CartTotals{
		Subtotal:  subtotal,
		TaxTotal:  tax,
		Total:     subtotal.Add(tax),
		ItemCount: len(cart.Items),
	}
}
