package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	apperrors "github.com/mstasiak/storefront-backend/internal/errors"
	"github.com/mstasiak/storefront-backend/internal/middleware"
	"github.com/mstasiak/storefront-backend/internal/session"
)

type CartController struct {
	cartService  service.CartService
	sessionStore session.Store
}

func NewCartController(cartService service.CartService, sessionStore session.Store) *CartController {
	return &CartController{
		cartService:  cartService,
		sessionStore: sessionStore,
	}
}

type UpsertItemRequest struct {
	VariationID uint `json:"variation_id" binding:"required"`
	Quantity    *int `json:"quantity"` // omitted means 1; below 1 removes the line
}

// resolveCart returns the session's cart, creating one lazily. A stale cart id
// in the session is replaced with a fresh empty cart. When the visitor is
// authenticated the cart is bound to their account.
func (ctrl *CartController) resolveCart(c *gin.Context) (*model.Cart, error) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	cart, created, err := ctrl.cartService.GetOrCreateCart(sess.CartID)
	if errors.Is(err, service.ErrCartNotFound) {
		// The session pointed at a cart that no longer exists. Carts are
		// re-creatable, so start over with an empty one.
		log.Warn("Replacing stale session cart", map[string]interface{}{
			"cart_id": *sess.CartID,
		})
		cart, created, err = ctrl.cartService.GetOrCreateCart(nil)
	}
	if err != nil {
		return nil, err
	}

	if created {
		sess.CartID = &cart.ID
		if err := middleware.SaveSession(c, ctrl.sessionStore); err != nil {
			return nil, err
		}
	}

	if userID, authenticated := middleware.GetUserID(c); authenticated {
		if err := ctrl.cartService.AttachUser(cart.ID, userID); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// GetCart returns the session cart with its derived totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cart, err := ctrl.resolveCart(c)
	if err != nil {
		log.Error("Failed to resolve session cart", err)
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	totals, err := ctrl.cartService.Totals(cart.ID)
	if err != nil {
		log.Error("Failed to compute cart totals", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":   cart,
		"totals": totals,
	})
}

// ItemCount returns the number of lines in the session cart, for the badge
// GET /api/v1/cart/count
func (ctrl *CartController) ItemCount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CartID == nil {
		c.JSON(http.StatusOK, gin.H{"count": 0})
		return
	}

	count, err := ctrl.cartService.ItemCount(*sess.CartID)
	if err != nil {
		log.Error("Failed to count cart items", err, map[string]interface{}{
			"cart_id": *sess.CartID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// UpsertItem sets the quantity for a variation in the session cart
// POST /api/v1/cart/items
func (ctrl *CartController) UpsertItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart item request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "variation_id is required")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := ctrl.resolveCart(c)
	if err != nil {
		log.Error("Failed to resolve session cart", err)
		apperrors.InternalError(c, "Failed to update cart")
		return
	}

	item, created, err := ctrl.cartService.UpsertItem(cart.ID, req.VariationID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVariationNotFound):
			apperrors.NotFound(c, apperrors.VariationNotFound, "Variation not found")
		case errors.Is(err, service.ErrVariationInactive):
			apperrors.BadRequest(c, apperrors.VariationInactive, "This item is not available")
		default:
			log.Error("Failed to upsert cart item", err, map[string]interface{}{
				"cart_id":      cart.ID,
				"variation_id": req.VariationID,
			})
			apperrors.InternalError(c, "Failed to update cart")
		}
		return
	}

	totals, err := ctrl.cartService.Totals(cart.ID)
	if err != nil {
		log.Error("Failed to compute cart totals", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		apperrors.InternalError(c, "Failed to update cart")
		return
	}

	var message string
	switch {
	case quantity < 1:
		message = "Item removed successfully."
	case created:
		message = "Successfully added to the cart."
	default:
		message = "Quantity has been updated successfully."
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"item":    item,
		"added":   created,
		"deleted": quantity < 1,
		"totals":  totals,
	})
}

// RemoveItem deletes a variation line from the session cart
// DELETE /api/v1/cart/items/:variation_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	variationID, err := strconv.ParseUint(c.Param("variation_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid variation id")
		return
	}

	cart, err := ctrl.resolveCart(c)
	if err != nil {
		log.Error("Failed to resolve session cart", err)
		apperrors.InternalError(c, "Failed to update cart")
		return
	}

	if err := ctrl.cartService.RemoveItem(cart.ID, uint(variationID)); err != nil {
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_id":      cart.ID,
			"variation_id": variationID,
		})
		apperrors.InternalError(c, "Failed to update cart")
		return
	}

	totals, err := ctrl.cartService.Totals(cart.ID)
	if err != nil {
		apperrors.InternalError(c, "Failed to update cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed successfully.",
		"totals":  totals,
	})
}
