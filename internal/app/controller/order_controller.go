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

type OrderController struct {
	orderService service.OrderService
	cartService  service.CartService
	sessionStore session.Store
}

func NewOrderController(
	orderService service.OrderService,
	cartService service.CartService,
	sessionStore session.Store,
) *OrderController {
	return &OrderController{
		orderService: orderService,
		cartService:  cartService,
		sessionStore: sessionStore,
	}
}

type PayOrderRequest struct {
	PaymentNonce string `json:"payment_nonce"`
}

// ListOrders returns the identified profile's order history
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CheckoutID == nil {
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
			"Provide an email or log in to view orders", StepGuest)
		return
	}

	orders, err := ctrl.orderService.ListByCheckout(*sess.CheckoutID)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"checkout_id": *sess.CheckoutID,
		})
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns a single order owned by the session
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	order, ok := ctrl.ownedOrder(c)
	if !ok {
		return
	}

	log.Debug("Order fetched", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// PayOrder charges the finalized order through the payment gateway
// POST /api/v1/orders/:id/pay
func (ctrl *OrderController) PayOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	order, ok := ctrl.ownedOrder(c)
	if !ok {
		return
	}

	// The body is optional. Without a nonce the gateway charges the
	// customer's vaulted payment method.
	var req PayOrderRequest
	_ = c.ShouldBindJSON(&req)

	paid, err := ctrl.orderService.Pay(c.Request.Context(), order.ID, req.PaymentNonce)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotPayable):
			apperrors.PreconditionNotMet(c, apperrors.OrderNotPayable,
				"Finalize the checkout before paying", StepFinalize)
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		default:
			log.Error("Payment failed", err, map[string]interface{}{
				"order_id": order.ID,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PaymentFailed,
				"Payment could not be completed")
		}
		return
	}

	// The order is settled; clear the checkout keys so the next visit starts a
	// fresh cart and order.
	if sess.OrderID != nil && *sess.OrderID == paid.ID {
		sess.CartID = nil
		sess.OrderID = nil
		sess.BillingAddressID = nil
		sess.ShippingAddressID = nil
		sess.Finalized = false
		if err := middleware.SaveSession(c, ctrl.sessionStore); err != nil {
			log.Error("Failed to persist session after payment", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you for your order.",
		"order":   paid,
	})
}

// ownedOrder parses the :id param and enforces that the order belongs to the
// session, either as the in-flight checkout order or through the identified
// profile. Foreign orders read as not found.
func (ctrl *OrderController) ownedOrder(c *gin.Context) (*model.Order, bool) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order id")
		return nil, false
	}

	order, err := ctrl.orderService.GetOrder(uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return nil, false
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Failed to fetch order")
		return nil, false
	}

	if sess.OrderID != nil && *sess.OrderID == order.ID {
		return order, true
	}
	if sess.CheckoutID != nil && order.CheckoutID != nil && *order.CheckoutID == *sess.CheckoutID {
		return order, true
	}

	log.Warn("Order access denied", map[string]interface{}{
		"order_id": order.ID,
	})
	apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	return nil, false
}
