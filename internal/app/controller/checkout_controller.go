package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	apperrors "github.com/mstasiak/storefront-backend/internal/errors"
	"github.com/mstasiak/storefront-backend/internal/middleware"
	"github.com/mstasiak/storefront-backend/internal/session"
)

// Checkout step names used in redirect hints.
const (
	StepCart      = "cart"
	StepGuest     = "guest"
	StepAddresses = "addresses"
	StepFinalize  = "finalize"
	StepPay       = "pay"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
	addressService  service.AddressService
	cartService     service.CartService
	orderService    service.OrderService
	sessionStore    session.Store
}

func NewCheckoutController(
	checkoutService service.CheckoutService,
	addressService service.AddressService,
	cartService service.CartService,
	orderService service.OrderService,
	sessionStore session.Store,
) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		addressService:  addressService,
		cartService:     cartService,
		orderService:    orderService,
		sessionStore:    sessionStore,
	}
}

type GuestCheckoutRequest struct {
	Email        string `json:"email" binding:"required,email"`
	EmailConfirm string `json:"email_confirm" binding:"required"`
}

type SelectAddressesRequest struct {
	BillingAddressID  uint `json:"billing_address_id" binding:"required"`
	ShippingAddressID uint `json:"shipping_address_id" binding:"required"`
}

// nextStep maps the session's checkout state to the step the client should
// render next.
func nextStep(state session.State) string {
	switch state {
	case session.StateStart:
		return StepGuest
	case session.StateIdentified:
		return StepAddresses
	case session.StateAddressed:
		return StepFinalize
	default:
		return StepPay
	}
}

// GetCheckout reports where the visitor is in the checkout flow. Authenticated
// visitors are identified implicitly on first visit; guests are sent to the
// guest step.
// GET /api/v1/checkout
func (ctrl *CheckoutController) GetCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CheckoutID == nil {
		if userID, ok := middleware.GetUserID(c); ok {
			email, _ := middleware.GetUserEmail(c)
			checkout, err := ctrl.checkoutService.ResolveUser(userID, email)
			if err != nil {
				log.Error("Failed to resolve checkout profile for user", err, map[string]interface{}{
					"user_id": userID,
				})
				apperrors.InternalError(c, "Failed to start checkout")
				return
			}
			sess.CheckoutID = &checkout.ID
			if err := middleware.SaveSession(c, ctrl.sessionStore); err != nil {
				log.Error("Failed to persist session", err)
				apperrors.InternalError(c, "Failed to start checkout")
				return
			}
		}
	}

	state := session.StateOf(sess)
	resp := gin.H{
		"state": state,
		"next":  nextStep(state),
	}
	if sess.CheckoutID != nil {
		resp["checkout_id"] = *sess.CheckoutID
	}
	if sess.OrderID != nil {
		resp["order_id"] = *sess.OrderID
	}

	c.JSON(http.StatusOK, resp)
}

// GuestCheckout resolves a guest email into a checkout profile and identifies
// the session with it
// POST /api/v1/checkout/guest
func (ctrl *CheckoutController) GuestCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	var req GuestCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{
			"email": "A valid email and its confirmation are required",
		})
		return
	}

	checkout, err := ctrl.checkoutService.ResolveGuest(req.Email, req.EmailConfirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailMismatch):
			apperrors.RespondWithValidationError(c, map[string]string{
				"email_confirm": "Emails do not match",
			})
		case errors.Is(err, service.ErrEmailRegistered):
			apperrors.BadRequest(c, apperrors.CheckoutEmailRegistered,
				"This email is registered. Please log in to continue")
		default:
			log.Error("Failed to resolve guest checkout", err)
			apperrors.InternalError(c, "Failed to start checkout")
		}
		return
	}

	sess.CheckoutID = &checkout.ID
	// Identity changed, so any previously selected addresses no longer apply.
	sess.BillingAddressID = nil
	sess.ShippingAddressID = nil
	sess.Finalized = false
	if err := middleware.SaveSession(c, ctrl.sessionStore); err != nil {
		log.Error("Failed to persist session", err)
		apperrors.InternalError(c, "Failed to start checkout")
		return
	}

	state := session.StateOf(sess)
	c.JSON(http.StatusOK, gin.H{
		"checkout_id": checkout.ID,
		"email":       checkout.Email,
		"state":       state,
		"next":        nextStep(state),
	})
}

// SelectAddresses records the billing and shipping choices for this checkout
// POST /api/v1/checkout/addresses
func (ctrl *CheckoutController) SelectAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CheckoutID == nil {
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
			"Provide an email or log in before selecting addresses", StepGuest)
		return
	}

	var req SelectAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"billing_address_id and shipping_address_id are required")
		return
	}

	hasBilling, hasShipping, err := ctrl.addressService.HasBothTypes(*sess.CheckoutID)
	if err != nil {
		log.Error("Failed to inspect address book", err, map[string]interface{}{
			"checkout_id": *sess.CheckoutID,
		})
		apperrors.InternalError(c, "Failed to select addresses")
		return
	}
	if !hasBilling || !hasShipping {
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNoAddresses,
			"Add a billing and a shipping address first", StepAddresses)
		return
	}

	billing, err := ctrl.addressService.GetOwned(*sess.CheckoutID, req.BillingAddressID, model.AddressBilling)
	if err != nil {
		apperrors.NotFound(c, apperrors.AddressNotFound, "Billing address not found")
		return
	}
	shipping, err := ctrl.addressService.GetOwned(*sess.CheckoutID, req.ShippingAddressID, model.AddressShipping)
	if err != nil {
		apperrors.NotFound(c, apperrors.AddressNotFound, "Shipping address not found")
		return
	}

	sess.BillingAddressID = &billing.ID
	sess.ShippingAddressID = &shipping.ID
	sess.Finalized = false
	if err := middleware.SaveSession(c, ctrl.sessionStore); err != nil {
		log.Error("Failed to persist session", err)
		apperrors.InternalError(c, "Failed to select addresses")
		return
	}

	state := session.StateOf(sess)
	c.JSON(http.StatusOK, gin.H{
		"billing_address_id":  billing.ID,
		"shipping_address_id": shipping.ID,
		"state":               state,
		"next":                nextStep(state),
	})
}

// Finalize opens (or reuses) the order for the session cart and binds the
// resolved identity and addresses to it. After this the order is payable.
// POST /api/v1/checkout/finalize
func (ctrl *CheckoutController) Finalize(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	switch session.StateOf(sess) {
	case session.StateStart:
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
			"Provide an email or log in before finalizing", StepGuest)
		return
	case session.StateIdentified:
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotAddressed,
			"Select billing and shipping addresses before finalizing", StepAddresses)
		return
	}

	if sess.CartID == nil {
		apperrors.PreconditionNotMet(c, apperrors.CartEmpty,
			"Your cart is empty", StepCart)
		return
	}

	order, created, err := ctrl.orderService.GetOrCreateOrder(*sess.CartID, sess.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			// The session's order vanished. Drop the stale id and make the
			// client restart the flow from a clean state.
			sess.OrderID = nil
			sess.Finalized = false
			if saveErr := middleware.SaveSession(c, ctrl.sessionStore); saveErr != nil {
				log.Error("Failed to persist session", saveErr)
			}
			apperrors.PreconditionNotMet(c, apperrors.OrderNotFound,
				"Your checkout expired. Please start again", StepCart)
		case errors.Is(err, service.ErrCartNotFound), errors.Is(err, service.ErrEmptyCart):
			apperrors.PreconditionNotMet(c, apperrors.CartEmpty,
				"Your cart is empty", StepCart)
		default:
			log.Error("Failed to open order", err, map[string]interface{}{
				"cart_id": *sess.CartID,
			})
			apperrors.InternalError(c, "Failed to finalize checkout")
		}
		return
	}

	order, err = ctrl.orderService.AttachIdentity(order.ID, *sess.CheckoutID,
		*sess.BillingAddressID, *sess.ShippingAddressID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound):
			apperrors.NotFound(c, apperrors.AddressNotFound, "Selected address not found")
		case errors.Is(err, service.ErrCheckoutNotFound):
			apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
				"Provide an email or log in before finalizing", StepGuest)
		default:
			log.Error("Failed to attach identity to order", err, map[string]interface{}{
				"order_id": order.ID,
			})
			apperrors.InternalError(c, "Failed to finalize checkout")
		}
		return
	}

	sess.OrderID = &order.ID
	sess.Finalized = true
	if err := middleware.SaveSession(c, ctrl.sessionStore); err != nil {
		log.Error("Failed to persist session", err)
		apperrors.InternalError(c, "Failed to finalize checkout")
		return
	}

	log.Info("Checkout finalized", map[string]interface{}{
		"order_id":    order.ID,
		"checkout_id": *sess.CheckoutID,
		"new_order":   created,
	})

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"state": session.StateFinalized,
		"next":  StepPay,
	})
}

// ClientToken issues a payment-form token for the identified profile
// GET /api/v1/checkout/token
func (ctrl *CheckoutController) ClientToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CheckoutID == nil {
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
			"Provide an email or log in first", StepGuest)
		return
	}

	token, err := ctrl.checkoutService.ClientToken(c.Request.Context(), *sess.CheckoutID)
	if err != nil {
		if errors.Is(err, service.ErrCheckoutNotFound) {
			apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
				"Provide an email or log in first", StepGuest)
			return
		}
		log.Error("Failed to issue payment client token", err, map[string]interface{}{
			"checkout_id": *sess.CheckoutID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI,
			"Payment service unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"client_token": token})
}
