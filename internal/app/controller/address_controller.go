package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	apperrors "github.com/mstasiak/storefront-backend/internal/errors"
	"github.com/mstasiak/storefront-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{addressService: addressService}
}

type CreateAddressRequest struct {
	Type    string `json:"type" binding:"required,oneof=billing shipping"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
}

// ListAddresses returns the identified profile's address book, grouped or
// filtered by type
// GET /api/v1/addresses?type=billing
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CheckoutID == nil {
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
			"Provide an email or log in to manage addresses", StepGuest)
		return
	}

	if typeParam := c.Query("type"); typeParam != "" {
		addresses, err := ctrl.addressService.ListByType(*sess.CheckoutID, model.AddressType(typeParam))
		if err != nil {
			if errors.Is(err, service.ErrInvalidAddressType) {
				apperrors.BadRequest(c, apperrors.AddressInvalidType,
					"type must be billing or shipping")
				return
			}
			log.Error("Failed to list addresses", err, map[string]interface{}{
				"checkout_id": *sess.CheckoutID,
			})
			apperrors.InternalError(c, "Failed to fetch addresses")
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
		return
	}

	billing, err := ctrl.addressService.ListByType(*sess.CheckoutID, model.AddressBilling)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch addresses")
		return
	}
	shipping, err := ctrl.addressService.ListByType(*sess.CheckoutID, model.AddressShipping)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"billing":  billing,
		"shipping": shipping,
	})
}

// CreateAddress adds an address to the identified profile's address book
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	_, sess := middleware.GetSession(c)

	if sess.CheckoutID == nil {
		apperrors.PreconditionNotMet(c, apperrors.CheckoutNotIdentified,
			"Provide an email or log in to manage addresses", StepGuest)
		return
	}

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid address request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput,
			"type, street, city, state and zip are required")
		return
	}

	address := &model.UserAddress{
		Type:   model.AddressType(req.Type),
		Street: req.Street,
		City:   req.City,
		State:  req.State,
		Zip:    req.Zip,
	}
	if err := ctrl.addressService.Create(*sess.CheckoutID, address); err != nil {
		if errors.Is(err, service.ErrInvalidAddressType) {
			apperrors.BadRequest(c, apperrors.AddressInvalidType,
				"type must be billing or shipping")
			return
		}
		log.Error("Failed to create address", err, map[string]interface{}{
			"checkout_id": *sess.CheckoutID,
		})
		apperrors.InternalError(c, "Failed to save address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address saved successfully.",
		"address": address,
	})
}
