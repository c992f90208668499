package errors

// Error code constants returned in the `error` field of failed responses.
// Format: CATEGORY_SPECIFIC_DETAIL. The frontend maps these to messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationEmailMismatch = "VALIDATION_EMAIL_MISMATCH"

	// ==================== Catalog (CATALOG_) ====================
	ProductNotFound   = "CATALOG_PRODUCT_NOT_FOUND"
	VariationNotFound = "CATALOG_VARIATION_NOT_FOUND"
	VariationInactive = "CATALOG_VARIATION_INACTIVE"

	// ==================== Cart (CART_) ====================
	CartNotFound     = "CART_NOT_FOUND"
	CartItemNotFound = "CART_ITEM_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutNotIdentified   = "CHECKOUT_NOT_IDENTIFIED"
	CheckoutEmailRegistered = "CHECKOUT_EMAIL_REGISTERED"
	CheckoutNoAddresses     = "CHECKOUT_NO_ADDRESSES"
	CheckoutNotAddressed    = "CHECKOUT_NOT_ADDRESSED"

	// ==================== Address (ADDRESS_) ====================
	AddressNotFound    = "ADDRESS_NOT_FOUND"
	AddressInvalidType = "ADDRESS_INVALID_TYPE"

	// ==================== Order (ORDER_) ====================
	OrderNotFound   = "ORDER_NOT_FOUND"
	OrderNotPayable = "ORDER_NOT_PAYABLE"
	PaymentFailed   = "ORDER_PAYMENT_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
