package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created" // order opened during checkout
	OrderStatusPaid    OrderStatus = "paid"    // payment captured
	OrderStatusShipped OrderStatus = "shipped" // handed to the carrier
)

// Order is the purchase record built from a cart plus the identity and address
// selections made during checkout. It references its cart, checkout profile and
// addresses but does not own them.
type Order struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	Status            OrderStatus     `gorm:"type:varchar(20);default:'created'" json:"status"`
	CartID            uint            `gorm:"not null;index" json:"cart_id"`
	CheckoutID        *uint           `gorm:"index" json:"checkout_id,omitempty"` // nil until identity is attached
	BillingAddressID  *uint           `json:"billing_address_id,omitempty"`
	ShippingAddressID *uint           `json:"shipping_address_id,omitempty"`
	ShippingTotal     decimal.Decimal `gorm:"type:decimal(30,2);not null;default:5.99" json:"shipping_total"`
	OrderTotal        decimal.Decimal `gorm:"type:decimal(30,2);not null;default:0" json:"order_total"`
	ExternalID        string          `gorm:"type:varchar(120)" json:"external_id,omitempty"` // payment processor transaction id
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	Cart            Cart          `gorm:"foreignKey:CartID" json:"cart,omitempty"`
	Checkout        *UserCheckout `gorm:"foreignKey:CheckoutID" json:"checkout,omitempty"`
	BillingAddress  *UserAddress  `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
	ShippingAddress *UserAddress  `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
