package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    *uint           `gorm:"index" json:"user_id,omitempty"` // nil until the visitor authenticates
	TaxTotal  decimal.Decimal `gorm:"type:decimal(30,2);not null;default:0" json:"tax_total"`
	Total     decimal.Decimal `gorm:"type:decimal(30,2);not null;default:0" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User  *User      `gorm:"foreignKey:UserID" json:"-"`
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CartID      uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_variation" json:"cart_id"`
	VariationID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_variation" json:"variation_id"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Cart      Cart      `gorm:"foreignKey:CartID" json:"-"`
	Variation Variation `gorm:"foreignKey:VariationID" json:"variation,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is the variation's effective price multiplied by the quantity.
func (ci *CartItem) LineTotal() decimal.Decimal {
	return ci.Variation.EffectivePrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
