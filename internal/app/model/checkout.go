package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AddressType string

const (
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
)

// UserCheckout is the buyer identity used during checkout. Guests are keyed by
// email; once the visitor authenticates the profile is bound to their account.
type UserCheckout struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      *uint          `gorm:"uniqueIndex" json:"user_id,omitempty"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	BraintreeID string         `gorm:"type:varchar(120)" json:"-"` // payment customer ref, created lazily
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User      *User         `gorm:"foreignKey:UserID" json:"-"`
	Addresses []UserAddress `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
}

func (UserCheckout) TableName() string {
	return "user_checkouts"
}

type UserAddress struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CheckoutID uint           `gorm:"not null;index" json:"checkout_id"`
	Type       AddressType    `gorm:"type:varchar(20);not null" json:"type"`
	Street     string         `gorm:"size:120;not null" json:"street"`
	City       string         `gorm:"size:120;not null" json:"city"`
	State      string         `gorm:"size:120;not null" json:"state"`
	Zip        string         `gorm:"size:20;not null" json:"zip"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Checkout UserCheckout `gorm:"foreignKey:CheckoutID" json:"-"`
}

func (UserAddress) TableName() string {
	return "user_addresses"
}

// Format renders the address on one line for order summaries.
func (a *UserAddress) Format() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.Zip)
}
