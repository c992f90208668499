package model

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the account record managed by the external auth provider.
// It exists here so guest-checkout emails can be checked against registered
// accounts and so carts can be bound to an authenticated owner.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
