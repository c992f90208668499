package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"uniqueIndex;not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	Title             string          `gorm:"not null" json:"title"`
	Description       string          `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"type:decimal(30,2);not null" json:"price"`
	Active            bool            `gorm:"default:true" json:"active"`
	DefaultCategoryID *uint           `gorm:"index" json:"default_category_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	DefaultCategory *Category   `gorm:"foreignKey:DefaultCategoryID" json:"default_category,omitempty"`
	Categories      []Category  `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Variations      []Variation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variations,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type Variation struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	ProductID     uint                `gorm:"not null;index" json:"product_id"`
	Title         string              `gorm:"not null" json:"title"`
	InventorySize *int                `json:"inventory_size,omitempty"` // nil means unlimited
	Price         decimal.Decimal     `gorm:"type:decimal(30,2);not null" json:"price"`
	SalePrice     decimal.NullDecimal `gorm:"type:decimal(30,2)" json:"sale_price,omitempty"`
	Active        bool                `gorm:"default:true" json:"active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Variation) TableName() string {
	return "variations"
}

// EffectivePrice returns the sale price when one is set, otherwise the regular price.
func (v *Variation) EffectivePrice() decimal.Decimal {
	if v.SalePrice.Valid {
		return v.SalePrice.Decimal
	}
	return v.Price
}
