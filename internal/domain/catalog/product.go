package catalog

import (
	"time"

	"langsearch/internal/langfields"
)

type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SKU        string `gorm:"type:text;not null;uniqueIndex" json:"sku"`
	PriceCents int64  `gorm:"not null;default:0" json:"price_cents"`
	Published  bool   `gorm:"not null;default:false;index" json:"published"`

	// stored per language in products_lang_fields
	Name        string `gorm:"-" lang:"weight:A" json:"name"`
	Description string `gorm:"-" lang:"weight:B" json:"description,omitempty"`
	Notes       string `gorm:"-" lang:"" json:"notes,omitempty"`

	langfields.Translatable

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
