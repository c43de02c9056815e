package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry. Active=false means "Sold Out" or retired; an item
// referenced by order history is deactivated instead of deleted.
type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Active      bool            `gorm:"not null" json:"active"`
	Description string          `gorm:"type:text" json:"description"`
	ImageRef    *string         `gorm:"type:varchar(255)" json:"image_ref,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// StatusLabel mirrors the labels cashiers see on the menu board.
func (m MenuItem) StatusLabel() string {
	if m.Active {
		return "Available"
	}
	return "Sold Out"
}
