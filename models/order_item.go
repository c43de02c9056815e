package models

import (
	"github.com/shopspring/decimal"
)

// OrderItem references a MenuItem without owning it. UnitPrice is the price
// captured when the line entered the cart.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	MenuItemID uint            `gorm:"not null;index" json:"menu_item_id"`
	MenuItem   *MenuItem       `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Position   int             `gorm:"not null" json:"position"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}
