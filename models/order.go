package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const CustomerTypeGeneral = "GENERAL"

type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CustomerName   string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerType   string          `gorm:"type:varchar(30);not null;default:'GENERAL'" json:"customer_type"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	TaxID          *uint           `json:"tax_id,omitempty"`
	DiscountID     *uint           `json:"discount_id,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	Payment        *Payment        `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"payment,omitempty"`
	Invoice        *Invoice        `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"invoice,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

// InvoiceNumber formats the invoice number issued for this order.
func (o *Order) InvoiceNumber(issued time.Time) string {
	return fmt.Sprintf("INV/%s/%06d", issued.Format("20060102"), o.ID)
}
