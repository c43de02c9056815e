package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	PaymentID uint            `gorm:"not null" json:"payment_id"`
	Number    string          `gorm:"type:varchar(40);not null;unique" json:"number"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IssuedAt  time.Time       `gorm:"not null" json:"issued_at"`
}
