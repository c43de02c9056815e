package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
	PaymentMethodMFS  = "MFS"
)

// PaymentMethods lists the methods a till accepts, in display order.
var PaymentMethods = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodMFS}

// Payment represents the settlement recorded for an order
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method    string          `gorm:"type:varchar(10);not null" json:"method"`
	Reference string          `gorm:"type:varchar(64);not null" json:"reference"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

// IsPaymentMethod reports whether method is one of PaymentMethods.
func IsPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
