package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
)

// UnresolvedPolicy decides what Commit does with a cart line whose menu item
// is missing from the catalog snapshot.
type UnresolvedPolicy int

const (
	// UnresolvedTolerant logs a warning and commits the line as captured.
	UnresolvedTolerant UnresolvedPolicy = iota
	// UnresolvedStrict rejects the cart with a ValidationError.
	UnresolvedStrict
)

// CartLine is a menu item reference with the unit price captured when the
// line was added to the cart.
type CartLine struct {
	MenuItemID uint            `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CustomerInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Totals of an order. Total is always Subtotal - Discount + Tax.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums the captured line totals. No discount or tax policy is
// configured, so both are zero.
func ComputeTotals(lines []CartLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	t := Totals{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax)
	return t
}

// moneyScale matches the decimal(12,2) money columns.
const moneyScale = 2

// isCents reports whether d is representable in a money column without
// rounding. Totals are sums and products of such values, so they are too.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}

// OrderService turns a cart into an order, its items, a payment and an
// invoice in one transaction.
type OrderService struct {
	orders *database.OrderRepository
	cache  *CatalogCache
	events EventPublisher

	Policy  UnresolvedPolicy
	Timeout time.Duration
}

func NewOrderService(orders *database.OrderRepository, cache *CatalogCache, events EventPublisher) *OrderService {
	return &OrderService{
		orders: orders,
		cache:  cache,
		events: events,
	}
}

// Commit validates the cart, persists the order with its items, payment and
// invoice atomically, and returns the new order id. The caller's cart is not
// modified. Storage failures, including timeouts, are returned as
// *CommitFailedError and leave no rows behind.
func (s *OrderService) Commit(ctx context.Context, cart []CartLine, customer CustomerInfo, method string) (uint, error) {
	if len(cart) == 0 {
		return 0, ErrEmptyCart
	}
	if err := s.validate(cart, method); err != nil {
		return 0, err
	}

	lines := append([]CartLine(nil), cart...)
	totals := ComputeTotals(lines)

	customerType := strings.TrimSpace(customer.Type)
	if customerType == "" {
		customerType = models.CustomerTypeGeneral
	}
	order := models.Order{
		CustomerName:   strings.TrimSpace(customer.Name),
		CustomerType:   customerType,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		TaxAmount:      totals.Tax,
		Total:          totals.Total,
	}
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItem{
			MenuItemID: line.MenuItemID,
			Position:   i,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal(),
		}
	}

	ctx, cancel := withStorageTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.orders.Transaction(ctx, func(tx *database.OrderRepository) error {
		orderID, err := tx.InsertOrder(ctx, &order)
		if err != nil {
			return err
		}
		if err := tx.InsertOrderItems(ctx, orderID, items); err != nil {
			return err
		}
		payment, err := tx.InsertPayment(ctx, orderID, order.Total, method)
		if err != nil {
			return err
		}
		invoice, err := tx.InsertInvoice(ctx, &order, payment)
		if err != nil {
			return err
		}
		order.Items = items
		order.Payment = payment
		order.Invoice = invoice
		return nil
	})
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"lines": len(lines),
			"total": totals.Total.StringFixed(2),
		}).Errorf("Order commit failed: %v", err)
		return 0, &CommitFailedError{Cause: err}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"lines":    len(lines),
		"total":    order.Total.StringFixed(2),
		"method":   method,
	}).Info("Order committed")

	if s.events != nil {
		s.events.BroadcastOrderCommitted(order)
	}
	return order.ID, nil
}

func (s *OrderService) validate(cart []CartLine, method string) error {
	verr := &ValidationError{}
	if !models.IsPaymentMethod(method) {
		verr.add("payment_method", fmt.Sprintf("must be one of %s", strings.Join(models.PaymentMethods, ", ")))
	}

	for i, line := range cart {
		if line.Quantity < 1 {
			verr.add(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		if line.UnitPrice.IsNegative() {
			verr.add(fmt.Sprintf("items[%d].unit_price", i), "must not be negative")
		} else if !isCents(line.UnitPrice) {
			verr.add(fmt.Sprintf("items[%d].unit_price", i), "must have at most 2 decimal places")
		}
		if _, err := s.cache.Resolve(line.MenuItemID); err != nil {
			if s.Policy == UnresolvedStrict {
				verr.add(fmt.Sprintf("items[%d].menu_item_id", i), fmt.Sprintf("menu item %d is not in the catalog", line.MenuItemID))
				continue
			}
			utils.InfoLogger.WithFields(logrus.Fields{
				"menu_item_id": line.MenuItemID,
				"label":        s.cache.DisplayName(line.MenuItemID),
			}).Warn("Cart line references a menu item missing from the catalog snapshot")
		}
	}
	return verr.errOrNil()
}

// withStorageTimeout bounds ctx by timeout; zero leaves ctx unbounded.
func withStorageTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// GetOrder loads a committed order with its items, payment and invoice.
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return s.orders.ListOrders(ctx, limit)
}

// ReferenceCount reports how many order items point at a menu item.
func (s *OrderService) ReferenceCount(ctx context.Context, menuItemID uint) (int64, error) {
	return s.orders.CountItemsReferencing(ctx, menuItemID)
}
