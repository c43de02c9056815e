package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/cafe-pos/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderItemBatchSize bounds the rows sent per INSERT for large carts.
const orderItemBatchSize = 100

// OrderRepository persists orders, order items, payments and invoices. Inside
// Transaction the callback receives a repository bound to the open transaction.
type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// Transaction runs fn in one database transaction. Any error returned by fn
// rolls back every write fn made.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *OrderRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{DB: tx})
	})
}

// InsertOrder writes the order header only and returns the assigned id.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *models.Order) (uint, error) {
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return order.ID, nil
}

func (r *OrderRepository) InsertOrderItems(ctx context.Context, orderID uint, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).CreateInBatches(items, orderItemBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert items for order %d: %w", orderID, err)
	}
	return nil
}

func (r *OrderRepository) InsertPayment(ctx context.Context, orderID uint, amount decimal.Decimal, method string) (*models.Payment, error) {
	now := time.Now()
	payment := models.Payment{
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Reference: uuid.New().String(),
		PaidAt:    now,
	}
	if err := r.DB.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to insert payment for order %d: %w", orderID, err)
	}
	return &payment, nil
}

func (r *OrderRepository) InsertInvoice(ctx context.Context, order *models.Order, payment *models.Payment) (*models.Invoice, error) {
	issued := time.Now()
	invoice := models.Invoice{
		OrderID:   order.ID,
		PaymentID: payment.ID,
		Number:    order.InvoiceNumber(issued),
		Amount:    payment.Amount,
		IssuedAt:  issued,
	}
	if err := r.DB.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("failed to insert invoice for order %d: %w", order.ID, err)
	}
	return &invoice, nil
}

// FindOrder loads an order with its items in cart order, payment and invoice.
func (r *OrderRepository) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Payment").
		Preload("Invoice").
		First(&order, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find order %d: %w", id, notFoundOr(err))
	}
	return &order, nil
}

// ListOrders returns order headers, newest first.
func (r *OrderRepository) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.DB.WithContext(ctx).Preload("Payment").Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CountItemsReferencing counts order items that point at a menu item.
func (r *OrderRepository) CountItemsReferencing(ctx context.Context, menuItemID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("menu_item_id = ?", menuItemID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}
