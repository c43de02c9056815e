package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func setupTestDB(t *testing.T, translate bool) *gorm.DB {
	t.Helper()
	utils.InitLogger()
	utils.Silence()

	dsn := fmt.Sprintf("file:repo%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: translate,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func seedItem(t *testing.T, repo *CatalogRepository, name, price string) models.MenuItem {
	t.Helper()
	categories, err := repo.FindAllCategories(context.Background())
	require.NoError(t, err)
	if len(categories) == 0 {
		require.NoError(t, repo.InsertCategory(context.Background(), &models.Category{Name: "Coffee"}))
		categories, err = repo.FindAllCategories(context.Background())
		require.NoError(t, err)
	}

	item := models.MenuItem{
		CategoryID: categories[0].ID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Active:     true,
	}
	require.NoError(t, repo.Insert(context.Background(), &item))
	return item
}

func commitOrderFor(t *testing.T, orders *OrderRepository, item models.MenuItem) uint {
	t.Helper()
	ctx := context.Background()
	var orderID uint
	err := orders.Transaction(ctx, func(tx *OrderRepository) error {
		order := models.Order{
			CustomerType: models.CustomerTypeGeneral,
			Subtotal:     item.Price,
			Total:        item.Price,
		}
		id, err := tx.InsertOrder(ctx, &order)
		if err != nil {
			return err
		}
		orderID = id
		return tx.InsertOrderItems(ctx, id, []models.OrderItem{
			{MenuItemID: item.ID, Quantity: 1, UnitPrice: item.Price, LineTotal: item.Price},
		})
	})
	require.NoError(t, err)
	return orderID
}

func TestCatalogDeleteUnreferenced(t *testing.T) {
	db := setupTestDB(t, true)
	repo := NewCatalogRepository(db)
	item := seedItem(t, repo, "Espresso", "2.50")

	require.NoError(t, repo.Delete(context.Background(), item.ID))

	items, err := repo.FindAllMenuItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogDeleteReferencedReportsIntegrityError(t *testing.T) {
	for _, translate := range []bool{true, false} {
		t.Run(fmt.Sprintf("translate=%v", translate), func(t *testing.T) {
			db := setupTestDB(t, translate)
			repo := NewCatalogRepository(db)
			item := seedItem(t, repo, "Croissant", "3.00")
			commitOrderFor(t, NewOrderRepository(db), item)

			err := repo.Delete(context.Background(), item.ID)

			var refErr *ReferentialIntegrityError
			require.True(t, errors.As(err, &refErr), "got %v", err)
			assert.Equal(t, "menu_items", refErr.Table)
			assert.Equal(t, item.ID, refErr.ID)

			stored, err := repo.FindMenuItem(context.Background(), item.ID)
			require.NoError(t, err)
			assert.Equal(t, "Croissant", stored.Name)
		})
	}
}

func TestCatalogDeleteMissing(t *testing.T) {
	db := setupTestDB(t, true)
	repo := NewCatalogRepository(db)

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	var refErr *ReferentialIntegrityError
	assert.False(t, errors.As(err, &refErr))
}

func TestCatalogUpdatePersistsInactive(t *testing.T) {
	db := setupTestDB(t, true)
	repo := NewCatalogRepository(db)
	item := seedItem(t, repo, "Latte", "3.20")
	seedItem(t, repo, "Mocha", "3.60")

	item.Active = false
	item.Price = decimal.RequireFromString("3.40")
	require.NoError(t, repo.Update(context.Background(), &item))

	stored, err := repo.FindMenuItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("3.40")))

	active, err := repo.FindActiveMenuItems(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Mocha", active[0].Name)
}

func TestCatalogUpdateMissing(t *testing.T) {
	db := setupTestDB(t, true)
	repo := NewCatalogRepository(db)

	err := repo.Update(context.Background(), &models.MenuItem{ID: 99, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestOrderTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t, true)
	item := seedItem(t, NewCatalogRepository(db), "Espresso", "2.50")
	orders := NewOrderRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := orders.Transaction(ctx, func(tx *OrderRepository) error {
		id, err := tx.InsertOrder(ctx, &models.Order{CustomerType: models.CustomerTypeGeneral})
		if err != nil {
			return err
		}
		if err := tx.InsertOrderItems(ctx, id, []models.OrderItem{{MenuItemID: item.ID, Quantity: 1}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.OrderItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestFindOrderKeepsCartOrder(t *testing.T) {
	db := setupTestDB(t, true)
	catalog := NewCatalogRepository(db)
	espresso := seedItem(t, catalog, "Espresso", "2.50")
	croissant := seedItem(t, catalog, "Croissant", "3.00")
	orders := NewOrderRepository(db)
	ctx := context.Background()

	var orderID uint
	err := orders.Transaction(ctx, func(tx *OrderRepository) error {
		order := models.Order{CustomerType: models.CustomerTypeGeneral, Total: decimal.RequireFromString("8")}
		id, err := tx.InsertOrder(ctx, &order)
		if err != nil {
			return err
		}
		orderID = id
		items := []models.OrderItem{
			{MenuItemID: croissant.ID, Position: 0, Quantity: 1, UnitPrice: croissant.Price, LineTotal: croissant.Price},
			{MenuItemID: espresso.ID, Position: 1, Quantity: 2, UnitPrice: espresso.Price, LineTotal: decimal.RequireFromString("5")},
		}
		if err := tx.InsertOrderItems(ctx, id, items); err != nil {
			return err
		}
		payment, err := tx.InsertPayment(ctx, id, order.Total, models.PaymentMethodCard)
		if err != nil {
			return err
		}
		_, err = tx.InsertInvoice(ctx, &order, payment)
		return err
	})
	require.NoError(t, err)

	order, err := orders.FindOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, croissant.ID, order.Items[0].MenuItemID)
	assert.Equal(t, espresso.ID, order.Items[1].MenuItemID)
	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentMethodCard, order.Payment.Method)
	assert.NotEmpty(t, order.Payment.Reference)
	require.NotNil(t, order.Invoice)
	assert.Equal(t, order.Payment.ID, order.Invoice.PaymentID)
	assert.Regexp(t, `^INV/\d{8}/\d{6}$`, order.Invoice.Number)

	refs, err := orders.CountItemsReferencing(ctx, espresso.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refs)

	_, err = orders.FindOrder(ctx, orderID+100)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
