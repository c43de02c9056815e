package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/kds"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/router"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	utils.Silence()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama kasir:
// 1. Seed kategori + menu, load catalog
// 2. Tambah item ke cart terminal
// 3. Checkout => order, items, payment, invoice
// 4. Hapus menu yang sudah dipesan => deactivated, order tetap utuh
// 5. Invoice PDF masih bisa dicetak
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter(t, db)

	espressoID := createMenuItemTest(t, r, "Espresso", "2.50")
	croissantID := createMenuItemTest(t, r, "Croissant", "3.00")

	addToCartTest(t, r, espressoID, 2)
	addToCartTest(t, r, croissantID, 1)

	orderID := checkoutTest(t, r)

	deleteMenuItemTest(t, r, espressoID, services.Deactivated)

	order := getOrderTest(t, r, orderID)
	if len(order.Items) != 2 || order.Items[0].MenuItemID != espressoID {
		t.Fatalf("order items changed after deactivation: %+v", order.Items)
	}
	if !order.Total.Equal(decimal.RequireFromString("8.00")) {
		t.Fatalf("expected total 8.00, got %s", order.Total)
	}

	invoiceTest(t, r, orderID)

	// item baru yang belum pernah dipesan benar-benar terhapus
	teaID := createMenuItemTest(t, r, "Earl Grey", "2.00")
	deleteMenuItemTest(t, r, teaID, services.Deleted)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Create(&models.Category{Name: "Coffee"})
	return db
}

func setupTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	catalogRepo := database.NewCatalogRepository(db)
	hub := kds.NewHub()
	cache := services.NewCatalogCache(catalogRepo)
	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	return router.SetupRouter(router.Deps{
		Catalog:  catalogRepo,
		Cache:    cache,
		Guard:    services.NewCatalogGuard(catalogRepo, cache, hub),
		Orders:   services.NewOrderService(database.NewOrderRepository(db), cache, hub),
		Carts:    services.NewCartRegistry(),
		Hub:      hub,
		Renderer: services.InvoiceRenderer{StoreName: "DataBrew Cafe"},
	})
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	var resp struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	if !resp.Status {
		t.Fatalf("status=false, msg=%s", resp.Message)
	}
	if err := json.Unmarshal(resp.Data, data); err != nil {
		t.Fatalf("invalid data %s: %v", resp.Data, err)
	}
}

func createMenuItemTest(t *testing.T, r *gin.Engine, name, price string) uint {
	w := doRequest(r, http.MethodPost, "/menu-items", map[string]interface{}{
		"category_id": 1,
		"name":        name,
		"price":       price,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("createMenuItemTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var item models.MenuItem
	decode(t, w, &item)
	return item.ID
}

func addToCartTest(t *testing.T, r *gin.Engine, menuItemID uint, quantity int) {
	w := doRequest(r, http.MethodPost, "/pos/carts/till-1/items", map[string]interface{}{
		"menu_item_id": menuItemID,
		"quantity":     quantity,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("addToCartTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func checkoutTest(t *testing.T, r *gin.Engine) uint {
	w := doRequest(r, http.MethodPost, "/pos/carts/till-1/checkout", map[string]string{
		"customer_name":  "Walk-in",
		"payment_method": models.PaymentMethodCash,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkoutTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var order models.Order
	decode(t, w, &order)
	if order.Payment == nil || order.Invoice == nil {
		t.Fatalf("checkoutTest: order without payment or invoice: %+v", order)
	}
	if !order.Payment.Amount.Equal(order.Total) {
		t.Fatalf("checkoutTest: payment %s != total %s", order.Payment.Amount, order.Total)
	}
	return order.ID
}

func deleteMenuItemTest(t *testing.T, r *gin.Engine, id uint, want services.DeleteOutcome) {
	w := doRequest(r, http.MethodDelete, "/menu-items/"+intToString(id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("deleteMenuItemTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var result services.DeleteResult
	decode(t, w, &result)
	if result.Outcome != want {
		t.Fatalf("deleteMenuItemTest: want %s, got %s", want, result.Outcome)
	}
}

func getOrderTest(t *testing.T, r *gin.Engine, id uint) models.Order {
	w := doRequest(r, http.MethodGet, "/orders/"+intToString(id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("getOrderTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var order models.Order
	decode(t, w, &order)
	return order
}

func invoiceTest(t *testing.T, r *gin.Engine, id uint) {
	w := doRequest(r, http.MethodGet, "/orders/"+intToString(id)+"/invoice.pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("invoiceTest: expected 200, got %d", w.Code)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("invoiceTest: response is not a PDF")
	}
}

func intToString(num uint) string {
	return strconv.FormatUint(uint64(num), 10)
}
