package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()
	utils.Silence()

	dsn := fmt.Sprintf("file:services%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db      *gorm.DB
	catalog *database.CatalogRepository
	orders  *database.OrderRepository
	cache   *CatalogCache
	events  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	catalog := database.NewCatalogRepository(db)
	return &fixture{
		db:      db,
		catalog: catalog,
		orders:  database.NewOrderRepository(db),
		cache:   NewCatalogCache(catalog),
		events:  &recordingPublisher{},
	}
}

func (f *fixture) category(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, f.catalog.InsertCategory(context.Background(), &c))
	return c
}

func (f *fixture) item(t *testing.T, id uint, categoryID uint, name, price string) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		ID:         id,
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Active:     true,
	}
	require.NoError(t, f.catalog.Insert(context.Background(), &item))
	return item
}

func (f *fixture) reload(t *testing.T) {
	t.Helper()
	_, err := f.cache.Load(context.Background())
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

type recordingPublisher struct {
	mu      sync.Mutex
	orders  []uint
	catalog []string
}

func (p *recordingPublisher) BroadcastOrderCommitted(order models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order.ID)
}

func (p *recordingPublisher) BroadcastCatalogUpdated(action string, menuItemID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog = append(p.catalog, fmt.Sprintf("%s:%d", action, menuItemID))
}

// stubStore is a CatalogStore whose calls are counted and whose Delete result
// is configurable.
type stubStore struct {
	mu         sync.Mutex
	deleteErr  error
	categories []models.Category
	items      []models.MenuItem
	calls      map[string]int
}

func newStubStore() *stubStore {
	return &stubStore{calls: make(map[string]int)}
}

func (s *stubStore) FindAllCategories(ctx context.Context) ([]models.Category, error) {
	s.hit("FindAllCategories")
	return s.categories, nil
}

func (s *stubStore) FindAllMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	s.hit("FindAllMenuItems")
	return s.items, nil
}

func (s *stubStore) FindMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	s.hit("FindMenuItem")
	for _, item := range s.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, database.ErrRecordNotFound
}

func (s *stubStore) InsertCategory(ctx context.Context, category *models.Category) error {
	s.hit("InsertCategory")
	return nil
}

func (s *stubStore) Insert(ctx context.Context, item *models.MenuItem) error {
	s.hit("Insert")
	return nil
}

func (s *stubStore) Update(ctx context.Context, item *models.MenuItem) error {
	s.hit("Update")
	return nil
}

func (s *stubStore) Delete(ctx context.Context, id uint) error {
	s.hit("Delete")
	return s.deleteErr
}

func (s *stubStore) hit(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
}

func (s *stubStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["Insert"] + s.calls["Update"] + s.calls["Delete"] + s.calls["InsertCategory"]
}
