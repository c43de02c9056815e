package services

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
	"golang.org/x/sync/errgroup"
)

const unknownCategoryLabel = "Unknown"

// CatalogReader is the read side of the catalog store the cache is built from.
type CatalogReader interface {
	FindAllCategories(ctx context.Context) ([]models.Category, error)
	FindAllMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// Snapshot is an immutable copy of the catalog as of one Load. Items keep the
// store's order; the index maps ids to positions in the slices.
type Snapshot struct {
	categories    []models.Category
	categoryIndex map[uint]int
	items         []models.MenuItem
	itemIndex     map[uint]int
	LoadedAt      time.Time
}

func newSnapshot(categories []models.Category, items []models.MenuItem) *Snapshot {
	s := &Snapshot{
		categories:    categories,
		categoryIndex: make(map[uint]int, len(categories)),
		items:         items,
		itemIndex:     make(map[uint]int, len(items)),
		LoadedAt:      time.Now(),
	}
	for i, c := range categories {
		s.categoryIndex[c.ID] = i
	}
	for i, item := range items {
		s.itemIndex[item.ID] = i
	}
	return s
}

func (s *Snapshot) Len() int {
	return len(s.items)
}

// Items returns a copy of every item in snapshot order.
func (s *Snapshot) Items() []models.MenuItem {
	return append([]models.MenuItem(nil), s.items...)
}

// Categories returns a copy of every category in snapshot order.
func (s *Snapshot) Categories() []models.Category {
	return append([]models.Category(nil), s.categories...)
}

func (s *Snapshot) Item(id uint) (models.MenuItem, bool) {
	i, ok := s.itemIndex[id]
	if !ok {
		return models.MenuItem{}, false
	}
	return s.items[i], true
}

func (s *Snapshot) Category(id uint) (models.Category, bool) {
	i, ok := s.categoryIndex[id]
	if !ok {
		return models.Category{}, false
	}
	return s.categories[i], true
}

func (s *Snapshot) categoryName(id uint) string {
	if c, ok := s.Category(id); ok {
		return c.Name
	}
	return unknownCategoryLabel
}

func (s *Snapshot) matches(item models.MenuItem, term string) bool {
	return strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(s.categoryName(item.CategoryID)), term) ||
		strings.Contains(strings.ToLower(item.Description), term)
}

// CatalogCache is a read-only index over the catalog store. Load builds a new
// Snapshot and swaps it in; readers always see one complete snapshot.
type CatalogCache struct {
	store   CatalogReader
	current atomic.Pointer[Snapshot]
}

func NewCatalogCache(store CatalogReader) *CatalogCache {
	c := &CatalogCache{store: store}
	c.current.Store(newSnapshot(nil, nil))
	return c
}

// Load replaces the whole snapshot with the store's current contents. On error
// the previous snapshot stays in place.
func (c *CatalogCache) Load(ctx context.Context) (*Snapshot, error) {
	var (
		categories []models.Category
		items      []models.MenuItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.store.FindAllCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = c.store.FindAllMenuItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("catalog load failed: %w", err)
	}

	snapshot := newSnapshot(categories, items)
	c.current.Store(snapshot)

	utils.InfoLogger.WithFields(logrus.Fields{
		"categories": len(categories),
		"items":      len(items),
	}).Info("Catalog snapshot loaded")

	return snapshot, nil
}

// Snapshot returns the current snapshot.
func (c *CatalogCache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Resolve looks up a menu item by id. A miss returns ErrNotFound; display
// callers should fall back to DisplayName.
func (c *CatalogCache) Resolve(id uint) (models.MenuItem, error) {
	item, ok := c.Snapshot().Item(id)
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// DisplayName returns the item name, or a placeholder for ids the snapshot does not know.
func (c *CatalogCache) DisplayName(id uint) string {
	if item, ok := c.Snapshot().Item(id); ok {
		return item.Name
	}
	return fmt.Sprintf("Item #%d", id)
}

// CategoryName returns the category name, or "Unknown".
func (c *CatalogCache) CategoryName(id uint) string {
	return c.Snapshot().categoryName(id)
}

func (c *CatalogCache) HasCategory(id uint) bool {
	_, ok := c.Snapshot().Category(id)
	return ok
}

// Search yields the items whose name, category name or description contains
// term, case-insensitively, in snapshot order. A blank term yields every item.
// The sequence is bound to the snapshot current at call time and can be
// ranged over any number of times.
func (c *CatalogCache) Search(term string) iter.Seq[models.MenuItem] {
	return c.search(term, false)
}

// SearchActive is Search restricted to orderable items.
func (c *CatalogCache) SearchActive(term string) iter.Seq[models.MenuItem] {
	return c.search(term, true)
}

func (c *CatalogCache) search(term string, activeOnly bool) iter.Seq[models.MenuItem] {
	snapshot := c.Snapshot()
	q := strings.ToLower(strings.TrimSpace(term))

	return func(yield func(models.MenuItem) bool) {
		for _, item := range snapshot.items {
			if activeOnly && !item.Active {
				continue
			}
			if q != "" && !snapshot.matches(item, q) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}
