package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
)

const deactivatedMessage = "Item in use; marked as inactive instead of delete."

// CatalogStore is the catalog persistence the guard mutates.
type CatalogStore interface {
	CatalogReader
	FindMenuItem(ctx context.Context, id uint) (*models.MenuItem, error)
	InsertCategory(ctx context.Context, category *models.Category) error
	Insert(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

type DeleteOutcome string

const (
	Deleted     DeleteOutcome = "deleted"
	Deactivated DeleteOutcome = "deactivated"
)

type DeleteResult struct {
	Outcome DeleteOutcome    `json:"outcome"`
	Message string           `json:"message"`
	Item    *models.MenuItem `json:"item,omitempty"`
}

// CatalogGuard applies catalog mutations without breaking order history: a
// menu item that order items still reference is deactivated, never removed.
type CatalogGuard struct {
	store  CatalogStore
	cache  *CatalogCache
	events EventPublisher

	// Timeout bounds each mutation, including the cache reload after it.
	Timeout time.Duration
}

func NewCatalogGuard(store CatalogStore, cache *CatalogCache, events EventPublisher) *CatalogGuard {
	return &CatalogGuard{store: store, cache: cache, events: events}
}

// Delete tries a hard delete first. If the store reports the item as still
// referenced, the item is deactivated instead and the result says so. Any
// other storage error is returned as is.
func (g *CatalogGuard) Delete(ctx context.Context, id uint) (DeleteResult, error) {
	ctx, cancel := withStorageTimeout(ctx, g.Timeout)
	defer cancel()

	err := g.store.Delete(ctx, id)
	if err == nil {
		g.afterMutation(ctx, string(Deleted), id)
		return DeleteResult{Outcome: Deleted, Message: "Item deleted."}, nil
	}

	var refErr *database.ReferentialIntegrityError
	if !errors.As(err, &refErr) {
		if errors.Is(err, database.ErrRecordNotFound) {
			return DeleteResult{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
		}
		return DeleteResult{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"menu_item_id": id,
		"cause":        refErr.Cause,
	}).Info("Menu item referenced by orders, deactivating instead of delete")

	item, err := g.store.FindMenuItem(ctx, id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to deactivate menu item %d: %w", id, err)
	}
	item.Active = false
	if err := g.store.Update(ctx, item); err != nil {
		return DeleteResult{}, fmt.Errorf("failed to deactivate menu item %d: %w", id, err)
	}

	g.afterMutation(ctx, string(Deactivated), id)
	return DeleteResult{Outcome: Deactivated, Message: deactivatedMessage, Item: item}, nil
}

// Upsert validates item against the current catalog and then inserts it
// (isNew) or overwrites the stored item with the same id.
func (g *CatalogGuard) Upsert(ctx context.Context, item models.MenuItem, isNew bool) (*models.MenuItem, error) {
	ctx, cancel := withStorageTimeout(ctx, g.Timeout)
	defer cancel()

	item.Name = strings.TrimSpace(item.Name)

	verr := &ValidationError{}
	if item.Name == "" {
		verr.add("name", "must not be empty")
	}
	if item.Price.IsNegative() {
		verr.add("price", "must not be negative")
	} else if !isCents(item.Price) {
		verr.add("price", "must have at most 2 decimal places")
	}
	if !g.cache.HasCategory(item.CategoryID) {
		verr.add("category_id", fmt.Sprintf("category %d does not exist", item.CategoryID))
	}
	if !isNew && item.ID == 0 {
		verr.add("id", "is required for update")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	action := "updated"
	if isNew {
		item.ID = 0
		action = "created"
		if err := g.store.Insert(ctx, &item); err != nil {
			return nil, err
		}
	} else if err := g.store.Update(ctx, &item); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, fmt.Errorf("menu item %d: %w", item.ID, ErrNotFound)
		}
		return nil, err
	}

	g.afterMutation(ctx, action, item.ID)
	return &item, nil
}

func (g *CatalogGuard) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	ctx, cancel := withStorageTimeout(ctx, g.Timeout)
	defer cancel()

	category := models.Category{Name: strings.TrimSpace(name)}
	if category.Name == "" {
		verr := &ValidationError{}
		verr.add("name", "must not be empty")
		return nil, verr
	}
	if err := g.store.InsertCategory(ctx, &category); err != nil {
		return nil, err
	}
	g.afterMutation(ctx, "category_created", 0)
	return &category, nil
}

// afterMutation rebuilds the cache and notifies displays. A failed reload is
// logged; the mutation itself has already been persisted.
func (g *CatalogGuard) afterMutation(ctx context.Context, action string, id uint) {
	if _, err := g.cache.Load(ctx); err != nil {
		utils.ErrorLogger.Printf("Catalog reload after %s of menu item %d failed: %v", action, id, err)
	}
	if g.events != nil {
		g.events.BroadcastCatalogUpdated(action, id)
	}
}
