package database

import (
	"context"
	"fmt"

	"github.com/yeremiapane/cafe-pos/models"
	"gorm.io/gorm"
)

// CatalogRepository persists categories and menu items.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) FindAllCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.DB.WithContext(ctx).Order("id asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) InsertCategory(ctx context.Context, category *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// FindAllMenuItems returns every menu item, including deactivated ones, in id order.
func (r *CatalogRepository) FindAllMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.DB.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	return items, nil
}

// FindActiveMenuItems returns the orderable menu items in id order.
func (r *CatalogRepository) FindActiveMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.DB.WithContext(ctx).Where("active = ?", true).Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load active menu items: %w", err)
	}
	return items, nil
}

func (r *CatalogRepository) FindMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find menu item %d: %w", id, notFoundOr(err))
	}
	return &item, nil
}

func (r *CatalogRepository) Insert(ctx context.Context, item *models.MenuItem) error {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing item, zero values
// included, so Active=false is persisted.
func (r *CatalogRepository) Update(ctx context.Context, item *models.MenuItem) error {
	db := r.DB.WithContext(ctx)

	var existing models.MenuItem
	if err := db.Select("id").First(&existing, item.ID).Error; err != nil {
		return fmt.Errorf("failed to find menu item %d: %w", item.ID, notFoundOr(err))
	}

	err := db.Model(&models.MenuItem{ID: item.ID}).
		Select("category_id", "name", "price", "active", "description", "image_ref", "updated_at").
		Updates(item).Error
	if err != nil {
		return fmt.Errorf("failed to update menu item %d: %w", item.ID, err)
	}

	if err := db.First(item, item.ID).Error; err != nil {
		return fmt.Errorf("failed to reload menu item %d: %w", item.ID, err)
	}
	return nil
}

// Delete physically removes a menu item. A delete blocked by order items that
// reference the row fails with *ReferentialIntegrityError.
func (r *CatalogRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return &ReferentialIntegrityError{Table: "menu_items", ID: id, Cause: result.Error}
		}
		return fmt.Errorf("failed to delete menu item %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete menu item %d: %w", id, ErrRecordNotFound)
	}
	return nil
}
