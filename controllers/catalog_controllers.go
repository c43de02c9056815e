package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

type CatalogController struct {
	Store  *database.CatalogRepository
	Cache  *services.CatalogCache
	Guard  *services.CatalogGuard
	Orders *services.OrderService
}

func NewCatalogController(store *database.CatalogRepository, cache *services.CatalogCache, guard *services.CatalogGuard, orders *services.OrderService) *CatalogController {
	return &CatalogController{Store: store, Cache: cache, Guard: guard, Orders: orders}
}

type menuItemRequest struct {
	CategoryID  uint            `json:"category_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Active      *bool           `json:"active"`
	Description string          `json:"description"`
	ImageRef    *string         `json:"image_ref"`
}

func (r menuItemRequest) toModel() models.MenuItem {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.MenuItem{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Price:       r.Price,
		Active:      active,
		Description: r.Description,
		ImageRef:    r.ImageRef,
	}
}

type menuItemView struct {
	models.MenuItem
	CategoryName string `json:"category_name"`
	Status       string `json:"status"`
}

func (cc *CatalogController) view(item models.MenuItem) menuItemView {
	return menuItemView{
		MenuItem:     item,
		CategoryName: cc.Cache.CategoryName(item.CategoryID),
		Status:       item.StatusLabel(),
	}
}

// GetAllCategories
func (cc *CatalogController) GetAllCategories(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "All categories", cc.Cache.Snapshot().Categories())
}

// CreateCategory
func (cc *CatalogController) CreateCategory(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category, err := cc.Guard.CreateCategory(c.Request.Context(), body.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// GetMenuItems -> GET /menu-items?q=<term>&active=true
func (cc *CatalogController) GetMenuItems(c *gin.Context) {
	term := c.Query("q")
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active", "false"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid active flag"))
		return
	}

	search := cc.Cache.Search
	if activeOnly {
		search = cc.Cache.SearchActive
	}

	items := make([]menuItemView, 0)
	for item := range search(term) {
		items = append(items, cc.view(item))
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuItemByID reads from the store, so deactivated items are returned too.
func (cc *CatalogController) GetMenuItemByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := cc.Store.FindMenuItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, notFound(err))
		return
	}
	refs, err := cc.Orders.ReferenceCount(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item detail", gin.H{
		"item":             cc.view(*item),
		"order_references": refs,
	})
}

// CreateMenuItem
func (cc *CatalogController) CreateMenuItem(c *gin.Context) {
	var body menuItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.Guard.Upsert(c.Request.Context(), body.toModel(), true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", cc.view(*item))
}

// UpdateMenuItem
func (cc *CatalogController) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body menuItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := body.toModel()
	item.ID = id
	if body.Active == nil {
		// tanpa field active: status Sold Out/Available tetap seperti di store
		stored, err := cc.Store.FindMenuItem(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, notFound(err))
			return
		}
		item.Active = stored.Active
	}
	updated, err := cc.Guard.Upsert(c.Request.Context(), item, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", cc.view(*updated))
}

// DeleteMenuItem responds 200 both when the item was deleted and when it was
// deactivated because orders reference it; "outcome" tells which.
func (cc *CatalogController) DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := cc.Guard.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, result.Message, result)
}

// ReloadCatalog rebuilds the catalog snapshot from the store.
func (cc *CatalogController) ReloadCatalog(c *gin.Context) {
	snapshot, err := cc.Cache.Load(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catalog reloaded", gin.H{
		"categories": len(snapshot.Categories()),
		"items":      snapshot.Len(),
		"loaded_at":  snapshot.LoadedAt,
	})
}
