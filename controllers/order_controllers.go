package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

type OrderController struct {
	Orders   *services.OrderService
	Cache    *services.CatalogCache
	Renderer services.InvoiceRenderer
}

func NewOrderController(orders *services.OrderService, cache *services.CatalogCache, renderer services.InvoiceRenderer) *OrderController {
	return &OrderController{Orders: orders, Cache: cache, Renderer: renderer}
}

// CreateOrder commits explicit cart lines sent by the client, each carrying
// the unit price it captured when the line was added.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body struct {
		checkoutRequest
		Items []services.CartLine `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	orderID, err := oc.Orders.Commit(ctx, body.Items, body.customer(), body.method())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> GET /orders?limit=50
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid limit"))
		return
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetInvoicePDF renders the invoice of a committed order.
func (oc *OrderController) GetInvoicePDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := oc.Renderer.Render(&buf, order, oc.Cache.DisplayName); err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%d.pdf", order.ID)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
