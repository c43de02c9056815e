package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

// PosController serves the till: one cart per terminal, checkout commits it.
type PosController struct {
	Carts  *services.CartRegistry
	Cache  *services.CatalogCache
	Orders *services.OrderService
}

func NewPosController(carts *services.CartRegistry, cache *services.CatalogCache, orders *services.OrderService) *PosController {
	return &PosController{Carts: carts, Cache: cache, Orders: orders}
}

type cartLineView struct {
	services.CartLine
	Name      string          `json:"name"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartView struct {
	Terminal string         `json:"terminal"`
	Lines    []cartLineView `json:"lines"`
	Subtotal string         `json:"subtotal"`
}

func (pc *PosController) view(terminal string, lines []services.CartLine) cartView {
	v := cartView{Terminal: terminal, Lines: make([]cartLineView, 0, len(lines))}
	for _, line := range lines {
		v.Lines = append(v.Lines, cartLineView{
			CartLine:  line,
			Name:      pc.Cache.DisplayName(line.MenuItemID),
			LineTotal: line.LineTotal(),
		})
	}
	v.Subtotal = utils.FormatCurrency(services.ComputeTotals(lines).Subtotal)
	return v
}

// GetCart
func (pc *PosController) GetCart(c *gin.Context) {
	terminal := c.Param("terminal")
	utils.RespondJSON(c, http.StatusOK, "Cart", pc.view(terminal, pc.Carts.Lines(terminal)))
}

// AddToCart -> price is captured from the catalog snapshot at this moment
func (pc *PosController) AddToCart(c *gin.Context) {
	terminal := c.Param("terminal")

	var body struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	lines, err := pc.Carts.Add(terminal, pc.Cache, body.MenuItemID, body.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added", pc.view(terminal, lines))
}

// ClearCart
func (pc *PosController) ClearCart(c *gin.Context) {
	terminal := c.Param("terminal")
	pc.Carts.Clear(terminal)
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", pc.view(terminal, nil))
}

type checkoutRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerType  string `json:"customer_type"`
	PaymentMethod string `json:"payment_method"`
}

func (r checkoutRequest) customer() services.CustomerInfo {
	return services.CustomerInfo{Name: r.CustomerName, Type: r.CustomerType}
}

func (r checkoutRequest) method() string {
	if r.PaymentMethod == "" {
		return models.PaymentMethodCash
	}
	return r.PaymentMethod
}

// Checkout commits the terminal's cart. The cart is cleared only on success.
func (pc *PosController) Checkout(c *gin.Context) {
	terminal := c.Param("terminal")

	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	orderID, err := pc.Carts.Checkout(terminal, func(lines []services.CartLine) (uint, error) {
		return pc.Orders.Commit(ctx, lines, body.customer(), body.method())
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := pc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order completed", order)
}
