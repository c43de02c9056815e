package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-pos/controllers"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/kds"
	"github.com/yeremiapane/cafe-pos/middlewares"
	"github.com/yeremiapane/cafe-pos/services"
)

// Deps are the wired components the HTTP layer serves.
type Deps struct {
	Catalog     *database.CatalogRepository
	Cache       *services.CatalogCache
	Guard       *services.CatalogGuard
	Orders      *services.OrderService
	Carts       *services.CartRegistry
	Hub         *kds.Hub
	Renderer    services.InvoiceRenderer
	AllowOrigin string
	// RateLimit is requests per second per client ip; zero disables it.
	RateLimit int
	// CheckoutPerSecond of zero disables the checkout rate limit.
	CheckoutPerSecond float64
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	allowOrigin := d.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(allowOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if d.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimit, 1).RateLimit())
	}

	// Inisialisasi controller
	catalogCtrl := controllers.NewCatalogController(d.Catalog, d.Cache, d.Guard, d.Orders)
	posCtrl := controllers.NewPosController(d.Carts, d.Cache, d.Orders)
	orderCtrl := controllers.NewOrderController(d.Orders, d.Cache, d.Renderer)
	kdsCtrl := controllers.NewKDSController(d.Hub)

	checkout := []gin.HandlerFunc{middlewares.CheckoutLoggerMiddleware()}
	if d.CheckoutPerSecond > 0 {
		checkout = append([]gin.HandlerFunc{middlewares.NewCheckoutRateLimiter(d.CheckoutPerSecond, 5)}, checkout...)
	}
	withCheckout := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, checkout...), h)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// CATALOG
	r.GET("/categories", catalogCtrl.GetAllCategories)
	r.POST("/categories", catalogCtrl.CreateCategory)
	r.GET("/menu-items", catalogCtrl.GetMenuItems)
	r.GET("/menu-items/:id", catalogCtrl.GetMenuItemByID)
	r.POST("/menu-items", catalogCtrl.CreateMenuItem)
	r.PUT("/menu-items/:id", catalogCtrl.UpdateMenuItem)
	r.DELETE("/menu-items/:id", catalogCtrl.DeleteMenuItem)
	r.POST("/catalog/reload", catalogCtrl.ReloadCatalog)

	// POS (till carts)
	pos := r.Group("/pos/carts/:terminal")
	{
		pos.GET("", posCtrl.GetCart)
		pos.POST("/items", posCtrl.AddToCart)
		pos.DELETE("", posCtrl.ClearCart)
		pos.POST("/checkout", withCheckout(posCtrl.Checkout)...)
	}

	// ORDERS
	r.POST("/orders", withCheckout(orderCtrl.CreateOrder)...)
	r.GET("/orders", orderCtrl.GetAllOrders)
	r.GET("/orders/:id", orderCtrl.GetOrderByID)
	r.GET("/orders/:id/invoice.pdf", orderCtrl.GetInvoicePDF)

	// Kitchen display feed
	r.GET("/kds/ws", kdsCtrl.KDSHandler)

	return r
}
