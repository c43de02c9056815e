package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-pos/config"
	"github.com/yeremiapane/cafe-pos/database"
	"github.com/yeremiapane/cafe-pos/kds"
	"github.com/yeremiapane/cafe-pos/router"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

func init() {
	utils.InitLogger()
}

func main() {
	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	catalogRepo := database.NewCatalogRepository(db)
	orderRepo := database.NewOrderRepository(db)
	hub := kds.NewHub()

	cache := services.NewCatalogCache(catalogRepo)
	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout)
	if _, err := cache.Load(loadCtx); err != nil {
		utils.ErrorLogger.Fatalf("Failed to load catalog: %v", err)
	}
	cancel()

	orderService := services.NewOrderService(orderRepo, cache, hub)
	orderService.Timeout = cfg.StorageTimeout
	if cfg.StrictCart {
		orderService.Policy = services.UnresolvedStrict
	}

	guard := services.NewCatalogGuard(catalogRepo, cache, hub)
	guard.Timeout = cfg.StorageTimeout

	r := router.SetupRouter(router.Deps{
		Catalog:           catalogRepo,
		Cache:             cache,
		Guard:             guard,
		Orders:            orderService,
		Carts:             services.NewCartRegistry(),
		Hub:               hub,
		Renderer:          services.InvoiceRenderer{StoreName: cfg.StoreName},
		AllowOrigin:       os.Getenv("CORS_ORIGIN"),
		RateLimit:         cfg.RateLimit,
		CheckoutPerSecond: 5,
	})

	utils.InfoLogger.Printf("Listening on port %s (strict cart: %v, storage timeout: %s)",
		cfg.Port, cfg.StrictCart, cfg.StorageTimeout.Round(time.Millisecond))
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
