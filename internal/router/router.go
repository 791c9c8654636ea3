package router

import (
	"context"
	"fmt"
	"time"

	"jannypos/internal/config"
	"jannypos/internal/handler"
	"jannypos/internal/metrics"
	"jannypos/internal/middleware"
	"jannypos/internal/repository"
	"jannypos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds background goroutines started here (rate limiter purge).
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	production := cfg.Env == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	pinHash, err := cfg.PINHash(bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("cancel pin: %w", err)
	}

	r := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	limiter.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(production))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	txm := repository.NewTxManager(db)
	productRepo := repository.NewProductRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	stockRepo := repository.NewStockRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	siteSvc := service.NewSiteService(siteRepo, cfg.DefaultSite)
	catalogSvc := service.NewCatalogService(txm, productRepo, siteRepo, stockRepo, movementRepo, rdb, cfg.DefaultSite)
	inventorySvc := service.NewInventoryService(movementRepo)
	saleSvc := service.NewSaleService(txm, saleRepo, productRepo, siteRepo, stockRepo, movementRepo,
		service.NewPINGuard(pinHash), service.SaleOptions{
			DefaultSite: cfg.DefaultSite,
			Tolerance:   cfg.Tolerance(),
		})
	ticketSvc := service.NewTicketService(saleRepo, cfg.BusinessName)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(catalogSvc, inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc, ticketSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	checks := []handler.DependencyCheck{handler.DatabaseCheck(db)}
	if rdb != nil {
		checks = append(checks, handler.RedisCheck(rdb))
	}

	api := r.Group("/api", limiter.Handler())
	{
		api.GET("/health", handler.Health(checks...))
		api.POST("/seed-basic", handler.SeedBasic(siteSvc))

		api.GET("/products", productsH.Search)
		api.POST("/products", productsH.Create)
		api.GET("/products/:id/movements", productsH.Movements)
		api.GET("/price/:barcode", productsH.PriceCheck)

		api.POST("/checkout", salesH.Checkout)
		api.GET("/sales", salesH.List)
		api.GET("/sales/:id", salesH.Get)
		api.GET("/sales/:id/ticket.pdf", salesH.Ticket)
		api.POST("/sales/:id/cancel",
			middleware.PINAttemptLimiter(rdb, cfg.PINMaxAttempts, time.Duration(cfg.PINWindowSeconds)*time.Second),
			salesH.Cancel)
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Swagger UI, only outside production
	if !production {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Built frontend + SPA fallback; unknown /api paths answer JSON 404.
	r.NoRoute(handler.Frontend(cfg.FrontendDir))

	return r, nil
}
