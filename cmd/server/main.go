package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/carmen/backend/internal/application/catalog"
	procurementapp "github.com/carmen/backend/internal/application/procurement"
	"github.com/carmen/backend/internal/infrastructure/cache"
	"github.com/carmen/backend/internal/infrastructure/config"
	"github.com/carmen/backend/internal/infrastructure/logger"
	"github.com/carmen/backend/internal/infrastructure/persistence"
	"github.com/carmen/backend/internal/interfaces/http/handler"
	"github.com/carmen/backend/internal/interfaces/http/middleware"
	"github.com/carmen/backend/internal/interfaces/http/router"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	productCache, err := cache.NewProductCacheFactory(
		cfg.Redis,
		cfg.Ledger.ProductCacheTTL,
		cache.WithLogger(log),
	).CreateCache()
	if err != nil {
		log.Fatal("failed to create product cache", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)

	// Application services
	productService := catalogapp.NewProductService(productRepo, productCache, log)
	orderService := procurementapp.NewPurchaseOrderService(orderRepo, productService)

	// Handlers
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewPurchaseOrderHandler(orderService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", healthHandler(db, log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	r.Register(catalogRoutes)

	procurementRoutes := router.NewDomainGroup("procurement", "/procurement")
	procurementRoutes.POST("/purchase-orders", orderHandler.Create)
	procurementRoutes.GET("/purchase-orders", orderHandler.List)
	procurementRoutes.GET("/purchase-orders/:id", orderHandler.GetByID)
	procurementRoutes.GET("/purchase-orders/by-number/:orderNumber", orderHandler.GetByOrderNumber)
	procurementRoutes.PUT("/purchase-orders/:id", orderHandler.Update)
	procurementRoutes.PATCH("/purchase-orders/:id/items", orderHandler.UpdateItems)
	procurementRoutes.POST("/purchase-orders/:id/submit", orderHandler.Submit)
	procurementRoutes.POST("/purchase-orders/:id/return-to-draft", orderHandler.ReturnToDraft)
	procurementRoutes.POST("/purchase-orders/:id/approve", orderHandler.Approve)
	procurementRoutes.POST("/purchase-orders/:id/send", orderHandler.MarkSent)
	procurementRoutes.POST("/purchase-orders/:id/complete", orderHandler.Complete)
	procurementRoutes.POST("/purchase-orders/:id/void", orderHandler.Void)
	r.Register(procurementRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"reason": "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
