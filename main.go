package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"restaurant-admin-api/config"
	"restaurant-admin-api/extdb"
	"restaurant-admin-api/handlers"
	"restaurant-admin-api/logger"
	"restaurant-admin-api/middleware"
	"restaurant-admin-api/qrcode"
	"restaurant-admin-api/routes"
	"restaurant-admin-api/services"
	"restaurant-admin-api/store"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	logFile, err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialise logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	gin.SetMode(cfg.GinMode)

	backends, err := buildBackends(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Services
	tokens := middleware.NewTokens(cfg.JWTSecret, cfg.JWTExpiry)
	categorySync := services.NewCategorySync(backends)
	restaurantSvc := services.NewRestaurantService(backends, qrcode.NewPNG(), categorySync)
	menuSvc := services.NewMenuService(backends, restaurantSvc, categorySync)
	adminSvc := services.NewAdminService(backends)

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware for the admin frontend
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "X-Data-Tier, Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍽️ Restaurant Admin API",
			"health":  "/health",
			"api":     "/api/admin",
		})
	})

	routes.SetupRoutes(r, routes.Handlers{
		Auth:        handlers.NewAuthHandler(adminSvc, tokens),
		Restaurants: handlers.NewRestaurantHandler(restaurantSvc),
		Menu:        handlers.NewMenuHandler(menuSvc),
		Health:      handlers.NewHealthHandler(backends, version),
	}, tokens)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("🚀 Server running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("❌ Server forced to shut down")
	}
	if err := backends.Pool.Close(ctx); err != nil {
		log.WithError(err).Warn("⚠️ Error closing restaurant database connections")
	}
	log.Info("👋 Server exited")
}

// buildBackends opens the primary store, the fallback fixtures and the
// external connection pool according to cfg.
func buildBackends(cfg *config.Config) (*services.Backends, error) {
	b := &services.Backends{Timeouts: cfg.Timeout}

	if cfg.PrimaryEnabled {
		db, err := store.OpenPrimary(cfg.PrimaryDSN)
		if err != nil {
			if !cfg.FallbackEnabled {
				return nil, err
			}
			log.WithError(err).Warn("⚠️ Primary database unavailable, serving from fallback data")
		} else {
			b.Primary = store.NewPrimary(db)
		}
	}
	if cfg.FallbackEnabled {
		b.Fallback = store.NewFallback()
		log.Info("🧪 Fallback data store enabled")
	}

	mapping, err := extdb.LoadMapping(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	b.Catalog = extdb.NewCatalog(mapping)

	b.Pool = extdb.NewPool(extdb.PoolConfig{
		DefaultDatabase: cfg.ExternalDefaultDB,
		DialTimeout:     cfg.Pool.DialTimeout,
		PingTimeout:     cfg.Pool.PingTimeout,
		IdleTimeout:     cfg.Pool.IdleTimeout,
		MaxSize:         cfg.Pool.MaxSize,
	}, extdb.MongoDialer(extdb.DialOptions{
		ConnectTimeoutMS: cfg.Pool.ConnectTimeout.Milliseconds(),
		MaxPoolSize:      cfg.Pool.DriverMaxPool,
		MinPoolSize:      cfg.Pool.DriverMinPool,
	}))
	b.Pool.OnEvict(func(c extdb.Conn) { b.Catalog.Forget(c) })
	return b, nil
}
