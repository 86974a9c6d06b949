package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant-admin-api/handlers"
	"restaurant-admin-api/logger"
	"restaurant-admin-api/middleware"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Restaurants *handlers.RestaurantHandler
	Menu        *handlers.MenuHandler
	Health      *handlers.HealthHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, tokens *middleware.Tokens) {
	r.GET("/health", h.Health.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api/admin")
	public.Use(logger.RequestLogger())
	{
		public.POST("/login", h.Auth.Login)
		public.POST("/register", h.Auth.Register)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(logger.RequestLogger(), middleware.AuthRequired(tokens), middleware.AdminRequired())
	{
		// Account
		admin.GET("/profile", h.Auth.GetProfile)
		admin.PUT("/profile", h.Auth.UpdateProfile)
		admin.GET("/settings", h.Auth.GetSettings)
		admin.PUT("/settings", h.Auth.UpdateSettings)
		admin.GET("/export-database", h.Auth.ExportDatabase)

		// Restaurants
		admin.GET("/restaurants", h.Restaurants.ListRestaurants)
		admin.POST("/restaurants", h.Restaurants.CreateRestaurant)
		admin.GET("/restaurants/:id", h.Restaurants.GetRestaurant)
		admin.PUT("/restaurants/:id", h.Restaurants.UpdateRestaurant)
		admin.DELETE("/restaurants/:id", h.Restaurants.DeleteRestaurant)
		admin.POST("/restaurants/:id/refresh-categories", h.Restaurants.RefreshCategories)

		// Menu items
		admin.GET("/restaurants/:id/menu-items", h.Menu.GetMenuItems)
		admin.GET("/restaurants/:id/menu-items/category/:category", h.Menu.GetMenuItemsByCategory)
		admin.POST("/restaurants/:id/menu-items", h.Menu.CreateMenuItem)
		admin.PUT("/menu-items/:id", h.Menu.UpdateMenuItem)
		admin.DELETE("/menu-items/:id", h.Menu.DeleteMenuItem)
	}
}
