// Package store holds the primary (gorm) and fallback (in-memory) tiers.
package store

import (
	"context"

	"restaurant-admin-api/models"
)

// RestaurantStore persists restaurant profiles.
type RestaurantStore interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (models.Restaurant, error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
	SetCategories(ctx context.Context, id string, categories []string) error
	// DeleteRestaurant removes the restaurant and every menu item it owns.
	DeleteRestaurant(ctx context.Context, id string) error
}

// MenuStore persists menu items for restaurants without an external database.
type MenuStore interface {
	// ListMenuItems returns the restaurant's items, newest first. A non-empty
	// category keeps items whose category contains it, ignoring case.
	ListMenuItems(ctx context.Context, restaurantID, category string) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
}

// AdminStore persists dashboard accounts.
type AdminStore interface {
	ListAdmins(ctx context.Context) ([]models.Admin, error)
	GetAdmin(ctx context.Context, id string) (models.Admin, error)
	// FindAdmin looks an admin up by username or email.
	FindAdmin(ctx context.Context, login string) (models.Admin, error)
	CreateAdmin(ctx context.Context, a *models.Admin) error
	SaveAdmin(ctx context.Context, a *models.Admin) error
}

// Store is one storage tier.
type Store interface {
	RestaurantStore
	MenuStore
	AdminStore
}

var (
	_ Store = (*Primary)(nil)
	_ Store = (*Fallback)(nil)
)
