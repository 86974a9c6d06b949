package store

import (
	"time"

	"restaurant-admin-api/models"
)

// Fixture identifiers served by the fallback tier.
const (
	FixtureRestaurantID  = "67870c1a2b4d5e8f9a1b2c3d"
	FixtureRestaurant2ID = "67870c1a2b4d5e8f9a1b2c4e"

	FallbackAdminID       = "admin-001"
	FallbackAdminUsername = "admin"
	FallbackAdminEmail    = "admin@example.com"
	FallbackAdminPassword = "password"
)

func fixtureRestaurants(now time.Time) []models.Restaurant {
	return []models.Restaurant{
		{
			ID:          FixtureRestaurantID,
			Name:        "Royal Spice Palace",
			Description: "Experience authentic Indian cuisine with a royal touch",
			Address:     "123 Main Street, City Center, State 12345",
			Phone:       "+1 (555) 123-4567",
			Email:       "info@royalspicepalace.com",
			Image:       "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          FixtureRestaurant2ID,
			Name:        "Golden Dragon Restaurant",
			Description: "Traditional Chinese cuisine with modern presentation",
			Address:     "456 Oak Avenue, Downtown, State 12345",
			Phone:       "+1 (555) 987-6543",
			Email:       "contact@goldendragon.com",
			Image:       "https://images.unsplash.com/photo-1555396273-367ea4eb4db5?w=400",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func fixtureMenuItems(now time.Time) []models.MenuItem {
	return []models.MenuItem{
		{
			ID:           "67870c1a2b4d5e8f9a1b2c5f",
			RestaurantID: FixtureRestaurantID,
			Name:         "Butter Chicken",
			Description:  "Creamy tomato-based curry with tender chicken pieces",
			Price:        450,
			Category:     "Main Course",
			IsVeg:        false,
			Image:        "https://images.unsplash.com/photo-1603894584373-5ac82b2ae398?w=400",
			IsAvailable:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "67870c1a2b4d5e8f9a1b2c6a",
			RestaurantID: FixtureRestaurantID,
			Name:         "Vegetable Samosas",
			Description:  "Crispy pastry filled with spiced vegetables",
			Price:        180,
			Category:     "Starters",
			IsVeg:        true,
			Image:        "https://images.unsplash.com/photo-1601050690117-94f5f6fa2238?w=400",
			IsAvailable:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "67870c1a2b4d5e8f9a1b2c7b",
			RestaurantID: FixtureRestaurantID,
			Name:         "Sweet Lassi",
			Description:  "Traditional yogurt-based drink with cardamom",
			Price:        120,
			Category:     "Beverages",
			IsVeg:        true,
			Image:        "https://images.unsplash.com/photo-1546173159-315724a31696?w=400",
			IsAvailable:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func fallbackAdmin(hash string, now time.Time) models.Admin {
	return models.Admin{
		ID:            FallbackAdminID,
		Username:      FallbackAdminUsername,
		Email:         FallbackAdminEmail,
		PasswordHash:  hash,
		Role:          models.RoleAdmin,
		AdminSettings: models.DefaultAdminSettings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
