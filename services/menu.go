package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/extdb"
	"restaurant-admin-api/models"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

type MenuService struct {
	b           *Backends
	restaurants *RestaurantService
	sync        *CategorySync
}

func NewMenuService(b *Backends, restaurants *RestaurantService, sync *CategorySync) *MenuService {
	return &MenuService{b: b, restaurants: restaurants, sync: sync}
}

// restaurant resolves the owning restaurant; its connection string decides
// whether the external tier is tried.
func (s *MenuService) restaurant(ctx context.Context, id string) (models.Restaurant, error) {
	res, err := s.restaurants.Get(ctx, id)
	return res.Value, err
}

// menuRead is a listing plus the external handle it came from, if any.
type menuRead struct {
	items []models.MenuItem
	db    extdb.Database
}

// List returns a restaurant's menu items, optionally filtered by category.
// When the external tier answers, the restaurant's category list is synced
// afterwards under its own budget; a slow or failed sync never changes the listing.
func (s *MenuService) List(ctx context.Context, restaurantID, category string) (tiers.Result[[]models.MenuItem], error) {
	r, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return tiers.Result[[]models.MenuItem]{}, err
	}
	category = strings.TrimSpace(category)

	chain := externalStep(s.b, r.MongoURI, s.b.Timeouts.ExternalItemRead, func(ctx context.Context, db extdb.Database) (menuRead, error) {
		items, err := s.b.Catalog.FetchMenuItems(ctx, db, category)
		if err != nil {
			return menuRead{}, err
		}
		return menuRead{items: items, db: db}, nil
	})
	chain.Extend(storeChain(s.b, s.b.Timeouts.PrimaryItem, func(ctx context.Context, st store.Store) (menuRead, error) {
		items, err := st.ListMenuItems(ctx, restaurantID, category)
		return menuRead{items: items}, err
	}))
	res, err := chain.Resolve(ctx, "list menu items")
	if err != nil {
		return tiers.Result[[]models.MenuItem]{}, err
	}

	if res.Tier == tiers.External && res.Value.db != nil {
		s.syncAfterRead(ctx, r, res.Value.db)
	}
	return tiers.Result[[]models.MenuItem]{Value: res.Value.items, Tier: res.Tier}, nil
}

func (s *MenuService) syncAfterRead(ctx context.Context, r models.Restaurant, db extdb.Database) {
	syncCtx, cancel := ctx, context.CancelFunc(func() {})
	if d := s.b.Timeouts.CategoryExtract; d > 0 {
		syncCtx, cancel = context.WithTimeout(ctx, d)
	}
	defer cancel()
	if _, _, err := s.sync.Sync(syncCtx, r, db); err != nil {
		log.WithError(err).Warnf("⚠️ Category sync failed for restaurant %s", r.ID)
	}
}

// Create adds a menu item to the restaurant's menu.
func (s *MenuService) Create(ctx context.Context, restaurantID string, in models.MenuItemInput) (tiers.Result[models.MenuItem], error) {
	in.RestaurantID = restaurantID
	if err := validateMenuItem(in); err != nil {
		return tiers.Result[models.MenuItem]{}, err
	}
	r, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return tiers.Result[models.MenuItem]{}, err
	}

	chain := externalStep(s.b, r.MongoURI, s.b.Timeouts.ExternalItemWrite, func(ctx context.Context, db extdb.Database) (models.MenuItem, error) {
		return s.b.Catalog.CreateMenuItem(ctx, db, in)
	})
	chain.Extend(storeChain(s.b, s.b.Timeouts.PrimaryItem, func(ctx context.Context, st store.Store) (models.MenuItem, error) {
		item := models.MenuItem{
			RestaurantID: restaurantID,
			Name:         in.Name,
			Description:  in.Description,
			Price:        in.Price,
			Category:     in.Category,
			IsVeg:        models.BoolOr(in.IsVeg, true),
			Image:        in.Image,
			IsAvailable:  models.BoolOr(in.IsAvailable, true),
		}
		if err := st.CreateMenuItem(ctx, &item); err != nil {
			return models.MenuItem{}, err
		}
		return item, nil
	}))
	return chain.Resolve(ctx, "create menu item")
}

// Update applies patch to an item. restaurantID selects the external database;
// without it only the primary and fallback tiers are searched.
func (s *MenuService) Update(ctx context.Context, itemID, restaurantID string, patch models.MenuItemPatch) (tiers.Result[models.MenuItem], error) {
	if patch.IsEmpty() {
		return tiers.Result[models.MenuItem]{}, apperr.Validation("no fields to update")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return tiers.Result[models.MenuItem]{}, apperr.Validation("price must not be negative")
	}
	uri, err := s.externalURI(ctx, restaurantID)
	if err != nil {
		return tiers.Result[models.MenuItem]{}, err
	}

	chain := externalStep(s.b, uri, s.b.Timeouts.ExternalItemWrite, func(ctx context.Context, db extdb.Database) (models.MenuItem, error) {
		return s.b.Catalog.UpdateMenuItem(ctx, db, itemID, patch)
	})
	chain.Extend(storeChain(s.b, s.b.Timeouts.PrimaryItem, func(ctx context.Context, st store.Store) (models.MenuItem, error) {
		return st.UpdateMenuItem(ctx, itemID, patch)
	}))
	return chain.Resolve(ctx, "update menu item")
}

// Delete removes an item, searching the same tiers as Update.
func (s *MenuService) Delete(ctx context.Context, itemID, restaurantID string) (tiers.Result[string], error) {
	uri, err := s.externalURI(ctx, restaurantID)
	if err != nil {
		return tiers.Result[string]{}, err
	}

	chain := externalStep(s.b, uri, s.b.Timeouts.ExternalItemWrite, func(ctx context.Context, db extdb.Database) (string, error) {
		return itemID, s.b.Catalog.DeleteMenuItem(ctx, db, itemID)
	})
	chain.Extend(storeChain(s.b, s.b.Timeouts.PrimaryItem, func(ctx context.Context, st store.Store) (string, error) {
		return itemID, st.DeleteMenuItem(ctx, itemID)
	}))
	return chain.Resolve(ctx, "delete menu item")
}

func (s *MenuService) externalURI(ctx context.Context, restaurantID string) (string, error) {
	if restaurantID == "" {
		return "", nil
	}
	r, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return "", err
	}
	return r.MongoURI, nil
}

func validateMenuItem(in models.MenuItemInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.Validation("name is required")
	case strings.TrimSpace(in.Category) == "":
		return apperr.Validation("category is required")
	case in.Price < 0:
		return apperr.Validation("price must not be negative")
	}
	return nil
}
