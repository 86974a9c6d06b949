package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/models"
)

// Fallback is the in-memory tier. It is seeded with fixture data, mutated in
// place and lost on restart. Only lookups of unknown ids fail.
type Fallback struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
	items       []models.MenuItem
	admins      []models.Admin
	now         func() time.Time
}

// NewFallback returns a fallback store holding the fixture restaurants, their
// menu items and the built-in admin account.
func NewFallback() *Fallback {
	now := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(FallbackAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("❌ Failed to hash fallback admin password")
	}
	return &Fallback{
		restaurants: fixtureRestaurants(now),
		items:       fixtureMenuItems(now),
		admins:      []models.Admin{fallbackAdmin(string(hash), now)},
		now:         time.Now,
	}
}

func newFallbackID() string { return primitive.NewObjectID().Hex() }

// ── Restaurants ──────────────────────────────────────────

func (f *Fallback) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Restaurant, len(f.restaurants))
	for i, r := range f.restaurants {
		out[i] = copyRestaurant(r)
	}
	return out, nil
}

func (f *Fallback) GetRestaurant(ctx context.Context, id string) (models.Restaurant, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i := f.restaurantIndex(id); i >= 0 {
		return copyRestaurant(f.restaurants[i]), nil
	}
	return models.Restaurant{}, fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
}

func (f *Fallback) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = newFallbackID()
	}
	now := f.now()
	r.CreatedAt, r.UpdatedAt = now, now
	f.restaurants = append(f.restaurants, copyRestaurant(*r))
	return nil
}

func (f *Fallback) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.restaurantIndex(r.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, r.ID)
	}
	r.CreatedAt = f.restaurants[i].CreatedAt
	r.UpdatedAt = f.now()
	f.restaurants[i] = copyRestaurant(*r)
	return nil
}

func (f *Fallback) SetCategories(ctx context.Context, id string, categories []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.restaurantIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
	}
	f.restaurants[i].CustomTypes = datatypes.JSONSlice[string](append([]string(nil), categories...))
	f.restaurants[i].UpdatedAt = f.now()
	return nil
}

func (f *Fallback) DeleteRestaurant(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.restaurantIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
	}
	f.restaurants = append(f.restaurants[:i:i], f.restaurants[i+1:]...)
	kept := f.items[:0:0]
	for _, it := range f.items {
		if it.RestaurantID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *Fallback) restaurantIndex(id string) int {
	for i := range f.restaurants {
		if f.restaurants[i].ID == id {
			return i
		}
	}
	return -1
}

// ── Menu items ───────────────────────────────────────────

func (f *Fallback) ListMenuItems(ctx context.Context, restaurantID, category string) ([]models.MenuItem, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	needle := strings.ToLower(category)
	out := []models.MenuItem{}
	for _, it := range f.items {
		if it.RestaurantID != restaurantID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(it.Category), needle) {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Fallback) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = newFallbackID()
	}
	now := f.now()
	item.CreatedAt, item.UpdatedAt = now, now
	f.items = append(f.items, *item)
	return nil
}

func (f *Fallback) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			patch.Apply(&f.items[i], f.now())
			return f.items[i], nil
		}
	}
	return models.MenuItem{}, fmt.Errorf("%w: %s", apperr.ErrItemNotFound, id)
}

func (f *Fallback) DeleteMenuItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", apperr.ErrItemNotFound, id)
}

// ── Admins ───────────────────────────────────────────────

func (f *Fallback) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Admin(nil), f.admins...), nil
}

func (f *Fallback) GetAdmin(ctx context.Context, id string) (models.Admin, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, a := range f.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Admin{}, fmt.Errorf("%w: %s", apperr.ErrAdminNotFound, id)
}

func (f *Fallback) FindAdmin(ctx context.Context, login string) (models.Admin, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, a := range f.admins {
		if a.Username == login || a.Email == login {
			return a, nil
		}
	}
	return models.Admin{}, fmt.Errorf("%w: %s", apperr.ErrAdminNotFound, login)
}

func (f *Fallback) CreateAdmin(ctx context.Context, a *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.admins {
		if existing.Username == a.Username || existing.Email == a.Email {
			return fmt.Errorf("%w: admin with that username or email", apperr.ErrConflict)
		}
	}
	if a.ID == "" {
		a.ID = newFallbackID()
	}
	now := f.now()
	a.CreatedAt, a.UpdatedAt = now, now
	f.admins = append(f.admins, *a)
	return nil
}

func (f *Fallback) SaveAdmin(ctx context.Context, a *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.admins {
		if f.admins[i].ID == a.ID {
			a.UpdatedAt = f.now()
			f.admins[i] = *a
			return nil
		}
	}
	return fmt.Errorf("%w: %s", apperr.ErrAdminNotFound, a.ID)
}

func copyRestaurant(r models.Restaurant) models.Restaurant {
	if r.CustomTypes != nil {
		r.CustomTypes = append(datatypes.JSONSlice[string](nil), r.CustomTypes...)
	}
	return r
}
