package services

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"restaurant-admin-api/extdb"
	"restaurant-admin-api/models"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

// CategorySync keeps a restaurant's cached category list in line with the
// collections of its external database.
type CategorySync struct {
	b *Backends
}

func NewCategorySync(b *Backends) *CategorySync {
	return &CategorySync{b: b}
}

// Sync derives categories from db and persists them when they differ from the
// cached list, ignoring order, or when the cache is empty. Concurrent syncs for
// the same restaurant are last-write-wins.
func (s *CategorySync) Sync(ctx context.Context, r models.Restaurant, db extdb.Database) ([]string, bool, error) {
	derived, err := s.b.mapping().DeriveCategories(ctx, db)
	if err != nil {
		return nil, false, err
	}
	cached := r.Categories()
	if len(cached) > 0 && sameCategories(cached, derived) {
		return derived, false, nil
	}
	log.Infof("🔄 Updating restaurant %s categories: %v → %v", r.ID, cached, derived)
	if err := s.Persist(ctx, r.ID, derived); err != nil {
		return derived, false, err
	}
	return derived, true, nil
}

// Persist stores categories on the restaurant record in the first tier that holds it.
func (s *CategorySync) Persist(ctx context.Context, restaurantID string, categories []string) error {
	_, err := storeChain(s.b, s.b.Timeouts.RestaurantWrite, func(ctx context.Context, st store.Store) (struct{}, error) {
		return struct{}{}, st.SetCategories(ctx, restaurantID, categories)
	}).Resolve(ctx, "save categories")
	return err
}

// sameCategories compares two label lists as sets.
func sameCategories(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// extractCategories reads the category list of an external database within
// the extraction budget. Failures are logged and reported as ok=false.
func (b *Backends) extractCategories(ctx context.Context, uri string) ([]string, bool) {
	res, err := externalStep(b, uri, b.Timeouts.CategoryExtract, func(ctx context.Context, db extdb.Database) ([]string, error) {
		return b.mapping().DeriveCategories(ctx, db)
	}).Resolve(ctx, "extract categories")
	if err != nil {
		log.WithError(err).Warn("⚠️ Failed to extract categories from custom database, using provided/default categories")
		return nil, false
	}
	if res.Tier != tiers.External || len(res.Value) == 0 {
		return nil, false
	}
	return res.Value, true
}
