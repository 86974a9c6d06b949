package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/extdb"
	"restaurant-admin-api/models"
	"restaurant-admin-api/qrcode"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

type RestaurantService struct {
	b    *Backends
	qr   qrcode.Generator
	sync *CategorySync
}

func NewRestaurantService(b *Backends, qr qrcode.Generator, sync *CategorySync) *RestaurantService {
	return &RestaurantService{b: b, qr: qr, sync: sync}
}

func (s *RestaurantService) List(ctx context.Context) (tiers.Result[[]models.Restaurant], error) {
	return storeChain(s.b, s.b.Timeouts.RestaurantRead, func(ctx context.Context, st store.Store) ([]models.Restaurant, error) {
		return st.ListRestaurants(ctx)
	}).Resolve(ctx, "list restaurants")
}

func (s *RestaurantService) Get(ctx context.Context, id string) (tiers.Result[models.Restaurant], error) {
	return storeChain(s.b, s.b.Timeouts.RestaurantRead, func(ctx context.Context, st store.Store) (models.Restaurant, error) {
		return st.GetRestaurant(ctx, id)
	}).Resolve(ctx, "get restaurant")
}

// Create validates and stores a new restaurant. When a connection string is
// given, its categories replace the supplied ones; a website gets a QR code.
func (s *RestaurantService) Create(ctx context.Context, in models.RestaurantInput) (tiers.Result[models.Restaurant], error) {
	if err := in.Validate(); err != nil {
		return tiers.Result[models.Restaurant]{}, apperr.Validation(err.Error())
	}

	categories := in.CustomTypes
	if len(categories) == 0 {
		categories = models.DefaultCategories
	}
	if in.MongoURI != "" {
		log.Infof("🔍 Extracting categories from custom database for restaurant: %s", in.Name)
		if extracted, ok := s.b.extractCategories(ctx, in.MongoURI); ok {
			categories = extracted
			log.Infof("✅ Using extracted categories: %v", categories)
		}
	}

	var base models.Restaurant
	in.Apply(&base)
	base.CustomTypes = append(base.CustomTypes[:0:0], categories...)
	base.IsActive = models.BoolOr(in.IsActive, true)
	base.QRCode = s.qrFor(in.Website)

	return storeChain(s.b, s.b.Timeouts.RestaurantWrite, func(ctx context.Context, st store.Store) (models.Restaurant, error) {
		r := base
		if err := st.CreateRestaurant(ctx, &r); err != nil {
			return models.Restaurant{}, err
		}
		return r, nil
	}).Resolve(ctx, "create restaurant")
}

// Update merges the non-empty fields of in onto the stored restaurant.
func (s *RestaurantService) Update(ctx context.Context, id string, in models.RestaurantInput) (tiers.Result[models.Restaurant], error) {
	if in.MongoURI != "" {
		log.Infof("🔍 Extracting categories from custom database for restaurant update: %s", id)
		if extracted, ok := s.b.extractCategories(ctx, in.MongoURI); ok {
			in.CustomTypes = extracted
		}
	}
	if in.Website != "" {
		in.QRCode = s.qrFor(in.Website)
	}

	return storeChain(s.b, s.b.Timeouts.RestaurantWrite, func(ctx context.Context, st store.Store) (models.Restaurant, error) {
		r, err := st.GetRestaurant(ctx, id)
		if err != nil {
			return models.Restaurant{}, err
		}
		in.Merge(&r)
		if err := st.UpdateRestaurant(ctx, &r); err != nil {
			return models.Restaurant{}, err
		}
		return r, nil
	}).Resolve(ctx, "update restaurant")
}

// Delete removes the restaurant and its stored menu items, and closes any
// pooled connection to its external database.
func (s *RestaurantService) Delete(ctx context.Context, id string) (tiers.Result[models.Restaurant], error) {
	res, err := storeChain(s.b, s.b.Timeouts.RestaurantWrite, func(ctx context.Context, st store.Store) (models.Restaurant, error) {
		r, err := st.GetRestaurant(ctx, id)
		if err != nil {
			return models.Restaurant{}, err
		}
		if err := st.DeleteRestaurant(ctx, id); err != nil {
			return models.Restaurant{}, err
		}
		return r, nil
	}).Resolve(ctx, "delete restaurant")
	if err != nil {
		return res, err
	}
	if res.Value.MongoURI != "" && s.b.Pool != nil {
		s.b.Pool.Release(res.Value.MongoURI)
	}
	log.Infof("🗑️ Restaurant %s deleted from %s tier", id, res.Tier)
	return res, nil
}

// CategoryRefresh is the outcome of a forced category resync.
type CategoryRefresh struct {
	Restaurant  models.Restaurant        `json:"restaurant"`
	Categories  []string                 `json:"categories"`
	Changed     bool                     `json:"changed"`
	Collections []extdb.CollectionReport `json:"collections"`
}

// RefreshCategories re-derives and persists the categories of a restaurant's
// external database.
func (s *RestaurantService) RefreshCategories(ctx context.Context, id string) (tiers.Result[CategoryRefresh], error) {
	got, err := s.Get(ctx, id)
	if err != nil {
		return tiers.Result[CategoryRefresh]{}, err
	}
	r := got.Value
	if !r.HasExternalDatabase() {
		return tiers.Result[CategoryRefresh]{}, apperr.Validation("restaurant has no custom database configured")
	}

	res, err := externalStep(s.b, r.MongoURI, s.b.Timeouts.CategoryRefresh, func(ctx context.Context, db extdb.Database) (CategoryRefresh, error) {
		categories, changed, err := s.sync.Sync(ctx, r, db)
		if err != nil {
			return CategoryRefresh{}, err
		}
		reports, err := s.b.mapping().AnalyzeCollections(ctx, db)
		if err != nil {
			return CategoryRefresh{}, err
		}
		r.CustomTypes = append(r.CustomTypes[:0:0], categories...)
		return CategoryRefresh{Restaurant: r, Categories: categories, Changed: changed, Collections: reports}, nil
	}).Resolve(ctx, "refresh categories")
	if err != nil {
		return res, fmt.Errorf("refresh categories for %s: %w", id, err)
	}
	return res, nil
}

func (s *RestaurantService) qrFor(website string) string {
	if website == "" || s.qr == nil {
		return ""
	}
	code, err := s.qr.Generate(website)
	if err != nil {
		log.WithError(err).Warnf("⚠️ Failed to generate QR code for website: %s", website)
		return ""
	}
	log.Infof("✅ QR code generated for website: %s", website)
	return code
}
