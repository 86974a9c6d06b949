package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"restaurant-admin-api/config"
	"restaurant-admin-api/extdb"
	"restaurant-admin-api/extdb/extdbtest"
	"restaurant-admin-api/models"
	"restaurant-admin-api/services"
	"restaurant-admin-api/store"
)

const extURI = "mongodb://menus.example.net/maharajafeast"

type fakeQR struct{ err error }

func (f fakeQR) Generate(url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64,qr-" + url, nil
}

type harness struct {
	b           *services.Backends
	primary     *store.Primary
	fallback    *store.Fallback
	restaurants *services.RestaurantService
	menu        *services.MenuService
	admins      *services.AdminService
}

func testTimeouts() config.TimeoutConfig {
	return config.TimeoutConfig{
		RestaurantRead:    time.Second,
		RestaurantWrite:   time.Second,
		CategoryExtract:   time.Second,
		ExternalItemRead:  time.Second,
		ExternalItemWrite: time.Second,
		PrimaryItem:       time.Second,
		CategoryRefresh:   time.Second,
	}
}

func newPrimary(t *testing.T) *store.Primary {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.NewPrimary(db)
}

// newHarness wires every tier. withPrimary=false leaves the primary tier disabled.
func newHarness(t *testing.T, withPrimary bool, qr fakeQR, dbs map[string]*extdbtest.MemoryDB) *harness {
	t.Helper()
	if dbs == nil {
		dbs = map[string]*extdbtest.MemoryDB{}
	}
	catalog := extdb.NewCatalog(nil)
	pool := extdb.NewPool(extdb.PoolConfig{}, extdbtest.Dialer(dbs))
	pool.OnEvict(func(c extdb.Conn) { catalog.Forget(c) })
	t.Cleanup(func() { _ = pool.Close(context.Background()) })

	h := &harness{fallback: store.NewFallback()}
	h.b = &services.Backends{
		Pool:     pool,
		Catalog:  catalog,
		Fallback: h.fallback,
		Timeouts: testTimeouts(),
	}
	if withPrimary {
		h.primary = newPrimary(t)
		h.b.Primary = h.primary
	}
	sync := services.NewCategorySync(h.b)
	h.restaurants = services.NewRestaurantService(h.b, qr, sync)
	h.menu = services.NewMenuService(h.b, h.restaurants, sync)
	h.admins = services.NewAdminService(h.b)
	return h
}

func validInput(name string) models.RestaurantInput {
	return models.RestaurantInput{
		Name:        name,
		Description: "North Indian kitchen",
		Address:     "1 Curry Lane",
		Phone:       "+1 555 0100",
		Email:       "hello@example.com",
		Image:       "https://img.example.com/r.png",
	}
}

func seedPrimaryRestaurant(t *testing.T, h *harness, r models.Restaurant) models.Restaurant {
	t.Helper()
	if r.Name == "" {
		r.Name = "Maharaja Feast"
	}
	r.Description, r.Address, r.Phone, r.Email, r.Image = "d", "a", "p", "e@x.y", "i"
	require.NoError(t, h.primary.CreateRestaurant(context.Background(), &r))
	return r
}

var errBoom = errors.New("boom")
