package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"

	"restaurant-admin-api/config"
	"restaurant-admin-api/extdb"
	"restaurant-admin-api/extdb/extdbtest"
	"restaurant-admin-api/handlers"
	"restaurant-admin-api/middleware"
	"restaurant-admin-api/services"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

const extURI = "mongodb://menus.example.net/maharajafeast"

type stubQR struct{}

func (stubQR) Generate(url string) (string, error) { return "data:image/png;base64,stub", nil }

type api struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func newAPI(t *testing.T, ext *extdbtest.MemoryDB) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	dbs := map[string]*extdbtest.MemoryDB{}
	if ext != nil {
		dbs[extURI] = ext
	}
	var timeouts config.TimeoutConfig
	timeouts.RestaurantRead, timeouts.RestaurantWrite = time.Second, time.Second
	timeouts.CategoryExtract, timeouts.CategoryRefresh = time.Second, time.Second
	timeouts.ExternalItemRead, timeouts.ExternalItemWrite, timeouts.PrimaryItem = time.Second, time.Second, time.Second

	b := &services.Backends{
		Pool:     extdb.NewPool(extdb.PoolConfig{}, extdbtest.Dialer(dbs)),
		Catalog:  extdb.NewCatalog(nil),
		Primary:  store.NewPrimary(db),
		Fallback: store.NewFallback(),
		Timeouts: timeouts,
	}
	sync := services.NewCategorySync(b)
	restaurants := services.NewRestaurantService(b, stubQR{}, sync)
	tokens := middleware.NewTokens("test-secret", time.Hour)

	r := gin.New()
	SetupRoutes(r, Handlers{
		Auth:        handlers.NewAuthHandler(services.NewAdminService(b), tokens),
		Restaurants: handlers.NewRestaurantHandler(restaurants),
		Menu:        handlers.NewMenuHandler(services.NewMenuService(b, restaurants, sync)),
		Health:      handlers.NewHealthHandler(b, "test"),
	}, tokens)

	a := &api{t: t, r: r}
	w := a.do(http.MethodPost, "/api/admin/login", gin.H{"username": "admin", "password": "password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.token = decode(t, w)["token"].(string)
	return a
}

func (a *api) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLoginFailures(t *testing.T) {
	a := newAPI(t, nil)
	a.token = ""

	w := a.do(http.MethodPost, "/api/admin/login", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode(t, w)["error"], "invalid credentials")

	w = a.do(http.MethodPost, "/api/admin/login", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newAPI(t, nil)
	a.token = ""

	w := a.do(http.MethodGet, "/api/admin/restaurants", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFixtureMenuFromFallbackTier(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(http.MethodGet, "/api/admin/restaurants/"+store.FixtureRestaurantID+"/menu-items", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(tiers.Fallback), w.Header().Get(tiers.HeaderName))
	body := decode(t, w)
	assert.Equal(t, "fallback", body["tier"])
	assert.EqualValues(t, 3, body["count"])

	w = a.do(http.MethodGet, "/api/admin/restaurants/"+store.FixtureRestaurantID+"/menu-items/category/bev", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
}

func TestRestaurantLifecycle(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(http.MethodPost, "/api/admin/restaurants", gin.H{"name": "Spice Route"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "description is required", decode(t, w)["error"])

	w = a.do(http.MethodPost, "/api/admin/restaurants", gin.H{
		"name":         "Spice Route",
		"description":  "Coastal curries",
		"address":      "9 Harbour Rd",
		"phone":        "555-0101",
		"email":        "hi@spiceroute.example.com",
		"image":        "https://img.example.com/s.png",
		"website":      "https://spiceroute.example.com",
		"custom_types": "Starters, Curries",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "primary", w.Header().Get(tiers.HeaderName))
	restaurant := decode(t, w)["restaurant"].(map[string]interface{})
	id := restaurant["id"].(string)
	assert.Equal(t, []interface{}{"Starters", "Curries"}, restaurant["custom_types"])
	assert.Equal(t, "data:image/png;base64,stub", restaurant["qr_code"])

	w = a.do(http.MethodPut, "/api/admin/restaurants/"+id, gin.H{"phone": "555-0199"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)["restaurant"].(map[string]interface{})
	assert.Equal(t, "555-0199", updated["phone"])
	assert.Equal(t, "Spice Route", updated["name"])

	w = a.do(http.MethodPost, "/api/admin/restaurants/"+id+"/menu-items", gin.H{
		"name": "Fish Curry", "price": 420, "category": "Curries",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode(t, w)["menu_item"].(map[string]interface{})
	itemID := item["id"].(string)
	assert.Equal(t, true, item["is_available"])

	w = a.do(http.MethodPut, "/api/admin/menu-items/"+itemID, gin.H{"restaurant_id": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPut, "/api/admin/menu-items/"+itemID, gin.H{"restaurant_id": id, "price": 450})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 450, decode(t, w)["menu_item"].(map[string]interface{})["price"])

	w = a.do(http.MethodDelete, "/api/admin/restaurants/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/admin/restaurants/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodDelete, "/api/admin/menu-items/"+itemID+"?restaurant_id=", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExternalMenuAndRefresh(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters", bson.M{"name": "Vegetable Samosas", "price": 180.0}).
		AddCollection("maincourse", bson.M{"name": "Butter Chicken", "price": 450.0})
	a := newAPI(t, ext)

	w := a.do(http.MethodPost, "/api/admin/restaurants", gin.H{
		"name": "Maharaja Feast", "description": "d", "address": "a",
		"phone": "p", "email": "e@x.y", "image": "i", "mongo_uri": extURI,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	restaurant := decode(t, w)["restaurant"].(map[string]interface{})
	id := restaurant["id"].(string)
	assert.Equal(t, []interface{}{"Main Course", "Starters"}, restaurant["custom_types"])

	w = a.do(http.MethodGet, "/api/admin/restaurants/"+id+"/menu-items?category=Starters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "external", w.Header().Get(tiers.HeaderName))
	assert.EqualValues(t, 1, decode(t, w)["count"])

	ext.AddCollection("desserts", bson.M{"name": "Kulfi", "price": 110.0})
	w = a.do(http.MethodPost, "/api/admin/restaurants/"+id+"/refresh-categories", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, []interface{}{"Desserts", "Main Course", "Starters"}, body["categories"])

	w = a.do(http.MethodPost, "/api/admin/restaurants/"+store.FixtureRestaurantID+"/refresh-categories", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileSettingsAndExport(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(http.MethodGet, "/api/admin/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["admin"].(map[string]interface{})["username"])
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodPut, "/api/admin/settings", gin.H{"theme": "purple", "dark_mode": true})
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(http.MethodGet, "/api/admin/settings", nil)
	settings := decode(t, w)["settings"].(map[string]interface{})
	assert.Equal(t, "purple", settings["theme"])
	assert.Equal(t, true, settings["dark_mode"])

	w = a.do(http.MethodGet, "/api/admin/export-database", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "restaurant-admin-export-")
	body := decode(t, w)
	assert.Equal(t, "1.0", body["version"])
	assert.Contains(t, body, "data")
}

func TestHealth(t *testing.T) {
	a := newAPI(t, nil)

	w := a.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["tiers"].(map[string]interface{})["primary"])
}
