package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/extdb/extdbtest"
	"restaurant-admin-api/models"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

func ptr[T any](v T) *T { return &v }

func categoriesOf(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Category
	}
	return out
}

func TestMenu_EmptyPrimaryServesFixtureItems(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	res, err := h.menu.List(context.Background(), store.FixtureRestaurantID, "")
	require.NoError(t, err)
	assert.Equal(t, tiers.Fallback, res.Tier)
	require.Len(t, res.Value, 3)
	assert.ElementsMatch(t, []string{"Main Course", "Starters", "Beverages"}, categoriesOf(res.Value))
}

func TestMenu_FallbackCategoryFilterIsSubstring(t *testing.T) {
	h := newHarness(t, false, fakeQR{}, nil)

	res, err := h.menu.List(context.Background(), store.FixtureRestaurantID, "main")
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Butter Chicken", res.Value[0].Name)
}

func TestMenu_ExternalListSyncsEmptyCategories(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters", bson.M{"name": "Vegetable Samosas", "price": 180.0}).
		AddCollection("maincourse", bson.M{"itemName": "Butter Chicken", "cost": 450, "veg": false})
	h := newHarness(t, true, fakeQR{}, map[string]*extdbtest.MemoryDB{extURI: ext})
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: extURI, CustomTypes: []string{}})

	res, err := h.menu.List(context.Background(), r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, tiers.External, res.Tier)
	require.Len(t, res.Value, 2)
	assert.Equal(t, "Butter Chicken", res.Value[0].Name)
	assert.Equal(t, 450.0, res.Value[0].Price)
	assert.Equal(t, "maincourse", res.Value[0].OriginalCollection)

	stored, err := h.primary.GetRestaurant(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Main Course", "Starters"}, stored.Categories())
}

// slowCategories delays category writes on the wrapped store.
type slowCategories struct {
	store.Store
	delay time.Duration
}

func (s slowCategories) SetCategories(ctx context.Context, id string, categories []string) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Store.SetCategories(ctx, id, categories)
}

func TestMenu_SlowCategoryWriteKeepsExternalResult(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters", bson.M{"name": "Vegetable Samosas", "price": 180.0})
	h := newHarness(t, true, fakeQR{}, map[string]*extdbtest.MemoryDB{extURI: ext})
	h.b.Primary = slowCategories{Store: h.primary, delay: 400 * time.Millisecond}
	h.b.Timeouts.ExternalItemRead = 200 * time.Millisecond
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: extURI})

	res, err := h.menu.List(context.Background(), r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, tiers.External, res.Tier)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Vegetable Samosas", res.Value[0].Name)

	// the sync still lands, on its own budget
	stored, err := h.primary.GetRestaurant(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Starters"}, stored.Categories())
}

func TestMenu_ExternalListFiltersByLabelOrCollection(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters", bson.M{"name": "Vegetable Samosas", "price": 180.0}).
		AddCollection("maincourse", bson.M{"name": "Butter Chicken", "price": 450.0})
	h := newHarness(t, true, fakeQR{}, map[string]*extdbtest.MemoryDB{extURI: ext})
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: extURI})

	for _, filter := range []string{"Main Course", "maincourse"} {
		res, err := h.menu.List(context.Background(), r.ID, filter)
		require.NoError(t, err, filter)
		require.Len(t, res.Value, 1, filter)
		assert.Equal(t, "Butter Chicken", res.Value[0].Name)
	}
}

func TestMenu_SlowExternalFallsBackToPrimary(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters", bson.M{"name": "Remote Samosa", "price": 1.0})
	ext.SetDelay(500 * time.Millisecond)
	h := newHarness(t, true, fakeQR{}, map[string]*extdbtest.MemoryDB{extURI: ext})
	h.b.Timeouts.ExternalItemRead = 50 * time.Millisecond
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: extURI})
	require.NoError(t, h.primary.CreateMenuItem(context.Background(), &models.MenuItem{
		RestaurantID: r.ID, Name: "Local Samosa", Price: 2, Category: "Starters", IsAvailable: true,
	}))

	start := time.Now()
	res, err := h.menu.List(context.Background(), r.ID, "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, tiers.Primary, res.Tier)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Local Samosa", res.Value[0].Name)
}

func TestMenu_UnreachableExternalFallsBackToPrimary(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: "mongodb://down.example.net/menu"})

	res, err := h.menu.List(context.Background(), r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, tiers.Primary, res.Tier)
	assert.Empty(t, res.Value)
}

func TestMenu_CreateExternal(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters").
		AddCollection("maincourse")
	h := newHarness(t, true, fakeQR{}, map[string]*extdbtest.MemoryDB{extURI: ext})
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: extURI})

	res, err := h.menu.Create(context.Background(), r.ID, models.MenuItemInput{
		Name: "Paneer Tikka", Price: 320, Category: "Main Course", IsVeg: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, tiers.External, res.Tier)
	assert.Equal(t, "maincourse", res.Value.OriginalCollection)
	assert.Len(t, ext.Docs("maincourse"), 1)
}

func TestMenu_CreatePrimaryDefaults(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)
	r := seedPrimaryRestaurant(t, h, models.Restaurant{})

	res, err := h.menu.Create(context.Background(), r.ID, models.MenuItemInput{
		Name: "Dal Makhani", Price: 280, Category: "Main Course",
	})
	require.NoError(t, err)
	assert.Equal(t, tiers.Primary, res.Tier)
	assert.True(t, res.Value.IsVeg)
	assert.True(t, res.Value.IsAvailable)
	assert.Equal(t, r.ID, res.Value.RestaurantID)
}

func TestMenu_CreateValidation(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	for name, in := range map[string]models.MenuItemInput{
		"no name":        {Price: 1, Category: "Starters"},
		"no category":    {Name: "x", Price: 1},
		"negative price": {Name: "x", Price: -1, Category: "Starters"},
	} {
		_, err := h.menu.Create(context.Background(), store.FixtureRestaurantID, in)
		require.Error(t, err, name)
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err), name)
	}
}

func TestMenu_CreateUnknownRestaurant(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	_, err := h.menu.Create(context.Background(), "missing", models.MenuItemInput{Name: "x", Category: "Starters"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrRestaurantNotFound)
}

func TestMenu_UpdateMovesExternalItemAcrossCategories(t *testing.T) {
	ext := extdbtest.NewMemoryDB("maharajafeast").
		AddCollection("starters", bson.M{"name": "Paneer Tikka", "price": 300.0}).
		AddCollection("maincourse")
	h := newHarness(t, true, fakeQR{}, map[string]*extdbtest.MemoryDB{extURI: ext})
	r := seedPrimaryRestaurant(t, h, models.Restaurant{MongoURI: extURI})

	listed, err := h.menu.List(context.Background(), r.ID, "Starters")
	require.NoError(t, err)
	require.Len(t, listed.Value, 1)
	oldID := listed.Value[0].ID

	res, err := h.menu.Update(context.Background(), oldID, r.ID, models.MenuItemPatch{
		Category: ptr("Main Course"),
		Price:    ptr(340.0),
	})
	require.NoError(t, err)
	assert.Equal(t, tiers.External, res.Tier)
	assert.Equal(t, oldID, res.Value.PreviousID)
	assert.NotEqual(t, oldID, res.Value.ID)
	assert.Empty(t, ext.Docs("starters"))
	require.Len(t, ext.Docs("maincourse"), 1)
	assert.Equal(t, 340.0, res.Value.Price)
}

func TestMenu_UpdateAndDeletePrimaryItem(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)
	r := seedPrimaryRestaurant(t, h, models.Restaurant{})
	created, err := h.menu.Create(context.Background(), r.ID, models.MenuItemInput{Name: "Naan", Price: 40, Category: "Bread"})
	require.NoError(t, err)

	res, err := h.menu.Update(context.Background(), created.Value.ID, "", models.MenuItemPatch{IsAvailable: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, tiers.Primary, res.Tier)
	assert.False(t, res.Value.IsAvailable)
	assert.Equal(t, "Naan", res.Value.Name)

	del, err := h.menu.Delete(context.Background(), created.Value.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, tiers.Primary, del.Tier)

	_, err = h.menu.Delete(context.Background(), created.Value.ID, r.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestMenu_UpdateRejectsEmptyPatch(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	_, err := h.menu.Update(context.Background(), "any", "", models.MenuItemPatch{})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	_, err = h.menu.Update(context.Background(), "any", "", models.MenuItemPatch{Price: ptr(-5.0)})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestMenu_UpdateFixtureItemInFallback(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	res, err := h.menu.Update(context.Background(), "67870c1a2b4d5e8f9a1b2c7b", store.FixtureRestaurantID, models.MenuItemPatch{Price: ptr(150.0)})
	require.NoError(t, err)
	assert.Equal(t, tiers.Fallback, res.Tier)
	assert.Equal(t, 150.0, res.Value.Price)
}
