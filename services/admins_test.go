package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/models"
	"restaurant-admin-api/services"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

func TestAdmins_LoginWithFallbackAccount(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	for _, login := range []string{store.FallbackAdminUsername, store.FallbackAdminEmail} {
		id, err := h.admins.Login(context.Background(), login, store.FallbackAdminPassword)
		require.NoError(t, err, login)
		assert.Equal(t, store.FallbackAdminID, id.ID)
		assert.Equal(t, models.RoleAdmin, id.Role)
	}
}

func TestAdmins_LoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	_, err := h.admins.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	_, err = h.admins.Login(context.Background(), "nobody", "password")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))

	_, err = h.admins.Login(context.Background(), "", "")
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestAdmins_RegisterThenLogin(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	res, err := h.admins.Register(context.Background(), services.RegisterInput{
		Username: "priya", Email: "priya@example.com", Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, tiers.Primary, res.Tier)
	assert.Equal(t, models.DefaultAdminSettings(), res.Value.AdminSettings)
	assert.NotEqual(t, "s3cret!", res.Value.PasswordHash)

	id, err := h.admins.Login(context.Background(), "priya@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, res.Value.ID, id.ID)
}

func TestAdmins_LoginHashCheckOutsideReadBudget(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)
	hash, err := bcrypt.GenerateFromPassword([]byte("slow-hash"), 13)
	require.NoError(t, err)
	require.NoError(t, h.primary.CreateAdmin(context.Background(), &models.Admin{
		Username:      "meera",
		Email:         "meera@example.com",
		PasswordHash:  string(hash),
		Role:          models.RoleAdmin,
		AdminSettings: models.DefaultAdminSettings(),
	}))
	h.b.Timeouts.RestaurantRead = 100 * time.Millisecond

	id, err := h.admins.Login(context.Background(), "meera", "slow-hash")
	require.NoError(t, err)
	assert.Equal(t, "meera", id.Username)

	_, err = h.admins.Login(context.Background(), "meera", "wrong")
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
}

func TestAdmins_RegisterValidationAndConflict(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	for _, in := range []services.RegisterInput{
		{Username: "ab", Email: "a@b.c", Password: "secret"},
		{Username: "abc", Email: "nope", Password: "secret"},
		{Username: "abc", Email: "a@b.c", Password: "12345"},
	} {
		_, err := h.admins.Register(context.Background(), in)
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err), in.Username)
	}

	in := services.RegisterInput{Username: "priya", Email: "priya@example.com", Password: "secret"}
	_, err := h.admins.Register(context.Background(), in)
	require.NoError(t, err)
	_, err = h.admins.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))

	// the conflict must not leak a duplicate into the fallback tier
	_, err = h.fallback.FindAdmin(context.Background(), "priya")
	assert.ErrorIs(t, err, apperr.ErrAdminNotFound)
}

func TestAdmins_UpdateProfileChangesPassword(t *testing.T) {
	h := newHarness(t, false, fakeQR{}, nil)

	_, err := h.admins.UpdateProfile(context.Background(), store.FallbackAdminID, services.ProfileInput{
		CurrentPassword: "not-it", NewPassword: "brand-new",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	res, err := h.admins.UpdateProfile(context.Background(), store.FallbackAdminID, services.ProfileInput{
		Username:        "root",
		CurrentPassword: store.FallbackAdminPassword,
		NewPassword:     "brand-new",
	})
	require.NoError(t, err)
	assert.Equal(t, tiers.Fallback, res.Tier)
	assert.Equal(t, "root", res.Value.Username)
	assert.Equal(t, store.FallbackAdminEmail, res.Value.Email)

	_, err = h.admins.Login(context.Background(), "root", "brand-new")
	assert.NoError(t, err)
}

func TestAdmins_Settings(t *testing.T) {
	h := newHarness(t, true, fakeQR{}, nil)

	got, err := h.admins.Settings(context.Background(), store.FallbackAdminID)
	require.NoError(t, err)
	assert.Equal(t, "blue", got.Value.Theme)

	res, err := h.admins.UpdateSettings(context.Background(), store.FallbackAdminID, models.AdminSettingsPatch{
		Theme:          ptr("green"),
		DarkMode:       ptr(true),
		AutoBackup:     ptr(false),
		SessionTimeout: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "green", res.Value.Theme)
	assert.True(t, res.Value.DarkMode)
	assert.False(t, res.Value.AutoBackup)
	assert.Equal(t, 30, res.Value.SessionTimeout)

	_, err = h.admins.Settings(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestAdmins_Export(t *testing.T) {
	h := newHarness(t, false, fakeQR{}, nil)

	out, err := h.admins.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0", out.Version)
	assert.Equal(t, tiers.Fallback, out.Tier)
	assert.Equal(t, 2, out.Data.Summary.TotalRestaurants)
	assert.Equal(t, 3, out.Data.Summary.TotalMenuItems)
	assert.Equal(t, 1, out.Data.Summary.TotalAdmins)
	assert.False(t, out.Timestamp.IsZero())
}
