package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/models"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

type AdminService struct {
	b *Backends
}

func NewAdminService(b *Backends) *AdminService {
	return &AdminService{b: b}
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrAuthorization)

// Login finds the account by username or email in the primary store, then the
// built-in fallback account, and checks the password once an account is found.
// The hash comparison runs outside the tier deadlines.
func (s *AdminService) Login(ctx context.Context, login, password string) (models.AdminIdentity, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return models.AdminIdentity{}, apperr.Validation("username and password are required")
	}
	res, err := storeChain(s.b, s.b.Timeouts.RestaurantRead, func(ctx context.Context, st store.Store) (models.Admin, error) {
		return st.FindAdmin(ctx, login)
	}).Resolve(ctx, "admin login")
	if err != nil {
		if apperr.IsNotFound(err) {
			log.Warnf("🔒 Failed login for %q", login)
			return models.AdminIdentity{}, errInvalidCredentials
		}
		return models.AdminIdentity{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(res.Value.PasswordHash), []byte(password)) != nil {
		log.Warnf("🔒 Failed login for %q", login)
		return models.AdminIdentity{}, errInvalidCredentials
	}
	log.Infof("🔑 Admin %s logged in via %s tier", res.Value.Username, res.Tier)
	return res.Value.Identity(), nil
}

// RegisterInput is the sign-up payload for a new admin.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *AdminService) Register(ctx context.Context, in RegisterInput) (tiers.Result[models.Admin], error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case len(in.Username) < 3:
		return tiers.Result[models.Admin]{}, apperr.Validation("username must be at least 3 characters")
	case !strings.Contains(in.Email, "@"):
		return tiers.Result[models.Admin]{}, apperr.Validation("a valid email is required")
	case len(in.Password) < 6:
		return tiers.Result[models.Admin]{}, apperr.Validation("password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return tiers.Result[models.Admin]{}, fmt.Errorf("hash password: %w", err)
	}

	return s.writeChain(func(ctx context.Context, st store.Store) (models.Admin, error) {
		a := models.Admin{
			Username:      in.Username,
			Email:         in.Email,
			PasswordHash:  string(hash),
			Role:          models.RoleAdmin,
			AdminSettings: models.DefaultAdminSettings(),
		}
		if err := st.CreateAdmin(ctx, &a); err != nil {
			return models.Admin{}, err
		}
		return a, nil
	}).Resolve(ctx, "register admin")
}

// writeChain runs a write against primary then fallback, but stops at a
// conflict instead of creating a duplicate in the next tier.
func (s *AdminService) writeChain(fn func(ctx context.Context, st store.Store) (models.Admin, error)) *tiers.Chain[models.Admin] {
	return storeChain(s.b, s.b.Timeouts.RestaurantWrite, func(ctx context.Context, st store.Store) (models.Admin, error) {
		a, err := fn(ctx, st)
		if errors.Is(err, apperr.ErrConflict) {
			return models.Admin{}, tiers.Halt(err)
		}
		return a, err
	})
}

func (s *AdminService) Profile(ctx context.Context, id string) (tiers.Result[models.Admin], error) {
	return storeChain(s.b, s.b.Timeouts.RestaurantRead, func(ctx context.Context, st store.Store) (models.Admin, error) {
		return st.GetAdmin(ctx, id)
	}).Resolve(ctx, "get admin profile")
}

// ProfileInput changes account details. A new password requires the current one.
type ProfileInput struct {
	Username        string
	Email           string
	CurrentPassword string
	NewPassword     string
}

func (s *AdminService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (tiers.Result[models.Admin], error) {
	var newHash []byte
	if in.NewPassword != "" {
		if len(in.NewPassword) < 6 {
			return tiers.Result[models.Admin]{}, apperr.Validation("password must be at least 6 characters")
		}
		if in.CurrentPassword == "" {
			return tiers.Result[models.Admin]{}, apperr.Validation("current password is required to set a new one")
		}
		var err error
		if newHash, err = bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost); err != nil {
			return tiers.Result[models.Admin]{}, fmt.Errorf("hash password: %w", err)
		}
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return tiers.Result[models.Admin]{}, apperr.Validation("a valid email is required")
	}

	if newHash != nil {
		current, err := s.Profile(ctx, id)
		if err != nil {
			return current, err
		}
		if bcrypt.CompareHashAndPassword([]byte(current.Value.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return tiers.Result[models.Admin]{}, apperr.Validation("current password is incorrect")
		}
	}

	return s.modify(ctx, id, "update admin profile", func(a *models.Admin) error {
		if newHash != nil {
			a.PasswordHash = string(newHash)
		}
		if u := strings.TrimSpace(in.Username); u != "" {
			a.Username = u
		}
		if e := strings.TrimSpace(in.Email); e != "" {
			a.Email = e
		}
		return nil
	})
}

func (s *AdminService) Settings(ctx context.Context, id string) (tiers.Result[models.AdminSettings], error) {
	res, err := s.Profile(ctx, id)
	return tiers.Result[models.AdminSettings]{Value: res.Value.AdminSettings, Tier: res.Tier}, err
}

func (s *AdminService) UpdateSettings(ctx context.Context, id string, patch models.AdminSettingsPatch) (tiers.Result[models.AdminSettings], error) {
	res, err := s.modify(ctx, id, "update admin settings", func(a *models.Admin) error {
		patch.Apply(&a.AdminSettings)
		return nil
	})
	return tiers.Result[models.AdminSettings]{Value: res.Value.AdminSettings, Tier: res.Tier}, err
}

// modify loads the admin from the first tier holding it, applies fn and saves.
// An error from fn ends the chain.
func (s *AdminService) modify(ctx context.Context, id, op string, fn func(a *models.Admin) error) (tiers.Result[models.Admin], error) {
	return storeChain(s.b, s.b.Timeouts.RestaurantWrite, func(ctx context.Context, st store.Store) (models.Admin, error) {
		a, err := st.GetAdmin(ctx, id)
		if err != nil {
			return a, err
		}
		if err := fn(&a); err != nil {
			return models.Admin{}, tiers.Halt(err)
		}
		if err := st.SaveAdmin(ctx, &a); err != nil {
			return models.Admin{}, err
		}
		return a, nil
	}).Resolve(ctx, op)
}

// ── Export ───────────────────────────────────────────────

// ExportSummary counts the exported records.
type ExportSummary struct {
	TotalRestaurants int `json:"total_restaurants"`
	TotalMenuItems   int `json:"total_menu_items"`
	TotalAdmins      int `json:"total_admins"`
}

type ExportData struct {
	Restaurants []models.Restaurant `json:"restaurants"`
	MenuItems   []models.MenuItem   `json:"menu_items"`
	Admins      []models.Admin      `json:"admins"`
	Summary     ExportSummary       `json:"summary"`
}

// Export is a point-in-time dump of the managed data. Password hashes are never included.
type Export struct {
	Timestamp time.Time  `json:"timestamp"`
	Version   string     `json:"version"`
	Tier      tiers.Tier `json:"tier"`
	Data      ExportData `json:"data"`
}

// Export dumps restaurants, their stored menu items and admins from the first
// tier able to answer. External databases are not included.
func (s *AdminService) Export(ctx context.Context) (Export, error) {
	res, err := storeChain(s.b, s.b.Timeouts.CategoryRefresh, func(ctx context.Context, st store.Store) (ExportData, error) {
		restaurants, err := st.ListRestaurants(ctx)
		if err != nil {
			return ExportData{}, err
		}
		items := []models.MenuItem{}
		for _, r := range restaurants {
			list, err := st.ListMenuItems(ctx, r.ID, "")
			if err != nil {
				return ExportData{}, err
			}
			items = append(items, list...)
		}
		admins, err := st.ListAdmins(ctx)
		if err != nil {
			return ExportData{}, err
		}
		return ExportData{
			Restaurants: restaurants,
			MenuItems:   items,
			Admins:      admins,
			Summary: ExportSummary{
				TotalRestaurants: len(restaurants),
				TotalMenuItems:   len(items),
				TotalAdmins:      len(admins),
			},
		}, nil
	}).Resolve(ctx, "export database")
	if err != nil {
		return Export{}, err
	}
	return Export{Timestamp: time.Now().UTC(), Version: "1.0", Tier: res.Tier, Data: res.Value}, nil
}
