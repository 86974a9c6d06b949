package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/models"
)

// OpenPrimary connects to the primary database. Postgres DSNs select the postgres
// driver; anything else is treated as a SQLite path.
func OpenPrimary(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dialector.Name(), err)
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Infof("✅ Primary database (%s) connected and migrated successfully", DialectName(conn))
	return conn, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Migrate creates or updates the primary schema.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Admin{},
		&models.Restaurant{},
		&models.MenuItem{},
	); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Primary is the managed database tier.
type Primary struct {
	db *gorm.DB
}

// NewPrimary wraps an open, migrated connection.
func NewPrimary(db *gorm.DB) *Primary {
	return &Primary{db: db}
}

// DB exposes the underlying connection, e.g. for health checks.
func (p *Primary) DB() *gorm.DB { return p.db }

// Ping verifies the database answers.
func (p *Primary) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ── Restaurants ──────────────────────────────────────────

func (p *Primary) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := p.db.WithContext(ctx).Order("created_at desc").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (p *Primary) GetRestaurant(ctx context.Context, id string) (models.Restaurant, error) {
	var r models.Restaurant
	err := p.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
	}
	return r, err
}

func (p *Primary) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return p.db.WithContext(ctx).Create(r).Error
}

func (p *Primary) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	r.UpdatedAt = time.Now()
	res := p.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", r.ID).
		Select("*").Omit("id", "created_at").
		Updates(r)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, r.ID)
	}
	return nil
}

func (p *Primary) SetCategories(ctx context.Context, id string, categories []string) error {
	res := p.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"custom_types": datatypes.JSONSlice[string](categories),
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
	}
	return nil
}

func (p *Primary) DeleteRestaurant(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Restaurant{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
		}
		return nil
	})
}

// ── Menu items ───────────────────────────────────────────

func (p *Primary) restaurantExists(ctx context.Context, id string) error {
	var n int64
	if err := p.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperr.ErrRestaurantNotFound, id)
	}
	return nil
}

// ListMenuItems fails with ErrRestaurantNotFound for restaurants the primary
// database does not know, so callers can try the next tier.
func (p *Primary) ListMenuItems(ctx context.Context, restaurantID, category string) ([]models.MenuItem, error) {
	if err := p.restaurantExists(ctx, restaurantID); err != nil {
		return nil, err
	}
	q := p.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if category != "" {
		expr, pattern := caseInsensitiveLike(p.db, "category", category)
		q = q.Where(expr, pattern)
	}
	items := []models.MenuItem{}
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Primary) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := p.restaurantExists(ctx, item.RestaurantID); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return p.db.WithContext(ctx).Create(item).Error
}

func (p *Primary) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	var item models.MenuItem
	err := p.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, fmt.Errorf("%w: %s", apperr.ErrItemNotFound, id)
	}
	if err != nil {
		return item, err
	}

	fields := patch.Fields()
	fields["updated_at"] = time.Now()
	if err := p.db.WithContext(ctx).Model(&item).Updates(fields).Error; err != nil {
		return item, err
	}
	patch.Apply(&item, fields["updated_at"].(time.Time))
	return item, nil
}

func (p *Primary) DeleteMenuItem(ctx context.Context, id string) error {
	res := p.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", apperr.ErrItemNotFound, id)
	}
	return nil
}

// ── Admins ───────────────────────────────────────────────

func (p *Primary) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := p.db.WithContext(ctx).Order("created_at").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (p *Primary) GetAdmin(ctx context.Context, id string) (models.Admin, error) {
	var a models.Admin
	err := p.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, fmt.Errorf("%w: %s", apperr.ErrAdminNotFound, id)
	}
	return a, err
}

func (p *Primary) FindAdmin(ctx context.Context, login string) (models.Admin, error) {
	var a models.Admin
	err := p.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, fmt.Errorf("%w: %s", apperr.ErrAdminNotFound, login)
	}
	return a, err
}

func (p *Primary) CreateAdmin(ctx context.Context, a *models.Admin) error {
	var n int64
	if err := p.db.WithContext(ctx).Model(&models.Admin{}).
		Where("username = ? OR email = ?", a.Username, a.Email).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: admin with that username or email", apperr.ErrConflict)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return p.db.WithContext(ctx).Create(a).Error
}

func (p *Primary) SaveAdmin(ctx context.Context, a *models.Admin) error {
	res := p.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", a.ID).
		Select("*").Omit("id", "created_at").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", apperr.ErrAdminNotFound, a.ID)
	}
	return nil
}
