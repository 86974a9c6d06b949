package models

import (
	"time"
)

// AdminRole defines allowed roles for dashboard accounts
type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "superadmin"
)

type Admin struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         AdminRole `json:"role" gorm:"not null;default:'admin'"`
	AdminSettings
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminSettings are the dashboard preferences stored with each admin.
type AdminSettings struct {
	Theme              string `json:"theme" gorm:"default:'blue'"`
	DarkMode           bool   `json:"dark_mode"`
	CompactMode        bool   `json:"compact_mode"`
	EmailNotifications bool   `json:"email_notifications"`
	SessionTimeout     int    `json:"session_timeout" gorm:"default:30"`
	TwoFactorEnabled   bool   `json:"two_factor_enabled"`
	LoginAlerts        bool   `json:"login_alerts"`
	AutoBackup         bool   `json:"auto_backup"`
	MaxRestaurants     int    `json:"max_restaurants" gorm:"default:10"`
}

// DefaultAdminSettings are applied to new accounts.
func DefaultAdminSettings() AdminSettings {
	return AdminSettings{
		Theme:              "blue",
		EmailNotifications: true,
		SessionTimeout:     30,
		LoginAlerts:        true,
		AutoBackup:         true,
		MaxRestaurants:     10,
	}
}

// AdminSettingsPatch holds optional settings changes; nil means unchanged.
type AdminSettingsPatch struct {
	Theme              *string `json:"theme"`
	DarkMode           *bool   `json:"dark_mode"`
	CompactMode        *bool   `json:"compact_mode"`
	EmailNotifications *bool   `json:"email_notifications"`
	SessionTimeout     *int    `json:"session_timeout"`
	TwoFactorEnabled   *bool   `json:"two_factor_enabled"`
	LoginAlerts        *bool   `json:"login_alerts"`
	AutoBackup         *bool   `json:"auto_backup"`
	MaxRestaurants     *int    `json:"max_restaurants"`
}

// Apply merges the patch onto s. Empty themes and zero numbers are ignored.
func (p AdminSettingsPatch) Apply(s *AdminSettings) {
	if p.Theme != nil && *p.Theme != "" {
		s.Theme = *p.Theme
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.CompactMode != nil {
		s.CompactMode = *p.CompactMode
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.SessionTimeout != nil && *p.SessionTimeout > 0 {
		s.SessionTimeout = *p.SessionTimeout
	}
	if p.TwoFactorEnabled != nil {
		s.TwoFactorEnabled = *p.TwoFactorEnabled
	}
	if p.LoginAlerts != nil {
		s.LoginAlerts = *p.LoginAlerts
	}
	if p.AutoBackup != nil {
		s.AutoBackup = *p.AutoBackup
	}
	if p.MaxRestaurants != nil && *p.MaxRestaurants > 0 {
		s.MaxRestaurants = *p.MaxRestaurants
	}
}

// AdminIdentity is the verified caller attached to privileged requests.
type AdminIdentity struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Role     AdminRole `json:"role"`
}

// Identity returns the public view of the admin.
func (a *Admin) Identity() AdminIdentity {
	return AdminIdentity{ID: a.ID, Username: a.Username, Email: a.Email, Role: a.Role}
}
