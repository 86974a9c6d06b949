package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// DefaultCategories is used when neither the caller nor an external database supplies any.
var DefaultCategories = []string{"Starters", "Main Course", "Desserts", "Beverages"}

type Restaurant struct {
	ID          string                      `json:"id" gorm:"primaryKey;size:64"`
	Name        string                      `json:"name" gorm:"not null"`
	Description string                      `json:"description" gorm:"not null"`
	Address     string                      `json:"address" gorm:"not null"`
	Phone       string                      `json:"phone" gorm:"not null"`
	Email       string                      `json:"email" gorm:"not null"`
	Image       string                      `json:"image" gorm:"not null"`
	Website     string                      `json:"website"`
	QRCode      string                      `json:"qr_code"`
	MongoURI    string                      `json:"mongo_uri"`
	CustomTypes datatypes.JSONSlice[string] `json:"custom_types"`
	IsActive    bool                        `json:"is_active"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// HasExternalDatabase reports whether menu data lives in a restaurant-supplied database.
func (r *Restaurant) HasExternalDatabase() bool {
	return r != nil && r.MongoURI != ""
}

// Categories returns a copy of the cached category labels.
func (r *Restaurant) Categories() []string {
	out := make([]string, len(r.CustomTypes))
	copy(out, r.CustomTypes)
	return out
}

// RestaurantInput carries the profile fields accepted on create and update.
type RestaurantInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
	Email       string
	Image       string
	Website     string
	QRCode      string
	MongoURI    string
	CustomTypes []string
	IsActive    *bool
}

// Apply copies the input onto r. Empty strings overwrite, matching a full profile update.
func (in RestaurantInput) Apply(r *Restaurant) {
	r.Name = in.Name
	r.Description = in.Description
	r.Address = in.Address
	r.Phone = in.Phone
	r.Email = in.Email
	r.Image = in.Image
	r.Website = in.Website
	r.QRCode = in.QRCode
	r.MongoURI = in.MongoURI
	if in.CustomTypes != nil {
		r.CustomTypes = datatypes.JSONSlice[string](in.CustomTypes)
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
}

// Merge copies the non-empty input fields onto r, leaving the rest untouched.
func (in RestaurantInput) Merge(r *Restaurant) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.Name, in.Name)
	set(&r.Description, in.Description)
	set(&r.Address, in.Address)
	set(&r.Phone, in.Phone)
	set(&r.Email, in.Email)
	set(&r.Image, in.Image)
	set(&r.Website, in.Website)
	set(&r.QRCode, in.QRCode)
	set(&r.MongoURI, in.MongoURI)
	if in.CustomTypes != nil {
		r.CustomTypes = datatypes.JSONSlice[string](in.CustomTypes)
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
}

// Validate reports the first missing required profile field.
func (in RestaurantInput) Validate() error {
	required := []struct{ name, value string }{
		{"name", in.Name},
		{"description", in.Description},
		{"address", in.Address},
		{"phone", in.Phone},
		{"email", in.Email},
		{"image", in.Image},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}
