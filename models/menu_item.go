package models

import "time"

type MenuItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	RestaurantID string    `json:"restaurant_id" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	Price        float64   `json:"price" gorm:"not null"`
	Category     string    `json:"category" gorm:"index"`
	IsVeg        bool      `json:"is_veg"`
	Image        string    `json:"image"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Set only for items read from or written to an external database.
	OriginalCollection string                 `json:"original_collection,omitempty" gorm:"-"`
	OriginalData       map[string]interface{} `json:"original_data,omitempty" gorm:"-"`
	// PreviousID is the identifier the item had before a category move re-inserted it.
	PreviousID string `json:"previous_id,omitempty" gorm:"-"`
}

// MenuItemInput is the canonical write shape for a new menu item.
type MenuItemInput struct {
	RestaurantID string
	Name         string
	Description  string
	Price        float64
	Category     string
	IsVeg        *bool
	Image        string
	IsAvailable  *bool
}

// MenuItemPatch holds the optional fields of a menu item update; nil means unchanged.
type MenuItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	IsVeg       *bool
	Image       *string
	IsAvailable *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p MenuItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Category == nil &&
		p.IsVeg == nil && p.Image == nil && p.IsAvailable == nil
}

// Apply merges the patch onto item and refreshes its update timestamp.
func (p MenuItemPatch) Apply(item *MenuItem, now time.Time) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.IsVeg != nil {
		item.IsVeg = *p.IsVeg
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.IsAvailable != nil {
		item.IsAvailable = *p.IsAvailable
	}
	item.UpdatedAt = now
}

// Fields returns the patch as a column map for partial updates.
func (p MenuItemPatch) Fields() map[string]interface{} {
	out := map[string]interface{}{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Price != nil {
		out["price"] = *p.Price
	}
	if p.Category != nil {
		out["category"] = *p.Category
	}
	if p.IsVeg != nil {
		out["is_veg"] = *p.IsVeg
	}
	if p.Image != nil {
		out["image"] = *p.Image
	}
	if p.IsAvailable != nil {
		out["is_available"] = *p.IsAvailable
	}
	return out
}

// BoolOr dereferences b, falling back to def when nil.
func BoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
