package extdb

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant-admin-api/models"
)

// ToCanonical normalizes a raw document from collection into a menu item.
func (m *Mapping) ToCanonical(doc bson.M, collection string) models.MenuItem {
	item := models.MenuItem{
		ID:                 IDString(doc["_id"]),
		RestaurantID:       IDString(doc["restaurantId"]),
		Name:               firstString(doc, m.Fields.Name),
		Description:        firstString(doc, m.Fields.Description),
		Price:              firstNumber(doc, m.Fields.Price),
		IsVeg:              firstBool(doc, m.Fields.IsVeg, true),
		Image:              firstString(doc, m.Fields.Image),
		IsAvailable:        firstBool(doc, m.Fields.IsAvailable, true),
		CreatedAt:          timeOf(doc["createdAt"]),
		UpdatedAt:          timeOf(doc["updatedAt"]),
		OriginalCollection: collection,
		OriginalData:       map[string]interface{}(doc),
	}
	if item.Name == "" {
		item.Name = "Unknown Item"
	}
	if item.RestaurantID == "" {
		item.RestaurantID = DefaultRestaurantRef
	}
	item.Category = m.categoryOf(doc, collection)
	return item
}

// categoryOf keeps the document's own category when it names a known collection,
// otherwise labels the item by the collection it was read from.
func (m *Mapping) categoryOf(doc bson.M, collection string) string {
	if own := firstString(doc, m.Fields.Category); own != "" && m.IsKnownCollection(own) {
		return own
	}
	return m.Label(collection)
}

// TargetCollection picks where an item of category should be stored.
// Unknown collections fall back to the first available one, so an item may land
// under a different category than requested.
func (m *Mapping) TargetCollection(category string, collections []string) string {
	target := m.CollectionFor(category)
	if target == "" {
		target = fallbackCollection
	}
	for _, c := range collections {
		if c == target {
			return target
		}
	}
	if len(collections) > 0 {
		return collections[0]
	}
	return fallbackCollection
}

// DisplayCategory turns a label or collection name into its display label.
func (m *Mapping) DisplayCategory(category string) string {
	if _, ok := m.inverse[category]; ok {
		return category
	}
	if label, ok := m.Categories[strings.ToLower(category)]; ok {
		return label
	}
	return category
}

// FromCanonical builds the external document for a new item and the collection it belongs in.
func (m *Mapping) FromCanonical(in models.MenuItemInput, collections []string, now time.Time) (string, bson.M) {
	doc := bson.M{
		"name":         in.Name,
		"description":  in.Description,
		"price":        in.Price,
		"category":     m.DisplayCategory(in.Category),
		"isVeg":        models.BoolOr(in.IsVeg, true),
		"image":        in.Image,
		"restaurantId": RestaurantRef(in.RestaurantID),
		"isAvailable":  models.BoolOr(in.IsAvailable, true),
		"createdAt":    now,
		"updatedAt":    now,
		"__v":          0,
	}
	return m.TargetCollection(in.Category, collections), doc
}

// PatchDocument renders a canonical patch as a $set body using the canonical field names.
func (m *Mapping) PatchDocument(p models.MenuItemPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Category != nil {
		set["category"] = m.DisplayCategory(*p.Category)
	}
	if p.IsVeg != nil {
		set["isVeg"] = *p.IsVeg
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.IsAvailable != nil {
		set["isAvailable"] = *p.IsAvailable
	}
	return set
}

// RestaurantRef returns the ObjectID owning external items for restaurantID.
// Restaurants whose id is not an ObjectID share the fixed default reference.
func RestaurantRef(restaurantID string) primitive.ObjectID {
	if oid, err := primitive.ObjectIDFromHex(restaurantID); err == nil {
		return oid
	}
	oid, _ := primitive.ObjectIDFromHex(DefaultRestaurantRef)
	return oid
}

func (m *Mapping) looksLikeMenuItem(doc bson.M) bool {
	return firstString(doc, m.Fields.Name) != "" && firstNumber(doc, m.Fields.Price) != 0
}

// firstString returns the first non-empty string among keys.
func firstString(doc bson.M, keys []string) string {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// firstNumber returns the first non-zero numeric value among keys, or 0.
func firstNumber(doc bson.M, keys []string) float64 {
	for _, k := range keys {
		if f, ok := toFloat(doc[k]); ok && f != 0 {
			return f
		}
	}
	return 0
}

// firstBool returns the first boolean present among keys, or def.
func firstBool(doc bson.M, keys []string, def bool) bool {
	for _, k := range keys {
		switch v := doc[k].(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	}
	return def
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func timeOf(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
