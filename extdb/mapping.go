package extdb

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDatabaseName is used when a connection string names no database.
	DefaultDatabaseName = "maharajafeast"
	// DefaultRestaurantRef owns items written to external databases that carry no restaurant scoping.
	DefaultRestaurantRef = "6874cff2a880250859286de6"
	// fallbackCollection receives new items when the external database has no category collections.
	fallbackCollection = "menuitems"
)

// FieldMapping lists, per canonical field, the raw document keys tried in order.
type FieldMapping struct {
	Name        []string `yaml:"name"`
	Description []string `yaml:"description"`
	Price       []string `yaml:"price"`
	IsVeg       []string `yaml:"is_veg"`
	Image       []string `yaml:"image"`
	IsAvailable []string `yaml:"is_available"`
	Category    []string `yaml:"category"`
}

// Mapping is the declarative description of how an external database maps onto menu data.
type Mapping struct {
	// Categories maps lowercase collection names to display labels.
	Categories map[string]string `yaml:"categories"`
	// SystemCollections are case-insensitive substrings that mark non-menu collections.
	SystemCollections []string     `yaml:"system_collections"`
	ReservedPrefixes  []string     `yaml:"reserved_prefixes"`
	DefaultCategories []string     `yaml:"default_categories"`
	Fields            FieldMapping `yaml:"fields"`

	inverse map[string]string
}

// DefaultMapping returns the built-in mapping table.
func DefaultMapping() *Mapping {
	m := &Mapping{
		Categories: map[string]string{
			"chefspecial": "Chef Special",
			"starters":    "Starters",
			"soups":       "Soups",
			"maincourse":  "Main Course",
			"ricebiryani": "Rice & Biryani",
			"bread":       "Bread",
			"desserts":    "Desserts",
			"drinks":      "Drinks",
			"combos":      "Combos",
		},
		SystemCollections: []string{"admin", "local", "config", "system", "test", "users", "sessions"},
		ReservedPrefixes:  []string{"_", "system."},
		DefaultCategories: []string{"Starters", "Main Course", "Desserts", "Beverages"},
		Fields: FieldMapping{
			Name:        []string{"name", "title", "itemName"},
			Description: []string{"description", "desc", "details"},
			Price:       []string{"price", "cost", "amount"},
			IsVeg:       []string{"isVeg", "veg", "vegetarian"},
			Image:       []string{"image", "imageUrl", "photo"},
			IsAvailable: []string{"isAvailable", "available", "active"},
			Category:    []string{"category"},
		},
	}
	m.buildInverse()
	return m
}

// LoadMapping reads a YAML mapping file and layers it over the defaults.
// Categories merge key by key; every other non-empty list replaces the default.
func LoadMapping(path string) (*Mapping, error) {
	m := DefaultMapping()
	if strings.TrimSpace(path) == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	var file Mapping
	if errUnmarshal := yaml.Unmarshal(data, &file); errUnmarshal != nil {
		return nil, fmt.Errorf("parse mapping file: %w", errUnmarshal)
	}
	for k, v := range file.Categories {
		m.Categories[strings.ToLower(strings.TrimSpace(k))] = v
	}
	replace(&m.SystemCollections, file.SystemCollections)
	replace(&m.ReservedPrefixes, file.ReservedPrefixes)
	replace(&m.DefaultCategories, file.DefaultCategories)
	replace(&m.Fields.Name, file.Fields.Name)
	replace(&m.Fields.Description, file.Fields.Description)
	replace(&m.Fields.Price, file.Fields.Price)
	replace(&m.Fields.IsVeg, file.Fields.IsVeg)
	replace(&m.Fields.Image, file.Fields.Image)
	replace(&m.Fields.IsAvailable, file.Fields.IsAvailable)
	replace(&m.Fields.Category, file.Fields.Category)
	m.buildInverse()
	return m, nil
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func (m *Mapping) buildInverse() {
	m.inverse = make(map[string]string, len(m.Categories))
	for collection, label := range m.Categories {
		m.inverse[label] = collection
	}
}

// Label returns the display label for a collection name.
func (m *Mapping) Label(collection string) string {
	if label, ok := m.Categories[strings.ToLower(collection)]; ok {
		return label
	}
	return capitalize(collection)
}

// IsKnownCollection reports whether name, lowercased, is a key of the category table.
func (m *Mapping) IsKnownCollection(name string) bool {
	_, ok := m.Categories[strings.ToLower(name)]
	return ok
}

// CollectionFor maps a display label back to its collection name.
// Unknown labels are lowercased and used as collection names directly.
func (m *Mapping) CollectionFor(label string) string {
	if collection, ok := m.inverse[label]; ok {
		return collection
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// Defaults returns a copy of the default category labels.
func (m *Mapping) Defaults() []string {
	out := make([]string, len(m.DefaultCategories))
	copy(out, m.DefaultCategories)
	return out
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
