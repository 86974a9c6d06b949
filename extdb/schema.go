package extdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// IsSystemCollection reports whether a collection is reserved and never holds menu items.
func (m *Mapping) IsSystemCollection(name string) bool {
	lower := strings.ToLower(name)
	for _, sys := range m.SystemCollections {
		if strings.Contains(lower, strings.ToLower(sys)) {
			return true
		}
	}
	for _, prefix := range m.ReservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// ListCategoryCollections returns every non-system collection, sorted by name.
// Empty collections are kept: an admin may pre-create one for a future category.
func (m *Mapping) ListCategoryCollections(ctx context.Context, db Database) ([]string, error) {
	names, err := db.ListCollectionNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !m.IsSystemCollection(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	log.Debugf("🎯 Menu collections in %s: %v", db.Name(), out)
	return out, nil
}

// CategoriesFromCollections maps collection names to sorted, de-duplicated labels.
// An empty input yields the default categories.
func (m *Mapping) CategoriesFromCollections(collections []string) []string {
	seen := make(map[string]bool, len(collections))
	labels := make([]string, 0, len(collections))
	for _, c := range collections {
		label := m.Label(c)
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return m.Defaults()
	}
	sort.Strings(labels)
	return labels
}

// DeriveCategories lists the category labels implied by the database's collections.
func (m *Mapping) DeriveCategories(ctx context.Context, db Database) ([]string, error) {
	collections, err := m.ListCategoryCollections(ctx, db)
	if err != nil {
		return nil, err
	}
	categories := m.CategoriesFromCollections(collections)
	log.Infof("✅ Categories from collection names in %s: %v", db.Name(), categories)
	return categories, nil
}

// CollectionState describes what a category collection currently holds.
type CollectionState string

const (
	CollectionMenu  CollectionState = "menu"
	CollectionOther CollectionState = "other"
	CollectionEmpty CollectionState = "empty"
)

// CollectionReport is one row of AnalyzeCollections.
type CollectionReport struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	State    CollectionState `json:"state"`
	Count    int             `json:"count"`
}

// AnalyzeCollections samples every category collection and reports whether it
// looks like menu data (a name-like and a price-like field), other data, or nothing.
func (m *Mapping) AnalyzeCollections(ctx context.Context, db Database) ([]CollectionReport, error) {
	collections, err := m.ListCategoryCollections(ctx, db)
	if err != nil {
		return nil, err
	}
	reports := make([]CollectionReport, 0, len(collections))
	for _, c := range collections {
		docs, err := db.FindAll(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", c, err)
		}
		r := CollectionReport{Name: c, Category: m.Label(c), Count: len(docs), State: CollectionEmpty}
		if len(docs) > 0 {
			r.State = CollectionOther
			if m.looksLikeMenuItem(docs[0]) {
				r.State = CollectionMenu
			}
		}
		reports = append(reports, r)
	}
	return reports, nil
}
