package extdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/models"
)

// Catalog reads and writes menu items stored one collection per category.
type Catalog struct {
	mapping *Mapping
	index   *itemIndex
	now     func() time.Time
}

// NewCatalog returns a catalog using mapping for schema inference and transforms.
func NewCatalog(mapping *Mapping) *Catalog {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Catalog{mapping: mapping, index: newItemIndex(), now: time.Now}
}

// Mapping returns the mapping the catalog was built with.
func (c *Catalog) Mapping() *Mapping { return c.mapping }

// Forget drops cached item locations for db.
func (c *Catalog) Forget(db Database) { c.index.drop(db) }

// FetchMenuItems returns every item across category collections, in collection order.
// A non-empty filter restricts the read to the collection whose name or label matches it.
// A collection that cannot be read is logged and skipped; only listing the
// collections, or running out of time, fails the fetch.
func (c *Catalog) FetchMenuItems(ctx context.Context, db Database, filter string) ([]models.MenuItem, error) {
	collections, err := c.mapping.ListCategoryCollections(ctx, db)
	if err != nil {
		return nil, err
	}
	if filter != "" {
		collections = c.matching(collections, filter)
		log.Debugf("🎯 Filtering for category %q, found collections: %v", filter, collections)
	}

	results := make([][]models.MenuItem, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range collections {
		i, name := i, name
		g.Go(func() error {
			docs, err := db.FindAll(gctx, name)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return fmt.Errorf("fetch %s: %w", name, ctxErr)
				}
				log.WithError(err).Warnf("⚠️ Skipping collection %s in %s", name, db.Name())
				return nil
			}
			items := make([]models.MenuItem, 0, len(docs))
			for _, d := range docs {
				item := c.mapping.ToCanonical(d, name)
				c.index.put(db, item.ID, name)
				items = append(items, item)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]models.MenuItem, 0)
	for _, items := range results {
		all = append(all, items...)
	}
	log.Infof("🎯 Total menu items found in %s: %d", db.Name(), len(all))
	return all, nil
}

func (c *Catalog) matching(collections []string, filter string) []string {
	var out []string
	for _, name := range collections {
		if strings.EqualFold(name, filter) ||
			strings.EqualFold(c.mapping.Label(name), filter) ||
			name == c.mapping.CollectionFor(filter) {
			out = append(out, name)
		}
	}
	return out
}

// CreateMenuItem inserts a new item into the collection for its category.
func (c *Catalog) CreateMenuItem(ctx context.Context, db Database, in models.MenuItemInput) (models.MenuItem, error) {
	collections, err := c.mapping.ListCategoryCollections(ctx, db)
	if err != nil {
		return models.MenuItem{}, err
	}
	target, doc := c.mapping.FromCanonical(in, collections, c.now())
	if target != c.mapping.CollectionFor(in.Category) {
		log.Warnf("⚠️ Collection %q not found, using %q", c.mapping.CollectionFor(in.Category), target)
	}

	id, err := db.InsertOne(ctx, target, doc)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("insert into %s: %w", target, err)
	}
	doc["_id"] = id
	item := c.mapping.ToCanonical(doc, target)
	item.Category = doc["category"].(string)
	c.index.put(db, item.ID, target)
	log.Infof("✅ Menu item %s created in collection %s", item.ID, target)
	return item, nil
}

// locate finds the collection holding itemID, trying the index before scanning.
func (c *Catalog) locate(ctx context.Context, db Database, itemID string, collections []string) (string, map[string]interface{}, error) {
	key := DocumentID(itemID)
	if hint, ok := c.index.lookup(db, itemID); ok {
		doc, err := db.FindByID(ctx, hint, key)
		if err == nil {
			return hint, doc, nil
		}
		if !isNoDocument(err) {
			return "", nil, fmt.Errorf("find in %s: %w", hint, err)
		}
		c.index.forget(db, itemID)
	}
	for _, name := range collections {
		doc, err := db.FindByID(ctx, name, key)
		if err == nil {
			c.index.put(db, itemID, name)
			return name, doc, nil
		}
		if !isNoDocument(err) {
			return "", nil, fmt.Errorf("find in %s: %w", name, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s not in any collection", apperr.ErrItemNotFound, itemID)
}

// UpdateMenuItem applies patch to itemID. When the category changes to one stored
// in a different existing collection, the item is re-inserted there and removed from
// its old collection; the returned item then carries a new ID and PreviousID.
// A category whose collection does not exist is updated in place.
func (c *Catalog) UpdateMenuItem(ctx context.Context, db Database, itemID string, patch models.MenuItemPatch) (models.MenuItem, error) {
	collections, err := c.mapping.ListCategoryCollections(ctx, db)
	if err != nil {
		return models.MenuItem{}, err
	}
	current, doc, err := c.locate(ctx, db, itemID, collections)
	if err != nil {
		return models.MenuItem{}, err
	}

	now := c.now()
	set := c.mapping.PatchDocument(patch, now)

	if patch.Category != nil {
		dest := c.mapping.CollectionFor(*patch.Category)
		if dest != current && contains(collections, dest) {
			return c.move(ctx, db, itemID, current, dest, doc, set, *patch.Category)
		}
		if dest != current {
			log.Warnf("⚠️ Collection %q does not exist, keeping item %s in %q", dest, itemID, current)
		}
	}

	updated, err := db.UpdateByID(ctx, current, DocumentID(itemID), set)
	if err != nil {
		if isNoDocument(err) {
			c.index.forget(db, itemID)
			return models.MenuItem{}, fmt.Errorf("%w: %s", apperr.ErrItemNotFound, itemID)
		}
		return models.MenuItem{}, fmt.Errorf("update in %s: %w", current, err)
	}
	log.Infof("✅ Menu item %s updated in collection %s", itemID, current)
	return c.mapping.ToCanonical(updated, current), nil
}

func (c *Catalog) move(ctx context.Context, db Database, itemID, from, to string, doc, set map[string]interface{}, category string) (models.MenuItem, error) {
	merged := make(map[string]interface{}, len(doc)+len(set))
	for k, v := range doc {
		merged[k] = v
	}
	for k, v := range set {
		merged[k] = v
	}
	delete(merged, "_id")
	if _, ok := merged["__v"]; !ok {
		merged["__v"] = 0
	}

	log.Infof("🔄 Moving item %s from %q to %q", itemID, from, to)
	newID, err := db.InsertOne(ctx, to, merged)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("insert into %s: %w", to, err)
	}
	if _, err := db.DeleteByID(ctx, from, DocumentID(itemID)); err != nil {
		// The copy exists in the destination; report the failure rather than hide a duplicate.
		return models.MenuItem{}, fmt.Errorf("delete from %s after move: %w", from, err)
	}
	c.index.forget(db, itemID)

	merged["_id"] = newID
	item := c.mapping.ToCanonical(merged, to)
	item.Category = category
	item.PreviousID = itemID
	c.index.put(db, item.ID, to)
	log.Infof("✅ Menu item moved to collection %s as %s", to, item.ID)
	return item, nil
}

// DeleteMenuItem removes itemID from whichever category collection holds it.
func (c *Catalog) DeleteMenuItem(ctx context.Context, db Database, itemID string) error {
	key := DocumentID(itemID)
	if hint, ok := c.index.lookup(db, itemID); ok {
		n, err := db.DeleteByID(ctx, hint, key)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", hint, err)
		}
		c.index.forget(db, itemID)
		if n > 0 {
			log.Infof("Menu item %s deleted from collection %s", itemID, hint)
			return nil
		}
	}

	collections, err := c.mapping.ListCategoryCollections(ctx, db)
	if err != nil {
		return err
	}
	for _, name := range collections {
		n, err := db.DeleteByID(ctx, name, key)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", name, err)
		}
		if n > 0 {
			log.Infof("Menu item %s deleted from collection %s", itemID, name)
			return nil
		}
	}
	return fmt.Errorf("%w: %s not in any collection", apperr.ErrItemNotFound, itemID)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
