package extdb

import "sync"

// itemIndex remembers which collection holds each item id, per database handle.
// Entries are hints: callers verify them and fall back to a scan on a miss.
type itemIndex struct {
	mu   sync.RWMutex
	byDB map[Database]map[string]string
}

func newItemIndex() *itemIndex {
	return &itemIndex{byDB: make(map[Database]map[string]string)}
}

func (x *itemIndex) lookup(db Database, id string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	c, ok := x.byDB[db][id]
	return c, ok
}

func (x *itemIndex) put(db Database, id, collection string) {
	if id == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	m := x.byDB[db]
	if m == nil {
		m = make(map[string]string)
		x.byDB[db] = m
	}
	m[id] = collection
}

func (x *itemIndex) forget(db Database, id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.byDB[db], id)
}

// drop discards everything known about db, e.g. after its connection was closed.
func (x *itemIndex) drop(db Database) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.byDB, db)
}
