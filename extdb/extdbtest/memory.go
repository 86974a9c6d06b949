// Package extdbtest provides an in-memory external database for tests.
package extdbtest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant-admin-api/extdb"
)

// MemoryDB implements extdb.Conn over maps. It is safe for concurrent use.
type MemoryDB struct {
	name string

	mu          sync.Mutex
	collections map[string][]bson.M
	pingErr     error
	opErr       error
	delay       time.Duration
	closed      bool
	writes      int
}

// NewMemoryDB returns an empty database called name.
func NewMemoryDB(name string) *MemoryDB {
	return &MemoryDB{name: name, collections: map[string][]bson.M{}}
}

// AddCollection creates collection name holding docs. Docs without _id get one.
func (m *MemoryDB) AddCollection(name string, docs ...bson.M) *MemoryDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[name]
	if coll == nil {
		coll = []bson.M{}
	}
	for _, d := range docs {
		c := clone(d)
		if _, ok := c["_id"]; !ok {
			c["_id"] = primitive.NewObjectID()
		}
		coll = append(coll, c)
	}
	m.collections[name] = coll
	return m
}

// SetPingError makes Ping fail with err (nil restores health).
func (m *MemoryDB) SetPingError(err error) {
	m.mu.Lock()
	m.pingErr = err
	m.mu.Unlock()
}

// SetError makes every data operation fail with err.
func (m *MemoryDB) SetError(err error) {
	m.mu.Lock()
	m.opErr = err
	m.mu.Unlock()
}

// SetDelay makes every data operation wait d before running, honouring ctx.
func (m *MemoryDB) SetDelay(d time.Duration) {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

// Docs returns a copy of the documents in collection.
func (m *MemoryDB) Docs(collection string) []bson.M {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bson.M, 0, len(m.collections[collection]))
	for _, d := range m.collections[collection] {
		out = append(out, clone(d))
	}
	return out
}

// Closed reports whether Disconnect was called.
func (m *MemoryDB) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Writes counts completed insert, update and delete calls.
func (m *MemoryDB) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryDB) Name() string { return m.name }

func (m *MemoryDB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("client is disconnected")
	}
	return m.pingErr
}

func (m *MemoryDB) Disconnect(context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryDB) wait(ctx context.Context) error {
	m.mu.Lock()
	delay, opErr := m.delay, m.opErr
	m.mu.Unlock()
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if opErr != nil {
		return opErr
	}
	return ctx.Err()
}

func (m *MemoryDB) ListCollectionNames(ctx context.Context) ([]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.collections))
	for n := range m.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryDB) FindAll(ctx context.Context, collection string) ([]bson.M, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.Docs(collection), nil
}

func (m *MemoryDB) FindByID(ctx context.Context, collection string, id interface{}) (bson.M, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.collections[collection] {
		if d["_id"] == id {
			return clone(d), nil
		}
	}
	return nil, extdb.ErrNoDocument
}

func (m *MemoryDB) InsertOne(ctx context.Context, collection string, doc bson.M) (interface{}, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	c := clone(doc)
	if _, ok := c["_id"]; !ok {
		c["_id"] = primitive.NewObjectID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], c)
	m.writes++
	return c["_id"], nil
}

func (m *MemoryDB) UpdateByID(ctx context.Context, collection string, id interface{}, set bson.M) (bson.M, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.collections[collection] {
		if d["_id"] == id {
			for k, v := range set {
				d[k] = v
			}
			m.writes++
			return clone(d), nil
		}
	}
	return nil, extdb.ErrNoDocument
}

func (m *MemoryDB) DeleteByID(ctx context.Context, collection string, id interface{}) (int64, error) {
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, d := range docs {
		if d["_id"] == id {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			m.writes++
			return 1, nil
		}
	}
	return 0, nil
}

// Dialer returns an extdb.Dialer that hands out dbs by connection string.
// Unknown strings fail to connect.
func Dialer(dbs map[string]*MemoryDB) extdb.Dialer {
	return func(ctx context.Context, uri, dbName string) (extdb.Conn, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		db, ok := dbs[uri]
		if !ok {
			return nil, errors.New("server selection error: no reachable servers")
		}
		return db, nil
	}
}

func clone(d bson.M) bson.M {
	c := make(bson.M, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}
