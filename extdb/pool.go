package extdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"restaurant-admin-api/apperr"
)

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	DefaultDatabase string
	// DialTimeout bounds connect plus initial ping.
	DialTimeout time.Duration
	// PingTimeout bounds the readiness check of a cached handle.
	PingTimeout time.Duration
	// IdleTimeout evicts handles unused for longer; zero disables it.
	IdleTimeout time.Duration
	// MaxSize caps live handles; the least recently used is closed first. Zero means unbounded.
	MaxSize int
}

type poolEntry struct {
	conn     Conn
	dbName   string
	lastUsed time.Time
}

// Pool caches one live connection per distinct connection string.
type Pool struct {
	cfg    PoolConfig
	dial   Dialer
	now    func() time.Time
	mu     sync.Mutex
	conns  map[string]*poolEntry
	group  singleflight.Group
	closed bool

	onEvict func(Conn)
}

// NewPool builds a pool that opens connections with dial.
func NewPool(cfg PoolConfig, dial Dialer) *Pool {
	if cfg.DefaultDatabase == "" {
		cfg.DefaultDatabase = DefaultDatabaseName
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = time.Second
	}
	return &Pool{
		cfg:   cfg,
		dial:  dial,
		now:   time.Now,
		conns: make(map[string]*poolEntry),
	}
}

// OnEvict registers fn to run for every handle the pool closes.
func (p *Pool) OnEvict(fn func(Conn)) {
	p.mu.Lock()
	p.onEvict = fn
	p.mu.Unlock()
}

var errPoolClosed = errors.New("connection pool closed")

// Acquire returns a ready connection for uri, creating one if needed.
func (p *Pool) Acquire(ctx context.Context, uri string) (Conn, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty connection string", apperr.ErrConnectionFailure)
	}
	p.evictIdle()

	if conn, ok := p.cached(ctx, uri); ok {
		return conn, nil
	}

	// The shared dial outlives any single caller; it is bounded by DialTimeout only.
	dialCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(uri, func() (interface{}, error) {
		// Another caller may have finished creating it while we waited.
		if conn, ok := p.cached(dialCtx, uri); ok {
			return conn, nil
		}
		return p.create(dialCtx, uri)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Conn), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", apperr.ErrConnectionTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrConnectionFailure, ctx.Err())
	}
}

// cached returns the pooled handle when it still answers a ping. Stale handles are evicted.
func (p *Pool) cached(ctx context.Context, uri string) (Conn, bool) {
	p.mu.Lock()
	entry, ok := p.conns[uri]
	p.mu.Unlock()
	if !ok {
		return nil, false
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.PingTimeout)
	err := entry.conn.Ping(pingCtx)
	cancel()
	if err != nil {
		log.WithError(err).Warnf("♻️ Evicting stale connection to %s", HostOf(uri))
		p.remove(uri, entry)
		return nil, false
	}

	p.mu.Lock()
	entry.lastUsed = p.now()
	p.mu.Unlock()
	return entry.conn, true
}

func (p *Pool) create(ctx context.Context, uri string) (Conn, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConnectionFailure, errPoolClosed)
	}

	finalURI, dbName := ResolveURI(uri, p.cfg.DefaultDatabase)
	log.Infof("🔗 Original URI: %s", RedactURI(uri))
	log.Infof("🔗 Final URI: %s", RedactURI(finalURI))
	log.Infof("📊 Target database: %s", dbName)

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.DialTimeout)
	defer cancel()

	type dialResult struct {
		conn Conn
		err  error
	}
	done := make(chan dialResult, 1)
	go func() {
		conn, err := p.dial(dialCtx, finalURI, dbName)
		done <- dialResult{conn, err}
	}()

	var res dialResult
	select {
	case res = <-done:
	case <-dialCtx.Done():
		// The dial goroutine observes the same cancelled context; close whatever it returns late.
		go func() {
			if late := <-done; late.conn != nil {
				_ = late.conn.Disconnect(context.Background())
			}
		}()
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			log.Errorf("❌ Connection timeout for %s", HostOf(uri))
			return nil, fmt.Errorf("%w after %s", apperr.ErrConnectionTimeout, p.cfg.DialTimeout)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrConnectionFailure, dialCtx.Err())
	}
	if res.err != nil {
		log.WithError(res.err).Errorf("❌ Failed to connect to restaurant database %s", HostOf(uri))
		if errors.Is(res.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", apperr.ErrConnectionTimeout, res.err)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrConnectionFailure, res.err)
	}

	p.mu.Lock()
	p.conns[uri] = &poolEntry{conn: res.conn, dbName: dbName, lastUsed: p.now()}
	victims := p.overflowLocked()
	p.mu.Unlock()
	p.disconnect(victims)

	log.Infof("✅ Connected to restaurant database: %s (%s)", HostOf(uri), dbName)
	return res.conn, nil
}

// overflowLocked removes the least recently used entries beyond MaxSize and returns them.
func (p *Pool) overflowLocked() []Conn {
	if p.cfg.MaxSize <= 0 || len(p.conns) <= p.cfg.MaxSize {
		return nil
	}
	keys := make([]string, 0, len(p.conns))
	for k := range p.conns {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return p.conns[keys[i]].lastUsed.Before(p.conns[keys[j]].lastUsed)
	})
	var victims []Conn
	for _, k := range keys[:len(keys)-p.cfg.MaxSize] {
		victims = append(victims, p.conns[k].conn)
		delete(p.conns, k)
	}
	return victims
}

func (p *Pool) evictIdle() {
	if p.cfg.IdleTimeout <= 0 {
		return
	}
	cutoff := p.now().Add(-p.cfg.IdleTimeout)
	var victims []Conn
	p.mu.Lock()
	for k, e := range p.conns {
		if e.lastUsed.Before(cutoff) {
			victims = append(victims, e.conn)
			delete(p.conns, k)
		}
	}
	p.mu.Unlock()
	p.disconnect(victims)
}

func (p *Pool) remove(uri string, entry *poolEntry) {
	p.mu.Lock()
	if cur, ok := p.conns[uri]; ok && cur == entry {
		delete(p.conns, uri)
	}
	p.mu.Unlock()
	p.disconnect([]Conn{entry.conn})
}

func (p *Pool) disconnect(conns []Conn) {
	p.mu.Lock()
	hook := p.onEvict
	p.mu.Unlock()
	for _, c := range conns {
		if hook != nil {
			hook(c)
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PingTimeout)
		if err := c.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("⚠️ Failed to close restaurant database connection")
		}
		cancel()
	}
}

// Release closes and forgets the connection for uri, if any.
func (p *Pool) Release(uri string) {
	p.mu.Lock()
	entry, ok := p.conns[uri]
	delete(p.conns, uri)
	p.mu.Unlock()
	if ok {
		p.disconnect([]Conn{entry.conn})
		log.Infof("Closed connection to restaurant database: %s", HostOf(uri))
	}
}

// Len reports the number of pooled connections.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// Close disconnects every pooled handle. Later Acquire calls fail.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	entries := p.conns
	p.conns = make(map[string]*poolEntry)
	p.mu.Unlock()

	p.mu.Lock()
	hook := p.onEvict
	p.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if hook != nil {
			hook(e.conn)
		}
		if err := e.conn.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
