// Package services implements the admin operations on top of the storage tiers.
package services

import (
	"context"
	"time"

	"restaurant-admin-api/config"
	"restaurant-admin-api/extdb"
	"restaurant-admin-api/store"
	"restaurant-admin-api/tiers"
)

// Backends bundles the tiers every service resolves against.
// Primary or Fallback may be nil when that tier is disabled.
type Backends struct {
	Pool     *extdb.Pool
	Catalog  *extdb.Catalog
	Primary  store.Store
	Fallback store.Store
	Timeouts config.TimeoutConfig
}

func (b *Backends) mapping() *extdb.Mapping {
	return b.Catalog.Mapping()
}

// stores returns the primary then fallback tiers that are enabled.
func (b *Backends) stores() []tierStore {
	var out []tierStore
	if b.Primary != nil {
		out = append(out, tierStore{tiers.Primary, b.Primary})
	}
	if b.Fallback != nil {
		out = append(out, tierStore{tiers.Fallback, b.Fallback})
	}
	return out
}

type tierStore struct {
	tier  tiers.Tier
	store store.Store
}

// storeChain builds a primary→fallback chain running fn against each store.
// The primary attempt is bounded by timeout; the in-memory fallback is not.
func storeChain[T any](b *Backends, timeout time.Duration, fn func(ctx context.Context, s store.Store) (T, error)) *tiers.Chain[T] {
	c := &tiers.Chain[T]{}
	for _, ts := range b.stores() {
		s := ts.store
		d := timeout
		if ts.tier == tiers.Fallback {
			d = 0
		}
		c.Add(true, ts.tier, d, func(ctx context.Context) (T, error) { return fn(ctx, s) })
	}
	return c
}

// externalStep prepends an external-database attempt to a chain when uri is set.
func externalStep[T any](b *Backends, uri string, timeout time.Duration, fn func(ctx context.Context, db extdb.Database) (T, error)) *tiers.Chain[T] {
	c := &tiers.Chain[T]{}
	return c.Add(uri != "" && b.Pool != nil, tiers.External, timeout, func(ctx context.Context) (T, error) {
		conn, err := b.Pool.Acquire(ctx, uri)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx, conn)
	})
}
