// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go holds the process-wide populated-genres snapshot. The catalog
// owner recomputes it on a fixed schedule; every reader sees either the
// previous complete snapshot or the new one, never a partial value,
// because Refresh builds the whole list before the single atomic
// publish.
package genre

import (
	"context"
	"sync/atomic"

	"appmarket/internal/store"
)

// Mirror receives each successful snapshot so processes that do not own
// the catalog can still serve it. Implemented by the Valkey genre cache.
type Mirror interface {
	StorePopulated(ctx context.Context, genres []Info) error
}

// PopulatedCache is a periodically refreshed view of the genres that
// currently contain at least one approved app. A refresh failure leaves
// the previous snapshot in place until the next tick.
type PopulatedCache struct {
	resolver *Resolver
	mirror   Mirror // optional
	snap     atomic.Value // []Descriptor
}

// NewPopulatedCache creates an empty cache over the resolver. mirror may
// be nil when no external copy is wanted.
func NewPopulatedCache(resolver *Resolver, mirror Mirror) *PopulatedCache {
	c := &PopulatedCache{resolver: resolver, mirror: mirror}
	c.snap.Store([]Descriptor(nil))
	return c
}

// Refresh recomputes the populated genres restricted to approved apps
// and publishes the new snapshot. The anonymous context means
// viewer-dependent genres (Installed, Apps By Me, the update views)
// resolve to no results and so never appear in the cached list.
func (c *PopulatedCache) Refresh(ctx context.Context) error {
	list, err := c.resolver.Populated(store.Filter{"approved": true}, store.FindOptions{}, nil)
	if err != nil {
		return err
	}
	if list == nil {
		// An empty catalog still counts as a completed refresh.
		list = []Descriptor{}
	}
	c.snap.Store(list)

	if c.mirror != nil {
		return c.mirror.StorePopulated(ctx, infos(list))
	}
	return nil
}

// Snapshot returns the last successfully computed descriptor list. Nil
// until the first refresh completes.
func (c *PopulatedCache) Snapshot() []Descriptor {
	list, _ := c.snap.Load().([]Descriptor)
	return list
}

// Infos returns the serializable view of the current snapshot, nil when
// no refresh has completed yet so callers can tell "not ready" from
// "nothing populated".
func (c *PopulatedCache) Infos() []Info {
	return infos(c.Snapshot())
}

func infos(list []Descriptor) []Info {
	if list == nil {
		return nil
	}
	out := make([]Info, len(list))
	for i, d := range list {
		out[i] = d.Info()
	}
	return out
}
