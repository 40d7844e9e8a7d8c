// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// genres.go mirrors the catalog owner's populated-genres snapshot into
// Valkey. Frontend processes that merely display the store read this
// copy instead of recomputing it against the catalog.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"appmarket/internal/genre"
)

const (
	// populatedKey is the Valkey key the snapshot lives under.
	populatedKey = "genres:populated"

	// DefaultGenreTTL keeps a stale mirror readable across a few missed
	// refresh ticks, but not indefinitely after the owner stops.
	DefaultGenreTTL = 5 * time.Minute
)

// GenreCache stores and serves the mirrored populated-genres list.
type GenreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGenreCache creates a genre cache backed by the given Valkey client.
func NewGenreCache(client *redis.Client, ttl time.Duration) *GenreCache {
	if ttl == 0 {
		ttl = DefaultGenreTTL
	}
	return &GenreCache{client: client, ttl: ttl}
}

// StorePopulated replaces the mirrored snapshot. Implements genre.Mirror.
func (c *GenreCache) StorePopulated(ctx context.Context, genres []genre.Info) error {
	payload, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("marshal populated genres: %w", err)
	}
	if err := c.client.Set(ctx, populatedKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("store populated genres: %w", err)
	}
	return nil
}

// Populated returns the mirrored snapshot, or nil when no snapshot has
// been published (or the mirror expired).
func (c *GenreCache) Populated(ctx context.Context) ([]genre.Info, error) {
	payload, err := c.client.Get(ctx, populatedKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load populated genres: %w", err)
	}

	var genres []genre.Info
	if err := json.Unmarshal(payload, &genres); err != nil {
		return nil, fmt.Errorf("unmarshal populated genres: %w", err)
	}
	return genres, nil
}
