// Package catalog loads and caches the reference data every form session
// needs: the product catalog for line-item picking and the supplier list for
// cross-referencing.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockroom-wms/stockroom/internal/admin/products"
	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
)

// Snapshot is one consistent read of the reference collections.
type Snapshot struct {
	Products  []products.Product  `json:"products"`
	Suppliers []suppliers.Supplier `json:"suppliers"`
	FetchedAt time.Time           `json:"fetched_at"`
}

const (
	snapshotKey  = "stockroom:catalog:snapshot"
	freshnessKey = "stockroom:catalog:fresh"
)

// Cache stores catalog snapshots in Redis. The snapshot itself never expires
// so a fetch failure can fall back to the last-known state; only the
// freshness marker carries the TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache builds a Cache with the given freshness TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the stored snapshot and whether it is still fresh.
func (c *Cache) Get(ctx context.Context) (Snapshot, bool, error) {
	var snap Snapshot
	payload, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snap, false, nil
		}
		return snap, false, fmt.Errorf("catalog: read snapshot: %w", err)
	}
	if err := json.Unmarshal(payload, &snap); err != nil {
		return snap, false, fmt.Errorf("catalog: decode snapshot: %w", err)
	}

	fresh, err := c.client.Exists(ctx, freshnessKey).Result()
	if err != nil {
		return snap, false, nil
	}
	return snap, fresh > 0, nil
}

// Set stores the snapshot and renews the freshness marker.
func (c *Cache) Set(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("catalog: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("catalog: write snapshot: %w", err)
	}
	if err := c.client.Set(ctx, freshnessKey, "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("catalog: write freshness marker: %w", err)
	}
	return nil
}
