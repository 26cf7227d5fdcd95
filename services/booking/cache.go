package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"servisync/models"

	"github.com/go-redis/redis/v8"
)

// SnapshotCache persists the last merged booking snapshot per identity so a
// restarted client can render stale-but-present data before the first fetch
// returns. It is a convenience layer: every path through it tolerates the
// cache being cold or down.
type SnapshotCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

const snapshotTTL = 24 * time.Hour

// NewSnapshotCache scopes a cache to one authenticated identity.
func NewSnapshotCache(client *redis.Client, identity string) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		key:    "servisync:snapshot:" + identity,
		ttl:    snapshotTTL,
	}
}

// Save stores the snapshot, replacing the previous one.
func (c *SnapshotCache) Save(ctx context.Context, bookings []models.Booking) error {
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	return nil
}

// Load returns the cached snapshot, or nil when the cache is cold.
func (c *SnapshotCache) Load(ctx context.Context) ([]models.Booking, error) {
	data, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cached snapshot: %w", err)
	}
	var bookings []models.Booking
	if err := json.Unmarshal([]byte(data), &bookings); err != nil {
		return nil, fmt.Errorf("parse cached snapshot: %w", err)
	}
	return bookings, nil
}

// Clear removes the cached snapshot, called on logout so the next identity
// never sees this session's data.
func (c *SnapshotCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("clear cached snapshot: %w", err)
	}
	return nil
}

const lastIdentityKey = "servisync:last-identity"

// ClearOnIdentityChange releases the previous identity's snapshot when a
// different identity signs in, then records the current one. Same-identity
// restarts keep their snapshot so warm start still works. Called before
// WarmStart during session wiring.
func ClearOnIdentityChange(ctx context.Context, client *redis.Client, identity string) error {
	prev, err := client.Get(ctx, lastIdentityKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read last identity: %w", err)
	}
	if prev != "" && prev != identity {
		if err := NewSnapshotCache(client, prev).Clear(ctx); err != nil {
			return err
		}
	}
	if err := client.Set(ctx, lastIdentityKey, identity, 0).Err(); err != nil {
		return fmt.Errorf("record identity: %w", err)
	}
	return nil
}
