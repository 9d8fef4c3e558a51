package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cooldown implements per-user action rate limits on redis SetNX keys.
// With no redis configured every Acquire succeeds.
type Cooldown struct {
	rdb *redis.Client
}

func NewCooldown(rdb *redis.Client) *Cooldown {
	return &Cooldown{rdb: rdb}
}

func (c *Cooldown) key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Acquire takes the cooldown slot. When blocked it reports the remaining
// wait so the caller can tell the user how long.
func (c *Cooldown) Acquire(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, time.Duration, error) {
	if c.rdb == nil {
		return true, 0, nil
	}

	wasSet, err := c.rdb.SetNX(ctx, c.key(userID, action), "locked", window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return true, 0, nil
	}

	ttl, _ := c.rdb.TTL(ctx, c.key(userID, action)).Result()
	return false, ttl, nil
}

// Release frees the slot early, used to roll back when the guarded write fails.
func (c *Cooldown) Release(ctx context.Context, userID uuid.UUID, action string) error {
	if c.rdb == nil {
		return nil
	}
	_, err := c.rdb.Del(ctx, c.key(userID, action)).Result()
	return err
}
