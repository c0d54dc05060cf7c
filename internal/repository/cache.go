package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadTTL = 5 * time.Minute

// UnreadCache keeps per-user unread counters in Redis so the badge endpoint
// does not hit Postgres on every poll. A miss is not an error; callers fall
// through to the store.
type UnreadCache struct {
	client *redis.Client
}

func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client}
}

func unreadKey(userID uuid.UUID) string {
	return "unread:" + userID.String()
}

// UnreadCount returns the cached counter and whether it was present.
func (c *UnreadCache) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	const op = "repository.UnreadCache.UnreadCount"

	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: get: %w", op, err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: parse: %w", op, err)
	}

	return count, true, nil
}

func (c *UnreadCache) SetUnreadCount(ctx context.Context, userID uuid.UUID, count int64) error {
	const op = "repository.UnreadCache.SetUnreadCount"

	if err := c.client.Set(ctx, unreadKey(userID), count, unreadTTL).Err(); err != nil {
		return fmt.Errorf("%s: set: %w", op, err)
	}
	return nil
}

// Invalidate drops the cached counter after any read-state mutation.
func (c *UnreadCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.UnreadCache.Invalidate"

	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		return fmt.Errorf("%s: del: %w", op, err)
	}
	return nil
}
