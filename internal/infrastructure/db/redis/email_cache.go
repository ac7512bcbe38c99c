package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const emailCacheTTL = 24 * time.Hour

// EmailCache caches positive email-existence answers so repeated duplicate
// registrations skip a store round trip. Only "registered" is cached and an
// entry is dropped when the account is soft-deleted, so a stale miss is the
// worst case — the store's unique index stays the source of truth.
// Key format: email:<normalized email>
type EmailCache struct {
	client *redis.Client
}

// NewEmailCache wraps the given Redis client.
func NewEmailCache(client *redis.Client) *EmailCache {
	return &EmailCache{client: client}
}

// IsRegistered reports whether the email is known to belong to an account.
func (c *EmailCache) IsRegistered(ctx context.Context, email string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("email cache lookup: %w", err)
	}
	return n > 0, nil
}

// MarkRegistered records that the email now belongs to an account. The entry
// expires after emailCacheTTL.
func (c *EmailCache) MarkRegistered(ctx context.Context, email string) error {
	return c.client.Set(ctx, c.key(email), "1", emailCacheTTL).Err()
}

// Invalidate removes the entry, freeing the email after a soft delete.
func (c *EmailCache) Invalidate(ctx context.Context, email string) error {
	return c.client.Del(ctx, c.key(email)).Err()
}

func (c *EmailCache) key(email string) string {
	return "email:" + email
}
