package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

// LedgerCache is the fast local cache collaborator backed by Redis. Values
// are the JSON-encoded ledger documents keyed by scope key; entries have no
// TTL because the durable store, not expiry, is the source of truth.
type LedgerCache struct {
	client *redis.Client
}

// NewLedgerCache creates a new LedgerCache.
func NewLedgerCache(client *redis.Client) portsrepo.LedgerCache {
	return &LedgerCache{client: client}
}

// Ensure LedgerCache implements portsrepo.LedgerCache
var _ portsrepo.LedgerCache = (*LedgerCache)(nil)

func (c *LedgerCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: cache key %s", apperrors.ErrNotFound, key)
		}
		return "", fmt.Errorf("%w: cache read for %s: %s", apperrors.ErrPersistence, key, err.Error())
	}
	return value, nil
}

func (c *LedgerCache) Set(ctx context.Context, key string, value string) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: cache write for %s: %s", apperrors.ErrPersistence, key, err.Error())
	}
	return nil
}

func (c *LedgerCache) Remove(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: cache delete for %s: %s", apperrors.ErrPersistence, key, err.Error())
	}
	return nil
}
