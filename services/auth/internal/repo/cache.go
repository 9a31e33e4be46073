package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/delivery_platform/pkg/logging"
)

type Ledger interface {
	Record(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RevocationCache remembers revoked tokens until their natural expiry.
type RevocationCache interface {
	Has(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, ttl time.Duration) error
}

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(ctx context.Context, opts *redis.Options) (*RedisCache, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{Client: client}, nil
}

func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	err := c.Client.Get(ctx, key).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (c *RedisCache) Put(ctx context.Context, key string, ttl time.Duration) error {
	return c.Client.Set(ctx, key, "1", ttl).Err()
}

func (c *RedisCache) Close() error { return c.Client.Close() }

// CachedLedger answers IsRevoked from the cache when it can. The database
// stays authoritative: only positive answers are cached, and cache failures
// fall through to the ledger.
type CachedLedger struct {
	Ledger Ledger
	Cache  RevocationCache
	Now    func() time.Time
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

func (c *CachedLedger) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CachedLedger) remember(ctx context.Context, token string, expiresAt time.Time) {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	if err := c.Cache.Put(ctx, cacheKey(token), ttl); err != nil {
		logging.FromContext(ctx).Warn("revocation_cache_put_failed", "error", err)
	}
}

func (c *CachedLedger) Record(ctx context.Context, token string, expiresAt time.Time) error {
	err := c.Ledger.Record(ctx, token, expiresAt)
	if err == nil || errors.Is(err, ErrAlreadyRevoked) {
		c.remember(ctx, token, expiresAt)
	}
	return err
}

func (c *CachedLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	hit, err := c.Cache.Has(ctx, cacheKey(token))
	if err != nil {
		logging.FromContext(ctx).Warn("revocation_cache_get_failed", "error", err)
	} else if hit {
		return true, nil
	}
	return c.Ledger.IsRevoked(ctx, token)
}
