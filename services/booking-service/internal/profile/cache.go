package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const DefaultCacheTTL = 5 * time.Minute

// Cache keeps public profiles in Redis keyed by slug. A nil *Cache is a valid no-op cache.
type Cache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: "profile:"}
}

func (c *Cache) key(slug string) string {
	return c.prefix + slug
}

// Get reports a miss as (zero, false, nil).
func (c *Cache) Get(ctx context.Context, slug string) (model.PublicProfile, bool, error) {
	if c == nil {
		return model.PublicProfile{}, false, nil
	}
	data, err := c.rdb.Get(ctx, c.key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PublicProfile{}, false, nil
	}
	if err != nil {
		return model.PublicProfile{}, false, fmt.Errorf("profile cache get: %w", err)
	}
	var p model.PublicProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return model.PublicProfile{}, false, fmt.Errorf("profile cache decode: %w", err)
	}
	return p, true, nil
}

func (c *Cache) Set(ctx context.Context, p model.PublicProfile) error {
	if c == nil || p.Business.Slug == "" {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(p.Business.Slug), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("profile cache set: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, slugs ...string) error {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, c.key(s))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("profile cache invalidate: %w", err)
	}
	return nil
}
