package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

const (
	cacheKeyPrefix    = "catalog:"
	defaultCatalogTTL = 5 * time.Minute
)

// CachedRepository is a read-through Redis cache in front of another
// Repository. Reference data is read on every lead and quote write, so
// events, packages and per-event package lists are cached; any write drops
// the affected keys.
type CachedRepository struct {
	Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps next. A nil client disables caching.
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if next == nil {
		panic("catalog: repository required")
	}
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedRepository{Repository: next, redis: client, ttl: ttl, logger: logger}
}

func eventKey(id string) string         { return cacheKeyPrefix + "event:" + id }
func packageKey(id string) string       { return cacheKeyPrefix + "package:" + id }
func eventPackagesKey(id string) string { return cacheKeyPrefix + "event:" + id + ":packages" }

func (c *CachedRepository) GetEvent(ctx context.Context, id string) (*Event, error) {
	var e Event
	if c.load(ctx, eventKey(id), &e) {
		return &e, nil
	}
	fresh, err := c.Repository.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, eventKey(id), fresh)
	return fresh, nil
}

func (c *CachedRepository) GetPackage(ctx context.Context, id string) (*Package, error) {
	var p Package
	if c.load(ctx, packageKey(id), &p) {
		return &p, nil
	}
	fresh, err := c.Repository.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, packageKey(id), fresh)
	return fresh, nil
}

// ListPackages caches only the plain per-event listing used by the tier rule.
func (c *CachedRepository) ListPackages(ctx context.Context, filter PackageFilter) ([]*Package, error) {
	cacheable := filter.EventID != "" && filter.Tier == "" && filter.Search == ""
	if cacheable {
		var cached []*Package
		if c.load(ctx, eventPackagesKey(filter.EventID), &cached) {
			return cached, nil
		}
	}
	fresh, err := c.Repository.ListPackages(ctx, filter)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.store(ctx, eventPackagesKey(filter.EventID), fresh)
	}
	return fresh, nil
}

func (c *CachedRepository) UpdateEvent(ctx context.Context, id string, in EventInput) (*Event, error) {
	e, err := c.Repository.UpdateEvent(ctx, id, in)
	c.invalidate(ctx, eventKey(id))
	return e, err
}

func (c *CachedRepository) DeleteEvent(ctx context.Context, id string) error {
	err := c.Repository.DeleteEvent(ctx, id)
	c.invalidate(ctx, eventKey(id), eventPackagesKey(id))
	return err
}

func (c *CachedRepository) CreatePackage(ctx context.Context, in PackageInput) (*Package, error) {
	p, err := c.Repository.CreatePackage(ctx, in)
	c.invalidate(ctx, eventPackagesKey(in.EventID))
	return p, err
}

func (c *CachedRepository) UpdatePackage(ctx context.Context, id string, in PackageInput) (*Package, error) {
	keys := []string{packageKey(id), eventPackagesKey(in.EventID)}
	if prev, err := c.Repository.GetPackage(ctx, id); err == nil && prev.EventID != in.EventID {
		keys = append(keys, eventPackagesKey(prev.EventID))
	}
	p, err := c.Repository.UpdatePackage(ctx, id, in)
	c.invalidate(ctx, keys...)
	return p, err
}

func (c *CachedRepository) DeletePackage(ctx context.Context, id string) error {
	keys := []string{packageKey(id)}
	if prev, err := c.Repository.GetPackage(ctx, id); err == nil {
		keys = append(keys, eventPackagesKey(prev.EventID))
	}
	err := c.Repository.DeletePackage(ctx, id)
	c.invalidate(ctx, keys...)
	return err
}

func (c *CachedRepository) load(ctx context.Context, key string, dest any) bool {
	if c.redis == nil {
		return false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("catalog cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedRepository) store(ctx context.Context, key string, v any) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

func (c *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("catalog cache invalidate failed", "keys", fmt.Sprint(keys), "error", err)
	}
}
