package classify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eco-catalog/backend/internal/config"
	"github.com/eco-catalog/backend/internal/domain"
)

// Cache memoizes classifications by normalized title in Redis so
// duplicate titles across storefronts and re-runs of the sweep don't
// re-spend model calls. A nil Cache is valid and always misses.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache connects the classification cache. Returns nil when no
// Redis address is configured; callers treat that as "no cache".
func NewCache(cfg config.RedisConfig) *Cache {
	if cfg.Addr == "" {
		return nil
	}
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: cfg.TTL,
	}
}

type cachedLabel struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// Get returns a previously stored classification for the title
func (c *Cache) Get(ctx context.Context, title string) (domain.Classification, error) {
	if c == nil {
		return domain.Classification{}, domain.ErrCacheMiss
	}

	data, err := c.rdb.Get(ctx, cacheKey(title)).Bytes()
	if err == redis.Nil {
		return domain.Classification{}, domain.ErrCacheMiss
	}
	if err != nil {
		return domain.Classification{}, err
	}

	var l cachedLabel
	if err := json.Unmarshal(data, &l); err != nil {
		return domain.Classification{}, domain.ErrCacheMiss
	}
	return domain.Classification{Category: l.Category, SubCategory: l.SubCategory}, nil
}

// Set stores a classification for the title, best-effort
func (c *Cache) Set(ctx context.Context, title string, cls domain.Classification) {
	if c == nil {
		return
	}
	data, err := json.Marshal(cachedLabel{Category: cls.Category, SubCategory: cls.SubCategory})
	if err != nil {
		return
	}
	c.rdb.Set(ctx, cacheKey(title), data, c.ttl)
}

// Close releases the Redis connection
func (c *Cache) Close() {
	if c != nil {
		_ = c.rdb.Close()
	}
}

func cacheKey(title string) string {
	return "classify:" + strings.ToLower(strings.TrimSpace(title))
}
