package repositories

import (
	"context"
	"github.com/maxaizer/hh-ingest/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type regionRepository interface {
	GetIdByName(ctx context.Context, name string) (string, error)
}

// CachedRegions keys the cache by normalized name, so spellings of one region share an entry.
type CachedRegions struct {
	repo  regionRepository
	cache *gocache.Cache
}

func NewCachedRegions(repo regionRepository, ttl time.Duration) *CachedRegions {
	return &CachedRegions{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

// GetIdByName returns "" for an unknown region. Misses are not cached since the
// region table may be filled after the first lookup.
func (c *CachedRegions) GetIdByName(ctx context.Context, name string) (string, error) {
	key := entities.NormalizeRegionName(name)
	if id, found := c.cache.Get(key); found {
		return id.(string), nil
	}

	id, err := c.repo.GetIdByName(ctx, name)
	if err != nil || id == "" {
		return id, err
	}

	c.cache.SetDefault(key, id)
	return id, nil
}
