package repositories

import (
	"context"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type dimensionRepository interface {
	Table() string
	Ensure(ctx context.Context, name string, extra ...any) (int64, bool, error)
}

// CachedDimension remembers name -> id for rows already known to exist.
// Dimension rows are never deleted, so a cached id can't go stale.
type CachedDimension struct {
	repo  dimensionRepository
	cache *gocache.Cache
}

func NewCachedDimension(repo dimensionRepository, ttl time.Duration) *CachedDimension {
	return &CachedDimension{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

func (c *CachedDimension) Table() string {
	return c.repo.Table()
}

func (c *CachedDimension) Ensure(ctx context.Context, name string, extra ...any) (int64, bool, error) {
	if value, found := c.cache.Get(name); found {
		return value.(int64), false, nil
	}

	id, inserted, err := c.repo.Ensure(ctx, name, extra...)
	if err != nil {
		return 0, false, err
	}

	c.cache.SetDefault(name, id)
	return id, inserted, nil
}
