package guide

import (
	"github.com/patrickmn/go-cache"

	"github.com/shapescape/content-guide/internal/recipe"
	"github.com/shapescape/content-guide/internal/trade"
)

// Cache holds everything a generation run loads at most once. Loaders store
// nil results too, so a file that failed to load is not read or reported
// again.
type Cache struct {
	items     *cache.Cache
	blocks    *cache.Cache
	spawnEggs *cache.Cache
	entities  *cache.Cache
	trades    *cache.Cache

	recipes      *recipe.Index
	features     []*FeatureProperties
	featureRules []*FeatureProperties
	featuresDone bool
	rulesDone    bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		items:     cache.New(cache.NoExpiration, 0),
		blocks:    cache.New(cache.NoExpiration, 0),
		spawnEggs: cache.New(cache.NoExpiration, 0),
		entities:  cache.New(cache.NoExpiration, 0),
		trades:    cache.New(cache.NoExpiration, 0),
	}
}

// Flush forgets every cached result.
func (c *Cache) Flush() {
	for _, m := range []*cache.Cache{c.items, c.blocks, c.spawnEggs, c.entities, c.trades} {
		m.Flush()
	}
	c.recipes = nil
	c.features, c.featureRules = nil, nil
	c.featuresDone, c.rulesDone = false, false
}

// Len returns the number of cached per-file results.
func (c *Cache) Len() int {
	n := 0
	for _, m := range []*cache.Cache{c.items, c.blocks, c.spawnEggs, c.entities, c.trades} {
		n += m.ItemCount()
	}
	return n
}

// memo returns the cached value for key, calling load on a miss.
func memo[T any](c *cache.Cache, key string, load func() *T) *T {
	if v, ok := c.Get(key); ok {
		return v.(*T)
	}
	v := load()
	c.Set(key, v, cache.NoExpiration)
	return v
}

func (c *Cache) item(path string, load func() *Properties) *Properties {
	return memo(c.items, path, load)
}

func (c *Cache) block(path string, load func() *Properties) *Properties {
	return memo(c.blocks, path, load)
}

func (c *Cache) spawnEgg(path string, load func() *Properties) *Properties {
	return memo(c.spawnEggs, path, load)
}

func (c *Cache) entity(path string, load func() *EntityProperties) *EntityProperties {
	return memo(c.entities, path, load)
}

func (c *Cache) trade(path string, load func() *trade.Properties) *trade.Properties {
	return memo(c.trades, path, load)
}

func (c *Cache) recipeIndex(build func() *recipe.Index) *recipe.Index {
	if c.recipes == nil {
		c.recipes = build()
	}
	return c.recipes
}
