package cache

import (
	"time"

	"clinic-booking/internal/models"

	gocache "github.com/patrickmn/go-cache"
)

// CategoryCache keeps service categories for a fixed TTL. It is owned by
// whoever constructs it; nothing here is process-global.
type CategoryCache struct {
	c *gocache.Cache
}

func NewCategoryCache(ttl, cleanupInterval time.Duration) *CategoryCache {
	return &CategoryCache{
		c: gocache.New(ttl, cleanupInterval),
	}
}

func (c *CategoryCache) Get(id string) (*models.Category, bool) {
	v, ok := c.c.Get(id)
	if !ok {
		return nil, false
	}

	category, ok := v.(*models.Category)
	return category, ok
}

func (c *CategoryCache) Set(category *models.Category) {
	c.c.SetDefault(category.ID, category)
}

func (c *CategoryCache) Invalidate(id string) {
	c.c.Delete(id)
}

func (c *CategoryCache) Flush() {
	c.c.Flush()
}

func (c *CategoryCache) Len() int {
	return c.c.ItemCount()
}
