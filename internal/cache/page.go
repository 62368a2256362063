package cache

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ppiankov/larder/internal/model"
)

// Page is a fetched recipe page as stored in the cache
type Page struct {
	URL       string          `json:"url"`
	FinalURL  string          `json:"final_url"`
	HTML      string          `json:"html"`
	Meta      model.FetchMeta `json:"meta"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// PageCache stores pages keyed by the requested URL
type PageCache struct {
	store Cache
	ttl   time.Duration
}

// NewPageCache wraps a byte cache. A zero ttl defers to the store's default.
func NewPageCache(store Cache, ttl time.Duration) *PageCache {
	return &PageCache{store: store, ttl: ttl}
}

// Get returns the cached page for url. Undecodable entries are dropped.
func (c *PageCache) Get(url string) (*Page, bool) {
	key := Key(url)
	data, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}

	var p Page
	if err := sonic.Unmarshal(data, &p); err != nil {
		_ = c.store.Delete(key)
		return nil, false
	}
	return &p, true
}

// Put stores a page under its requested URL
func (c *PageCache) Put(p *Page) error {
	data, err := sonic.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	return c.store.Set(Key(p.URL), data, c.ttl)
}
