package folio

import (
	"sync"
	"time"
)

// ContentCache is an in-memory snapshot of the published corpus and its
// taxonomy with a TTL. Feed, sitemap, and aggregation reads share it; admin
// writes invalidate it. View counts bypass the cache entirely — the counter
// is a store-level atomic.
type ContentCache struct {
	mu         sync.RWMutex
	posts      []BlogPost
	tags       []string
	categories []string
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *ContentCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(true)
	if err != nil {
		return err
	}
	tags, err := c.store.Tags()
	if err != nil {
		return err
	}
	categories, err := c.store.Categories()
	if err != nil {
		return err
	}
	c.posts = posts
	c.tags = tags
	c.categories = categories
	c.fetched = time.Now()
	return nil
}

// ensureLoaded refreshes the snapshot if stale. Read lock first; the write
// lock is only taken when a reload is needed.
func (c *ContentCache) ensureLoaded() ([]BlogPost, []string, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags, categories := c.posts, c.tags, c.categories
		c.mu.RUnlock()
		return posts, tags, categories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, nil, err
	}
	return c.posts, c.tags, c.categories, nil
}

// Posts returns the published posts, publish time descending.
func (c *ContentCache) Posts() ([]BlogPost, error) {
	posts, _, _, err := c.ensureLoaded()
	return posts, err
}

// Tags returns the sorted tag set of the published corpus.
func (c *ContentCache) Tags() ([]string, error) {
	_, tags, _, err := c.ensureLoaded()
	return tags, err
}

// Categories returns the sorted category set of the published corpus.
func (c *ContentCache) Categories() ([]string, error) {
	_, _, categories, err := c.ensureLoaded()
	return categories, err
}
