package content

import (
	"context"
	"sync"
	"time"
)

// PostCache is an in-memory cache of a site's post listing with TTL, so page
// renders during an editing session do not hammer the content API.
type PostCache struct {
	mu      sync.RWMutex
	posts   []Summary
	fetched time.Time
	ttl     time.Duration
	client  *Client
	siteID  string
}

// NewPostCache creates a PostCache backed by the given client.
func NewPostCache(client *Client, siteID string, ttl time.Duration) *PostCache {
	return &PostCache{client: client, siteID: siteID, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh fetch.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns the cached listing after ensuring it is fresh. It
// tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]Summary, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	listing, err := c.client.List(ctx, c.siteID, 0, 0)
	if err != nil {
		return nil, err
	}
	c.posts = listing.Posts
	c.fetched = time.Now()
	return c.posts, nil
}

// ListPosts returns the site's post summaries, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string) ([]Summary, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	var filtered []Summary
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == tag {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// GetPost returns a full post by slug. Summaries come from the cache but the
// body always requires a client fetch.
func (c *PostCache) GetPost(ctx context.Context, slug string) (*Article, error) {
	return c.client.Get(ctx, c.siteID, slug)
}
