package folio

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eringen/folio/contentapi"
)

// ContentCache is an in-memory TTL cache of the public slice of the content
// API: published posts (newest first), visible photos and the tag names of
// published posts. Admin writes call Invalidate.
type ContentCache struct {
	mu      sync.RWMutex
	posts   []contentapi.BlogPost
	photos  []contentapi.Photo
	tags    []string
	fetched time.Time
	loaded  bool
	ttl     time.Duration
	api     ContentAPI
}

// NewContentCache creates a ContentCache backed by api.
func NewContentCache(api ContentAPI, ttl time.Duration) *ContentCache {
	return &ContentCache{api: api, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.photos = nil
	c.tags = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *ContentCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	all, err := c.api.ListPosts(ctx)
	if err != nil {
		return err
	}
	photos, err := c.api.ListPhotos(ctx)
	if err != nil {
		return err
	}
	c.posts = PublishedPosts(all)
	c.photos = VisiblePhotos(photos)
	c.tags = tagNames(c.posts)
	c.fetched = time.Now()
	c.loaded = true
	return nil
}

// ensureLoaded returns cached content after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ContentCache) ensureLoaded(ctx context.Context) ([]contentapi.BlogPost, []contentapi.Photo, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, photos, tags := c.posts, c.photos, c.tags
		c.mu.RUnlock()
		return posts, photos, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, nil, err
	}
	return c.posts, c.photos, c.tags, nil
}

// PublishedPosts returns published posts, optionally filtered by tag name
// (case-insensitive).
func (c *ContentCache) PublishedPosts(ctx context.Context, tag string) ([]contentapi.BlogPost, error) {
	posts, _, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []contentapi.BlogPost
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeTag(t.Name) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// VisiblePhotos returns photos marked visible.
func (c *ContentCache) VisiblePhotos(ctx context.Context) ([]contentapi.Photo, error) {
	_, photos, _, err := c.ensureLoaded(ctx)
	return photos, err
}

// Tags returns the sorted, deduplicated tag names of published posts.
func (c *ContentCache) Tags(ctx context.Context) ([]string, error) {
	_, _, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// PublishedPosts keeps only published posts and orders them newest first.
func PublishedPosts(all []contentapi.BlogPost) []contentapi.BlogPost {
	var out []contentapi.BlogPost
	for _, p := range all {
		if p.Published() {
			out = append(out, p)
		}
	}
	SortNewestFirst(out)
	return out
}

// VisiblePhotos keeps only photos marked visible, preserving order.
func VisiblePhotos(all []contentapi.Photo) []contentapi.Photo {
	var out []contentapi.Photo
	for _, p := range all {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// SortNewestFirst orders posts by CreatedAt descending, breaking ties by id
// descending. Integer ids compare numerically.
func SortNewestFirst(posts []contentapi.BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return idAfter(posts[i].ID, posts[j].ID)
	})
}

func idAfter(a, b contentapi.ID) bool {
	na, errA := strconv.ParseInt(string(a), 10, 64)
	nb, errB := strconv.ParseInt(string(b), 10, 64)
	if errA == nil && errB == nil {
		return na > nb
	}
	return a > b
}

func tagNames(posts []contentapi.BlogPost) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			if n := normalizeTag(t.Name); n != "" {
				set[n] = struct{}{}
			}
		}
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
