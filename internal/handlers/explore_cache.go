package handlers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"studio-space-backend/internal/cache"
	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/repo"
)

const exploreVersionKey = "explore:version"

// ExploreCache holds rendered anonymous explore pages. Entries are keyed by
// a version counter, so bumping the counter drops every page at once.
type ExploreCache struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewExploreCache(c cache.Cache, ttl time.Duration) *ExploreCache {
	return &ExploreCache{cache: c, ttl: ttl}
}

func (e *ExploreCache) key(ctx context.Context, q repo.BoardQuery) (string, error) {
	version, _, err := e.cache.Get(ctx, exploreVersionKey)
	if err != nil {
		return "", err
	}
	if version == "" {
		version = "0"
	}
	return fmt.Sprintf("explore:%s:%d:%d:%s:%s:%s", version, q.Page, q.Limit, q.Sort,
		url.QueryEscape(q.Search), url.QueryEscape(q.Tag)), nil
}

// cacheable is true for anonymous, non-random pages.
func (e *ExploreCache) cacheable(q repo.BoardQuery) bool {
	return e != nil && q.Viewer == uuid.Nil && q.Sort != repo.SortRandom
}

func (e *ExploreCache) Get(ctx context.Context, q repo.BoardQuery) ([]byte, bool) {
	if !e.cacheable(q) {
		return nil, false
	}
	key, err := e.key(ctx, q)
	if err != nil {
		logger.Log.WithError(err).Warn("explore cache unavailable")
		return nil, false
	}
	v, ok, err := e.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	return []byte(v), true
}

func (e *ExploreCache) Set(ctx context.Context, q repo.BoardQuery, body []byte) {
	if !e.cacheable(q) {
		return
	}
	key, err := e.key(ctx, q)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, string(body), e.ttl); err != nil {
		logger.Log.WithError(err).Warn("failed to cache explore page")
	}
}

// Invalidate is called after any change that can show up on the explore feed.
func (e *ExploreCache) Invalidate(ctx context.Context) {
	if e == nil {
		return
	}
	if _, err := e.cache.Incr(ctx, exploreVersionKey); err != nil {
		logger.Log.WithError(err).Warn("failed to invalidate explore cache")
	}
}
