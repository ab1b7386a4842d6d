// Package search turns claims into web search queries and runs them.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/debatelens/internal/cache"
	"github.com/ppiankov/debatelens/internal/model"
)

// Searcher is the web search capability: query in, ordered results out
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)
}

// CachedSearcher memoizes another Searcher's successful answers
type CachedSearcher struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedSearcher wraps next with c. A zero ttl uses the cache default.
func NewCachedSearcher(next Searcher, c cache.Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: c, ttl: ttl}
}

// Search returns cached results when present, otherwise delegates.
// Failures and empty answers are never cached; a soft-blocked search page
// parses to zero results and must not stick.
func (s *CachedSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	key := cache.Key(cache.KindSearch, fmt.Sprintf("%d|%s", maxResults, query))

	var results []model.SearchResult
	if cache.GetJSON(s.cache, key, &results) {
		return results, nil
	}

	results, err := s.next.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		_ = cache.SetJSON(s.cache, key, results, s.ttl)
	}
	return results, nil
}
