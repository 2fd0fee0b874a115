package page

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
)

// CachedFetcher serves documents from a cache before going to the network.
// Engagement counts read through it can be as old as the TTL. Cache failures
// never fail a fetch.
type CachedFetcher struct {
	next   domain.DocumentFetcher
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedFetcher wraps next with cache. A nil cache disables caching.
func NewCachedFetcher(next domain.DocumentFetcher, cache domain.Cache, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// FetchDocument implements domain.DocumentFetcher.
func (f *CachedFetcher) FetchDocument(ctx context.Context, url string) (string, error) {
	if f.cache == nil {
		return f.next.FetchDocument(ctx, url)
	}

	key := documentKey(url)
	if data, err := f.cache.Get(ctx, key); err == nil && data != nil {
		return string(data), nil
	} else if err != nil {
		f.logger.Warn("document cache read failed", zap.String("url", url), zap.Error(err))
	}

	body, err := f.next.FetchDocument(ctx, url)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, key, []byte(body), f.ttl); err != nil {
		f.logger.Warn("document cache write failed", zap.String("url", url), zap.Error(err))
	}

	return body, nil
}

// documentKey hashes the URL to keep keys short and free of separators.
func documentKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "doc:" + hex.EncodeToString(sum[:])
}
