// Package registry builds the upstream clients from configuration.
package registry

import (
	"time"

	"go.uber.org/zap"

	"newsletter-analytics/internal/config"
	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/infra/provider"
	"newsletter-analytics/internal/infra/provider/feed"
	"newsletter-analytics/internal/infra/provider/page"
	"newsletter-analytics/internal/infra/provider/search"
)

// Clients bundles the upstream ports used by the analysis service.
type Clients struct {
	Feed domain.FeedFetcher
	// Pages fetches post pages, through the cache when one is configured.
	Pages domain.DocumentFetcher
	// HomePages always hits the network.
	HomePages   domain.DocumentFetcher
	Subscribers domain.SubscriberLookup
}

// NewClients creates the feed, page and directory search clients. A nil
// cache disables post page caching.
func NewClients(cfg config.ProviderConfig, cache domain.Cache, documentTTL time.Duration, logger *zap.Logger) Clients {
	home := page.New(clientConfig(cfg.Page, cfg.UserAgent), logger)

	var pages domain.DocumentFetcher = home
	if cache != nil {
		pages = page.NewCachedFetcher(home, cache, documentTTL, logger)
	}

	return Clients{
		Feed:        feed.New(clientConfig(cfg.Feed, cfg.UserAgent), logger),
		Pages:       pages,
		HomePages:   home,
		Subscribers: search.New(clientConfig(cfg.Search, cfg.UserAgent), logger),
	}
}

func clientConfig(e config.UpstreamConfig, userAgent string) provider.ClientConfig {
	return provider.ClientConfig{
		BaseURL:   e.BaseURL,
		Timeout:   e.Timeout,
		UserAgent: userAgent,
		Retry: provider.RetryConfig{
			MaxAttempts: e.Retry.MaxAttempts,
			WaitTime:    e.Retry.WaitTime,
			MaxWaitTime: e.Retry.MaxWaitTime,
		},
		CB: provider.CBConfig{
			MaxRequests:  e.CB.MaxRequests,
			Interval:     e.CB.Interval,
			Timeout:      e.CB.Timeout,
			FailureRatio: e.CB.FailureRatio,
		},
	}
}
