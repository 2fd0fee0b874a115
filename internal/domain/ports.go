package domain

import (
	"context"
	"time"
)

// FeedFetcher retrieves the posts of a publication's syndication feed.
// Implementations: internal/infra/provider/feed/
type FeedFetcher interface {
	// FetchFeed returns posts in feed order.
	FetchFeed(ctx context.Context, ref PublicationRef) ([]Post, error)
}

// DocumentFetcher retrieves raw HTML for a URL.
// Implementations: internal/infra/provider/page/
type DocumentFetcher interface {
	// FetchDocument returns the page body. Failures wrap ErrDocumentUnavailable.
	FetchDocument(ctx context.Context, url string) (string, error)
}

// SubscriberLookup queries an external directory for a subscriber count.
// Implementations: internal/infra/provider/search/
type SubscriberLookup interface {
	// LookupSubscriberCount returns Unknown when no entry matches.
	LookupSubscriberCount(ctx context.Context, ref PublicationRef) (Metric, error)
}

// ReportWriter renders a completed analysis into a report artifact.
// Implementations: internal/report/
type ReportWriter interface {
	// WriteReport returns the location of the written report.
	WriteReport(ctx context.Context, analysis *Analysis) (string, error)
}

// AnalysisRepository persists completed analyses.
// Implementations: internal/infra/postgres/repository.go
type AnalysisRepository interface {
	// Save stores the analysis and its posts, assigning analysis.ID.
	Save(ctx context.Context, analysis *Analysis) error

	// Latest returns the newest analysis for a publication key, or nil
	// when none has been stored.
	Latest(ctx context.Context, publication string) (*Analysis, error)

	// History lists the newest analyses for a publication without posts.
	History(ctx context.Context, publication string, limit int) ([]*Analysis, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
