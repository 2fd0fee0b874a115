// Package page implements the HTML document fetcher used for post and
// publication pages.
package page

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/infra/provider"
)

// Client implements domain.DocumentFetcher.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a page client. Requests carry no-cache headers so that
// intermediaries return current counts. A CachedFetcher in front of the
// client serves counts up to cache.document_ttl old.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	client := provider.NewRestyClient(cfg).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Pragma", "no-cache")

	return &Client{
		client: client,
		cb:     provider.NewCircuitBreaker[*resty.Response]("page", cfg.CB, logger),
		logger: logger,
	}
}

// FetchDocument returns the HTML body of url.
func (c *Client) FetchDocument(ctx context.Context, url string) (string, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			Get(url)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("page returned status %d", r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("page fetch failed",
			zap.String("url", url),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return "", fmt.Errorf("%w: %s: %w", domain.ErrDocumentUnavailable, url, err)
	}

	return resp.String(), nil
}
