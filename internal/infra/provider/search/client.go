// Package search implements the public publication directory client used as
// a subscriber count fallback.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/infra/provider"
)

// Endpoint is the directory search path.
const Endpoint = "/api/v1/publication/search"

// resultLimit is how many directory entries are scanned for a match.
const resultLimit = 20

// Client implements domain.SubscriberLookup.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*Response]
	logger *zap.Logger
}

// New creates a directory search client. cfg.BaseURL is the directory host.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	client := provider.NewRestyClient(cfg).
		SetHeader("Accept", "application/json").
		SetHeader("Origin", cfg.BaseURL).
		SetHeader("Referer", cfg.BaseURL+"/discover")

	return &Client{
		client: client,
		cb:     provider.NewCircuitBreaker[*Response]("search", cfg.CB, logger),
		logger: logger,
	}
}

// LookupSubscriberCount searches the directory for ref and returns the
// subscriber count of the first matching entry that reports a positive one.
func (c *Client) LookupSubscriberCount(ctx context.Context, ref domain.PublicationRef) (domain.Metric, error) {
	result, err := c.cb.Execute(func() (*Response, error) {
		var out Response
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParam("query", ref.Name).
			SetQueryParam("limit", strconv.Itoa(resultLimit)).
			SetResult(&out).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("search returned status %d", r.StatusCode())
		}

		return &out, nil
	})
	if err != nil {
		c.logger.Warn("subscriber lookup failed",
			zap.String("publication", ref.Name),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return domain.Unknown, fmt.Errorf("searching directory for %s: %w", ref.Name, err)
	}

	for _, pub := range result.Publications {
		if !pub.Matches(ref) {
			continue
		}
		if n, ok := pub.Subscribers(); ok {
			c.logger.Debug("subscriber count found in directory",
				zap.String("publication", ref.Name),
				zap.Int("subscribers", n),
			)

			return domain.Known(n), nil
		}
	}

	return domain.Unknown, nil
}
