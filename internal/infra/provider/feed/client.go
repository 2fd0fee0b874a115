// Package feed implements the publication syndication feed client.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/infra/provider"
)

const acceptFeed = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"

// Client implements domain.FeedFetcher.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a feed client.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: provider.NewRestyClient(cfg),
		cb:     provider.NewCircuitBreaker[*resty.Response]("feed", cfg.CB, logger),
		logger: logger,
	}
}

// FetchFeed retrieves and parses the publication feed. Posts keep feed order.
func (c *Client) FetchFeed(ctx context.Context, ref domain.PublicationRef) ([]domain.Post, error) {
	feedURL := ref.FeedURL()

	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetHeader("Accept", acceptFeed).
			Get(feedURL)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("feed returned status %d", r.StatusCode())
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("feed fetch failed",
			zap.String("url", feedURL),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	parsed, err := gofeed.NewParser().ParseString(resp.String())
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	posts := make([]domain.Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		posts = append(posts, toDomain(item))
	}

	c.logger.Info("feed fetch completed",
		zap.String("publication", ref.Name),
		zap.Int("count", len(posts)),
	)

	return posts, nil
}

func toDomain(item *gofeed.Item) domain.Post {
	post := domain.NewPost(item.Title, item.Link, item.Description, item.Published, authorName(item))
	if len(item.Categories) > 0 {
		post.Categories = make([]string, 0, len(item.Categories))
		for _, category := range item.Categories {
			if category = strings.TrimSpace(category); category != "" {
				post.Categories = append(post.Categories, category)
			}
		}
	}

	return post
}

func authorName(item *gofeed.Item) string {
	names := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			names = append(names, strings.TrimSpace(a.Name))
		}
	}

	return strings.Join(names, ", ")
}
