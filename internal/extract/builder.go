package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
)

// Builder turns a post and its page into a PostMetrics record.
type Builder struct {
	extractor *Extractor
	logger    *zap.Logger
}

// NewBuilder creates a Builder on top of an Extractor.
func NewBuilder(extractor *Extractor, logger *zap.Logger) *Builder {
	return &Builder{
		extractor: extractor,
		logger:    logger,
	}
}

// Build parses the page HTML and extracts the four post signals and the word
// count. Markup that cannot be parsed yields degraded metrics.
func (b *Builder) Build(post domain.Post, page string) domain.PostMetrics {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		b.logger.Warn("failed to parse post page",
			zap.String("link", post.Link),
			zap.Error(err),
		)

		return domain.DegradedPostMetrics(post)
	}

	return b.BuildFromDocument(post, doc)
}

// BuildFromDocument is Build over an already parsed document.
func (b *Builder) BuildFromDocument(post domain.Post, doc *goquery.Document) domain.PostMetrics {
	signals := make(map[domain.MetricCategory]domain.Metric, 4)
	for _, c := range domain.PostCategories() {
		m, source := b.extractor.ExtractWithSource(doc, c)
		signals[c] = m
		if source != "" {
			b.logger.Debug("signal extracted",
				zap.String("link", post.Link),
				zap.String("category", string(c)),
				zap.String("strategy", source),
				zap.Stringer("value", m),
			)
		}
	}

	return domain.NewPostMetrics(
		post,
		signals[domain.CategoryLikes],
		signals[domain.CategoryComments],
		signals[domain.CategoryShares],
		signals[domain.CategoryRestacks],
		WordCount(doc),
	)
}
