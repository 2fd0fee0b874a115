package extract

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
)

// Extractor runs the strategy cascade for one category at a time.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewExtractor creates an Extractor. Without explicit strategies the
// default cascade is used.
func NewExtractor(logger *zap.Logger, strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	return &Extractor{
		strategies: strategies,
		logger:     logger,
	}
}

// Extract returns the first plausible count for category c, or Unknown.
func (e *Extractor) Extract(doc *goquery.Document, c domain.MetricCategory) domain.Metric {
	m, _ := e.ExtractWithSource(doc, c)
	return m
}

// ExtractWithSource is Extract plus the name of the strategy that produced
// the value. The source is empty when the signal was not found.
func (e *Extractor) ExtractWithSource(doc *goquery.Document, c domain.MetricCategory) (domain.Metric, string) {
	if doc == nil || !c.IsValid() {
		return domain.Unknown, ""
	}

	for _, s := range e.strategies {
		res := s.Probe(doc, c)

		switch res.Outcome {
		case Found:
			return domain.Known(res.Value), s.Name()
		case Failed:
			e.logger.Debug("extraction strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("category", string(c)),
				zap.Error(res.Err),
			)
		}
	}

	return domain.Unknown, ""
}
