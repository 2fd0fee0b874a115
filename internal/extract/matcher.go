package extract

import (
	"newsletter-analytics/internal/domain"
)

// Match finds a "<N> <word>" signal for category c in free text.
//
// Patterns are tried in their fixed order and every occurrence of a pattern
// is considered in text order. The first count with 0 < N <= ceiling wins,
// so "0 likes" is not treated as a found signal. Unknown categories and text
// without a plausible match yield domain.Unknown.
func Match(text string, c domain.MetricCategory) domain.Metric {
	vocab, ok := vocabularyFor(c)
	if !ok || text == "" {
		return domain.Unknown
	}

	ceiling := c.Ceiling()
	for _, pattern := range vocab.textPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			n, ok := atoi(m[1])
			if ok && n > 0 && n <= ceiling {
				return domain.Known(n)
			}
		}
	}

	return domain.Unknown
}
