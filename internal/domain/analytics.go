package domain

import (
	"math"
	"sort"
	"time"
)

// DefaultTopN is the number of posts ranked in the top posts list.
const DefaultTopN = 5

// PublicationAnalytics summarizes a set of post metrics. Values are kept
// unrounded; Summary applies presentation rounding.
type PublicationAnalytics struct {
	TotalPostsAnalyzed  int           `json:"total_posts_analyzed" yaml:"total_posts_analyzed"`
	AverageLikes        float64       `json:"average_likes" yaml:"average_likes"`
	AverageComments     float64       `json:"average_comments" yaml:"average_comments"`
	AverageShares       float64       `json:"average_shares" yaml:"average_shares"`
	AverageRestacks     float64       `json:"average_restacks" yaml:"average_restacks"`
	AverageWordCount    float64       `json:"average_word_count" yaml:"average_word_count"`
	AverageReadingTime  float64       `json:"average_reading_time" yaml:"average_reading_time"`
	PublishingFrequency float64       `json:"publishing_frequency" yaml:"publishing_frequency"`
	TotalEngagement     int           `json:"total_engagement" yaml:"total_engagement"`
	TopPosts            []PostMetrics `json:"top_posts" yaml:"top_posts"`
}

// AnalyticsSummary is PublicationAnalytics rounded for display:
// one decimal place for rates, whole numbers for word count.
type AnalyticsSummary struct {
	TotalPostsAnalyzed  int     `json:"total_posts_analyzed" yaml:"total_posts_analyzed"`
	AverageLikes        float64 `json:"average_likes" yaml:"average_likes"`
	AverageComments     float64 `json:"average_comments" yaml:"average_comments"`
	AverageShares       float64 `json:"average_shares" yaml:"average_shares"`
	AverageRestacks     float64 `json:"average_restacks" yaml:"average_restacks"`
	AverageWordCount    int     `json:"average_word_count" yaml:"average_word_count"`
	AverageReadingTime  float64 `json:"average_reading_time" yaml:"average_reading_time"`
	PublishingFrequency float64 `json:"publishing_frequency" yaml:"publishing_frequency"`
	TotalEngagement     int     `json:"total_engagement" yaml:"total_engagement"`
}

// Summary returns the rounded presentation view.
func (a PublicationAnalytics) Summary() AnalyticsSummary {
	return AnalyticsSummary{
		TotalPostsAnalyzed:  a.TotalPostsAnalyzed,
		AverageLikes:        round1(a.AverageLikes),
		AverageComments:     round1(a.AverageComments),
		AverageShares:       round1(a.AverageShares),
		AverageRestacks:     round1(a.AverageRestacks),
		AverageWordCount:    int(math.Round(a.AverageWordCount)),
		AverageReadingTime:  round1(a.AverageReadingTime),
		PublishingFrequency: round1(a.PublishingFrequency),
		TotalEngagement:     a.TotalEngagement,
	}
}

// Analysis is a completed run for one publication.
type Analysis struct {
	ID          string               `json:"id,omitempty" yaml:"id,omitempty"`
	Publication Publication          `json:"publication" yaml:"publication"`
	Analytics   PublicationAnalytics `json:"analytics" yaml:"analytics"`
	Posts       []PostMetrics        `json:"posts" yaml:"posts"`
	GeneratedAt time.Time            `json:"generated_at" yaml:"generated_at"`
}

// Aggregate computes publication analytics over posts in feed order.
// Unknown metrics count as zero in every mean.
//
// Example: likes {10, unknown, 20} → average (10+0+20)/3 = 10.0
func Aggregate(posts []PostMetrics, topN int) (PublicationAnalytics, error) {
	if len(posts) == 0 {
		return PublicationAnalytics{}, ErrNoPosts
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	var likes, comments, shares, restacks, words, reading, total int
	for _, p := range posts {
		likes += p.Likes.OrZero()
		comments += p.Comments.OrZero()
		shares += p.Shares.OrZero()
		restacks += p.Restacks.OrZero()
		words += p.WordCount
		reading += p.ReadingTimeMinutes
		total += p.TotalEngagement
	}

	n := float64(len(posts))

	return PublicationAnalytics{
		TotalPostsAnalyzed:  len(posts),
		AverageLikes:        float64(likes) / n,
		AverageComments:     float64(comments) / n,
		AverageShares:       float64(shares) / n,
		AverageRestacks:     float64(restacks) / n,
		AverageWordCount:    float64(words) / n,
		AverageReadingTime:  float64(reading) / n,
		PublishingFrequency: PublishingFrequency(posts),
		TotalEngagement:     total,
		TopPosts:            TopPosts(posts, topN),
	}, nil
}

// TopPosts returns up to n posts by descending total engagement. The sort
// is stable, so ties keep feed order. The input slice is not modified.
func TopPosts(posts []PostMetrics, n int) []PostMetrics {
	ranked := make([]PostMetrics, len(posts))
	copy(ranked, posts)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalEngagement > ranked[j].TotalEngagement
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}

	return ranked
}

// PublishingFrequency returns posts per week over the span between the
// oldest and newest dated posts. The count is over all posts, dated or not.
//
//	8 posts over 14 days → 8 / (14/7) = 4.0
//
// Fewer than two dated posts, or a span under one whole day, yields 0.
func PublishingFrequency(posts []PostMetrics) float64 {
	var oldest, newest time.Time
	dated := 0

	for _, p := range posts {
		if p.PublishedAt == nil {
			continue
		}
		t := *p.PublishedAt
		if dated == 0 || t.Before(oldest) {
			oldest = t
		}
		if dated == 0 || t.After(newest) {
			newest = t
		}
		dated++
	}

	if dated < 2 {
		return 0
	}

	days := int(newest.Sub(oldest).Hours() / 24)
	if days == 0 {
		return 0
	}

	return float64(len(posts)) / (float64(days) / 7)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
