package domain

import (
	"strings"
	"time"
)

// WordsPerMinute is the reading speed used to derive reading time.
const WordsPerMinute = 200

// pubDateLayouts are the calendar formats accepted for feed timestamps.
// Feeds emit RFC 1123 with a zone name ("GMT"); numeric offsets also occur.
var pubDateLayouts = []string{time.RFC1123, time.RFC1123Z}

// Post is one feed item. Link is its identity.
type Post struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	PubDate     string     `json:"pub_date"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Author      string     `json:"author"`
	Categories  []string   `json:"categories,omitempty"`
}

// NewPost creates a Post and parses its raw publication date.
func NewPost(title, link, description, pubDate, author string) Post {
	return Post{
		Title:       strings.TrimSpace(title),
		Link:        strings.TrimSpace(link),
		Description: strings.TrimSpace(description),
		PubDate:     strings.TrimSpace(pubDate),
		PublishedAt: ParsePubDate(pubDate),
		Author:      strings.TrimSpace(author),
	}
}

// ParsePubDate parses a feed timestamp. Returns nil for empty or
// unparsable input.
func ParsePubDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}

	return nil
}

// PostMetrics is the engagement record of a single post.
// Derived fields are computed once on construction and never change.
type PostMetrics struct {
	Post

	Likes    Metric `json:"likes"`
	Comments Metric `json:"comments"`
	Shares   Metric `json:"shares"`
	Restacks Metric `json:"restacks"`

	WordCount          int `json:"word_count"`
	ReadingTimeMinutes int `json:"reading_time"`
	TotalEngagement    int `json:"total_engagement"`
}

// NewPostMetrics builds a record from extracted signals and a word count.
func NewPostMetrics(post Post, likes, comments, shares, restacks Metric, wordCount int) PostMetrics {
	if wordCount < 0 {
		wordCount = 0
	}

	return PostMetrics{
		Post:               post,
		Likes:              likes,
		Comments:           comments,
		Shares:             shares,
		Restacks:           restacks,
		WordCount:          wordCount,
		ReadingTimeMinutes: ReadingTime(wordCount),
		TotalEngagement:    likes.OrZero() + comments.OrZero() + shares.OrZero() + restacks.OrZero(),
	}
}

// DegradedPostMetrics is the record for a post whose page could not be
// fetched or parsed: every signal unknown, every count zero.
func DegradedPostMetrics(post Post) PostMetrics {
	return NewPostMetrics(post, Unknown, Unknown, Unknown, Unknown, 0)
}

// Metric returns the signal for a post category.
func (m PostMetrics) Metric(c MetricCategory) Metric {
	switch c {
	case CategoryLikes:
		return m.Likes
	case CategoryComments:
		return m.Comments
	case CategoryShares:
		return m.Shares
	case CategoryRestacks:
		return m.Restacks
	default:
		return Unknown
	}
}

// ReadingTime returns whole minutes at WordsPerMinute, at least one minute
// for any non-empty post.
//
//	0 words   → 0
//	150 words → 1
//	450 words → 2
func ReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}

	return max(1, wordCount/WordsPerMinute)
}
