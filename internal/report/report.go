// Package report turns a completed analysis into tabular sheets and renders
// them as a spreadsheet or a console summary.
package report

import (
	"time"

	"newsletter-analytics/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetOverview = "Publication Overview"
	SheetSummary  = "Analytics Summary"
	SheetPosts    = "All Posts"
	SheetTop      = "Top Posts"
)

// UnknownValue is rendered in place of a metric that was not found.
const UnknownValue = "-"

// SubscribersUnavailable is rendered when no subscriber count was found.
const SubscribersUnavailable = "Not publicly available (privacy setting)"

// TimestampLayout formats dates shown in reports.
const TimestampLayout = "2006-01-02 15:04:05"

// Sheet is one table of the report. Cells hold string, int or float64 values.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

var (
	postsHeader = []string{
		"Title", "Published Date", "Likes", "Comments", "Shares", "Restacks",
		"Word Count", "Reading Time (min)", "Total Engagement", "Link",
	}
	topHeader = []string{
		"Rank", "Title", "Total Engagement", "Likes", "Comments", "Shares", "Restacks",
		"Word Count", "Reading Time (min)", "Published Date",
	}
)

// Assemble builds the four report sheets. Summary values use the rounded
// presentation view; posts appear in feed order.
func Assemble(a *domain.Analysis) []Sheet {
	return []Sheet{
		overviewSheet(a),
		summarySheet(a.Analytics.Summary()),
		postsSheet(a.Posts),
		topSheet(a.Analytics.TopPosts),
	}
}

func overviewSheet(a *domain.Analysis) Sheet {
	pub := a.Publication

	return Sheet{
		Name:   SheetOverview,
		Header: []string{"Property", "Value"},
		Rows: [][]any{
			{"Publication Name", pub.Name},
			{"URL", pub.URL},
			{"Subscriber Count", SubscriberCell(pub.SubscriberCount)},
			{"Last Updated", formatTime(pub.LastUpdated)},
			{"Analysis Date", formatTime(a.GeneratedAt)},
		},
	}
}

func summarySheet(s domain.AnalyticsSummary) Sheet {
	return Sheet{
		Name:   SheetSummary,
		Header: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Posts Analyzed", s.TotalPostsAnalyzed},
			{"Average Likes per Post", s.AverageLikes},
			{"Average Comments per Post", s.AverageComments},
			{"Average Shares per Post", s.AverageShares},
			{"Average Restacks per Post", s.AverageRestacks},
			{"Average Word Count", s.AverageWordCount},
			{"Average Reading Time (minutes)", s.AverageReadingTime},
			{"Publishing Frequency (posts/week)", s.PublishingFrequency},
			{"Total Engagement", s.TotalEngagement},
		},
	}
}

func postsSheet(posts []domain.PostMetrics) Sheet {
	rows := make([][]any, len(posts))
	for i, p := range posts {
		rows[i] = []any{
			p.Title, p.PubDate,
			MetricCell(p.Likes), MetricCell(p.Comments), MetricCell(p.Shares), MetricCell(p.Restacks),
			p.WordCount, p.ReadingTimeMinutes, p.TotalEngagement, p.Link,
		}
	}

	return Sheet{Name: SheetPosts, Header: postsHeader, Rows: rows}
}

func topSheet(top []domain.PostMetrics) Sheet {
	rows := make([][]any, len(top))
	for i, p := range top {
		rows[i] = []any{
			i + 1, p.Title, p.TotalEngagement,
			MetricCell(p.Likes), MetricCell(p.Comments), MetricCell(p.Shares), MetricCell(p.Restacks),
			p.WordCount, p.ReadingTimeMinutes, p.PubDate,
		}
	}

	return Sheet{Name: SheetTop, Header: topHeader, Rows: rows}
}

// MetricCell returns the count, or UnknownValue.
func MetricCell(m domain.Metric) any {
	if v, ok := m.Value(); ok {
		return v
	}

	return UnknownValue
}

// SubscriberCell returns the count, or SubscribersUnavailable.
func SubscriberCell(m domain.Metric) any {
	if v, ok := m.Value(); ok {
		return v
	}

	return SubscribersUnavailable
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(TimestampLayout)
}
