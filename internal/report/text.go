package report

import (
	"fmt"
	"io"
	"strings"

	"newsletter-analytics/internal/domain"
)

// WriteSummary prints the console overview: publication, rounded metrics
// and the top posts.
func WriteSummary(w io.Writer, a *domain.Analysis) error {
	pub := a.Publication
	s := a.Analytics.Summary()

	var b strings.Builder

	fmt.Fprintf(&b, "[PUBLICATION OVERVIEW]\n")
	fmt.Fprintf(&b, "Name: %s\n", pub.Name)
	fmt.Fprintf(&b, "URL: %s\n", pub.URL)
	fmt.Fprintf(&b, "Subscribers: %v\n", SubscriberCell(pub.SubscriberCount))
	fmt.Fprintf(&b, "Last Updated: %s\n", formatTime(pub.LastUpdated))

	fmt.Fprintf(&b, "\n[PERFORMANCE METRICS]\n")
	fmt.Fprintf(&b, "Posts Analyzed: %d\n", s.TotalPostsAnalyzed)
	fmt.Fprintf(&b, "Average Likes per Post: %.1f\n", s.AverageLikes)
	fmt.Fprintf(&b, "Average Comments per Post: %.1f\n", s.AverageComments)
	fmt.Fprintf(&b, "Average Shares per Post: %.1f\n", s.AverageShares)
	fmt.Fprintf(&b, "Average Restacks per Post: %.1f\n", s.AverageRestacks)
	fmt.Fprintf(&b, "Average Word Count: %d\n", s.AverageWordCount)
	fmt.Fprintf(&b, "Average Reading Time: %.1f minutes\n", s.AverageReadingTime)
	fmt.Fprintf(&b, "Publishing Frequency: %.1f posts/week\n", s.PublishingFrequency)
	fmt.Fprintf(&b, "Total Engagement: %d\n", s.TotalEngagement)

	fmt.Fprintf(&b, "\n[TOP PERFORMING POSTS]\n")
	for i, p := range a.Analytics.TopPosts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
		fmt.Fprintf(&b, "   Engagement: %d (Likes: %s, Comments: %s, Shares: %s, Restacks: %s)\n",
			p.TotalEngagement, p.Likes, p.Comments, p.Shares, p.Restacks)
		fmt.Fprintf(&b, "   Word Count: %d, Reading Time: %d min\n", p.WordCount, p.ReadingTimeMinutes)
		fmt.Fprintf(&b, "   Published: %s\n", p.PubDate)
		b.WriteString(strings.Repeat("-", 50) + "\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}
