package dto

import (
	"time"

	"newsletter-analytics/internal/domain"
)

// PublicationResponse describes the analyzed publication.
type PublicationResponse struct {
	Key             string        `json:"key" yaml:"key"`
	Name            string        `json:"name" yaml:"name"`
	URL             string        `json:"url" yaml:"url"`
	Description     string        `json:"description,omitempty" yaml:"description,omitempty"`
	SubscriberCount domain.Metric `json:"subscriber_count" yaml:"subscriber_count"`
	LastUpdated     string        `json:"last_updated" yaml:"last_updated"`
}

// PostResponse is one post's metrics. Unknown metrics are null.
type PostResponse struct {
	Title              string        `json:"title" yaml:"title"`
	Link               string        `json:"link" yaml:"link"`
	PubDate            string        `json:"pub_date" yaml:"pub_date"`
	Author             string        `json:"author,omitempty" yaml:"author,omitempty"`
	Likes              domain.Metric `json:"likes" yaml:"likes"`
	Comments           domain.Metric `json:"comments" yaml:"comments"`
	Shares             domain.Metric `json:"shares" yaml:"shares"`
	Restacks           domain.Metric `json:"restacks" yaml:"restacks"`
	WordCount          int           `json:"word_count" yaml:"word_count"`
	ReadingTimeMinutes int           `json:"reading_time" yaml:"reading_time"`
	TotalEngagement    int           `json:"total_engagement" yaml:"total_engagement"`
}

// AnalysisResponse is a stored or fresh analysis run.
type AnalysisResponse struct {
	ID          string                  `json:"id,omitempty" yaml:"id,omitempty"`
	Publication PublicationResponse     `json:"publication" yaml:"publication"`
	Analytics   domain.AnalyticsSummary `json:"analytics" yaml:"analytics"`
	TopPosts    []PostResponse          `json:"top_posts" yaml:"top_posts"`
	Posts       []PostResponse          `json:"posts,omitempty" yaml:"posts,omitempty"`
	GeneratedAt string                  `json:"generated_at" yaml:"generated_at"`
	Fresh       bool                    `json:"fresh" yaml:"fresh"`
	ReportURL   string                  `json:"report_url,omitempty" yaml:"report_url,omitempty"`
	ReportPath  string                  `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// FromPostMetrics converts domain.PostMetrics to PostResponse.
func FromPostMetrics(p domain.PostMetrics) PostResponse {
	return PostResponse{
		Title:              p.Title,
		Link:               p.Link,
		PubDate:            p.PubDate,
		Author:             p.Author,
		Likes:              p.Likes,
		Comments:           p.Comments,
		Shares:             p.Shares,
		Restacks:           p.Restacks,
		WordCount:          p.WordCount,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		TotalEngagement:    p.TotalEngagement,
	}
}

func fromPosts(posts []domain.PostMetrics) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = FromPostMetrics(p)
	}

	return out
}

// FromAnalysis converts a domain.Analysis. Posts are included only when
// withPosts is set.
func FromAnalysis(a *domain.Analysis, fresh, withPosts bool) AnalysisResponse {
	resp := AnalysisResponse{
		ID: a.ID,
		Publication: PublicationResponse{
			Key:             a.Publication.Key,
			Name:            a.Publication.Name,
			URL:             a.Publication.URL,
			Description:     a.Publication.Description,
			SubscriberCount: a.Publication.SubscriberCount,
			LastUpdated:     formatTime(a.Publication.LastUpdated),
		},
		Analytics:   a.Analytics.Summary(),
		TopPosts:    fromPosts(a.Analytics.TopPosts),
		GeneratedAt: formatTime(a.GeneratedAt),
		Fresh:       fresh,
	}
	if withPosts {
		resp.Posts = fromPosts(a.Posts)
	}

	return resp
}

// RunSummary is one entry of a publication's run history.
type RunSummary struct {
	ID          string                  `json:"id" yaml:"id"`
	GeneratedAt string                  `json:"generated_at" yaml:"generated_at"`
	Subscribers domain.Metric           `json:"subscriber_count" yaml:"subscriber_count"`
	Analytics   domain.AnalyticsSummary `json:"analytics" yaml:"analytics"`
}

// HistoryResponse lists previous runs, newest first.
type HistoryResponse struct {
	Publication string       `json:"publication" yaml:"publication"`
	Runs        []RunSummary `json:"runs" yaml:"runs"`
}

// FromHistory converts stored runs to a HistoryResponse.
func FromHistory(publication string, runs []*domain.Analysis) HistoryResponse {
	resp := HistoryResponse{Publication: publication, Runs: make([]RunSummary, len(runs))}
	for i, r := range runs {
		resp.Runs[i] = RunSummary{
			ID:          r.ID,
			GeneratedAt: formatTime(r.GeneratedAt),
			Subscribers: r.Publication.SubscriberCount,
			Analytics:   r.Analytics.Summary(),
		}
	}

	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error" yaml:"error"`
	Code    string `json:"code,omitempty" yaml:"code,omitempty"`
	Details any    `json:"details,omitempty" yaml:"details,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}
