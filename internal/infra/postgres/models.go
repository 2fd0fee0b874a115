package postgres

import (
	"time"

	"github.com/lib/pq"

	"newsletter-analytics/internal/domain"
)

// AnalysisRunModel is the GORM model for the analysis_runs table.
// Averages are stored unrounded.
type AnalysisRunModel struct {
	ID                     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PublicationKey         string    `gorm:"type:varchar(100);not null;index:idx_runs_publication_generated,priority:1"`
	PublicationName        string    `gorm:"type:varchar(500);not null"`
	PublicationURL         string    `gorm:"type:varchar(500);not null"`
	PublicationDescription string    `gorm:"type:text"`
	SubscriberCount        *int      `gorm:"type:integer"`
	TotalPostsAnalyzed     int       `gorm:"not null"`
	AverageLikes           float64   `gorm:"type:double precision;not null"`
	AverageComments        float64   `gorm:"type:double precision;not null"`
	AverageShares          float64   `gorm:"type:double precision;not null"`
	AverageRestacks        float64   `gorm:"type:double precision;not null"`
	AverageWordCount       float64   `gorm:"type:double precision;not null"`
	AverageReadingTime     float64   `gorm:"type:double precision;not null"`
	PublishingFrequency    float64   `gorm:"type:double precision;not null"`
	TotalEngagement        int       `gorm:"not null"`
	TopN                   int       `gorm:"not null"`
	GeneratedAt            time.Time `gorm:"not null;index:idx_runs_publication_generated,priority:2,sort:desc"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`

	Posts []PostMetricsModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for AnalysisRunModel.
func (AnalysisRunModel) TableName() string {
	return "analysis_runs"
}

// PostMetricsModel is the GORM model for the post_metrics table.
// Unknown metrics are NULL.
type PostMetricsModel struct {
	ID                 string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID              string         `gorm:"type:uuid;not null;index:idx_post_metrics_run_position,priority:1"`
	Position           int            `gorm:"not null;index:idx_post_metrics_run_position,priority:2"`
	Title              string         `gorm:"type:text;not null"`
	Link               string         `gorm:"type:text;not null"`
	Description        string         `gorm:"type:text"`
	PubDate            string         `gorm:"type:varchar(100)"`
	PublishedAt        *time.Time     `gorm:"index"`
	Author             string         `gorm:"type:varchar(255)"`
	Categories         pq.StringArray `gorm:"type:text[]"`
	Likes              *int           `gorm:"type:integer"`
	Comments           *int           `gorm:"type:integer"`
	Shares             *int           `gorm:"type:integer"`
	Restacks           *int           `gorm:"type:integer"`
	WordCount          int            `gorm:"not null;default:0"`
	ReadingTimeMinutes int            `gorm:"not null;default:0"`
	TotalEngagement    int            `gorm:"not null;default:0"`
}

// TableName returns the table name for PostMetricsModel.
func (PostMetricsModel) TableName() string {
	return "post_metrics"
}

// ToDomain converts the row back to domain.PostMetrics. Reading time and
// total engagement are derived again from the stored counts.
func (m *PostMetricsModel) ToDomain() domain.PostMetrics {
	post := domain.Post{
		Title:       m.Title,
		Link:        m.Link,
		Description: m.Description,
		PubDate:     m.PubDate,
		PublishedAt: m.PublishedAt,
		Author:      m.Author,
		Categories:  m.Categories,
	}

	return domain.NewPostMetrics(post,
		domain.FromPointer(m.Likes),
		domain.FromPointer(m.Comments),
		domain.FromPointer(m.Shares),
		domain.FromPointer(m.Restacks),
		m.WordCount,
	)
}

// PostFromDomain creates a PostMetricsModel at the given feed position.
func PostFromDomain(p domain.PostMetrics, position int) PostMetricsModel {
	var published *time.Time
	if p.PublishedAt != nil {
		t := p.PublishedAt.UTC()
		published = &t
	}

	return PostMetricsModel{
		Position:           position,
		Title:              p.Title,
		Link:               p.Link,
		Description:        p.Description,
		PubDate:            p.PubDate,
		PublishedAt:        published,
		Author:             p.Author,
		Categories:         p.Categories,
		Likes:              p.Likes.Pointer(),
		Comments:           p.Comments.Pointer(),
		Shares:             p.Shares.Pointer(),
		Restacks:           p.Restacks.Pointer(),
		WordCount:          p.WordCount,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		TotalEngagement:    p.TotalEngagement,
	}
}

// RunFromDomain creates an AnalysisRunModel with its posts in feed order.
func RunFromDomain(a *domain.Analysis) *AnalysisRunModel {
	topN := len(a.Analytics.TopPosts)
	if topN == 0 {
		topN = domain.DefaultTopN
	}

	run := &AnalysisRunModel{
		ID:                     a.ID,
		PublicationKey:         a.Publication.Key,
		PublicationName:        a.Publication.Name,
		PublicationURL:         a.Publication.URL,
		PublicationDescription: a.Publication.Description,
		SubscriberCount:        a.Publication.SubscriberCount.Pointer(),
		TotalPostsAnalyzed:     a.Analytics.TotalPostsAnalyzed,
		AverageLikes:           a.Analytics.AverageLikes,
		AverageComments:        a.Analytics.AverageComments,
		AverageShares:          a.Analytics.AverageShares,
		AverageRestacks:        a.Analytics.AverageRestacks,
		AverageWordCount:       a.Analytics.AverageWordCount,
		AverageReadingTime:     a.Analytics.AverageReadingTime,
		PublishingFrequency:    a.Analytics.PublishingFrequency,
		TotalEngagement:        a.Analytics.TotalEngagement,
		TopN:                   topN,
		GeneratedAt:            a.GeneratedAt.UTC(),
	}

	run.Posts = make([]PostMetricsModel, len(a.Posts))
	for i, p := range a.Posts {
		run.Posts[i] = PostFromDomain(p, i)
	}

	return run
}

// ToDomain converts the run to domain.Analysis. Top posts are re-ranked
// from the stored posts; runs loaded without posts have none.
func (m *AnalysisRunModel) ToDomain() *domain.Analysis {
	posts := make([]domain.PostMetrics, len(m.Posts))
	for i := range m.Posts {
		posts[i] = m.Posts[i].ToDomain()
	}

	return &domain.Analysis{
		ID: m.ID,
		Publication: domain.Publication{
			Key:             m.PublicationKey,
			Name:            m.PublicationName,
			URL:             m.PublicationURL,
			Description:     m.PublicationDescription,
			SubscriberCount: domain.FromPointer(m.SubscriberCount),
			LastUpdated:     m.GeneratedAt,
		},
		Analytics: domain.PublicationAnalytics{
			TotalPostsAnalyzed:  m.TotalPostsAnalyzed,
			AverageLikes:        m.AverageLikes,
			AverageComments:     m.AverageComments,
			AverageShares:       m.AverageShares,
			AverageRestacks:     m.AverageRestacks,
			AverageWordCount:    m.AverageWordCount,
			AverageReadingTime:  m.AverageReadingTime,
			PublishingFrequency: m.PublishingFrequency,
			TotalEngagement:     m.TotalEngagement,
			TopPosts:            domain.TopPosts(posts, m.TopN),
		},
		Posts:       posts,
		GeneratedAt: m.GeneratedAt,
	}
}
