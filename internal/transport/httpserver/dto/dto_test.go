package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/validator"
)

func TestAnalysisRequest_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		req     AnalysisRequest
		wantErr string
	}{
		{"name", AnalysisRequest{PublicationURL: "platformer"}, ""},
		{"feed url with limit", AnalysisRequest{PublicationURL: "https://platformer.substack.com/feed", Limit: 10}, ""},
		{"missing", AnalysisRequest{}, "publication_url is required"},
		{"garbage", AnalysisRequest{PublicationURL: "two words"}, "publication_url must be a publication name, domain or URL"},
		{"limit too large", AnalysisRequest{PublicationURL: "platformer", Limit: 501}, "limit must be at most 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestAnalysisRequest_WantsExport(t *testing.T) {
	no := false

	assert.True(t, (&AnalysisRequest{}).WantsExport())
	assert.False(t, (&AnalysisRequest{Export: &no}).WantsExport())
}

func TestFromAnalysis(t *testing.T) {
	post := domain.NewPost("Hello", "https://platformer.substack.com/p/hello", "", "Fri, 01 Mar 2024 08:00:00 GMT", "Casey")
	pm := domain.NewPostMetrics(post, domain.Known(10), domain.Unknown, domain.Known(0), domain.Known(2), 450)
	analytics, err := domain.Aggregate([]domain.PostMetrics{pm}, domain.DefaultTopN)
	require.NoError(t, err)

	a := &domain.Analysis{
		ID:          "run-1",
		Publication: domain.Publication{Key: "platformer", Name: "Platformer", SubscriberCount: domain.Unknown},
		Analytics:   analytics,
		Posts:       []domain.PostMetrics{pm},
		GeneratedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	resp := FromAnalysis(a, true, false)

	assert.Empty(t, resp.Posts)
	require.Len(t, resp.TopPosts, 1)
	assert.Equal(t, "2024-03-01T09:00:00Z", resp.GeneratedAt)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	top := decoded["top_posts"].([]any)[0].(map[string]any)
	assert.Nil(t, top["comments"])
	assert.EqualValues(t, 10, top["likes"])
	assert.EqualValues(t, 2, top["reading_time"])
	assert.Nil(t, decoded["publication"].(map[string]any)["subscriber_count"])
	assert.NotContains(t, decoded, "posts")
}

func TestFromAnalysis_YAML(t *testing.T) {
	post := domain.NewPost("Hello", "https://platformer.substack.com/p/hello", "", "", "")
	pm := domain.NewPostMetrics(post, domain.Known(7), domain.Unknown, domain.Unknown, domain.Unknown, 10)
	analytics, err := domain.Aggregate([]domain.PostMetrics{pm}, domain.DefaultTopN)
	require.NoError(t, err)

	resp := FromAnalysis(&domain.Analysis{
		Publication: domain.Publication{Key: "platformer", Name: "Platformer"},
		Analytics:   analytics,
		Posts:       []domain.PostMetrics{pm},
	}, true, true)

	raw, err := yaml.Marshal(resp)
	require.NoError(t, err)
	out := string(raw)

	assert.Contains(t, out, "likes: 7")
	assert.Contains(t, out, "comments: null")
	assert.Contains(t, out, "subscriber_count: null")
	assert.Contains(t, out, "total_posts_analyzed: 1")
}
