package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/infra/postgres/migrations"
)

// setupTestDB creates a PostgreSQL testcontainer, runs the migrations and
// returns a connected GORM DB.
//
// Requires Docker. Skip with: go test -short
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container (is Docker running? use -short to skip): %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewConnection(Config{DSN: connStr, MaxOpenConns: 5, MaxIdleConns: 1, MaxLifetime: time.Minute}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		_ = Close(db)
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return db
}

func testAnalysis(key string, generated time.Time, likes ...domain.Metric) *domain.Analysis {
	posts := make([]domain.PostMetrics, len(likes))
	for i, l := range likes {
		post := domain.NewPost(fmt.Sprintf("Post %d", i), fmt.Sprintf("https://%s.substack.com/p/%d", key, i),
			"", "Mon, 02 Jan 2006 15:04:05 GMT", "Casey")
		post.Categories = []string{"tech"}
		posts[i] = domain.NewPostMetrics(post, l, domain.Known(1), domain.Unknown, domain.Known(0), 400*(i+1))
	}

	analytics, err := domain.Aggregate(posts, domain.DefaultTopN)
	if err != nil {
		panic(err)
	}

	return &domain.Analysis{
		Publication: domain.Publication{
			Key:             key,
			Name:            "Platformer",
			URL:             "https://" + key + ".substack.com",
			SubscriberCount: domain.Unknown,
			LastUpdated:     generated,
		},
		Analytics:   analytics,
		Posts:       posts,
		GeneratedAt: generated,
	}
}

func TestRepository_SaveAndLatest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	generated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	analysis := testAnalysis("platformer", generated, domain.Known(10), domain.Unknown, domain.Known(30))

	require.NoError(t, repo.Save(ctx, analysis))
	assert.NotEmpty(t, analysis.ID)

	got, err := repo.Latest(ctx, "platformer")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, analysis.ID, got.ID)
	assert.Equal(t, "Platformer", got.Publication.Name)
	assert.False(t, got.Publication.SubscriberCount.IsKnown())
	assert.True(t, got.GeneratedAt.Equal(generated))

	require.Len(t, got.Posts, 3)
	for i := range got.Posts {
		assert.Equal(t, analysis.Posts[i].Link, got.Posts[i].Link)
		assert.Equal(t, analysis.Posts[i].Likes, got.Posts[i].Likes)
		assert.Equal(t, analysis.Posts[i].TotalEngagement, got.Posts[i].TotalEngagement)
	}
	assert.False(t, got.Posts[1].Likes.IsKnown())
	assert.False(t, got.Posts[0].Shares.IsKnown())
	assert.Equal(t, domain.Known(0), got.Posts[0].Restacks)
	assert.Equal(t, []string{"tech"}, got.Posts[0].Categories)

	assert.InDelta(t, analysis.Analytics.AverageLikes, got.Analytics.AverageLikes, 1e-9)
	require.NotEmpty(t, got.Analytics.TopPosts)
	assert.Equal(t, analysis.Analytics.TopPosts[0].Link, got.Analytics.TopPosts[0].Link)
}

func TestRepository_LatestNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDB(t))

	got, err := repo.Latest(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_History(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, repo.Save(ctx, testAnalysis("platformer", base.Add(time.Duration(i)*time.Hour), domain.Known(i+1))))
	}
	require.NoError(t, repo.Save(ctx, testAnalysis("stratechery", base, domain.Known(5))))

	history, err := repo.History(ctx, "platformer", 2)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].GeneratedAt.After(history[1].GeneratedAt))
	assert.Empty(t, history[0].Posts)

	latest, err := repo.Latest(ctx, "platformer")
	require.NoError(t, err)
	assert.Equal(t, history[0].ID, latest.ID)
}

func TestMigrations_RollbackAndReapply(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	require.NoError(t, HealthCheck(context.Background(), db))

	require.NoError(t, migrations.RollbackTo(db, "001_create_analysis_runs"))
	assert.True(t, db.Migrator().HasTable(&AnalysisRunModel{}))
	assert.False(t, db.Migrator().HasTable(&PostMetricsModel{}))

	require.NoError(t, migrations.Run(db))
	assert.True(t, db.Migrator().HasTable(&PostMetricsModel{}))
}
