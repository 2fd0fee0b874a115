package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
)

func testAnalysis(t *testing.T) *domain.Analysis {
	t.Helper()

	generated := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	likes := []domain.Metric{domain.Known(10), domain.Unknown, domain.Known(30)}

	posts := make([]domain.PostMetrics, len(likes))
	for i, l := range likes {
		post := domain.NewPost(fmt.Sprintf("Post %d", i), fmt.Sprintf("https://platformer.substack.com/p/%d", i),
			"", "Fri, 01 Mar 2024 08:00:00 GMT", "Casey")
		posts[i] = domain.NewPostMetrics(post, l, domain.Known(2), domain.Unknown, domain.Known(1), 1000)
	}

	analytics, err := domain.Aggregate(posts, domain.DefaultTopN)
	require.NoError(t, err)

	return &domain.Analysis{
		Publication: domain.Publication{
			Key:             "platformer",
			Name:            "Platformer",
			URL:             "https://platformer.substack.com",
			SubscriberCount: domain.Unknown,
			LastUpdated:     generated,
		},
		Analytics:   analytics,
		Posts:       posts,
		GeneratedAt: generated,
	}
}

func TestAssemble(t *testing.T) {
	a := testAnalysis(t)

	sheets := Assemble(a)

	require.Len(t, sheets, 4)
	assert.Equal(t, []string{SheetOverview, SheetSummary, SheetPosts, SheetTop},
		[]string{sheets[0].Name, sheets[1].Name, sheets[2].Name, sheets[3].Name})

	overview := sheets[0]
	assert.Equal(t, []any{"Subscriber Count", SubscribersUnavailable}, overview.Rows[2])
	assert.Equal(t, []any{"Analysis Date", "2024-03-01 09:30:00"}, overview.Rows[4])

	summary := sheets[1]
	assert.Equal(t, []any{"Posts Analyzed", 3}, summary.Rows[0])
	assert.Equal(t, []any{"Average Likes per Post", 13.3}, summary.Rows[1])
	assert.Equal(t, []any{"Average Word Count", 1000}, summary.Rows[5])

	posts := sheets[2]
	require.Len(t, posts.Rows, 3)
	assert.Len(t, posts.Rows[0], len(posts.Header))
	assert.Equal(t, "Post 1", posts.Rows[1][0])
	assert.Equal(t, UnknownValue, posts.Rows[1][2])
	assert.Equal(t, UnknownValue, posts.Rows[1][4])
	assert.Equal(t, 3, posts.Rows[1][8])

	top := sheets[3]
	require.Len(t, top.Rows, 3)
	assert.Equal(t, 1, top.Rows[0][0])
	assert.Equal(t, "Post 2", top.Rows[0][1])
	assert.Equal(t, 33, top.Rows[0][2])
}

func TestMetricCell(t *testing.T) {
	assert.Equal(t, 0, MetricCell(domain.Known(0)))
	assert.Equal(t, UnknownValue, MetricCell(domain.Unknown))
	assert.Equal(t, 4200, SubscriberCell(domain.Known(4200)))
}

func TestFilename(t *testing.T) {
	a := testAnalysis(t)

	assert.Equal(t, "analytics_platformer_20240301_093000.xlsx", Filename(a))

	a.Publication.Key = "lennysnewsletter.com"
	assert.Equal(t, "analytics_lennysnewsletter.com_20240301_093000.xlsx", Filename(a))
}

func TestXLSXWriter_WriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewXLSXWriter(dir, zap.NewNop())
	a := testAnalysis(t)

	path, err := w.WriteReport(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "analytics_platformer_20240301_093000.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetOverview, SheetSummary, SheetPosts, SheetTop}, f.GetSheetList())

	rows, err := f.GetRows(SheetPosts)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Title", rows[0][0])
	assert.Equal(t, "-", rows[2][2])
	assert.Equal(t, "10", rows[1][2])

	width, err := f.GetColWidth(SheetPosts, "J")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("https://platformer.substack.com/p/0")+2), width, 0.01)
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteTo(&buf, testAnalysis(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetTop)
	require.NoError(t, err)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "Post 2", rows[1][1])
}

func TestColumnWidths_Capped(t *testing.T) {
	s := Sheet{
		Header: []string{"Title", "N"},
		Rows:   [][]any{{strings.Repeat("x", 120), 7}},
	}

	assert.Equal(t, []float64{50, 3}, columnWidths(s))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteSummary(&buf, testAnalysis(t)))

	out := buf.String()
	assert.Contains(t, out, "Name: Platformer")
	assert.Contains(t, out, "Subscribers: "+SubscribersUnavailable)
	assert.Contains(t, out, "Average Likes per Post: 13.3")
	assert.Contains(t, out, "1. Post 2")
	assert.Contains(t, out, "Likes: -, Comments: 2")
}

func TestXLSXWriter_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewXLSXWriter(dir, zap.NewNop()).WriteReport(ctx, testAnalysis(t))

	require.ErrorIs(t, err, context.Canceled)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
