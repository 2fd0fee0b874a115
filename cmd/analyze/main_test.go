package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"newsletter-analytics/internal/transport/httpserver/dto"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Platformer</title>
%s
</channel></rss>`

const itemTemplate = `<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>`

func publicationServer(t *testing.T, items int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Platformer</title></head><body><p>Join 12,000 subscribers</p></body></html>`)
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		var body bytes.Buffer
		dates := []string{"Mon, 04 Mar 2024 08:00:00 GMT", "Mon, 26 Feb 2024 08:00:00 GMT"}
		for i := range items {
			fmt.Fprintf(&body, itemTemplate, fmt.Sprintf("Post %d", i+1), fmt.Sprintf("%s/p/post-%d", srv.URL, i+1), dates[i%len(dates)])
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedTemplate, body.String())
	})
	mux.HandleFunc("/p/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div class="post-content"><p>one two three four five</p><p>12 likes 3 comments</p></div></body></html>`)
	})

	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"analyze", "--delay", "0s"}, args...))

	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var coder cli.ExitCoder
	require.True(t, errors.As(err, &coder), "expected exit error, got %v", err)

	return coder.ExitCode()
}

func TestAnalyze_JSON(t *testing.T) {
	srv := publicationServer(t, 2)

	out, err := runCLI(t, "--format", "json", srv.URL)
	require.NoError(t, err)

	var resp dto.AnalysisResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "Platformer", resp.Publication.Name)
	assert.Equal(t, 2, resp.Analytics.TotalPostsAnalyzed)
	require.Len(t, resp.Posts, 2)
	likes, ok := resp.Posts[0].Likes.Value()
	assert.True(t, ok)
	assert.Equal(t, 12, likes)
	subs, ok := resp.Publication.SubscriberCount.Value()
	assert.True(t, ok)
	assert.Equal(t, 12000, subs)
}

func TestAnalyze_LimitAndYAML(t *testing.T) {
	srv := publicationServer(t, 4)

	out, err := runCLI(t, "--format", "yaml", "--limit", "1", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "total_posts_analyzed: 1")
	assert.Contains(t, out, "likes: 12")
}

func TestAnalyze_Text(t *testing.T) {
	srv := publicationServer(t, 2)

	out, err := runCLI(t, srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "Platformer")
	assert.Contains(t, out, "Post 1")
}

func TestAnalyze_XLSX(t *testing.T) {
	srv := publicationServer(t, 2)
	dir := t.TempDir()

	out, err := runCLI(t, "--format", "xlsx", "--output-dir", dir, srv.URL)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "analytics_127.0.0.1_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, out, files[0])
}

func TestAnalyze_ExitCodes(t *testing.T) {
	empty := publicationServer(t, 0)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no posts", []string{empty.URL}, exitNoPosts},
		{"invalid publication", []string{"two words"}, exitInvalidPublication},
		{"missing publication", nil, exitInvalidPublication},
		{"unknown format", []string{"--format", "csv", "platformer"}, exitInvalidPublication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)

			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(t, err))
		})
	}
}
