package httpserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/validator"
)

type nopService struct{}

func (nopService) Analyze(context.Context, string, int) (*domain.Analysis, error) {
	return nil, domain.ErrNoPosts
}

func (nopService) Latest(context.Context, string) (*domain.Analysis, error) { return nil, nil }

func (nopService) LatestOrAnalyze(context.Context, string, int) (*domain.Analysis, bool, error) {
	return nil, false, domain.ErrNoPosts
}

func (nopService) History(context.Context, string, int) ([]*domain.Analysis, error) {
	return []*domain.Analysis{}, nil
}

func TestNewServer_Routes(t *testing.T) {
	down := func(context.Context) error { return errors.New("db down") }
	srv, err := NewServer(ServerConfig{}, nopService{}, nil, validator.New(), zap.NewNop(), down)
	require.NoError(t, err)

	tests := []struct {
		path string
		want int
	}{
		{"/livez", fiber.StatusOK},
		{"/readyz", fiber.StatusServiceUnavailable},
		{"/", fiber.StatusFound},
		{"/dashboard", fiber.StatusOK},
		{"/api/v1/analytics/platformer", fiber.StatusNotFound},
		{"/api/v1/analytics/platformer/history", fiber.StatusOK},
		{"/api/v1/nope", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := srv.App.Test(httptest.NewRequest("GET", tt.path, nil))

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestNewServer_AllowOrigins(t *testing.T) {
	srv, err := NewServer(ServerConfig{AllowOrigins: []string{"https://dash.example.com"}},
		nopService{}, nil, validator.New(), zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		origin string
		want   string
	}{
		{"https://dash.example.com", "https://dash.example.com"},
		{"https://elsewhere.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/analytics/platformer/history", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := srv.App.Test(req)

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv, err := NewServer(ServerConfig{}, nopService{}, nil, validator.New(), zap.NewNop())
	require.NoError(t, err)

	listening := make(chan struct{})
	srv.App.Hooks().OnListen(func(fiber.ListenData) error {
		close(listening)
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- srv.Start(0) }()

	select {
	case <-listening:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
