// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/transport/httpserver/dto"
	"newsletter-analytics/internal/transport/httpserver/handler"
	"newsletter-analytics/internal/transport/httpserver/middleware"
	"newsletter-analytics/internal/validator"
	"newsletter-analytics/web"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port            int
	BodyLimit       int
	Debug           bool
	AnalysisTimeout time.Duration
	AllowOrigins    []string
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured. reports
// may be nil to disable spreadsheet export on POST /api/v1/analysis.
func NewServer(
	cfg ServerConfig,
	svc handler.AnalysisService,
	reports domain.ReportWriter,
	v *validator.Validator,
	logger *zap.Logger,
	probes ...middleware.Probe,
) (*Server, error) {
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	engine := html.NewFileSystem(http.FS(templates), ".html")
	if cfg.Debug {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		AppName:      "newsletter-analytics",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
	})

	// Probes answer before the rest of the chain.
	app.Use(middleware.NewHealthCheck(probes...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS(cfg.AllowOrigins...))
	app.Use(compress.New())

	analyticsHandler := handler.NewAnalyticsHandler(svc, reports, v, cfg.AnalysisTimeout, logger)
	dashboardHandler := handler.NewDashboardHandler(svc, logger)

	registerRoutes(app, analyticsHandler, dashboardHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}, nil
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	analyticsHandler *handler.AnalyticsHandler,
	dashboardHandler *handler.DashboardHandler,
) {
	app.Get("/dashboard", dashboardHandler.Render)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	v1 := app.Group("/api/v1")

	analytics := v1.Group("/analytics")
	analytics.Get("/:publication", analyticsHandler.Get)
	analytics.Get("/:publication/history", analyticsHandler.History)

	v1.Post("/analysis", analyticsHandler.Analyze)
	v1.Get("/reports/:publication", analyticsHandler.Report)
}

// errorHandler logs based on HTTP status code: 404s at DEBUG, 4xx at WARN,
// 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_ERROR"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			errCode = "HTTP_ERROR"
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.Int("status", code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found", fields...)
			errCode = "NOT_FOUND"
		case code >= 500:
			logger.Error("server error", fields...)
		default:
			logger.Warn("client error", fields...)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.ShutdownWithContext(ctx)
}
