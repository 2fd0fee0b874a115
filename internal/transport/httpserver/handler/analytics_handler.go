// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/report"
	"newsletter-analytics/internal/transport/httpserver/dto"
	"newsletter-analytics/internal/validator"
)

// AnalysisService is the subset of service.AnalysisService the handlers use.
type AnalysisService interface {
	Analyze(ctx context.Context, input string, limit int) (*domain.Analysis, error)
	Latest(ctx context.Context, input string) (*domain.Analysis, error)
	LatestOrAnalyze(ctx context.Context, input string, limit int) (*domain.Analysis, bool, error)
	History(ctx context.Context, input string, limit int) ([]*domain.Analysis, error)
}

// AnalyticsHandler handles analytics-related HTTP requests.
type AnalyticsHandler struct {
	service   AnalysisService
	reports   domain.ReportWriter
	validator *validator.Validator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler. reports may be nil,
// in which case POST /analysis never exports. timeout bounds fresh runs.
func NewAnalyticsHandler(
	svc AnalysisService,
	reports domain.ReportWriter,
	v *validator.Validator,
	timeout time.Duration,
	logger *zap.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:   svc,
		reports:   reports,
		validator: v,
		timeout:   timeout,
		logger:    logger,
	}
}

// Get handles GET /api/v1/analytics/:publication
// Returns the newest stored analysis, or runs one when nothing is stored
// or ?refresh=true is given.
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	publication := c.Params("publication")
	if err := h.validator.Var("publication", publication, "publication"); err != nil {
		return invalidPublication(c, err)
	}

	var q dto.AnalyticsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	var (
		analysis *domain.Analysis
		fresh    bool
		err      error
	)
	if q.Refresh {
		analysis, err = h.service.Analyze(ctx, publication, q.Limit)
		fresh = err == nil
	} else {
		analysis, fresh, err = h.service.LatestOrAnalyze(ctx, publication, q.Limit)
	}
	if err != nil {
		return h.fail(c, publication, err)
	}

	return c.JSON(dto.FromAnalysis(analysis, fresh, q.Posts))
}

// History handles GET /api/v1/analytics/:publication/history
func (h *AnalyticsHandler) History(c *fiber.Ctx) error {
	publication := c.Params("publication")
	if err := h.validator.Var("publication", publication, "publication"); err != nil {
		return invalidPublication(c, err)
	}

	var q dto.HistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	runs, err := h.service.History(c.UserContext(), publication, q.Limit)
	if err != nil {
		return h.fail(c, publication, err)
	}

	return c.JSON(dto.FromHistory(publication, runs))
}

// Analyze handles POST /api/v1/analysis
// Runs a fresh analysis and, unless export is false, writes the spreadsheet.
func (h *AnalyticsHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	analysis, err := h.service.Analyze(ctx, req.PublicationURL, req.Limit)
	if err != nil {
		return h.fail(c, req.PublicationURL, err)
	}

	resp := dto.FromAnalysis(analysis, true, true)

	if req.WantsExport() && h.reports != nil {
		path, err := h.reports.WriteReport(ctx, analysis)
		if err != nil {
			// The analysis itself succeeded; report the export failure inline.
			h.logger.Error("report export failed",
				zap.String("publication", analysis.Publication.Key),
				zap.Error(err),
			)
		} else {
			resp.ReportPath = path
			resp.ReportURL = "/api/v1/reports/" + analysis.Publication.Key
		}
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Report handles GET /api/v1/reports/:publication
// Streams the newest stored analysis as a spreadsheet.
func (h *AnalyticsHandler) Report(c *fiber.Ctx) error {
	publication := c.Params("publication")
	if err := h.validator.Var("publication", publication, "publication"); err != nil {
		return invalidPublication(c, err)
	}

	analysis, err := h.service.Latest(c.UserContext(), publication)
	if err != nil {
		return h.fail(c, publication, err)
	}
	if analysis == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "no stored analysis for " + publication,
			Code:  "NOT_FOUND",
		})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, report.Filename(analysis)))

	if err := report.WriteTo(c, analysis); err != nil {
		h.logger.Error("report rendering failed", zap.String("publication", publication), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to render report",
			Code:  "INTERNAL_ERROR",
		})
	}

	return nil
}

func (h *AnalyticsHandler) runContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}

	return context.WithTimeout(c.UserContext(), h.timeout)
}

func invalidPublication(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "invalid publication",
		Code:    "INVALID_PUBLICATION",
		Details: err,
	})
}

// fail maps service errors to HTTP responses.
func (h *AnalyticsHandler) fail(c *fiber.Ctx, publication string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPublication):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_PUBLICATION",
		})
	case errors.Is(err, domain.ErrNoPosts):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NO_POSTS",
		})
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "ANALYSIS_IN_PROGRESS",
		})
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("analysis timed out", zap.String("publication", publication))

		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
			Error: "analysis timed out",
			Code:  "TIMEOUT",
		})
	}

	h.logger.Error("analysis request failed", zap.String("publication", publication), zap.Error(err))

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: "analysis failed",
		Code:  "INTERNAL_ERROR",
	})
}
