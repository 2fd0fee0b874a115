package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/report"
	"newsletter-analytics/internal/transport/httpserver/dto"
)

// DashboardHandler handles dashboard-related HTTP requests.
type DashboardHandler struct {
	service AnalysisService
	logger  *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc AnalysisService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  logger,
	}
}

// Render handles GET /dashboard
// Shows the newest stored analysis of ?publication=, or only the lookup form.
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	publication := c.Query("publication")
	data := fiber.Map{
		"Title":       "Newsletter Analytics",
		"Publication": publication,
	}

	if publication != "" {
		analysis, err := h.service.Latest(c.UserContext(), publication)
		switch {
		case err != nil:
			h.logger.Warn("dashboard lookup failed", zap.String("publication", publication), zap.Error(err))
			data["Error"] = err.Error()
		case analysis == nil:
			data["Error"] = "No stored analysis yet. Run one with POST /api/v1/analysis."
		default:
			resp := dto.FromAnalysis(analysis, false, false)
			data["Analysis"] = resp
			data["Subscribers"] = report.SubscriberCell(analysis.Publication.SubscriberCount)
		}
	}

	return c.Render("pages/dashboard", data, "layouts/base")
}
