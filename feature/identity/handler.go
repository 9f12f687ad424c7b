package identity

import (
	"cern-sync/core/logger"
	"cern-sync/feature/identity/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for identity sync.
type Handler struct {
	service *sync.Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *sync.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the identity sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/users", h.HandleSyncUsers)
	group.Get("/report", h.HandleGetReport)
}

// HandleSyncUsers triggers a users sync run and returns its report. A run
// already in flight is joined rather than duplicated.
func (h *Handler) HandleSyncUsers(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	report, err := h.service.SyncUsers(c.Context(), c.Query("method"), c.Query("since"))
	if err != nil {
		l.Error("Users sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleGetReport returns the most recent completed run report.
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	report := h.service.LastReport()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no sync run has completed yet",
		})
	}
	return c.JSON(report)
}
