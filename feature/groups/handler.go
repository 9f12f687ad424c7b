package groups

import (
	"cern-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for groups sync.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the groups sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/groups", h.HandleSyncGroups)
}

// HandleSyncGroups triggers a groups sync run and returns its report.
func (h *Handler) HandleSyncGroups(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	report, err := h.service.SyncGroups(c.Context(), c.Query("since"))
	if err != nil {
		l.Error("Groups sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}
