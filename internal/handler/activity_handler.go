package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulamax/aulamax-api/internal/repository"
	"github.com/aulamax/aulamax-api/internal/service"
	"github.com/aulamax/aulamax-api/internal/utils"
)

// ActivityHandler exposes the audit trail to administrators.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	filter := repository.ActivityLogFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Limit:      c.QueryInt("limit"),
	}
	if actorID := c.QueryInt("actor_id"); actorID > 0 {
		id := uint(actorID)
		filter.ActorID = &id
	}

	entries, err := h.service.List(c.Context(), filter, actorFromContext(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
