package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulamax/aulamax-api/internal/service"
	"github.com/aulamax/aulamax-api/internal/utils"
)

// ProgressHandler exposes the student progress dashboard endpoint.
type ProgressHandler struct {
	service service.StudentProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.StudentProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires the progress route.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/me/progress", h.getProgress)
}

func (h *ProgressHandler) getProgress(c *fiber.Ctx) error {
	progress, err := h.service.GetProgress(c.Context(), actorFromContext(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}
