package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/service"
	"github.com/aulamax/aulamax-api/internal/utils"
)

// AttemptHandler wires quiz attempt routes.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt start and listing routes to the quiz group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Post("/:id/attempts", h.start)
	router.Get("/:id/attempts", h.listForQuiz)
}

// RegisterCollection attaches attempt retrieval and submission routes.
func (h *AttemptHandler) RegisterCollection(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/submit", h.submit)
}

func (h *AttemptHandler) start(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.service.Start(c.Context(), quizID, actorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Debug().Err(err).Uint("quiz_id", quizID).Msg("attempt start rejected")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
}

func (h *AttemptHandler) listForQuiz(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempts, err := h.service.ListForQuiz(c.Context(), quizID, actorFromContext(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}

func (h *AttemptHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.service.Get(c.Context(), id, actorFromContext(c))
	if err != nil {
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AttemptSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	attempt, err := h.service.Submit(c.Context(), id, actorFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Debug().Err(err).Uint("attempt_id", id).Msg("attempt submission rejected")
		return utils.SendAppError(c, err)
	}

	return utils.SendSuccess(c, "attempt submitted", attempt)
}
