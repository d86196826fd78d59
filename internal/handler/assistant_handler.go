package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/internal/utils"
)

// AssistantHandler exposes automated draft feedback.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler builds an assistant handler instance.
func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/suggest", h.suggest)
}

func (h *AssistantHandler) suggest(c *fiber.Ctx) error {
	var payload dto.AssistantRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Suggest(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "suggestions generated", result)
}

func (h *AssistantHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssistantUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "assistant is not configured")
	case errors.Is(err, service.ErrProgramNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "program not found")
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "content must not be empty")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("assistant request failed")
		return utils.SendError(c, fiber.StatusBadGateway, "assistant request failed")
	}
}
