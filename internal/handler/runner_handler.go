package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/internal/utils"
	"github.com/algolab-dev/labrec-api/pkg/piston"
)

// RunnerHandler exposes code execution endpoints.
type RunnerHandler struct {
	service service.RunnerService
	logger  zerolog.Logger
}

// NewRunnerHandler builds a runner handler instance.
func NewRunnerHandler(service service.RunnerService, logger zerolog.Logger) *RunnerHandler {
	return &RunnerHandler{
		service: service,
		logger:  logger.With().Str("component", "runner_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RunnerHandler) Register(router fiber.Router) {
	router.Get("/languages", h.languages)
	router.Post("/execute", h.execute)
}

func (h *RunnerHandler) languages(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "languages retrieved", h.service.Languages())
}

func (h *RunnerHandler) execute(c *fiber.Ctx) error {
	var payload dto.RunRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Run(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code executed", result)
}

func (h *RunnerHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported language")
	case errors.Is(err, service.ErrEmptySource):
		return utils.SendError(c, fiber.StatusBadRequest, "source must not be empty")
	case errors.Is(err, piston.ErrUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, "execution service unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
