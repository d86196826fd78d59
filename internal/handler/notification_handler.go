package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/internal/utils"
)

// NotificationHandler manages in-app notification endpoints.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler builds a notification handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user identity")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(c.Context(), userID, limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notifications retrieved", notifications)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user identity")
	}

	notification, err := h.service.MarkRead(c.Context(), id, userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notification marked read", notification)
}

func (h *NotificationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "notification not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
