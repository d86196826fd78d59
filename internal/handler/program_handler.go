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

// ProgramHandler manages program publication endpoints.
type ProgramHandler struct {
	service service.ProgramService
	logger  zerolog.Logger
}

// NewProgramHandler builds a program handler instance.
func NewProgramHandler(service service.ProgramService, logger zerolog.Logger) *ProgramHandler {
	return &ProgramHandler{
		service: service,
		logger:  logger.With().Str("component", "program_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Write routes
// are guarded by teacherOnly when provided.
func (h *ProgramHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	if teacherOnly != nil {
		router.Post("", teacherOnly, h.create)
		router.Patch("/:id", teacherOnly, h.update)
		return
	}
	router.Post("", h.create)
	router.Patch("/:id", h.update)
}

func (h *ProgramHandler) list(c *fiber.Ctx) error {
	filter := dto.ProgramFilter{Search: c.Query("search"), Sort: c.Query("sort")}
	if classroomID := c.Query("classroom_id"); classroomID != "" {
		filter.ClassroomID = &classroomID
	}
	if page, err := parseQueryInt(c, "page"); err == nil {
		filter.Page = page
	}
	if pageSize, err := parseQueryInt(c, "page_size"); err == nil {
		filter.PageSize = pageSize
	}

	result, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, result.Programs, "programs retrieved", fiber.Map{"total": result.Total})
}

func (h *ProgramHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	program, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "program retrieved", program)
}

func (h *ProgramHandler) create(c *fiber.Ctx) error {
	var payload dto.ProgramCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	program, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program published", program)
}

func (h *ProgramHandler) update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProgramUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	program, err := h.service.Update(c.Context(), id, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "program updated", program)
}

func (h *ProgramHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "program not found")
	case errors.Is(err, service.ErrNotProgramOwner):
		return utils.SendError(c, fiber.StatusForbidden, "only the owning teacher may edit this program")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
