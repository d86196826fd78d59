package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/internal/utils"
)

// ProgressHandler exposes derived progress views.
type ProgressHandler struct {
	workflow service.WorkflowService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewProgressHandler builds a progress handler instance.
func NewProgressHandler(workflow service.WorkflowService, progress service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		workflow: workflow,
		progress: progress,
		logger:   logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Class-wide views
// are guarded by teacherOnly when provided.
func (h *ProgressHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("/me", h.board)
	router.Get("/pair/:programId/:studentId", h.pair)
	if teacherOnly != nil {
		router.Get("/students/:studentId", teacherOnly, h.studentBoard)
		router.Get("/programs/:programId", teacherOnly, h.classMatrix)
		return
	}
	router.Get("/students/:studentId", h.studentBoard)
	router.Get("/programs/:programId", h.classMatrix)
}

func (h *ProgressHandler) pair(c *fiber.Ctx) error {
	programID, err := parseUUIDParam(c, "programId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.workflow.PairProgress(c.Context(), programID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *ProgressHandler) board(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user identity")
	}

	board, err := h.progress.StudentBoard(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress board retrieved", board)
}

func (h *ProgressHandler) studentBoard(c *fiber.Ctx) error {
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	board, err := h.progress.StudentBoard(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress board retrieved", board)
}

func (h *ProgressHandler) classMatrix(c *fiber.Ctx) error {
	programID, err := parseUUIDParam(c, "programId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	matrix, err := h.progress.ClassMatrix(c.Context(), programID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "class progress retrieved", matrix)
}

func (h *ProgressHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "program not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
