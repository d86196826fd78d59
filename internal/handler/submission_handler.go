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

// SubmissionHandler manages the algorithm and code submission endpoints.
type SubmissionHandler struct {
	workflow service.WorkflowService
	logger   zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(workflow service.WorkflowService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		workflow: workflow,
		logger:   logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterAlgorithms attaches the algorithm submission routes. Review routes
// are guarded by reviewerOnly when provided.
func (h *SubmissionHandler) RegisterAlgorithms(router fiber.Router, reviewerOnly fiber.Handler) {
	router.Get("", h.listAlgorithms)
	router.Post("", h.submitAlgorithm)
	if reviewerOnly != nil {
		router.Patch("/:id/review", reviewerOnly, h.reviewAlgorithm)
		return
	}
	router.Patch("/:id/review", h.reviewAlgorithm)
}

// RegisterCode attaches the code submission routes. Review routes are guarded
// by reviewerOnly when provided.
func (h *SubmissionHandler) RegisterCode(router fiber.Router, reviewerOnly fiber.Handler) {
	router.Get("", h.listCode)
	router.Post("", h.submitCode)
	if reviewerOnly != nil {
		router.Patch("/:id/review", reviewerOnly, h.reviewCode)
		return
	}
	router.Patch("/:id/review", h.reviewCode)
}

func (h *SubmissionHandler) listAlgorithms(c *fiber.Ctx) error {
	submissions, err := h.workflow.ListAlgorithmSubmissions(c.Context(), submissionFilterFromQuery(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "algorithm submissions retrieved", submissions)
}

func (h *SubmissionHandler) submitAlgorithm(c *fiber.Ctx) error {
	var payload dto.AlgorithmSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.workflow.SubmitAlgorithm(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "algorithm submitted", submission)
}

func (h *SubmissionHandler) reviewAlgorithm(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.workflow.ReviewAlgorithm(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "algorithm reviewed", submission)
}

func (h *SubmissionHandler) listCode(c *fiber.Ctx) error {
	submissions, err := h.workflow.ListCodeSubmissions(c.Context(), submissionFilterFromQuery(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code submissions retrieved", submissions)
}

func (h *SubmissionHandler) submitCode(c *fiber.Ctx) error {
	var payload dto.CodeSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.workflow.SubmitCode(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "code submitted", submission)
}

func (h *SubmissionHandler) reviewCode(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.workflow.ReviewCode(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code reviewed", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "program not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "content must not be empty")
	case errors.Is(err, service.ErrEmptyCode):
		return utils.SendError(c, fiber.StatusBadRequest, "code must not be empty")
	case errors.Is(err, service.ErrInvalidDecision):
		return utils.SendError(c, fiber.StatusBadRequest, "decision must be approved or rejected")
	case errors.Is(err, service.ErrAlgorithmNotApproved):
		return utils.SendError(c, fiber.StatusConflict, "algorithm must be approved before code submission")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func submissionFilterFromQuery(c *fiber.Ctx) dto.SubmissionFilter {
	filter := dto.SubmissionFilter{}
	if programID := c.Query("program_id"); programID != "" {
		filter.ProgramID = &programID
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filter.StudentID = &studentID
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	return filter
}
