package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/internal/utils"
)

// RecordHandler serves finalized digital records.
type RecordHandler struct {
	service service.RecordService
	logger  zerolog.Logger
}

// NewRecordHandler builds a record handler instance.
func NewRecordHandler(service service.RecordService, logger zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		service: service,
		logger:  logger.With().Str("component", "record_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RecordHandler) Register(router fiber.Router) {
	router.Get("/:programId/:studentId", h.get)
	router.Get("/:programId/:studentId/pdf", h.exportPDF)
}

func (h *RecordHandler) get(c *fiber.Ctx) error {
	programID, studentID, err := h.pairParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := h.service.Get(c.Context(), programID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "record retrieved", record)
}

func (h *RecordHandler) exportPDF(c *fiber.Ctx) error {
	programID, studentID, err := h.pairParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	document, filename, err := h.service.ExportPDF(c.Context(), programID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(document)
}

func (h *RecordHandler) pairParams(c *fiber.Ctx) (string, string, error) {
	programID, err := parseUUIDParam(c, "programId")
	if err != nil {
		return "", "", err
	}
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return "", "", err
	}
	return programID, studentID, nil
}

func (h *RecordHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "program not found")
	case errors.Is(err, service.ErrRecordNotReady):
		return utils.SendError(c, fiber.StatusConflict, "record requires an approved algorithm and approved code")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
