package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
	"github.com/algolab-dev/labrec-api/pkg/pdfexport"
)

// ErrRecordNotReady indicates the pair has no approved algorithm and code yet.
var ErrRecordNotReady = errors.New("record requires an approved algorithm and approved code")

// RecordService assembles exportable lab records: the approved algorithm, the
// approved code and its captured output for one (program, student) pair.
type RecordService interface {
	Get(ctx context.Context, programID, studentID string) (dto.RecordResponse, error)
	ExportPDF(ctx context.Context, programID, studentID string) ([]byte, string, error)
}

type recordService struct {
	programs   repository.ProgramRepository
	algorithms repository.AlgorithmSubmissionRepository
	codes      repository.CodeSubmissionRepository
	renderer   *pdfexport.Renderer
	logger     zerolog.Logger
}

// NewRecordService constructs a RecordService instance.
func NewRecordService(programs repository.ProgramRepository, algorithms repository.AlgorithmSubmissionRepository, codes repository.CodeSubmissionRepository, renderer *pdfexport.Renderer, logger zerolog.Logger) RecordService {
	return &recordService{
		programs:   programs,
		algorithms: algorithms,
		codes:      codes,
		renderer:   renderer,
		logger:     logger.With().Str("component", "record_service").Logger(),
	}
}

func (s *recordService) Get(ctx context.Context, programID, studentID string) (dto.RecordResponse, error) {
	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrProgramNotFound
		}
		return dto.RecordResponse{}, err
	}

	approved := models.ReviewStatusApproved
	filter := repository.SubmissionFilter{ProgramID: &programID, StudentID: &studentID, Status: &approved}

	// The newest approved row of each kind represents the record; older
	// approvals stay in history.
	algorithms, err := s.algorithms.List(ctx, filter)
	if err != nil {
		return dto.RecordResponse{}, err
	}
	codes, err := s.codes.List(ctx, filter)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	if len(algorithms) == 0 || len(codes) == 0 {
		return dto.RecordResponse{}, ErrRecordNotReady
	}

	algorithm := algorithms[0]
	code := codes[0]

	return dto.RecordResponse{
		ProgramID:   program.ID,
		StudentID:   studentID,
		Title:       program.Title,
		Description: program.Description,
		Algorithm:   algorithm.Content,
		Code:        code.Code,
		Language:    code.Language,
		Output:      code.CapturedOutput(),
		ApprovedAt:  code.UpdatedAt,
	}, nil
}

func (s *recordService) ExportPDF(ctx context.Context, programID, studentID string) ([]byte, string, error) {
	record, err := s.Get(ctx, programID, studentID)
	if err != nil {
		return nil, "", err
	}

	document, err := s.renderer.Render(pdfexport.Record{
		Title:       record.Title,
		Description: record.Description,
		Algorithm:   record.Algorithm,
		Code:        record.Code,
		Language:    record.Language,
		Output:      record.Output,
	})
	if err != nil {
		return nil, "", err
	}

	filename := pdfexport.Filename(record.Title)

	s.logger.Info().
		Str("program_id", programID).
		Str("student_id", studentID).
		Str("filename", filename).
		Msg("record exported")

	return document, filename, nil
}
