package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
)

// ErrNotProgramOwner indicates a teacher tried to edit a program they did not publish.
var ErrNotProgramOwner = errors.New("only the owning teacher may edit a program")

// ProgramService exposes program publication and metadata edits.
type ProgramService interface {
	List(ctx context.Context, filter dto.ProgramFilter) (dto.ProgramListResponse, error)
	Get(ctx context.Context, id string) (dto.ProgramResponse, error)
	Create(ctx context.Context, teacherID string, payload dto.ProgramCreateRequest) (dto.ProgramResponse, error)
	Update(ctx context.Context, id, teacherID string, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error)
}

type programService struct {
	programs  repository.ProgramRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProgramService constructs a ProgramService instance.
func NewProgramService(programs repository.ProgramRepository, validate *validator.Validate, logger zerolog.Logger) ProgramService {
	return &programService{
		programs:  programs,
		validator: validate,
		logger:    logger.With().Str("component", "program_service").Logger(),
	}
}

func (s *programService) List(ctx context.Context, filter dto.ProgramFilter) (dto.ProgramListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.ProgramListResponse{}, err
	}

	programs, total, err := s.programs.List(ctx, repository.ProgramFilter{
		ClassroomID: filter.ClassroomID,
		Search:      filter.Search,
		Sort:        filter.Sort,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	})
	if err != nil {
		return dto.ProgramListResponse{}, err
	}

	return dto.ProgramListResponse{
		Programs: dto.NewProgramResponseSlice(programs),
		Total:    total,
	}, nil
}

func (s *programService) Get(ctx context.Context, id string) (dto.ProgramResponse, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}

	return dto.NewProgramResponse(program), nil
}

func (s *programService) Create(ctx context.Context, teacherID string, payload dto.ProgramCreateRequest) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	program := models.Program{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      models.ProgramStatusActive,
		ClassroomID: payload.ClassroomID,
		CreatedBy:   teacherID,
	}
	if payload.Metadata != nil {
		program.Metadata = datatypes.NewJSONType(metadataFromPayload(*payload.Metadata))
	}

	if err := s.programs.Create(ctx, &program); err != nil {
		return dto.ProgramResponse{}, err
	}

	s.logger.Info().Str("program_id", program.ID).Str("teacher_id", teacherID).Msg("program published")

	return dto.NewProgramResponse(program), nil
}

func (s *programService) Update(ctx context.Context, id, teacherID string, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}

	if !program.OwnedBy(teacherID) {
		return dto.ProgramResponse{}, ErrNotProgramOwner
	}

	if payload.Title != nil {
		program.Title = *payload.Title
	}
	if payload.Description != nil {
		program.Description = *payload.Description
	}
	if payload.Status != nil {
		program.Status = *payload.Status
	}
	if payload.Metadata != nil {
		program.Metadata = datatypes.NewJSONType(metadataFromPayload(*payload.Metadata))
	}

	if err := s.programs.Update(ctx, &program); err != nil {
		return dto.ProgramResponse{}, err
	}

	s.logger.Info().Str("program_id", program.ID).Msg("program updated")

	return dto.NewProgramResponse(program), nil
}

func metadataFromPayload(payload dto.ProgramMetadataPayload) models.ProgramMetadata {
	return models.ProgramMetadata{
		Difficulty:   payload.Difficulty,
		InputFormat:  payload.InputFormat,
		OutputFormat: payload.OutputFormat,
		Constraints:  payload.Constraints,
		SampleInput:  payload.SampleInput,
		SampleOutput: payload.SampleOutput,
	}
}
