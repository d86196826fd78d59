package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/repository"
	"github.com/algolab-dev/labrec-api/pkg/ai"
)

var ErrAssistantUnavailable = errors.New("assistant is not configured")

// AssistantService returns automated feedback on algorithm drafts.
type AssistantService interface {
	Suggest(ctx context.Context, payload dto.AssistantRequest) (dto.AssistantResponse, error)
}

type assistantService struct {
	programs  repository.ProgramRepository
	assistant ai.Assistant
	validator *validator.Validate
	logger    zerolog.Logger
}

func NewAssistantService(
	programs repository.ProgramRepository,
	assistant ai.Assistant,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssistantService {
	return &assistantService{
		programs:  programs,
		assistant: assistant,
		validator: validate,
		logger:    logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) Suggest(ctx context.Context, payload dto.AssistantRequest) (dto.AssistantResponse, error) {
	if s.assistant == nil {
		return dto.AssistantResponse{}, ErrAssistantUnavailable
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssistantResponse{}, err
	}

	if strings.TrimSpace(payload.Content) == "" {
		return dto.AssistantResponse{}, ErrEmptyContent
	}

	program, err := s.programs.GetByID(ctx, payload.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssistantResponse{}, ErrProgramNotFound
		}
		return dto.AssistantResponse{}, err
	}

	metadata := program.Metadata.Data()
	result, err := s.assistant.Suggest(ctx, ai.SuggestionInput{
		ProgramTitle: program.Title,
		Description:  program.Description,
		Constraints:  metadata.Constraints,
		Draft:        payload.Content,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("program_id", program.ID).Msg("assistant suggestion failed")
		return dto.AssistantResponse{}, err
	}

	return dto.AssistantResponse{
		Summary:     result.Summary,
		Suggestions: result.Suggestions,
		Model:       result.Model,
	}, nil
}
