package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/pkg/piston"
)

// ErrUnsupportedLanguage indicates the requested language is not in the registry.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrEmptySource indicates a run request with no source after trimming.
var ErrEmptySource = errors.New("source must not be empty")

// RunnerService forwards code to the hosted execution service. It never
// mutates stored state; callers decide whether to persist the output
// alongside a code submission.
type RunnerService interface {
	Run(ctx context.Context, payload dto.RunRequest) (dto.RunResponse, error)
	Languages() []dto.LanguageResponse
}

type runnerLanguage struct {
	Label   string
	Piston  string
	Version string
}

type runnerService struct {
	executor  piston.Executor
	validator *validator.Validate
	logger    zerolog.Logger
	languages map[string]runnerLanguage
}

// NewRunnerService constructs a runner backed by the given executor.
func NewRunnerService(executor piston.Executor, validate *validator.Validate, logger zerolog.Logger) RunnerService {
	return &runnerService{
		executor:  executor,
		validator: validate,
		logger:    logger.With().Str("component", "runner_service").Logger(),
		languages: map[string]runnerLanguage{
			"c":          {Label: "C", Piston: "c", Version: "10.2.0"},
			"cpp":        {Label: "C++", Piston: "c++", Version: "10.2.0"},
			"python":     {Label: "Python", Piston: "python", Version: "3.10.0"},
			"java":       {Label: "Java", Piston: "java", Version: "15.0.2"},
			"javascript": {Label: "JavaScript", Piston: "javascript", Version: "18.15.0"},
		},
	}
}

func (s *runnerService) Run(ctx context.Context, payload dto.RunRequest) (dto.RunResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RunResponse{}, err
	}

	if strings.TrimSpace(payload.Source) == "" {
		return dto.RunResponse{}, ErrEmptySource
	}

	language, ok := s.languages[strings.ToLower(strings.TrimSpace(payload.Language))]
	if !ok {
		return dto.RunResponse{}, ErrUnsupportedLanguage
	}

	result, err := s.executor.Execute(ctx, piston.ExecuteRequest{
		Language: language.Piston,
		Version:  language.Version,
		Source:   payload.Source,
		Stdin:    payload.Stdin,
	})
	if err != nil {
		return dto.RunResponse{}, err
	}

	s.logger.Debug().
		Str("language", language.Piston).
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("code executed")

	return dto.RunResponse{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	}, nil
}

func (s *runnerService) Languages() []dto.LanguageResponse {
	ids := []string{"c", "cpp", "python", "java", "javascript"}
	out := make([]dto.LanguageResponse, 0, len(ids))
	for _, id := range ids {
		language := s.languages[id]
		out = append(out, dto.LanguageResponse{ID: id, Label: language.Label, Version: language.Version})
	}
	return out
}
