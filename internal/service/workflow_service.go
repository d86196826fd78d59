package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
)

// ErrProgramNotFound indicates the referenced program does not exist.
var ErrProgramNotFound = errors.New("program not found")

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrEmptyContent indicates an algorithm draft with no content after trimming.
var ErrEmptyContent = errors.New("content must not be empty")

// ErrEmptyCode indicates a code submission with no source after trimming.
var ErrEmptyCode = errors.New("code must not be empty")

// ErrInvalidDecision indicates a review verdict outside approved/rejected.
var ErrInvalidDecision = errors.New("invalid review decision")

// ErrAlgorithmNotApproved indicates the student has no approved algorithm
// draft for the program and therefore cannot enter the coding stage.
var ErrAlgorithmNotApproved = errors.New("latest algorithm draft is not approved")

// ReviewNotifier publishes review outcomes to students. Failures are logged
// and never fail the review itself.
type ReviewNotifier interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// WorkflowService is the submission workflow engine: append-only submission
// histories per (program, student) pair, reviewer decisions on the latest
// pending row, and the derived progress status.
type WorkflowService interface {
	SubmitAlgorithm(ctx context.Context, studentID string, payload dto.AlgorithmSubmitRequest) (dto.AlgorithmSubmissionResponse, error)
	ReviewAlgorithm(ctx context.Context, submissionID string, payload dto.ReviewRequest) (dto.AlgorithmSubmissionResponse, error)
	SubmitCode(ctx context.Context, studentID string, payload dto.CodeSubmitRequest) (dto.CodeSubmissionResponse, error)
	ReviewCode(ctx context.Context, submissionID string, payload dto.ReviewRequest) (dto.CodeSubmissionResponse, error)
	DeriveStatus(ctx context.Context, programID, studentID string) (models.ProgressStatus, error)
	PairProgress(ctx context.Context, programID, studentID string) (dto.PairProgressResponse, error)
	ListAlgorithmSubmissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.AlgorithmSubmissionResponse, error)
	ListCodeSubmissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.CodeSubmissionResponse, error)
}

type workflowService struct {
	algorithms repository.AlgorithmSubmissionRepository
	codes      repository.CodeSubmissionRepository
	programs   repository.ProgramRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	notifier   ReviewNotifier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewWorkflowService constructs the workflow engine. The notifier may be nil.
func NewWorkflowService(algorithms repository.AlgorithmSubmissionRepository, codes repository.CodeSubmissionRepository, programs repository.ProgramRepository, validate *validator.Validate, notifier ReviewNotifier, logger zerolog.Logger) WorkflowService {
	return &workflowService{
		algorithms: algorithms,
		codes:      codes,
		programs:   programs,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		notifier:   notifier,
		logger:     logger.With().Str("component", "workflow_service").Logger(),
		now:        time.Now,
	}
}

func (s *workflowService) SubmitAlgorithm(ctx context.Context, studentID string, payload dto.AlgorithmSubmitRequest) (dto.AlgorithmSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlgorithmSubmissionResponse{}, err
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return dto.AlgorithmSubmissionResponse{}, ErrEmptyContent
	}

	if _, err := s.programs.GetByID(ctx, payload.ProgramID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlgorithmSubmissionResponse{}, ErrProgramNotFound
		}
		return dto.AlgorithmSubmissionResponse{}, err
	}

	// Resubmission always inserts a fresh pending row; prior rows stay
	// untouched as audit history.
	submission := models.AlgorithmSubmission{
		ProgramID: payload.ProgramID,
		StudentID: studentID,
		Content:   content,
		Status:    models.ReviewStatusPending,
	}

	if err := s.algorithms.Create(ctx, &submission); err != nil {
		return dto.AlgorithmSubmissionResponse{}, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("program_id", submission.ProgramID).
		Str("student_id", submission.StudentID).
		Msg("algorithm draft submitted")

	return dto.NewAlgorithmSubmissionResponse(submission), nil
}

func (s *workflowService) ReviewAlgorithm(ctx context.Context, submissionID string, payload dto.ReviewRequest) (dto.AlgorithmSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlgorithmSubmissionResponse{}, err
	}
	if !payload.Decision.Valid() {
		return dto.AlgorithmSubmissionResponse{}, ErrInvalidDecision
	}

	submission, err := s.algorithms.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlgorithmSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.AlgorithmSubmissionResponse{}, err
	}

	feedback := s.reviewFeedback(payload)
	if submission.Status == payload.Decision.Status() && (payload.Feedback == nil || submission.Feedback == feedback) {
		// Repeating the same decision is a no-op.
		return dto.NewAlgorithmSubmissionResponse(submission), nil
	}

	submission.Status = payload.Decision.Status()
	if payload.Feedback != nil {
		submission.Feedback = feedback
	}

	if err := s.algorithms.Update(ctx, &submission); err != nil {
		return dto.AlgorithmSubmissionResponse{}, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("decision", string(payload.Decision)).
		Msg("algorithm draft reviewed")

	s.notifyReview(ctx, submission.StudentID, "Algorithm draft", payload.Decision, submission.Feedback)

	return dto.NewAlgorithmSubmissionResponse(submission), nil
}

func (s *workflowService) SubmitCode(ctx context.Context, studentID string, payload dto.CodeSubmitRequest) (dto.CodeSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeSubmissionResponse{}, err
	}

	code := strings.TrimSpace(payload.Code)
	if code == "" {
		return dto.CodeSubmissionResponse{}, ErrEmptyCode
	}

	if _, err := s.programs.GetByID(ctx, payload.ProgramID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CodeSubmissionResponse{}, ErrProgramNotFound
		}
		return dto.CodeSubmissionResponse{}, err
	}

	// Stage gating: the coding stage only opens once the latest algorithm
	// draft for the pair has been approved.
	latest, err := s.algorithms.LatestForPair(ctx, payload.ProgramID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CodeSubmissionResponse{}, ErrAlgorithmNotApproved
		}
		return dto.CodeSubmissionResponse{}, err
	}
	if !latest.IsApproved() {
		return dto.CodeSubmissionResponse{}, ErrAlgorithmNotApproved
	}

	submission := models.CodeSubmission{
		ProgramID: payload.ProgramID,
		StudentID: studentID,
		Code:      code,
		Language:  strings.ToLower(strings.TrimSpace(payload.Language)),
		Output:    payload.Output,
		Status:    models.ReviewStatusPending,
	}

	if err := s.codes.Create(ctx, &submission); err != nil {
		return dto.CodeSubmissionResponse{}, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("program_id", submission.ProgramID).
		Str("student_id", submission.StudentID).
		Str("language", submission.Language).
		Msg("code submitted")

	return dto.NewCodeSubmissionResponse(submission), nil
}

func (s *workflowService) ReviewCode(ctx context.Context, submissionID string, payload dto.ReviewRequest) (dto.CodeSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeSubmissionResponse{}, err
	}
	if !payload.Decision.Valid() {
		return dto.CodeSubmissionResponse{}, ErrInvalidDecision
	}

	submission, err := s.codes.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CodeSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.CodeSubmissionResponse{}, err
	}

	feedback := s.reviewFeedback(payload)
	if submission.Status == payload.Decision.Status() && (payload.Feedback == nil || submission.Feedback == feedback) {
		return dto.NewCodeSubmissionResponse(submission), nil
	}

	submission.Status = payload.Decision.Status()
	if payload.Feedback != nil {
		submission.Feedback = feedback
	}

	if err := s.codes.Update(ctx, &submission); err != nil {
		return dto.CodeSubmissionResponse{}, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("decision", string(payload.Decision)).
		Msg("code submission reviewed")

	s.notifyReview(ctx, submission.StudentID, "Code submission", payload.Decision, submission.Feedback)

	return dto.NewCodeSubmissionResponse(submission), nil
}

// DeriveStatus computes the combined progress status for one pair. The rules
// form a priority table: code-stage facts win over algorithm-stage facts, and
// only the single most recent row of each kind is consulted.
func (s *workflowService) DeriveStatus(ctx context.Context, programID, studentID string) (models.ProgressStatus, error) {
	var latestCode *models.CodeSubmission
	code, err := s.codes.LatestForPair(ctx, programID, studentID)
	switch {
	case err == nil:
		latestCode = &code
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	// The two latest-row reads are deliberately not wrapped in a snapshot: a
	// write landing between them can skew a display status for one read.
	var latestAlgorithm *models.AlgorithmSubmission
	algorithm, err := s.algorithms.LatestForPair(ctx, programID, studentID)
	switch {
	case err == nil:
		latestAlgorithm = &algorithm
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	return models.DeriveProgress(latestAlgorithm, latestCode), nil
}

func (s *workflowService) PairProgress(ctx context.Context, programID, studentID string) (dto.PairProgressResponse, error) {
	status, err := s.DeriveStatus(ctx, programID, studentID)
	if err != nil {
		return dto.PairProgressResponse{}, err
	}

	response := dto.PairProgressResponse{
		ProgramID: programID,
		StudentID: studentID,
		Status:    status,
	}

	if algorithm, err := s.algorithms.LatestForPair(ctx, programID, studentID); err == nil {
		latest := dto.NewAlgorithmSubmissionResponse(algorithm)
		response.LatestAlgorithm = &latest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PairProgressResponse{}, err
	}

	if code, err := s.codes.LatestForPair(ctx, programID, studentID); err == nil {
		latest := dto.NewCodeSubmissionResponse(code)
		response.LatestCode = &latest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PairProgressResponse{}, err
	}

	return response, nil
}

func (s *workflowService) ListAlgorithmSubmissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.AlgorithmSubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.algorithms.List(ctx, repository.SubmissionFilter{
		ProgramID: filter.ProgramID,
		StudentID: filter.StudentID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewAlgorithmSubmissionResponseSlice(submissions), nil
}

func (s *workflowService) ListCodeSubmissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.CodeSubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.codes.List(ctx, repository.SubmissionFilter{
		ProgramID: filter.ProgramID,
		StudentID: filter.StudentID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewCodeSubmissionResponseSlice(submissions), nil
}

func (s *workflowService) reviewFeedback(payload dto.ReviewRequest) string {
	if payload.Feedback == nil {
		return ""
	}
	return s.sanitizer.Sanitize(strings.TrimSpace(*payload.Feedback))
}

func (s *workflowService) notifyReview(ctx context.Context, studentID, subject string, decision models.ReviewDecision, feedback string) {
	if s.notifier == nil {
		return
	}

	payload := dto.NotificationCreateRequest{
		UserID: studentID,
		Title:  fmt.Sprintf("%s %s", subject, decision),
		Body:   feedback,
	}

	if _, err := s.notifier.Publish(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to publish review notification")
	}
}
