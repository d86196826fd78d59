package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
)

// ProgressService aggregates derived progress across programs and students.
// Board reads are cached in Redis with a short TTL; a stale board is
// acceptable for display, so writes do not invalidate it.
type ProgressService interface {
	StudentBoard(ctx context.Context, studentID string) (dto.ProgressBoardResponse, error)
	ClassMatrix(ctx context.Context, programID string) (dto.ClassProgressResponse, error)
}

type progressService struct {
	programs   repository.ProgramRepository
	algorithms repository.AlgorithmSubmissionRepository
	codes      repository.CodeSubmissionRepository
	profiles   repository.ProfileRepository
	classrooms repository.ClassroomRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewProgressService builds the progress aggregator. The cache may be nil.
func NewProgressService(programs repository.ProgramRepository, algorithms repository.AlgorithmSubmissionRepository, codes repository.CodeSubmissionRepository, profiles repository.ProfileRepository, classrooms repository.ClassroomRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ProgressService {
	return &progressService{
		programs:   programs,
		algorithms: algorithms,
		codes:      codes,
		profiles:   profiles,
		classrooms: classrooms,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "progress_service").Logger(),
		now:        time.Now,
	}
}

func (s *progressService) StudentBoard(ctx context.Context, studentID string) (dto.ProgressBoardResponse, error) {
	cacheKey := fmt.Sprintf("progress:student:%s", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ProgressBoardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("student_id", studentID).Msg("progress board cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress board cache")
		}
	}

	programs, _, err := s.programs.List(ctx, repository.ProgramFilter{})
	if err != nil {
		return dto.ProgressBoardResponse{}, err
	}

	filter := repository.SubmissionFilter{StudentID: &studentID}
	algorithms, err := s.algorithms.List(ctx, filter)
	if err != nil {
		return dto.ProgressBoardResponse{}, err
	}
	codes, err := s.codes.List(ctx, filter)
	if err != nil {
		return dto.ProgressBoardResponse{}, err
	}

	response := s.buildBoard(studentID, programs, algorithms, codes)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress board cache")
			}
		}
	}

	return response, nil
}

func (s *progressService) buildBoard(studentID string, programs []models.Program, algorithms []models.AlgorithmSubmission, codes []models.CodeSubmission) dto.ProgressBoardResponse {
	// List results come newest-first, so the first row seen per program is
	// the latest one.
	latestAlgorithm := map[string]models.AlgorithmSubmission{}
	for _, submission := range algorithms {
		if _, exists := latestAlgorithm[submission.ProgramID]; !exists {
			latestAlgorithm[submission.ProgramID] = submission
		}
	}
	latestCode := map[string]models.CodeSubmission{}
	for _, submission := range codes {
		if _, exists := latestCode[submission.ProgramID]; !exists {
			latestCode[submission.ProgramID] = submission
		}
	}

	summary := dto.ProgressSummary{}
	entries := make([]dto.ProgressBoardEntry, 0, len(programs))

	for _, program := range programs {
		var algorithm *models.AlgorithmSubmission
		if row, ok := latestAlgorithm[program.ID]; ok {
			algorithm = &row
		}
		var code *models.CodeSubmission
		if row, ok := latestCode[program.ID]; ok {
			code = &row
		}

		status := models.DeriveProgress(algorithm, code)

		updatedAt := program.UpdatedAt
		if algorithm != nil && algorithm.UpdatedAt.After(updatedAt) {
			updatedAt = algorithm.UpdatedAt
		}
		if code != nil && code.UpdatedAt.After(updatedAt) {
			updatedAt = code.UpdatedAt
		}

		summary.Total++
		switch status {
		case models.ProgressNotStarted:
			summary.NotStarted++
		case models.ProgressAlgorithmPending, models.ProgressCodeSubmitted:
			summary.InReview++
		case models.ProgressAlgorithmRejected:
			summary.Rejected++
		case models.ProgressCodingStage:
			summary.CodingStage++
		case models.ProgressFinalApproved:
			summary.FinalApproved++
		}

		entries = append(entries, dto.ProgressBoardEntry{
			ProgramID: program.ID,
			Title:     program.Title,
			Status:    status,
			UpdatedAt: updatedAt,
		})
	}

	return dto.ProgressBoardResponse{
		StudentID:   studentID,
		Entries:     entries,
		Summary:     summary,
		GeneratedAt: s.now(),
	}
}

func (s *progressService) ClassMatrix(ctx context.Context, programID string) (dto.ClassProgressResponse, error) {
	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassProgressResponse{}, ErrProgramNotFound
		}
		return dto.ClassProgressResponse{}, err
	}

	students, err := s.rosterFor(ctx, program)
	if err != nil {
		return dto.ClassProgressResponse{}, err
	}

	filter := repository.SubmissionFilter{ProgramID: &programID}
	algorithms, err := s.algorithms.List(ctx, filter)
	if err != nil {
		return dto.ClassProgressResponse{}, err
	}
	codes, err := s.codes.List(ctx, filter)
	if err != nil {
		return dto.ClassProgressResponse{}, err
	}

	latestAlgorithm := map[string]models.AlgorithmSubmission{}
	for _, submission := range algorithms {
		if _, exists := latestAlgorithm[submission.StudentID]; !exists {
			latestAlgorithm[submission.StudentID] = submission
		}
	}
	latestCode := map[string]models.CodeSubmission{}
	for _, submission := range codes {
		if _, exists := latestCode[submission.StudentID]; !exists {
			latestCode[submission.StudentID] = submission
		}
	}

	rows := make([]dto.ClassProgressRow, 0, len(students))
	for _, student := range students {
		var algorithm *models.AlgorithmSubmission
		if row, ok := latestAlgorithm[student.ID]; ok {
			algorithm = &row
		}
		var code *models.CodeSubmission
		if row, ok := latestCode[student.ID]; ok {
			code = &row
		}

		rows = append(rows, dto.ClassProgressRow{
			StudentID:   student.ID,
			StudentName: student.FullName,
			Status:      models.DeriveProgress(algorithm, code),
		})
	}

	return dto.ClassProgressResponse{
		ProgramID: program.ID,
		Title:     program.Title,
		Rows:      rows,
	}, nil
}

// rosterFor resolves the students a matrix should cover. Programs published
// to a classroom are scoped to its student members; unscoped programs cover
// every student profile.
func (s *progressService) rosterFor(ctx context.Context, program models.Program) ([]models.Profile, error) {
	students, err := s.profiles.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	if program.ClassroomID == nil || s.classrooms == nil {
		return students, nil
	}

	members, err := s.classrooms.ListMembers(ctx, *program.ClassroomID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]struct{}, len(members))
	for _, member := range members {
		if member.Role == models.RoleStudent {
			enrolled[member.UserID] = struct{}{}
		}
	}

	scoped := students[:0]
	for _, student := range students {
		if _, ok := enrolled[student.ID]; ok {
			scoped = append(scoped, student)
		}
	}
	return scoped, nil
}
