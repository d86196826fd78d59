package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// SubmissionFilter narrows submission queries of either kind.
type SubmissionFilter struct {
	ProgramID *string
	StudentID *string
	Status    *string
}

// AlgorithmSubmissionRepository defines data operations for algorithm drafts.
// LatestForPair is the primary read: the single most-recent row for one
// (program, student) pair; older rows stay retrievable through List as audit
// history.
type AlgorithmSubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.AlgorithmSubmission, error)
	GetByID(ctx context.Context, id string) (models.AlgorithmSubmission, error)
	LatestForPair(ctx context.Context, programID, studentID string) (models.AlgorithmSubmission, error)
	Create(ctx context.Context, submission *models.AlgorithmSubmission) error
	Update(ctx context.Context, submission *models.AlgorithmSubmission) error
}

type algorithmSubmissionRepository struct {
	db *gorm.DB
}

// NewAlgorithmSubmissionRepository instantiates the repository.
func NewAlgorithmSubmissionRepository(db *gorm.DB) AlgorithmSubmissionRepository {
	return &algorithmSubmissionRepository{db: db}
}

func applySubmissionFilter(query *gorm.DB, filter SubmissionFilter) *gorm.DB {
	if filter.ProgramID != nil {
		query = query.Where("program_id = ?", *filter.ProgramID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *algorithmSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.AlgorithmSubmission, error) {
	query := applySubmissionFilter(r.db.WithContext(ctx).Model(&models.AlgorithmSubmission{}), filter)

	var submissions []models.AlgorithmSubmission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *algorithmSubmissionRepository) GetByID(ctx context.Context, id string) (models.AlgorithmSubmission, error) {
	var submission models.AlgorithmSubmission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return models.AlgorithmSubmission{}, err
	}

	return submission, nil
}

func (r *algorithmSubmissionRepository) LatestForPair(ctx context.Context, programID, studentID string) (models.AlgorithmSubmission, error) {
	var submission models.AlgorithmSubmission
	if err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&submission).Error; err != nil {
		return models.AlgorithmSubmission{}, err
	}

	return submission, nil
}

func (r *algorithmSubmissionRepository) Create(ctx context.Context, submission *models.AlgorithmSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *algorithmSubmissionRepository) Update(ctx context.Context, submission *models.AlgorithmSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
