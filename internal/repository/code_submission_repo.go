package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// CodeSubmissionRepository defines data operations for code submissions.
type CodeSubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.CodeSubmission, error)
	GetByID(ctx context.Context, id string) (models.CodeSubmission, error)
	LatestForPair(ctx context.Context, programID, studentID string) (models.CodeSubmission, error)
	Create(ctx context.Context, submission *models.CodeSubmission) error
	Update(ctx context.Context, submission *models.CodeSubmission) error
}

type codeSubmissionRepository struct {
	db *gorm.DB
}

// NewCodeSubmissionRepository instantiates the repository.
func NewCodeSubmissionRepository(db *gorm.DB) CodeSubmissionRepository {
	return &codeSubmissionRepository{db: db}
}

func (r *codeSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.CodeSubmission, error) {
	query := applySubmissionFilter(r.db.WithContext(ctx).Model(&models.CodeSubmission{}), filter)

	var submissions []models.CodeSubmission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *codeSubmissionRepository) GetByID(ctx context.Context, id string) (models.CodeSubmission, error) {
	var submission models.CodeSubmission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return models.CodeSubmission{}, err
	}

	return submission, nil
}

func (r *codeSubmissionRepository) LatestForPair(ctx context.Context, programID, studentID string) (models.CodeSubmission, error) {
	var submission models.CodeSubmission
	if err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&submission).Error; err != nil {
		return models.CodeSubmission{}, err
	}

	return submission, nil
}

func (r *codeSubmissionRepository) Create(ctx context.Context, submission *models.CodeSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *codeSubmissionRepository) Update(ctx context.Context, submission *models.CodeSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
