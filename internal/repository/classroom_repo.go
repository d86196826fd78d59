package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// ClassroomRepository defines persistence operations for classrooms and
// their membership rows.
type ClassroomRepository interface {
	List(ctx context.Context, teacherID *string) ([]models.Classroom, error)
	GetByID(ctx context.Context, id string) (models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	AddMember(ctx context.Context, member *models.ClassroomMember) error
	ListMembers(ctx context.Context, classroomID string) ([]models.ClassroomMember, error)
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository instantiates the repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) List(ctx context.Context, teacherID *string) ([]models.Classroom, error) {
	query := r.db.WithContext(ctx).Model(&models.Classroom{})
	if teacherID != nil {
		query = query.Where("teacher_id = ?", *teacherID)
	}

	var classrooms []models.Classroom
	if err := query.Order("created_at DESC").Find(&classrooms).Error; err != nil {
		return nil, err
	}

	return classrooms, nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id string) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, "id = ?", id).Error; err != nil {
		return models.Classroom{}, err
	}

	return classroom, nil
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *classroomRepository) ListMembers(ctx context.Context, classroomID string) ([]models.ClassroomMember, error) {
	var members []models.ClassroomMember
	if err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}
