package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// ProgramFilter describes search, classroom and pagination options.
type ProgramFilter struct {
	ClassroomID *string
	Search      string
	Sort        string
	Page        int
	PageSize    int
}

// ProgramRepository defines persistence operations for programs. Programs are
// never deleted in normal flow, so no Delete is exposed.
type ProgramRepository interface {
	List(ctx context.Context, filter ProgramFilter) ([]models.Program, int64, error)
	GetByID(ctx context.Context, id string) (models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository instantiates a GORM-backed repository.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) List(ctx context.Context, filter ProgramFilter) ([]models.Program, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Program{})

	if filter.ClassroomID != nil {
		query = query.Where("classroom_id = ?", *filter.ClassroomID)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(normalizeProgramSort(filter.Sort))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var programs []models.Program
	if err := query.Find(&programs).Error; err != nil {
		return nil, 0, err
	}

	return programs, total, nil
}

func (r *programRepository) GetByID(ctx context.Context, id string) (models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).First(&program, "id = ?", id).Error; err != nil {
		return models.Program{}, err
	}

	return program, nil
}

func (r *programRepository) Create(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepository) Update(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Save(program).Error
}

func normalizeProgramSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "created_at", "created_at:asc":
		return "created_at ASC"
	case "title", "title:asc":
		return "title ASC"
	case "-title", "title:desc":
		return "title DESC"
	default:
		return "created_at DESC"
	}
}
