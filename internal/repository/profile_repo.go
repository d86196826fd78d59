package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// ProfileRepository defines persistence operations for identity profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
	GetByEmail(ctx context.Context, email string) (models.Profile, error)
	ListByRole(ctx context.Context, role string) ([]models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository instantiates the repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "email = ?", email).Error; err != nil {
		return models.Profile{}, err
	}

	return profile, nil
}

func (r *profileRepository) ListByRole(ctx context.Context, role string) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
