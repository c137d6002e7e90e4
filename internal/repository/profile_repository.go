package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository handles profile data access operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// EnsureExists inserts the profile if no row with its ID exists yet and
// leaves an existing row untouched.
func (r *ProfileRepository) EnsureExists(ctx context.Context, profile *domain.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(profile).Error
}

// List returns every profile, newest first
func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

// ListAnalysts returns profiles allowed to analyse samples, ordered by name
func (r *ProfileRepository) ListAnalysts(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := r.db.WithContext(ctx).
		Where("role IN ?", []domain.UserRole{domain.RoleAdmin, domain.RoleAnalyst}).
		Order("full_name ASC").
		Find(&profiles).Error
	return profiles, err
}

// UpdateRole changes the role of a profile
func (r *ProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	result := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByRole returns the number of profiles holding a role
func (r *ProfileRepository) CountByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("role = ?", role).Count(&count).Error
	return count, err
}
