package repository

import (
	"context"

	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
)

// LabSettingsRepository handles the singleton letterhead record
type LabSettingsRepository struct {
	db *gorm.DB
}

// NewLabSettingsRepository creates a new lab settings repository instance
func NewLabSettingsRepository(db *gorm.DB) *LabSettingsRepository {
	return &LabSettingsRepository{db: db}
}

// Get returns the lab settings row. Returns nil, nil when the lab has not been configured.
func (r *LabSettingsRepository) Get(ctx context.Context) (*domain.LabSettings, error) {
	var settings domain.LabSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Save updates the existing settings row or creates the first one
func (r *LabSettingsRepository) Save(ctx context.Context, settings *domain.LabSettings) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.LabSettings
		err := tx.Select("id", "created_at").Order("created_at ASC").First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return tx.Create(settings).Error
		case err != nil:
			return err
		}

		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		return tx.Save(settings).Error
	})
}
