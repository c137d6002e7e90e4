package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
)

// TestResultRepository handles test result data access operations
type TestResultRepository struct {
	db *gorm.DB
}

// NewTestResultRepository creates a new test result repository instance
func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{db: db}
}

// GetBySampleID returns the result recorded for a sample. Returns nil, nil when none exists.
func (r *TestResultRepository) GetBySampleID(ctx context.Context, sampleID uuid.UUID) (*domain.TestResult, error) {
	var result domain.TestResult
	err := r.db.WithContext(ctx).Where("sample_id = ?", sampleID).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// Upsert stores the result for result.SampleID, replacing any existing row
// for that sample so a sample never carries more than one result.
func (r *TestResultRepository) Upsert(ctx context.Context, result *domain.TestResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.TestResult
		err := tx.Select("id", "created_at").Where("sample_id = ?", result.SampleID).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return tx.Create(result).Error
		case err != nil:
			return err
		}

		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
		return tx.Save(result).Error
	})
}

// DeleteBySampleID removes the result recorded for a sample
func (r *TestResultRepository) DeleteBySampleID(ctx context.Context, sampleID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("sample_id = ?", sampleID).Delete(&domain.TestResult{}).Error
}
