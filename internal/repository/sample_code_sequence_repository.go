package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SampleCodeSequenceRepository hands out sample code numbers per prefix and year
type SampleCodeSequenceRepository struct {
	db *gorm.DB
}

// NewSampleCodeSequenceRepository creates a new SampleCodeSequenceRepository
func NewSampleCodeSequenceRepository(db *gorm.DB) *SampleCodeSequenceRepository {
	return &SampleCodeSequenceRepository{db: db}
}

// GetNextNumber atomically increments and returns the sequence for a prefix/year.
// The row is locked with SELECT FOR UPDATE; a missing row starts at 1.
func (r *SampleCodeSequenceRepository) GetNextNumber(ctx context.Context, prefix string, year int) (int, error) {
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.SampleCodeSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("prefix = ? AND year = ?", prefix, year).
			First(&seq)

		switch {
		case result.Error == gorm.ErrRecordNotFound:
			now := time.Now().UTC()
			seq = domain.SampleCodeSequence{
				Prefix:       prefix,
				Year:         year,
				LastSequence: 1,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create sample code sequence: %w", err)
			}
			next = 1
		case result.Error != nil:
			return fmt.Errorf("failed to get sample code sequence: %w", result.Error)
		default:
			next = seq.LastSequence + 1
			if err := tx.Model(&domain.SampleCodeSequence{}).
				Where("prefix = ? AND year = ?", prefix, year).
				Updates(map[string]interface{}{
					"last_sequence": next,
					"updated_at":    time.Now().UTC(),
				}).Error; err != nil {
				return fmt.Errorf("failed to update sample code sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// GetCurrentSequence returns the last issued number without incrementing, 0 if none
func (r *SampleCodeSequenceRepository) GetCurrentSequence(ctx context.Context, prefix string, year int) (int, error) {
	var seq domain.SampleCodeSequence
	result := r.db.WithContext(ctx).Where("prefix = ? AND year = ?", prefix, year).First(&seq)
	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get sample code sequence: %w", result.Error)
	}
	return seq.LastSequence, nil
}
