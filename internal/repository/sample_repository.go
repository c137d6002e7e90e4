package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SampleFilters defines filter options for sample listing
type SampleFilters struct {
	Search   string
	Status   *domain.SampleStatus
	ClientID *uuid.UUID
}

// sampleSortableFields maps API field names to database column names for samples
var sampleSortableFields = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"receivedDate":   "received_date",
	"collectionDate": "collection_date",
	"sampleCode":     "sample_code",
	"sampleType":     "sample_type",
	"status":         "status",
}

// SampleRepository handles sample data access operations
type SampleRepository struct {
	db *gorm.DB
}

// NewSampleRepository creates a new sample repository instance
func NewSampleRepository(db *gorm.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

func (r *SampleRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.Preload("Client").Preload("Analyst").Preload("TestResult")
}

func (r *SampleRepository) Create(ctx context.Context, sample *domain.Sample) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sample).Error
}

// GetByID retrieves a sample with its client, analyst and test result
func (r *SampleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sample, error) {
	var sample domain.Sample
	err := r.withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&sample).Error
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// GetByCode finds a sample by its unique sample code. Returns nil, nil when absent.
func (r *SampleRepository) GetByCode(ctx context.Context, code string) (*domain.Sample, error) {
	var sample domain.Sample
	err := r.db.WithContext(ctx).Where("sample_code = ?", code).First(&sample).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}

// Update saves the sample columns without touching its associations
func (r *SampleRepository) Update(ctx context.Context, sample *domain.Sample) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sample).Error
}

// Delete removes a sample together with its test result and reports
func (r *SampleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sample_id = ?", id).Delete(&domain.TestResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sample_id = ?", id).Delete(&domain.Report{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Sample{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteByStatus removes every sample with the given status, or all samples
// when status is nil, and returns how many samples were removed.
func (r *SampleRepository) DeleteByStatus(ctx context.Context, status *domain.SampleStatus) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&domain.Sample{}).Select("id")
		if status != nil {
			ids = ids.Where("status = ?", *status)
		}

		if err := tx.Where("sample_id IN (?)", ids).Delete(&domain.TestResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sample_id IN (?)", ids).Delete(&domain.Report{}).Error; err != nil {
			return err
		}

		del := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if status != nil {
			del = del.Where("status = ?", *status)
		}
		result := del.Delete(&domain.Sample{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// ListWithSortConfig returns a paginated list of samples, newest received first by default
func (r *SampleRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *SampleFilters, sort SortConfig) ([]domain.Sample, int64, error) {
	var samples []domain.Sample
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Sample{})
	if filters != nil {
		if filters.Search != "" {
			pattern := likePattern(filters.Search)
			query = query.Where(
				"LOWER(sample_code) LIKE ? OR LOWER(sample_type) LIKE ? OR LOWER(source) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.ClientID != nil {
			query = query.Where("client_id = ?", *filters.ClientID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, sampleSortableFields, "received_date")
	err := paginate(r.withDetails(query).Order(orderClause).Order("created_at DESC"), page, pageSize).
		Find(&samples).Error

	return samples, total, err
}

// Recent returns the most recently received samples
func (r *SampleRepository) Recent(ctx context.Context, limit int) ([]domain.Sample, error) {
	var samples []domain.Sample
	err := r.withDetails(r.db.WithContext(ctx)).
		Order("received_date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&samples).Error
	return samples, err
}

// Count returns the number of samples with the given status, or all samples when status is nil
func (r *SampleRepository) Count(ctx context.Context, status *domain.SampleStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Sample{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListPendingReceivedBefore returns pending samples received before the cutoff, oldest first
func (r *SampleRepository) ListPendingReceivedBefore(ctx context.Context, cutoff time.Time) ([]domain.Sample, error) {
	var samples []domain.Sample
	err := r.db.WithContext(ctx).
		Where("status = ? AND received_date < ?", domain.SampleStatusPending, cutoff).
		Order("received_date ASC").
		Find(&samples).Error
	return samples, err
}

// MarkCompleted sets the sample status to completed
func (r *SampleRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Sample{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.SampleStatusCompleted,
			"updated_at": time.Now().UTC(),
		}).Error
}
