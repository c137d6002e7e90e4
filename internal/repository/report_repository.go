package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportFilters defines filter options for report listing
type ReportFilters struct {
	Search   string
	Window   DateWindow
	SampleID *uuid.UUID
	ClientID *uuid.UUID
	Now      time.Time
}

// reportSortableFields maps API field names to database column names for reports
var reportSortableFields = map[string]string{
	"dateGenerated": "reports.date_generated",
	"createdAt":     "reports.created_at",
	"reportType":    "reports.report_type",
	"sampleCode":    "samples.sample_code",
}

// ReportRepository handles report data access operations
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Sample").
		Preload("Sample.Client").
		Preload("Sample.Analyst").
		Preload("Sample.TestResult").
		Preload("GeneratedBy")
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

// GetByID retrieves a report with its sample, test result and generator
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Report{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStoragePath records where the archived PDF was written
func (r *ReportRepository) UpdateStoragePath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&domain.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"storage_path": path,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// ListWithSortConfig returns a paginated list of reports, newest first by default
func (r *ReportRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *ReportFilters, sort SortConfig) ([]domain.Report, int64, error) {
	var reports []domain.Report
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Report{}).
		Joins("JOIN samples ON samples.id = reports.sample_id")

	if filters != nil {
		if filters.Search != "" {
			pattern := likePattern(filters.Search)
			query = query.Where("LOWER(samples.sample_code) LIKE ? OR LOWER(samples.source) LIKE ?", pattern, pattern)
		}
		if filters.SampleID != nil {
			query = query.Where("reports.sample_id = ?", *filters.SampleID)
		}
		if filters.ClientID != nil {
			query = query.Where("reports.client_id = ?", *filters.ClientID)
		}
		if filters.Window != DateWindowAll {
			now := filters.Now
			if now.IsZero() {
				now = time.Now().UTC()
			}
			query = query.Where("reports.date_generated >= ?", filters.Window.Since(now))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, reportSortableFields, "reports.date_generated")
	err := paginate(r.withDetails(query.Select("reports.*")).Order(orderClause), page, pageSize).
		Find(&reports).Error

	return reports, total, err
}

// Count returns the total number of generated reports
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).Count(&count).Error
	return count, err
}
