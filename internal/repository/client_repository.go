package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
	"gorm.io/gorm"
)

// ClientFilters defines filter options for client listing
type ClientFilters struct {
	Search string
}

// clientSortableFields maps API field names to database column names for clients
var clientSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"company":   "company",
	"email":     "email",
}

// ClientRepository handles client data access operations
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository instance
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete removes a client. Samples keep their history with the client reference cleared.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Sample{}).Where("client_id = ?", id).Update("client_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Report{}).Where("client_id = ?", id).Update("client_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Client{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ClientRepository) applyFilters(query *gorm.DB, filters *ClientFilters) *gorm.DB {
	if filters == nil || filters.Search == "" {
		return query
	}
	pattern := likePattern(filters.Search)
	return query.Where(
		"LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
		pattern, pattern, pattern, pattern,
	)
}

// ListWithSortConfig returns a paginated list of clients ordered by name unless another field is requested
func (r *ClientRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *ClientFilters, sort SortConfig) ([]domain.Client, int64, error) {
	var clients []domain.Client
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Client{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if sort.Field == "" {
		sort = SortConfig{Field: "name", Order: SortOrderAsc}
	}
	err := paginate(query.Order(BuildOrderClause(sort, clientSortableFields, "name")), page, pageSize).
		Find(&clients).Error

	return clients, total, err
}

// ListAll returns every client matching the filters ordered by name
func (r *ClientRepository) ListAll(ctx context.Context, filters *ClientFilters) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Client{}), filters).
		Order("name ASC").
		Find(&clients).Error
	return clients, err
}

// CountSamples returns the number of samples registered per client
func (r *ClientRepository) CountSamples(ctx context.Context, clientIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(clientIDs))
	if len(clientIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ClientID uuid.UUID
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Sample{}).
		Select("client_id, COUNT(*) as count").
		Where("client_id IN ?", clientIDs).
		Group("client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ClientID] = row.Count
	}
	return counts, nil
}
