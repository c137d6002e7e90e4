package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	client := &domain.Client{
		Name:        req.Name,
		Company:     req.Company,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		CreatedByID: auth.ActorID(ctx),
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created", zap.String("client_id", client.ID.String()), zap.String("name", client.Name))

	dto := mapper.ToClientDTO(client, 0)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	counts, err := s.clientRepo.CountSamples(ctx, []uuid.UUID{client.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count client samples: %w", err)
	}

	dto := mapper.ToClientDTO(client, counts[client.ID])
	return &dto, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.Name = req.Name
	client.Company = req.Company
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	counts, err := s.clientRepo.CountSamples(ctx, []uuid.UUID{client.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count client samples: %w", err)
	}

	dto := mapper.ToClientDTO(client, counts[client.ID])
	return &dto, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.logger.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, filters *repository.ClientFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	clients, total, err := s.clientRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	ids := make([]uuid.UUID, len(clients))
	for i := range clients {
		ids[i] = clients[i].ID
	}
	counts, err := s.clientRepo.CountSamples(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count client samples: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i], counts[clients[i].ID])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// ExportCSV renders every client matching the filters as CSV
func (s *ClientService) ExportCSV(ctx context.Context, filters *repository.ClientFilters) ([]byte, error) {
	clients, err := s.clientRepo.ListAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	ids := make([]uuid.UUID, len(clients))
	for i := range clients {
		ids[i] = clients[i].ID
	}
	counts, err := s.clientRepo.CountSamples(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count client samples: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Name", "Company", "Email", "Phone", "Address", "Samples", "Created"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range clients {
		c := &clients[i]
		record := []string{
			c.Name,
			c.Company,
			c.Email,
			c.Phone,
			c.Address,
			strconv.FormatInt(counts[c.ID], 10),
			c.CreatedAt.Format(domain.DateLayout),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// paginated wraps a page of DTOs with the clamped paging metadata
func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repository.DefaultPageSize
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
