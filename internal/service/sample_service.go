package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SampleService struct {
	sampleRepo  *repository.SampleRepository
	clientRepo  *repository.ClientRepository
	profileRepo *repository.ProfileRepository
	codes       *SampleCodeService
	logger      *zap.Logger
	now         func() time.Time
}

func NewSampleService(
	sampleRepo *repository.SampleRepository,
	clientRepo *repository.ClientRepository,
	profileRepo *repository.ProfileRepository,
	codes *SampleCodeService,
	logger *zap.Logger,
) *SampleService {
	return &SampleService{
		sampleRepo:  sampleRepo,
		clientRepo:  clientRepo,
		profileRepo: profileRepo,
		codes:       codes,
		logger:      logger,
		now:         time.Now,
	}
}

// Create registers a sample. A missing code is generated from the report
// type inferred from the sample type; missing dates default to today.
func (s *SampleService) Create(ctx context.Context, req *domain.CreateSampleRequest) (*domain.SampleWithDetailsDTO, error) {
	today := startOfDay(s.now())

	collected, err := parseDateOr(req.CollectionDate, today)
	if err != nil {
		return nil, err
	}
	received, err := parseDateOr(req.ReceivedDate, today)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.ClientID, req.AnalystID); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.SampleCode)
	if code == "" {
		code, err = s.codes.Generate(ctx, domain.DetectReportType(req.SampleType).CodePrefix())
		if err != nil {
			return nil, err
		}
	} else if err := s.ensureCodeAvailable(ctx, code, uuid.Nil); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.SampleStatusPending
	}

	sample := &domain.Sample{
		SampleCode:     code,
		SampleType:     req.SampleType,
		Source:         req.Source,
		CollectionDate: collected,
		ReceivedDate:   received,
		ClientID:       req.ClientID,
		AnalystID:      req.AnalystID,
		Status:         status,
		CreatedByID:    auth.ActorID(ctx),
	}

	if err := s.sampleRepo.Create(ctx, sample); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSampleCode
		}
		return nil, fmt.Errorf("failed to create sample: %w", err)
	}

	s.logger.Info("sample registered",
		zap.String("sample_id", sample.ID.String()),
		zap.String("sample_code", sample.SampleCode))

	return s.GetByID(ctx, sample.ID)
}

func (s *SampleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SampleWithDetailsDTO, error) {
	sample, err := s.sampleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSampleNotFound
		}
		return nil, fmt.Errorf("failed to get sample: %w", err)
	}

	dto := mapper.ToSampleWithDetailsDTO(sample)
	return &dto, nil
}

func (s *SampleService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSampleRequest) (*domain.SampleWithDetailsDTO, error) {
	sample, err := s.sampleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSampleNotFound
		}
		return nil, fmt.Errorf("failed to get sample: %w", err)
	}

	collected, err := parseDateOr(req.CollectionDate, sample.CollectionDate)
	if err != nil {
		return nil, err
	}
	received, err := parseDateOr(req.ReceivedDate, sample.ReceivedDate)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.ClientID, req.AnalystID); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.SampleCode)
	if code != sample.SampleCode {
		if err := s.ensureCodeAvailable(ctx, code, sample.ID); err != nil {
			return nil, err
		}
	}

	sample.SampleCode = code
	sample.SampleType = req.SampleType
	sample.Source = req.Source
	sample.CollectionDate = collected
	sample.ReceivedDate = received
	sample.ClientID = req.ClientID
	sample.AnalystID = req.AnalystID
	sample.Status = req.Status

	if err := s.sampleRepo.Update(ctx, sample); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSampleCode
		}
		return nil, fmt.Errorf("failed to update sample: %w", err)
	}

	return s.GetByID(ctx, sample.ID)
}

// Delete removes a sample with its result and report history
func (s *SampleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.sampleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSampleNotFound
		}
		return fmt.Errorf("failed to delete sample: %w", err)
	}

	s.logger.Info("sample deleted", zap.String("sample_id", id.String()))
	return nil
}

// BulkDelete removes all samples, or only those in the given status scope
func (s *SampleService) BulkDelete(ctx context.Context, req *domain.BulkDeleteSamplesRequest) (*domain.BulkDeleteResultDTO, error) {
	var status *domain.SampleStatus
	switch req.Scope {
	case "all":
	case string(domain.SampleStatusPending), string(domain.SampleStatusCompleted):
		st := domain.SampleStatus(req.Scope)
		status = &st
	default:
		return nil, fmt.Errorf("%w: unknown delete scope %q", ErrInvalidInput, req.Scope)
	}

	deleted, err := s.sampleRepo.DeleteByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to delete samples: %w", err)
	}

	s.logger.Warn("samples bulk deleted",
		zap.String("scope", req.Scope),
		zap.Int64("deleted", deleted))

	return &domain.BulkDeleteResultDTO{Deleted: deleted}, nil
}

func (s *SampleService) List(ctx context.Context, page, pageSize int, filters *repository.SampleFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	samples, total, err := s.sampleRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}

	dtos := make([]domain.SampleDTO, len(samples))
	for i := range samples {
		dtos[i] = mapper.ToSampleDTO(&samples[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// SampleTypes returns the sample types offered on the registration form
func (s *SampleService) SampleTypes() []string {
	types := make([]string, len(domain.SampleTypes))
	copy(types, domain.SampleTypes)
	return types
}

func (s *SampleService) ensureCodeAvailable(ctx context.Context, code string, self uuid.UUID) error {
	if code == "" {
		return fmt.Errorf("%w: sample code is required", ErrInvalidInput)
	}
	existing, err := s.sampleRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to check sample code: %w", err)
	}
	if existing != nil && existing.ID != self {
		return ErrDuplicateSampleCode
	}
	return nil
}

func (s *SampleService) checkReferences(ctx context.Context, clientID, analystID *uuid.UUID) error {
	if clientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, *clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to get client: %w", err)
		}
	}
	if analystID != nil {
		if _, err := s.profileRepo.GetByID(ctx, *analystID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("failed to get analyst: %w", err)
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDateOr parses a YYYY-MM-DD date, returning fallback for an empty string
func parseDateOr(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, value)
	}
	return t, nil
}
