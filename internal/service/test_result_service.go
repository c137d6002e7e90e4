package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TestResultService struct {
	resultRepo *repository.TestResultRepository
	sampleRepo *repository.SampleRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewTestResultService(
	resultRepo *repository.TestResultRepository,
	sampleRepo *repository.SampleRepository,
	logger *zap.Logger,
) *TestResultService {
	return &TestResultService{
		resultRepo: resultRepo,
		sampleRepo: sampleRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the result recorded for a sample
func (s *TestResultService) Get(ctx context.Context, sampleID uuid.UUID) (*domain.TestResultDTO, error) {
	sample, err := s.sampleRepo.GetByID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSampleNotFound
		}
		return nil, fmt.Errorf("failed to get sample: %w", err)
	}
	if sample.TestResult == nil {
		return nil, ErrTestResultNotFound
	}

	dto := mapper.ToTestResultDTO(sample.TestResult, domain.DetectReportType(sample.SampleType))
	return &dto, nil
}

// Save records the result for a sample, replacing any previous one, and
// marks the sample completed. Custom data must match the report type
// inferred from the sample type.
func (s *TestResultService) Save(ctx context.Context, sampleID uuid.UUID, req *domain.UpsertTestResultRequest) (*domain.TestResultDTO, error) {
	sample, err := s.sampleRepo.GetByID(ctx, sampleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSampleNotFound
		}
		return nil, fmt.Errorf("failed to get sample: %w", err)
	}

	reportType := domain.DetectReportType(sample.SampleType)
	if _, err := domain.ParseCustomData(reportType, req.CustomData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomData, err)
	}

	result := &domain.TestResult{
		SampleID:   sample.ID,
		TPC:        req.TPC,
		SAureus:    req.SAureus,
		Coliforms:  req.Coliforms,
		EcoliO157:  req.EcoliO157,
		Salmonella: req.Salmonella,
		Listeria:   req.Listeria,
		PH:         req.PH,
		TDS:        req.TDS,
		Remarks:    req.Remarks,
		CustomData: req.CustomData,
		TestedByID: auth.ActorID(ctx),
		TestedAt:   s.now().UTC(),
	}
	if result.CustomData.IsEmpty() {
		result.CustomData = nil
	}

	if err := s.resultRepo.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save test result: %w", err)
	}

	if sample.Status != domain.SampleStatusCompleted {
		if err := s.sampleRepo.MarkCompleted(ctx, sample.ID); err != nil {
			return nil, fmt.Errorf("failed to complete sample: %w", err)
		}
	}

	s.logger.Info("test result saved",
		zap.String("sample_id", sample.ID.String()),
		zap.String("sample_code", sample.SampleCode),
		zap.String("report_type", string(reportType)))

	dto := mapper.ToTestResultDTO(result, reportType)
	return &dto, nil
}
