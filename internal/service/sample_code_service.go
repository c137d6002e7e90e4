package service

import (
	"context"
	"fmt"
	"time"

	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
)

// SampleCodeService generates unique sample codes.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: SAMPLE-2025-0001, AIR-2025-0042
type SampleCodeService struct {
	repo   *repository.SampleCodeSequenceRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewSampleCodeService creates a new SampleCodeService
func NewSampleCodeService(repo *repository.SampleCodeSequenceRepository, logger *zap.Logger) *SampleCodeService {
	return &SampleCodeService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Generate returns the next code for the prefix in the current year
func (s *SampleCodeService) Generate(ctx context.Context, prefix string) (string, error) {
	year := s.now().Year()

	next, err := s.repo.GetNextNumber(ctx, prefix, year)
	if err != nil {
		s.logger.Error("failed to get next sample code number",
			zap.String("prefix", prefix),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate sample code: %w", err)
	}

	code := fmt.Sprintf("%s-%d-%04d", prefix, year, next)
	s.logger.Debug("generated sample code", zap.String("code", code))
	return code, nil
}
