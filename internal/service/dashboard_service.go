package service

import (
	"context"
	"fmt"

	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recentSampleLimit is the number of samples shown on the dashboard
const recentSampleLimit = 5

type DashboardService struct {
	sampleRepo *repository.SampleRepository
	reportRepo *repository.ReportRepository
	logger     *zap.Logger
}

func NewDashboardService(sampleRepo *repository.SampleRepository, reportRepo *repository.ReportRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		sampleRepo: sampleRepo,
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// Get gathers the dashboard counters and recent samples concurrently
func (s *DashboardService) Get(ctx context.Context) (*domain.DashboardDTO, error) {
	var (
		dto     domain.DashboardDTO
		recent  []domain.Sample
		pending = domain.SampleStatusPending
		done    = domain.SampleStatusCompleted
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.sampleRepo.Count(gctx, nil)
		dto.TotalSamples = n
		return err
	})
	g.Go(func() error {
		n, err := s.sampleRepo.Count(gctx, &pending)
		dto.PendingSamples = n
		return err
	})
	g.Go(func() error {
		n, err := s.sampleRepo.Count(gctx, &done)
		dto.CompletedSamples = n
		return err
	})
	g.Go(func() error {
		n, err := s.reportRepo.Count(gctx)
		dto.TotalReports = n
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.sampleRepo.Recent(gctx, recentSampleLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	dto.RecentSamples = make([]domain.SampleDTO, len(recent))
	for i := range recent {
		dto.RecentSamples[i] = mapper.ToSampleDTO(&recent[i])
	}
	return &dto, nil
}
