package service

import (
	"context"
	"fmt"

	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
)

// LabSettingsService manages the letterhead printed on reports
type LabSettingsService struct {
	repo            *repository.LabSettingsRepository
	fallbackLabName string
	logger          *zap.Logger
}

func NewLabSettingsService(repo *repository.LabSettingsRepository, fallbackLabName string, logger *zap.Logger) *LabSettingsService {
	return &LabSettingsService{
		repo:            repo,
		fallbackLabName: fallbackLabName,
		logger:          logger,
	}
}

// Current returns the stored settings, or the fallback letterhead when none
// were saved. The boolean reports whether the fallback was used.
func (s *LabSettingsService) Current(ctx context.Context) (*domain.LabSettings, bool, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get lab settings: %w", err)
	}
	if settings == nil {
		return &domain.LabSettings{LabName: s.fallbackLabName}, true, nil
	}
	return settings, false, nil
}

func (s *LabSettingsService) Get(ctx context.Context) (*domain.LabSettingsDTO, error) {
	settings, isDefault, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToLabSettingsDTO(settings, isDefault)
	return &dto, nil
}

func (s *LabSettingsService) Update(ctx context.Context, req *domain.UpdateLabSettingsRequest) (*domain.LabSettingsDTO, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab settings: %w", err)
	}
	if settings == nil {
		settings = &domain.LabSettings{}
	}

	settings.LabName = req.LabName
	settings.LabLogoURL = req.LabLogoURL
	settings.SignatureURL = req.SignatureURL
	settings.StampURL = req.StampURL
	settings.Address = req.Address
	settings.Phone = req.Phone
	settings.Email = req.Email
	settings.UpdatedByID = auth.ActorID(ctx)

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save lab settings: %w", err)
	}

	s.logger.Info("lab settings updated", zap.String("lab_name", settings.LabName))

	dto := mapper.ToLabSettingsDTO(settings, false)
	return &dto, nil
}
