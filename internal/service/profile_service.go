package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/mapper"
	"github.com/meatlab/lims-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileService struct {
	repo   *repository.ProfileRepository
	logger *zap.Logger
}

func NewProfileService(repo *repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger,
	}
}

// Me returns the caller's profile. API key callers get a synthetic admin profile.
func (s *ProfileService) Me(ctx context.Context) (*domain.ProfileDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}
	if userCtx.IsSystem {
		return &domain.ProfileDTO{
			ID:       userCtx.UserID,
			FullName: userCtx.DisplayName,
			Email:    userCtx.Email,
			Role:     userCtx.Role,
		}, nil
	}

	profile, err := s.repo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

func (s *ProfileService) List(ctx context.Context) ([]domain.ProfileDTO, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return toProfileDTOs(profiles), nil
}

// Analysts returns the profiles that may be assigned to samples
func (s *ProfileService) Analysts(ctx context.Context) ([]domain.ProfileDTO, error) {
	profiles, err := s.repo.ListAnalysts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysts: %w", err)
	}
	return toProfileDTOs(profiles), nil
}

// UpdateRole changes a profile's role. The last admin cannot be demoted.
func (s *ProfileService) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.ProfileDTO, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return nil, ErrCannotRemoveLastAdmin
		}
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("profile role updated",
		zap.String("profile_id", id.String()),
		zap.String("from", string(profile.Role)),
		zap.String("to", string(role)))

	profile.Role = role
	dto := mapper.ToProfileDTO(profile)
	return &dto, nil
}

func toProfileDTOs(profiles []domain.Profile) []domain.ProfileDTO {
	dtos := make([]domain.ProfileDTO, len(profiles))
	for i := range profiles {
		dtos[i] = mapper.ToProfileDTO(&profiles[i])
	}
	return dtos
}
