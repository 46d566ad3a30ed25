package provider

import (
	"context"
	"errors"
	"fmt"

	"dentflow/database/repository"
	"dentflow/models"
	"dentflow/services/booking"
	"dentflow/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultProviderService) CreateProvider(ctx context.Context, clinicID string, in models.ProviderInput) (*models.Provider, error) {
	if clinicID == "" {
		return nil, booking.NewValidationError("clinicId is required")
	}
	now := s.now()
	p := &models.Provider{
		ID:        uuid.New().String(),
		ClinicID:  clinicID,
		Active:    true,
		CreatedAt: now,
	}
	applyProviderInput(p, in, s.DefaultTimezone)
	p.UpdatedAt = now
	if err := s.validateProvider(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	utils.GetLogger().Info("provider created", zap.String("providerID", p.ID), zap.String("clinicID", clinicID))
	return p, nil
}

func (s *DefaultProviderService) UpdateProvider(ctx context.Context, clinicID, id string, in models.ProviderInput) (*models.Provider, error) {
	p, err := s.GetProvider(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	applyProviderInput(p, in, s.DefaultTimezone)
	p.UpdatedAt = s.now()
	if err := s.validateProvider(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, booking.NotFound("provider")
		}
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}
	return p, nil
}

func (s *DefaultProviderService) GetProvider(ctx context.Context, clinicID, id string) (*models.Provider, error) {
	p, err := s.Repo.GetByID(ctx, clinicID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, booking.NotFound("provider")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}
	return p, nil
}

func (s *DefaultProviderService) ListProviders(ctx context.Context, clinicID string, activeOnly bool) ([]models.Provider, error) {
	providers, err := s.Repo.List(ctx, models.ProviderFilter{ClinicID: clinicID, ActiveOnly: activeOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

func applyProviderInput(p *models.Provider, in models.ProviderInput, defaultTZ string) {
	p.Name = in.Name
	p.Timezone = in.Timezone
	if p.Timezone == "" {
		p.Timezone = defaultTZ
	}
	p.WorkingHours = in.WorkingHours
	p.BufferBeforeMinutes = in.BufferBeforeMinutes
	p.BufferAfterMinutes = in.BufferAfterMinutes
	if in.Active != nil {
		p.Active = *in.Active
	}
	p.AppointmentTypeIDs = in.AppointmentTypeIDs
	if p.AppointmentTypeIDs == nil {
		p.AppointmentTypeIDs = []string{}
	}
}

// validateProvider checks working hours and that every offered type exists in the clinic.
func (s *DefaultProviderService) validateProvider(ctx context.Context, p *models.Provider) error {
	if err := booking.ValidateWorkingHours(p); err != nil {
		return err
	}
	for _, typeID := range p.AppointmentTypeIDs {
		if _, err := s.Types.GetByID(ctx, p.ClinicID, typeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return booking.NewValidationError("unknown appointment type", typeID)
			}
			return fmt.Errorf("failed to verify appointment type %s: %w", typeID, err)
		}
	}
	return nil
}
