package provider

import (
	"context"
	"errors"
	"fmt"

	"dentflow/database/repository"
	"dentflow/models"
	"dentflow/services/booking"

	"github.com/google/uuid"
)

func (s *DefaultProviderService) CreateAppointmentType(ctx context.Context, clinicID string, in models.AppointmentTypeInput) (*models.AppointmentType, error) {
	if clinicID == "" {
		return nil, booking.NewValidationError("clinicId is required")
	}
	now := s.now()
	t := &models.AppointmentType{
		ID:        uuid.New().String(),
		ClinicID:  clinicID,
		Active:    true,
		CreatedAt: now,
	}
	applyTypeInput(t, in)
	t.UpdatedAt = now
	if err := booking.ValidateAppointmentType(t); err != nil {
		return nil, err
	}
	if err := s.Types.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create appointment type: %w", err)
	}
	return t, nil
}

func (s *DefaultProviderService) UpdateAppointmentType(ctx context.Context, clinicID, id string, in models.AppointmentTypeInput) (*models.AppointmentType, error) {
	t, err := s.GetAppointmentType(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	applyTypeInput(t, in)
	t.UpdatedAt = s.now()
	if err := booking.ValidateAppointmentType(t); err != nil {
		return nil, err
	}
	if err := s.Types.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, booking.NotFound("appointment type")
		}
		return nil, fmt.Errorf("failed to update appointment type: %w", err)
	}
	return t, nil
}

func (s *DefaultProviderService) GetAppointmentType(ctx context.Context, clinicID, id string) (*models.AppointmentType, error) {
	t, err := s.Types.GetByID(ctx, clinicID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, booking.NotFound("appointment type")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment type: %w", err)
	}
	return t, nil
}

func (s *DefaultProviderService) ListAppointmentTypes(ctx context.Context, clinicID string, activeOnly bool) ([]models.AppointmentType, error) {
	types, err := s.Types.List(ctx, clinicID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment types: %w", err)
	}
	return types, nil
}

func applyTypeInput(t *models.AppointmentType, in models.AppointmentTypeInput) {
	t.Name = in.Name
	t.DurationMinutes = in.DurationMinutes
	t.BufferBeforeMinutes = in.BufferBeforeMinutes
	t.BufferAfterMinutes = in.BufferAfterMinutes
	t.RequiresApproval = in.RequiresApproval
	if in.Active != nil {
		t.Active = *in.Active
	}
}
