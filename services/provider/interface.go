package provider

import (
	"context"
	"time"

	appointmentTypeRepo "dentflow/database/repository/appointmenttype"
	providerRepo "dentflow/database/repository/provider"
	"dentflow/models"
)

// ProviderService manages the providers and appointment types that scheduling reads.
type ProviderService interface {
	CreateProvider(ctx context.Context, clinicID string, in models.ProviderInput) (*models.Provider, error)
	UpdateProvider(ctx context.Context, clinicID, id string, in models.ProviderInput) (*models.Provider, error)
	GetProvider(ctx context.Context, clinicID, id string) (*models.Provider, error)
	ListProviders(ctx context.Context, clinicID string, activeOnly bool) ([]models.Provider, error)

	CreateAppointmentType(ctx context.Context, clinicID string, in models.AppointmentTypeInput) (*models.AppointmentType, error)
	UpdateAppointmentType(ctx context.Context, clinicID, id string, in models.AppointmentTypeInput) (*models.AppointmentType, error)
	GetAppointmentType(ctx context.Context, clinicID, id string) (*models.AppointmentType, error)
	ListAppointmentTypes(ctx context.Context, clinicID string, activeOnly bool) ([]models.AppointmentType, error)
}

// DefaultProviderService implements ProviderService.
type DefaultProviderService struct {
	Repo            providerRepo.ProviderRepository
	Types           appointmentTypeRepo.AppointmentTypeRepository
	DefaultTimezone string
	Now             func() time.Time
}

func (s *DefaultProviderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
