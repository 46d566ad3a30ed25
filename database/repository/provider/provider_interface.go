package providerRepo

import (
	"context"

	"dentflow/models"
)

// ProviderRepository defines methods for provider data access. Every call is scoped to a clinic.
type ProviderRepository interface {
	// GetByID retrieves a provider of the clinic by its ID.
	GetByID(ctx context.Context, clinicID, id string) (*models.Provider, error)
	// List returns the clinic's providers matching the filter.
	List(ctx context.Context, filter models.ProviderFilter) ([]models.Provider, error)
	// Create inserts a new provider record.
	Create(ctx context.Context, provider *models.Provider) error
	// Update replaces the writable fields of an existing provider.
	Update(ctx context.Context, provider *models.Provider) error
	EnsureIndexes(ctx context.Context) error
}
