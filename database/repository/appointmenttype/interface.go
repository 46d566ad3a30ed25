package appointmentTypeRepo

import (
	"context"

	"dentflow/database"
	"dentflow/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentTypeRepository interface {
	GetByID(ctx context.Context, clinicID, id string) (*models.AppointmentType, error)
	List(ctx context.Context, clinicID string, activeOnly bool) ([]models.AppointmentType, error)
	Create(ctx context.Context, t *models.AppointmentType) error
	Update(ctx context.Context, t *models.AppointmentType) error
	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentTypeRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentTypeRepo constructs a new MongoDB AppointmentTypeRepository.
func NewMongoAppointmentTypeRepo() AppointmentTypeRepository {
	return &mongoAppointmentTypeRepo{
		coll: database.DB().Collection("appointment_types"),
	}
}
