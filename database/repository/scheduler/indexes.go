package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the appointments and schedule_locks collections.
func (repo *MongoSchedulerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	appointmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern for availability and booking re-checks.
		{
			Keys:    bson.D{{Key: "clinicId", Value: 1}, {Key: "providerId", Value: 1}, {Key: "scheduledStart", Value: 1}},
			Options: options.Index().SetName("clinic_provider_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "clinicId", Value: 1}, {Key: "patientId", Value: 1}, {Key: "scheduledStart", Value: 1}},
			Options: options.Index().SetName("clinic_patient_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "clinicId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("clinic_status_idx"),
		},
	}
	if _, err := repo.appointmentColl.Indexes().CreateMany(ctx, appointmentIndexes); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}

	lockIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clinicId", Value: 1}, {Key: "providerId", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_provider_day"),
		},
	}
	if _, err := repo.lockColl.Indexes().CreateMany(ctx, lockIndexes); err != nil {
		return fmt.Errorf("failed to create schedule lock indexes: %w", err)
	}
	return nil
}
