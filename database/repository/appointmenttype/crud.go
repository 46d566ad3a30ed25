package appointmentTypeRepo

import (
	"context"
	"time"

	"dentflow/database/repository"
	"dentflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoAppointmentTypeRepo) GetByID(ctx context.Context, clinicID, id string) (*models.AppointmentType, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.AppointmentType
	if err := r.coll.FindOne(ctx, bson.M{"clinicId": clinicID, "id": id}).Decode(&t); err != nil {
		return nil, repository.MapError("fetch appointment type "+id, err)
	}
	return &t, nil
}

func (r *mongoAppointmentTypeRepo) List(ctx context.Context, clinicID string, activeOnly bool) ([]models.AppointmentType, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"clinicId": clinicID}
	if activeOnly {
		filter["active"] = true
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, repository.MapError("list appointment types", err)
	}
	defer cursor.Close(ctx)

	types := []models.AppointmentType{}
	if err := cursor.All(ctx, &types); err != nil {
		return nil, repository.MapError("decode appointment types", err)
	}
	return types, nil
}

func (r *mongoAppointmentTypeRepo) Create(ctx context.Context, t *models.AppointmentType) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return repository.MapError("create appointment type", err)
	}
	return nil
}

func (r *mongoAppointmentTypeRepo) Update(ctx context.Context, t *models.AppointmentType) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"clinicId": t.ClinicID, "id": t.ID}, t)
	if err != nil {
		return repository.MapError("update appointment type "+t.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.MapError("update appointment type "+t.ID, mongo.ErrNoDocuments)
	}
	return nil
}
