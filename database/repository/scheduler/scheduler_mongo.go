package schedulerRepo

import (
	"context"
	"time"

	"dentflow/database"
	"dentflow/database/repository"
	"dentflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	appointmentsCollection  = "appointments"
	scheduleLocksCollection = "schedule_locks"
	queryTimeout            = 5 * time.Second
)

// MongoSchedulerRepo implements AppointmentRepository using MongoDB.
type MongoSchedulerRepo struct {
	appointmentColl *mongo.Collection
	lockColl        *mongo.Collection
}

// NewMongoSchedulerRepo constructs a repository on the application database.
func NewMongoSchedulerRepo() AppointmentRepository {
	return NewMongoSchedulerRepoWithDB(database.DB())
}

func NewMongoSchedulerRepoWithDB(db *mongo.Database) *MongoSchedulerRepo {
	return &MongoSchedulerRepo{
		appointmentColl: db.Collection(appointmentsCollection),
		lockColl:        db.Collection(scheduleLocksCollection),
	}
}

func (repo *MongoSchedulerRepo) GetByID(ctx context.Context, clinicID, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var appt models.Appointment
	if err := repo.appointmentColl.FindOne(ctx, byID(clinicID, id)).Decode(&appt); err != nil {
		return nil, repository.MapError("fetch appointment "+id, err)
	}
	return &appt, nil
}

func (repo *MongoSchedulerRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduledStart", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	cursor, err := repo.appointmentColl.Find(ctx, listFilter(filter), opts)
	if err != nil {
		return nil, repository.MapError("list appointments", err)
	}
	defer cursor.Close(ctx)

	appts := []models.Appointment{}
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, repository.MapError("decode appointments", err)
	}
	return appts, nil
}

func (repo *MongoSchedulerRepo) ListBlocking(ctx context.Context, clinicID, providerID string, from, to time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduledStart", Value: 1}})
	cursor, err := repo.appointmentColl.Find(ctx, blockingFilter(clinicID, providerID, from, to), opts)
	if err != nil {
		return nil, repository.MapError("list blocking appointments", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, repository.MapError("decode blocking appointments", err)
	}
	return appts, nil
}

func (repo *MongoSchedulerRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := repo.appointmentColl.InsertOne(ctx, appt); err != nil {
		return repository.MapError("insert appointment", err)
	}
	return nil
}

func (repo *MongoSchedulerRepo) UpdateStatus(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := repo.appointmentColl.UpdateOne(ctx, byID(appt.ClinicID, appt.ID), statusUpdate(appt))
	if err != nil {
		return repository.MapError("update appointment status", err)
	}
	if res.MatchedCount == 0 {
		return repository.MapError("update appointment status", mongo.ErrNoDocuments)
	}
	return nil
}

func (repo *MongoSchedulerRepo) AppendReschedule(ctx context.Context, appt *models.Appointment, entry models.RescheduleEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := repo.appointmentColl.UpdateOne(ctx, byID(appt.ClinicID, appt.ID), rescheduleUpdate(appt, entry))
	if err != nil {
		return repository.MapError("reschedule appointment", err)
	}
	if res.MatchedCount == 0 {
		return repository.MapError("reschedule appointment", mongo.ErrNoDocuments)
	}
	return nil
}
