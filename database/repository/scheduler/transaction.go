package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dentflow/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// WithTransaction runs fn inside a snapshot transaction and commits only if fn succeeds.
// The driver retries commits that fail with a transient or unknown result; write conflicts
// raised inside fn come back as ErrWriteConflict for the caller to retry.
func (repo *MongoSchedulerRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	client := repo.appointmentColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	if err == nil {
		return nil
	}
	if repository.IsWriteConflict(err) && !errors.Is(err, repository.ErrWriteConflict) {
		return fmt.Errorf("appointment transaction failed: %w: %v", repository.ErrWriteConflict, err)
	}
	return fmt.Errorf("appointment transaction failed: %w", err)
}

// LockProviderDay upserts the provider-day document and bumps its version. A second
// transaction writing the same document aborts with a write conflict.
func (repo *MongoSchedulerRepo) LockProviderDay(ctx context.Context, clinicID, providerID, day string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{
		"$inc":         bson.M{"version": 1},
		"$set":         bson.M{"updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"clinicId": clinicID, "providerId": providerID, "day": day},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.lockColl.UpdateOne(ctx, providerDayFilter(clinicID, providerID, day), update, opts); err != nil {
		return repository.MapError("lock provider day", err)
	}
	return nil
}
