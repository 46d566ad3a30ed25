package providerRepo

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

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a ProviderRepository on the application database.
func NewMongoProviderRepo() ProviderRepository {
	return &MongoProviderRepo{coll: database.DB().Collection("providers")}
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, clinicID, id string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var provider models.Provider
	filter := bson.M{"clinicId": clinicID, "id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&provider); err != nil {
		return nil, repository.MapError("fetch provider "+id, err)
	}
	return &provider, nil
}

func (r *MongoProviderRepo) List(ctx context.Context, f models.ProviderFilter) ([]models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, listFilter(f), options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, repository.MapError("list providers", err)
	}
	defer cursor.Close(ctx)

	providers := []models.Provider{}
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, repository.MapError("decode providers", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, provider); err != nil {
		return repository.MapError("create provider", err)
	}
	return nil
}

func (r *MongoProviderRepo) Update(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"clinicId": provider.ClinicID, "id": provider.ID}
	update := bson.M{"$set": bson.M{
		"name":                provider.Name,
		"timezone":            provider.Timezone,
		"workingHours":        provider.WorkingHours,
		"bufferBeforeMinutes": provider.BufferBeforeMinutes,
		"bufferAfterMinutes":  provider.BufferAfterMinutes,
		"active":              provider.Active,
		"appointmentTypeIds":  provider.AppointmentTypeIDs,
		"updatedAt":           provider.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return repository.MapError("update provider "+provider.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.MapError("update provider "+provider.ID, mongo.ErrNoDocuments)
	}
	return nil
}

// listFilter matches providers with an empty type list as offering every type.
func listFilter(f models.ProviderFilter) bson.M {
	filter := bson.M{"clinicId": f.ClinicID}
	if f.ActiveOnly {
		filter["active"] = true
	}
	if f.AppointmentTypeID != "" {
		filter["$or"] = bson.A{
			bson.M{"appointmentTypeIds": f.AppointmentTypeID},
			bson.M{"appointmentTypeIds": bson.M{"$size": 0}},
			bson.M{"appointmentTypeIds": nil},
		}
	}
	return filter
}
