package repository

import (
	"context"
	"errors"
	"time"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAircraftRepository implements AircraftRepository
type MongoAircraftRepository struct {
	collection *mongo.Collection
}

// NewMongoAircraftRepository creates a new aircraft repository
func NewMongoAircraftRepository(db *mongo.Database) repository.AircraftRepository {
	collection := db.Collection("aircraft")

	// Unique compound index on the partition/row key pair
	ctx := context.Background()
	keyIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "partitionKey", Value: 1},
			{Key: "rowKey", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, keyIndex)

	return &MongoAircraftRepository{
		collection: collection,
	}
}

// Get finds an aircraft by partition and row key
func (r *MongoAircraftRepository) Get(ctx context.Context, partitionKey, rowKey string) (*entity.Aircraft, error) {
	var aircraft entity.Aircraft
	err := r.collection.FindOne(ctx, bson.M{
		"partitionKey": partitionKey,
		"rowKey":       rowKey,
	}).Decode(&aircraft)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &aircraft, nil
}

// Insert adds a new aircraft record; an existing key maps to ErrConflict
func (r *MongoAircraftRepository) Insert(ctx context.Context, aircraft *entity.Aircraft) error {
	if aircraft.ID == "" {
		aircraft.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	aircraft.CreatedAt = now
	aircraft.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, aircraft)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

// UpdateConditional writes the record only if the stored version still equals
// the token captured at read time; the version bump makes concurrent writers
// observe each other
func (r *MongoAircraftRepository) UpdateConditional(ctx context.Context, aircraft *entity.Aircraft, version int64) error {
	aircraft.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"partitionKey": aircraft.PartitionKey,
			"rowKey":       aircraft.RowKey,
			"version":      version,
		},
		bson.M{
			"$set": bson.M{
				"icaoAircraftType": aircraft.IcaoAircraftType,
				"icaoOperator":     aircraft.IcaoOperator,
				"registration":     aircraft.Registration,
				"updatedAt":        aircraft.UpdatedAt,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}
