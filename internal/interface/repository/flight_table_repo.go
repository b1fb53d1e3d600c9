package repository

import (
	"context"

	"flightspotter-service/internal/domain/entity"
	"flightspotter-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFlightTableRepository implements FlightTableRepository
type MongoFlightTableRepository struct {
	collection *mongo.Collection
}

// NewMongoFlightTableRepository creates a new flight table repository
func NewMongoFlightTableRepository(db *mongo.Database) repository.FlightTableRepository {
	collection := db.Collection("flights")

	// Index on partitionKey for the per-day partition scans
	ctx := context.Background()
	partitionIndex := mongo.IndexModel{
		Keys: bson.M{"partitionKey": 1},
	}
	collection.Indexes().CreateOne(ctx, partitionIndex)

	return &MongoFlightTableRepository{
		collection: collection,
	}
}

// QueryAll returns every stored telemetry row
func (r *MongoFlightTableRepository) QueryAll(ctx context.Context) ([]*entity.TableRecord, error) {
	return r.query(ctx, bson.M{}, nil)
}

// QueryByPartition returns the rows of one partition. The key is passed as a
// structural filter value, never spliced into a query string.
func (r *MongoFlightTableRepository) QueryByPartition(ctx context.Context, partitionKey string) ([]*entity.TableRecord, error) {
	return r.query(ctx, bson.M{"partitionKey": partitionKey}, nil)
}

// QueryRaw returns up to max rows for diagnostics
func (r *MongoFlightTableRepository) QueryRaw(ctx context.Context, max int) ([]*entity.TableRecord, error) {
	if max <= 0 {
		return nil, nil
	}
	limit := int64(max)
	return r.query(ctx, bson.M{}, &options.FindOptions{Limit: &limit})
}

func (r *MongoFlightTableRepository) query(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.TableRecord, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.TableRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
