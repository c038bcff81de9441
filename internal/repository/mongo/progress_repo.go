package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProgressRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoProgressRepository creates a ClientProgress repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database, ids *sequences) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
		ids:        ids,
	}
}

func (r *mongoProgressRepository) Create(ctx context.Context, p *domain.ClientProgress) (int64, error) {
	id, err := r.ids.next(ctx, progressCollectionName)
	if err != nil {
		return 0, err
	}
	p.ID = id
	now := stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := insert(ctx, r.collection, p); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoProgressRepository) GetByID(ctx context.Context, id int64) (*domain.ClientProgress, error) {
	return findOne[domain.ClientProgress](ctx, r.collection, bson.M{"_id": id})
}

// ListByClientID returns entries newest first by recorded date.
func (r *mongoProgressRepository) ListByClientID(ctx context.Context, clientID int64) ([]domain.ClientProgress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedDate", Value: -1}, {Key: "_id", Value: -1}})
	return findMany[domain.ClientProgress](ctx, r.collection, bson.M{"clientId": clientID}, opts)
}

// Update rewrites the measurements; the client and recorder stay fixed.
func (r *mongoProgressRepository) Update(ctx context.Context, p *domain.ClientProgress) error {
	return setFields(ctx, r.collection, p.ID, bson.M{
		"weight":             p.Weight,
		"bodyFatPercentage":  p.BodyFatPercentage,
		"muscleMass":         p.MuscleMass,
		"waistCircumference": p.WaistCircumference,
		"chestCircumference": p.ChestCircumference,
		"hipCircumference":   p.HipCircumference,
		"notes":              p.Notes,
		"recordedDate":       p.RecordedDate,
	})
}

func (r *mongoProgressRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "recordedDate", Value: -1}}},
	})
}
