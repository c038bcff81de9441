package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoProgressPhotoRepository implements repository.ProgressPhotoRepository
type mongoProgressPhotoRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoProgressPhotoRepository creates a new photo metadata repository backed by MongoDB.
func NewMongoProgressPhotoRepository(db *mongo.Database, ids *sequences) repository.ProgressPhotoRepository {
	return &mongoProgressPhotoRepository{
		collection: db.Collection(progressPhotoCollectionName),
		ids:        ids,
	}
}

// Create inserts new photo metadata into the database.
func (r *mongoProgressPhotoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error) {
	if photo.ProgressID == 0 || photo.ClientID == 0 || photo.ObjectKey == "" {
		return 0, errors.New("photo requires progressId, clientId and objectKey")
	}

	id, err := r.ids.next(ctx, progressPhotoCollectionName)
	if err != nil {
		return 0, err
	}
	photo.ID = id
	now := stamp()
	photo.UploadedAt = now
	photo.CreatedAt, photo.UpdatedAt = now, now

	if err := insert(ctx, r.collection, photo); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoProgressPhotoRepository) GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error) {
	return findOne[domain.ProgressPhoto](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoProgressPhotoRepository) ListByProgressID(ctx context.Context, progressID int64) ([]domain.ProgressPhoto, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}})
	return findMany[domain.ProgressPhoto](ctx, r.collection, bson.M{"progressId": progressID}, opts)
}

func (r *mongoProgressPhotoRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

// EnsureProgressPhotoIndexes creates necessary indexes for the photos collection.
func EnsureProgressPhotoIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "progressId", Value: 1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}}},
		{
			// Object keys are generated per upload and must not collide
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
