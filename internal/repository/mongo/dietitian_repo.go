package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDietitianRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoDietitianRepository creates a Dietitian repository backed by MongoDB.
func NewMongoDietitianRepository(db *mongo.Database, ids *sequences) repository.DietitianRepository {
	return &mongoDietitianRepository{
		collection: db.Collection(dietitianCollectionName),
		ids:        ids,
	}
}

func (r *mongoDietitianRepository) Create(ctx context.Context, d *domain.Dietitian) (int64, error) {
	id, err := r.ids.next(ctx, dietitianCollectionName)
	if err != nil {
		return 0, err
	}
	d.ID = id
	now := stamp()
	d.CreatedAt, d.UpdatedAt = now, now
	if err := insert(ctx, r.collection, d); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoDietitianRepository) GetByID(ctx context.Context, id int64) (*domain.Dietitian, error) {
	return findOne[domain.Dietitian](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoDietitianRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Dietitian, error) {
	return findOne[domain.Dietitian](ctx, r.collection, bson.M{"userId": userID})
}

func (r *mongoDietitianRepository) List(ctx context.Context) ([]domain.Dietitian, error) {
	return findMany[domain.Dietitian](ctx, r.collection, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *mongoDietitianRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoDietitianRepository) Update(ctx context.Context, d *domain.Dietitian) error {
	return setFields(ctx, r.collection, d.ID, bson.M{
		"specialization": d.Specialization,
		"licenseNumber":  d.LicenseNumber,
		"education":      d.Education,
		"biography":      d.Biography,
	})
}

func (r *mongoDietitianRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

// EnsureDietitianIndexes creates the user lookup index.
func EnsureDietitianIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
	})
}
