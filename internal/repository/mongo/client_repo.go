package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoClientRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoClientRepository creates a Client repository backed by MongoDB.
func NewMongoClientRepository(db *mongo.Database, ids *sequences) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
		ids:        ids,
	}
}

func (r *mongoClientRepository) Create(ctx context.Context, c *domain.Client) (int64, error) {
	id, err := r.ids.next(ctx, clientCollectionName)
	if err != nil {
		return 0, err
	}
	c.ID = id
	now := stamp()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := insert(ctx, r.collection, c); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	return findOne[domain.Client](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoClientRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Client, error) {
	return findOne[domain.Client](ctx, r.collection, bson.M{"userId": userID})
}

func (r *mongoClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	return findMany[domain.Client](ctx, r.collection, bson.M{}, byID())
}

// ListByDietitianID returns the clients currently assigned to the dietitian.
func (r *mongoClientRepository) ListByDietitianID(ctx context.Context, dietitianID int64) ([]domain.Client, error) {
	return findMany[domain.Client](ctx, r.collection, bson.M{"dietitianId": dietitianID}, byID())
}

func (r *mongoClientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.collection, bson.M{"_id": id})
}

// Update rewrites the profile fields, the assignment included.
func (r *mongoClientRepository) Update(ctx context.Context, c *domain.Client) error {
	return setFields(ctx, r.collection, c.ID, bson.M{
		"dietitianId":       c.DietitianID,
		"dateOfBirth":       c.DateOfBirth,
		"gender":            c.Gender,
		"height":            c.Height,
		"initialWeight":     c.InitialWeight,
		"currentWeight":     c.CurrentWeight,
		"medicalConditions": c.MedicalConditions,
		"allergies":         c.Allergies,
	})
}

func (r *mongoClientRepository) SetDietitian(ctx context.Context, clientID int64, dietitianID *int64) error {
	return setFields(ctx, r.collection, clientID, bson.M{"dietitianId": dietitianID})
}

func (r *mongoClientRepository) UpdateCurrentWeight(ctx context.Context, clientID int64, weight float64) error {
	return setFields(ctx, r.collection, clientID, bson.M{"currentWeight": weight})
}

func (r *mongoClientRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

func byID() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
		{
			// Sparse because unassigned clients have no dietitianId
			Keys:    bson.D{{Key: "dietitianId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
