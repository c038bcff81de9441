package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDietPlanRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoDietPlanRepository creates a DietPlan repository backed by MongoDB.
func NewMongoDietPlanRepository(db *mongo.Database, ids *sequences) repository.DietPlanRepository {
	return &mongoDietPlanRepository{
		collection: db.Collection(dietPlanCollectionName),
		ids:        ids,
	}
}

func (r *mongoDietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (int64, error) {
	id, err := r.ids.next(ctx, dietPlanCollectionName)
	if err != nil {
		return 0, err
	}
	plan.ID = id
	now := stamp()
	plan.CreatedAt, plan.UpdatedAt = now, now
	if err := insert(ctx, r.collection, plan); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoDietPlanRepository) GetByID(ctx context.Context, id int64) (*domain.DietPlan, error) {
	return findOne[domain.DietPlan](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoDietPlanRepository) List(ctx context.Context) ([]domain.DietPlan, error) {
	return findMany[domain.DietPlan](ctx, r.collection, bson.M{}, newestFirst())
}

// ListByDietitianID returns the plans the dietitian authored, whoever the
// client is assigned to today.
func (r *mongoDietPlanRepository) ListByDietitianID(ctx context.Context, dietitianID int64) ([]domain.DietPlan, error) {
	return findMany[domain.DietPlan](ctx, r.collection, bson.M{"createdByDietitianId": dietitianID}, newestFirst())
}

func (r *mongoDietPlanRepository) ListByClientID(ctx context.Context, clientID int64) ([]domain.DietPlan, error) {
	return findMany[domain.DietPlan](ctx, r.collection, bson.M{"clientId": clientID}, newestFirst())
}

func (r *mongoDietPlanRepository) LatestByClientID(ctx context.Context, clientID int64) (*domain.DietPlan, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "_id", Value: -1}})
	return findOne[domain.DietPlan](ctx, r.collection, bson.M{"clientId": clientID}, opts)
}

// Update never touches clientId or createdByDietitianId.
func (r *mongoDietPlanRepository) Update(ctx context.Context, plan *domain.DietPlan) error {
	return setFields(ctx, r.collection, plan.ID, bson.M{
		"title":         plan.Title,
		"description":   plan.Description,
		"startDate":     plan.StartDate,
		"endDate":       plan.EndDate,
		"initialWeight": plan.InitialWeight,
		"targetWeight":  plan.TargetWeight,
	})
}

func (r *mongoDietPlanRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

// EnsureDietPlanIndexes creates necessary indexes. Call during startup.
func EnsureDietPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdByDietitianId", Value: 1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "startDate", Value: -1}}},
	})
}
