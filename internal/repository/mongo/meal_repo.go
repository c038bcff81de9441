package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMealRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoMealRepository creates a Meal repository backed by MongoDB.
func NewMongoMealRepository(db *mongo.Database, ids *sequences) repository.MealRepository {
	return &mongoMealRepository{
		collection: db.Collection(mealCollectionName),
		ids:        ids,
	}
}

func (r *mongoMealRepository) Create(ctx context.Context, meal *domain.Meal) (int64, error) {
	id, err := r.ids.next(ctx, mealCollectionName)
	if err != nil {
		return 0, err
	}
	meal.ID = id
	now := stamp()
	meal.CreatedAt, meal.UpdatedAt = now, now
	if err := insert(ctx, r.collection, meal); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *mongoMealRepository) GetByID(ctx context.Context, id int64) (*domain.Meal, error) {
	return findOne[domain.Meal](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoMealRepository) ListByDietPlanID(ctx context.Context, dietPlanID int64) ([]domain.Meal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[domain.Meal](ctx, r.collection, bson.M{"dietPlanId": dietPlanID}, opts)
}

// Update keeps the meal attached to its original plan.
func (r *mongoMealRepository) Update(ctx context.Context, meal *domain.Meal) error {
	return setFields(ctx, r.collection, meal.ID, bson.M{
		"title":         meal.Title,
		"startTime":     meal.StartTime,
		"endTime":       meal.EndTime,
		"description":   meal.Description,
		"contents":      meal.Contents,
		"calories":      meal.Calories,
		"proteins":      meal.Proteins,
		"carbohydrates": meal.Carbohydrates,
		"fats":          meal.Fats,
	})
}

func (r *mongoMealRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

func EnsureMealIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dietPlanId", Value: 1}, {Key: "startTime", Value: 1}}},
	})
}
