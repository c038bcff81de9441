package mongo

import (
	"alcyxob/dieta-core/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collection names
const (
	userCollectionName          = "users"
	dietitianCollectionName     = "dietitians"
	clientCollectionName        = "clients"
	dietPlanCollectionName      = "diet_plans"
	mealCollectionName          = "meals"
	progressCollectionName      = "client_progress"
	progressPhotoCollectionName = "progress_photos"
	counterCollectionName       = "counters"
)

// NewStore wires every Mongo repository against db. Transactions need a
// replica set; pass useTransactions=false for a standalone server.
func NewStore(client *mongo.Client, db *mongo.Database, useTransactions bool) repository.Store {
	ids := newSequences(db.Collection(counterCollectionName))
	return repository.Store{
		Users:          NewMongoUserRepository(db, ids),
		Dietitians:     NewMongoDietitianRepository(db, ids),
		Clients:        NewMongoClientRepository(db, ids),
		DietPlans:      NewMongoDietPlanRepository(db, ids),
		Meals:          NewMongoMealRepository(db, ids),
		Progress:       NewMongoProgressRepository(db, ids),
		ProgressPhotos: NewMongoProgressPhotoRepository(db, ids),
		Tx:             NewTxManager(client, useTransactions),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are
// logged and do not stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) {
	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Collection) error
	}{
		{userCollectionName, EnsureUserIndexes},
		{dietitianCollectionName, EnsureDietitianIndexes},
		{clientCollectionName, EnsureClientIndexes},
		{dietPlanCollectionName, EnsureDietPlanIndexes},
		{mealCollectionName, EnsureMealIndexes},
		{progressCollectionName, EnsureProgressIndexes},
		{progressPhotoCollectionName, EnsureProgressPhotoIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db.Collection(s.name)); err != nil {
			log.Warn("failed to create indexes", zap.String("collection", s.name), zap.Error(err))
		}
	}
}
