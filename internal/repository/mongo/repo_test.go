package mongo

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestLive_AddsSoftDeleteGuard(t *testing.T) {
	filter := live(bson.M{"_id": int64(3)})
	assert.Equal(t, int64(3), filter["_id"])
	assert.Equal(t, bson.M{"$ne": true}, filter["isDeleted"])
}

func TestSequences_Next(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns incremented value", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: "users"}, {Key: "seq", Value: int64(42)}}},
		})

		id, err := newSequences(mt.Coll).next(context.Background(), "users")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + userCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(5)},
			{Key: "email", Value: "ana@example.com"},
			{Key: "normalizedEmail", Value: "ana@example.com"},
			{Key: "roles", Value: bson.A{"Client"}},
		}))

		repo := NewMongoUserRepository(mt.DB, newSequences(mt.DB.Collection(counterCollectionName)))
		user, err := repo.GetByEmail(context.Background(), "ANA@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(5), user.ID)
		assert.Equal(t, []domain.Role{domain.RoleClient}, user.Roles)
	})

	mt.Run("not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + userCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		repo := NewMongoUserRepository(mt.DB, newSequences(mt.DB.Collection(counterCollectionName)))
		_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestSetFields_NoMatchIsNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unmatched update", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := setFields(context.Background(), mt.Coll, 9, bson.M{"title": "x"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestInsert_DuplicateKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := insert(context.Background(), mt.Coll, bson.M{"_id": int64(1)})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})
}

func TestUserRepository_CreateRequiresCredentials(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing hash", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, newSequences(mt.DB.Collection(counterCollectionName)))
		_, err := repo.Create(context.Background(), &domain.User{Email: "a@example.com"})
		assert.Error(t, err)
	})
}
