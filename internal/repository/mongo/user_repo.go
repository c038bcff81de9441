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

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
	ids        *sequences
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database, ids *sequences) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
		ids:        ids,
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return 0, errors.New("user email and password hash are required")
	}

	id, err := r.ids.next(ctx, userCollectionName)
	if err != nil {
		return 0, err
	}
	user.ID = id
	user.NormalizedEmail = domain.NormalizeEmail(user.Email)
	now := stamp()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := insert(ctx, r.collection, user); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves a live user by ID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return findOne[domain.User](ctx, r.collection, bson.M{"_id": id})
}

// GetByEmail matches on the normalized email, so lookups ignore case.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.collection, bson.M{"normalizedEmail": domain.NormalizeEmail(email)})
}

// GetByIDs loads several users at once, keyed by ID. Missing IDs are simply absent.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := findMany[domain.User](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *mongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.collection, bson.M{"normalizedEmail": domain.NormalizeEmail(email)})
}

// Update rewrites the mutable account fields, tokens included.
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.NormalizedEmail = domain.NormalizeEmail(user.Email)
	fields := bson.M{
		"firstName":              user.FirstName,
		"lastName":               user.LastName,
		"email":                  user.Email,
		"normalizedEmail":        user.NormalizedEmail,
		"phoneNumber":            user.PhoneNumber,
		"passwordHash":           user.PasswordHash,
		"emailConfirmed":         user.EmailConfirmed,
		"roles":                  user.Roles,
		"emailConfirmationToken": user.EmailConfirmationToken,
		"passwordResetToken":     user.PasswordResetToken,
	}
	return setFields(ctx, r.collection, user.ID, fields)
}

func (r *mongoUserRepository) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.collection, id)
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// The unique email index only covers live accounts so a deleted user's
// address can be registered again.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "normalizedEmail", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
		{
			Keys: bson.D{{Key: "roles", Value: 1}},
		},
	})
}
