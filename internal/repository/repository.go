package repository

import (
	"alcyxob/dieta-core/internal/domain"
	"context"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Every implementation follows the same rules:
//   - Create assigns the integer ID and both timestamps.
//   - Update and Delete refresh UpdatedAt.
//   - Delete is soft: the row stays, flagged, and every read skips it.
//   - Reads of a missing or deleted row return ErrNotFound.

// UserRepository stores account identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // case-insensitive
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// DietitianRepository stores dietitian profiles.
type DietitianRepository interface {
	Create(ctx context.Context, dietitian *domain.Dietitian) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Dietitian, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Dietitian, error)
	List(ctx context.Context) ([]domain.Dietitian, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, dietitian *domain.Dietitian) error
	Delete(ctx context.Context, id int64) error
}

// ClientRepository stores client profiles.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	ListByDietitianID(ctx context.Context, dietitianID int64) ([]domain.Client, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, client *domain.Client) error
	// SetDietitian assigns the client, or unassigns it when dietitianID is nil.
	SetDietitian(ctx context.Context, clientID int64, dietitianID *int64) error
	UpdateCurrentWeight(ctx context.Context, clientID int64, weight float64) error
	Delete(ctx context.Context, id int64) error
}

// DietPlanRepository stores diet plans.
type DietPlanRepository interface {
	Create(ctx context.Context, plan *domain.DietPlan) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.DietPlan, error)
	List(ctx context.Context) ([]domain.DietPlan, error)
	ListByDietitianID(ctx context.Context, dietitianID int64) ([]domain.DietPlan, error) // by author
	ListByClientID(ctx context.Context, clientID int64) ([]domain.DietPlan, error)
	// LatestByClientID returns the plan with the most recent start date.
	LatestByClientID(ctx context.Context, clientID int64) (*domain.DietPlan, error)
	Update(ctx context.Context, plan *domain.DietPlan) error
	Delete(ctx context.Context, id int64) error
}

// MealRepository stores meals.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Meal, error)
	ListByDietPlanID(ctx context.Context, dietPlanID int64) ([]domain.Meal, error) // ordered by start time
	Update(ctx context.Context, meal *domain.Meal) error
	Delete(ctx context.Context, id int64) error
}

// ProgressRepository stores client progress entries.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.ClientProgress) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ClientProgress, error)
	ListByClientID(ctx context.Context, clientID int64) ([]domain.ClientProgress, error) // newest first
	Update(ctx context.Context, progress *domain.ClientProgress) error
	Delete(ctx context.Context, id int64) error
}

// ProgressPhotoRepository stores photo metadata for progress entries.
type ProgressPhotoRepository interface {
	Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error)
	ListByProgressID(ctx context.Context, progressID int64) ([]domain.ProgressPhoto, error)
	Delete(ctx context.Context, id int64) error
}

// TxManager runs fn so that every write made through ctx commits or rolls
// back together.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository so wiring code can pass a single value.
type Store struct {
	Users          UserRepository
	Dietitians     DietitianRepository
	Clients        ClientRepository
	DietPlans      DietPlanRepository
	Meals          MealRepository
	Progress       ProgressRepository
	ProgressPhotos ProgressPhotoRepository
	Tx             TxManager
}
