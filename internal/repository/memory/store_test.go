package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *domain.User {
	return &domain.User{
		FirstName:    "Ana",
		LastName:     "Lima",
		Email:        email,
		PasswordHash: "hash",
		Roles:        []domain.Role{domain.RoleClient},
	}
}

func TestUsers_CreateAssignsIdentityAndTimestamps(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	id1, err := store.Users.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)
	id2, err := store.Users.Create(ctx, newUser("b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	got, err := store.Users.GetByID(ctx, id1)
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Equal(t, "a@example.com", got.NormalizedEmail)
}

func TestUsers_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Users.Create(ctx, newUser("Mixed@Example.com"))
	require.NoError(t, err)

	got, err := store.Users.GetByEmail(ctx, "mixed@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "Mixed@Example.com", got.Email)

	exists, err := store.Users.ExistsByEmail(ctx, "MIXED@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.Users.Create(ctx, newUser("mixed@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUsers_SoftDeleteHidesRowAndFreesEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	id, err := store.Users.Create(ctx, newUser("gone@example.com"))
	require.NoError(t, err)
	require.NoError(t, store.Users.Delete(ctx, id))

	_, err = store.Users.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Users.Delete(ctx, id), repository.ErrNotFound)

	_, err = store.Users.Create(ctx, newUser("gone@example.com"))
	assert.NoError(t, err)
}

func TestUsers_GetByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id, err := store.Users.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)

	got, err := store.Users.GetByIDs(ctx, []int64{id, 99})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "a@example.com", got[id].Email)
}

func TestClients_AssignmentAndListing(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var dietitianID int64 = 7
	id1, err := store.Clients.Create(ctx, &domain.Client{UserID: 1, Height: 170, InitialWeight: 80})
	require.NoError(t, err)
	_, err = store.Clients.Create(ctx, &domain.Client{UserID: 2, Height: 160, InitialWeight: 60})
	require.NoError(t, err)

	require.NoError(t, store.Clients.SetDietitian(ctx, id1, &dietitianID))
	dietitianID = 8 // the store must not alias the caller's pointer

	managed, err := store.Clients.ListByDietitianID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, managed, 1)
	assert.Equal(t, id1, managed[0].ID)

	require.NoError(t, store.Clients.SetDietitian(ctx, id1, nil))
	managed, err = store.Clients.ListByDietitianID(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, managed)

	require.NoError(t, store.Clients.UpdateCurrentWeight(ctx, id1, 78.5))
	c, err := store.Clients.GetByID(ctx, id1)
	require.NoError(t, err)
	require.NotNil(t, c.CurrentWeight)
	assert.Equal(t, 78.5, *c.CurrentWeight)

	_, err = store.Clients.Create(ctx, &domain.Client{UserID: 1})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestDietPlans_LatestByStartDate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	day := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.DietPlans.Create(ctx, &domain.DietPlan{Title: "later", ClientID: 1, StartDate: day.AddDate(0, 2, 0), TargetWeight: 70})
	require.NoError(t, err)
	_, err = store.DietPlans.Create(ctx, &domain.DietPlan{Title: "earlier", ClientID: 1, StartDate: day, TargetWeight: 75})
	require.NoError(t, err)

	latest, err := store.DietPlans.LatestByClientID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "later", latest.Title)

	_, err = store.DietPlans.LatestByClientID(ctx, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDietPlans_UpdateKeepsOwnershipFields(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	id, err := store.DietPlans.Create(ctx, &domain.DietPlan{Title: "p", ClientID: 3, CreatedByDietitianID: 4})
	require.NoError(t, err)

	require.NoError(t, store.DietPlans.Update(ctx, &domain.DietPlan{ID: id, Title: "q", ClientID: 99, CreatedByDietitianID: 99}))
	got, err := store.DietPlans.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "q", got.Title)
	assert.Equal(t, int64(3), got.ClientID)
	assert.Equal(t, int64(4), got.CreatedByDietitianID)
}

func TestMeals_OrderedByStartTime(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, h := range []int{19, 8, 13} {
		_, err := store.Meals.Create(ctx, &domain.Meal{
			Title:      "m",
			DietPlanID: 1,
			StartTime:  domain.NewTimeOfDay(h, 0, 0),
			EndTime:    domain.NewTimeOfDay(h, 30, 0),
		})
		require.NoError(t, err)
	}

	meals, err := store.Meals.ListByDietPlanID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, "08:00:00", meals[0].StartTime.String())
	assert.Equal(t, "13:00:00", meals[1].StartTime.String())
	assert.Equal(t, "19:00:00", meals[2].StartTime.String())
}

func TestProgress_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.Progress.Create(ctx, &domain.ClientProgress{ClientID: 1, Weight: 80, RecordedDate: day})
	require.NoError(t, err)
	_, err = store.Progress.Create(ctx, &domain.ClientProgress{ClientID: 1, Weight: 79, RecordedDate: day.AddDate(0, 0, 7)})
	require.NoError(t, err)

	list, err := store.Progress.ListByClientID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 79.0, list[0].Weight)
}

func TestTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := store.Users.Create(ctx, newUser("tx@example.com")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := store.Users.ExistsByEmail(ctx, "tx@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	// The identity counter is restored too.
	id, err := store.Users.Create(ctx, newUser("next@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestTx_RollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	started := make(chan struct{})
	done := make(chan error, 1)
	var planID int64

	err := store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := store.Users.Create(txCtx, newUser("tx@example.com")); err != nil {
			return err
		}
		go func() {
			close(started)
			id, err := store.DietPlans.Create(ctx, &domain.DietPlan{Title: "outside", ClientID: 1})
			planID = id
			done <- err
		}()
		<-started
		select {
		case err := <-done:
			done <- err
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	plan, err := store.DietPlans.GetByID(ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, "outside", plan.Title)

	exists, err := store.Users.ExistsByEmail(ctx, "tx@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	next, err := store.DietPlans.Create(ctx, &domain.DietPlan{Title: "next", ClientID: 1})
	require.NoError(t, err)
	assert.Greater(t, next, planID)
}

func TestTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := store.Users.Create(ctx, newUser("ok@example.com"))
		return err
	})
	require.NoError(t, err)

	exists, err := store.Users.ExistsByEmail(ctx, "ok@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Users.GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
