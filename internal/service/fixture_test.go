package service

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/repository/memory"
	"alcyxob/dieta-core/internal/result"
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const goodPassword = "Secret#123"

// fakeFiles stands in for object storage.
type fakeFiles struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (f *fakeFiles) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/put/" + key, nil
}

func (f *fakeFiles) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (f *fakeFiles) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

type env struct {
	store      repository.Store
	ids        identity.Provider
	files      *fakeFiles
	auth       AuthService
	dietitians DietitianService
	clients    ClientService
	plans      DietPlanService
	meals      MealService
	progress   ProgressService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	ids := identity.NewProvider(store.Users, identity.Options{BcryptCost: bcrypt.MinCost}, log)
	resolver := ownership.NewResolver(store)
	tokens := auth.NewTokenManager("test-secret", time.Hour, "dieta-core", "dieta-core-clients")
	files := &fakeFiles{}

	return &env{
		store:      store,
		ids:        ids,
		files:      files,
		auth:       NewAuthService(ids, tokens, store.Tx, log),
		dietitians: NewDietitianService(store, ids, resolver, log),
		clients:    NewClientService(store, ids, resolver, log),
		plans:      NewDietPlanService(store, resolver, log),
		meals:      NewMealService(store, resolver, log),
		progress:   NewProgressService(store, resolver, files, time.Minute, log),
	}
}

// as returns a context authenticated as userID with roles.
func as(userID int64, roles ...domain.Role) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID: strconv.FormatInt(userID, 10),
		Roles:  roles,
	})
}

var adminCtx = as(1, domain.RoleAdmin)

// call captures a service return so a test can assert on it inline:
// do(svc.Op(ctx)).ok(t) or do(svc.Op(ctx)).fails(t, code, message).
type call[T any] struct {
	r   result.Result[T]
	err error
}

func do[T any](r result.Result[T], err error) call[T] {
	return call[T]{r: r, err: err}
}

// ok fails the test unless the call succeeded and returns its payload.
func (c call[T]) ok(t *testing.T) T {
	t.Helper()
	require.NoError(t, c.err)
	require.Truef(t, c.r.Succeeded(), "unexpected %s: %s", c.r.Code, c.r.Message)
	return c.r.Data
}

// fails checks for a failure envelope with code and, when given, message.
func (c call[T]) fails(t *testing.T, code result.Code, message string) {
	t.Helper()
	require.NoError(t, c.err)
	require.Equal(t, code, c.r.Code, c.r.Message)
	if message != "" {
		require.Equal(t, message, c.r.Message)
	}
}

func (e *env) newDietitian(t *testing.T, email string) (*DietitianResponse, context.Context) {
	t.Helper()
	d := do(e.dietitians.Create(adminCtx, DietitianInput{
		FirstName:      "Dana",
		LastName:       email,
		Email:          email,
		Password:       goodPassword,
		PhoneNumber:    "+15551234567",
		Specialization: "Sports",
		LicenseNumber:  "LIC-" + email,
	})).ok(t)
	return d, as(d.UserID, domain.RoleDietitian)
}

func (e *env) newClient(t *testing.T, ctx context.Context, email string) (*ClientResponse, context.Context) {
	t.Helper()
	c := do(e.clients.CreateClientForDietitian(ctx, clientInput(email))).ok(t)
	return c, as(c.UserID, domain.RoleClient)
}

func clientInput(email string) ClientInput {
	return ClientInput{
		FirstName:     "Cleo",
		LastName:      "Client",
		Email:         email,
		Password:      goodPassword,
		PhoneNumber:   "+15557654321",
		DateOfBirth:   time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC),
		Gender:        "Female",
		Height:        168,
		InitialWeight: 82,
	}
}

func planInput(clientID int64) DietPlanInput {
	start := time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	return DietPlanInput{
		Title:         "Cut",
		StartDate:     start,
		EndDate:       start.AddDate(0, 1, 0),
		InitialWeight: 82,
		TargetWeight:  75,
		ClientID:      clientID,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
