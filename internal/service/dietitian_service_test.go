package service

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/result"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDietitianService_AdminOnly(t *testing.T) {
	e := newEnv(t)
	_, dietCtx := e.newDietitian(t, "dee@example.com")

	do(e.dietitians.GetAll(dietCtx)).fails(t, result.Forbidden, ownership.DenyAdminOnly)
	do(e.dietitians.Create(dietCtx, DietitianInput{})).fails(t, result.Forbidden, ownership.DenyAdminOnly)
	do(e.dietitians.Delete(dietCtx, 1)).fails(t, result.Forbidden, ownership.DenyAdminOnly)
	do(e.dietitians.GetAll(context.Background())).fails(t, result.Unauthorized, "")
}

func TestDietitianService_CreateAndRead(t *testing.T) {
	e := newEnv(t)
	d, dietCtx := e.newDietitian(t, "dee@example.com")

	assert.Equal(t, "dee@example.com", d.Email)
	assert.Equal(t, "Sports", d.Specialization)
	assert.False(t, d.CreatedAt.IsZero())

	user, err := e.ids.FindByID(context.Background(), d.UserID)
	require.NoError(t, err)
	assert.True(t, user.EmailConfirmed)
	assert.True(t, user.HasRole(domain.RoleDietitian))

	profile := do(e.dietitians.GetProfile(dietCtx)).ok(t)
	assert.Equal(t, d.ID, profile.ID)

	e.newDietitian(t, "second@example.com")
	all := do(e.dietitians.GetAll(adminCtx)).ok(t)
	require.Len(t, all, 2)
	assert.Equal(t, "dee@example.com", all[0].Email)

	do(e.dietitians.GetByID(adminCtx, 999)).fails(t, result.NotFound, ownership.MsgDietitianNotFound)
	do(e.dietitians.GetProfile(as(999, domain.RoleDietitian))).fails(t, result.NotFound, ownership.MsgDietitianNotFound)
}

func TestDietitianService_CreateDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.newDietitian(t, "dee@example.com")

	do(e.dietitians.Create(adminCtx, DietitianInput{
		FirstName: "X", LastName: "Y", Email: "DEE@example.com", Password: goodPassword,
		PhoneNumber: "+15550000000", Specialization: "S", LicenseNumber: "L",
	})).fails(t, result.BadRequest, "Email 'DEE@example.com' is already taken.")

	all := do(e.dietitians.GetAll(adminCtx)).ok(t)
	assert.Len(t, all, 1)
}

func TestDietitianService_UpdateEmailClearsConfirmation(t *testing.T) {
	e := newEnv(t)
	d, _ := e.newDietitian(t, "dee@example.com")

	in := DietitianUpdateInput{
		FirstName: "Dana", LastName: "Renamed", Email: d.Email, PhoneNumber: "+15551234567",
		Specialization: "Clinical", LicenseNumber: d.LicenseNumber,
	}
	updated := do(e.dietitians.Update(adminCtx, d.ID, in)).ok(t)
	assert.Equal(t, "Clinical", updated.Specialization)
	assert.Equal(t, "Renamed", updated.LastName)

	user, err := e.ids.FindByID(context.Background(), d.UserID)
	require.NoError(t, err)
	assert.True(t, user.EmailConfirmed, "same email keeps confirmation")

	in.Email = "new@example.com"
	do(e.dietitians.Update(adminCtx, d.ID, in)).ok(t)
	user, err = e.ids.FindByID(context.Background(), d.UserID)
	require.NoError(t, err)
	assert.False(t, user.EmailConfirmed)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestDietitianService_DeleteOrphansClients(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d, dietCtx := e.newDietitian(t, "dee@example.com")
	c, _ := e.newClient(t, dietCtx, "cleo@example.com")
	plan := do(e.plans.CreateByDietitian(dietCtx, planInput(c.ID))).ok(t)

	assert.True(t, do(e.dietitians.Delete(adminCtx, d.ID)).ok(t))

	client, err := e.store.Clients.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, client.DietitianID)

	_, err = e.store.DietPlans.GetByID(ctx, plan.ID)
	assert.NoError(t, err, "plans outlive their author")

	_, err = e.ids.FindByID(ctx, d.UserID)
	assert.True(t, isNotFound(err))

	do(e.dietitians.GetProfile(dietCtx)).fails(t, result.NotFound, ownership.MsgDietitianNotFound)
	do(e.dietitians.Delete(adminCtx, d.ID)).fails(t, result.NotFound, ownership.MsgDietitianNotFound)
}
