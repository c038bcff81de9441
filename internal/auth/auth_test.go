package auth

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/result"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		ID:        12,
		FirstName: "Derya",
		LastName:  "Kaya",
		Email:     "derya@example.com",
		Roles:     []domain.Role{domain.RoleDietitian},
	}
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "dieta-core", "dieta-clients")

	token, expiresAt, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "12", claims.UserID)
	assert.Equal(t, "Derya Kaya", claims.Name)
	assert.Equal(t, []domain.Role{domain.RoleDietitian}, claims.Roles)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "dieta-core", "")

	other := NewTokenManager("another-secret", time.Hour, "dieta-core", "")
	token, _, err := other.Issue(testUser())
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokenManager("secret", time.Hour, "someone-else", "")
	token, _, err = wrongIssuer.Issue(testUser())
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, "", "")
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCurrentUserID(t *testing.T) {
	_, err := CurrentUserID(context.Background())
	out, ok := result.AsOutcome(err)
	require.True(t, ok)
	assert.Equal(t, result.Unauthorized, out.Code)

	ctx := WithPrincipal(context.Background(), &Principal{UserID: "abc"})
	_, err = CurrentUserID(ctx)
	out, ok = result.AsOutcome(err)
	require.True(t, ok)
	assert.Equal(t, result.BadRequest, out.Code)
	assert.Equal(t, "Invalid user ID format.", out.Message)

	ctx = WithPrincipal(context.Background(), &Principal{UserID: "42", Roles: []domain.Role{domain.RoleAdmin}})
	id, err := CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, IsAdmin(ctx))
	assert.False(t, HasRole(ctx, domain.RoleClient))
}
