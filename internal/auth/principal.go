// Package auth carries the authenticated caller through a request and
// issues the access tokens that identify it.
package auth

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/result"
	"context"
	"strconv"
)

// Principal is the authenticated caller as read from a verified token.
// UserID is kept as the raw claim; CurrentUserID parses it.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Roles  []domain.Role
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role domain.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// CurrentUserID returns the caller's user id. It fails with an
// Unauthorized outcome when there is no principal and with a BadRequest
// outcome when the id claim is not an integer.
func CurrentUserID(ctx context.Context) (int64, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return 0, result.UnauthorizedOutcome("User is not authenticated.")
	}
	id, err := strconv.ParseInt(p.UserID, 10, 64)
	if err != nil {
		return 0, result.BadRequestOutcome("Invalid user ID format.")
	}
	return id, nil
}

// IsAdmin reports whether the caller is an Admin.
func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, domain.RoleAdmin)
}

// HasRole reports whether the caller holds role.
func HasRole(ctx context.Context, role domain.Role) bool {
	p, ok := PrincipalFrom(ctx)
	return ok && p.HasRole(role)
}
