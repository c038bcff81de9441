// Package identity manages user credentials: account creation, password
// hashing, role membership, email confirmation and password reset.
package identity

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MsgInvalidToken is returned for a wrong, expired or already used token.
const MsgInvalidToken = "Invalid token."

// Error is a credential operation rejected by policy. Descriptions holds
// every reason, in the order they were found.
type Error struct {
	Descriptions []string
}

func (e *Error) Error() string {
	return strings.Join(e.Descriptions, ", ")
}

func rejected(descriptions ...string) *Error {
	return &Error{Descriptions: descriptions}
}

func emailTaken(email string) *Error {
	return rejected(fmt.Sprintf("Email '%s' is already taken.", email))
}

// Options tune the provider.
type Options struct {
	TokenLifetime time.Duration
	BcryptCost    int
}

// Provider is the user/credential lifecycle used by the services.
type Provider interface {
	CreateUser(ctx context.Context, user *domain.User, password string) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	AddToRole(ctx context.Context, user *domain.User, role domain.Role) error
	IsEmailConfirmed(user *domain.User) bool
	ConfirmEmail(ctx context.Context, user *domain.User, token string) error
	GenerateEmailConfirmationToken(ctx context.Context, user *domain.User) (string, error)
	GeneratePasswordResetToken(ctx context.Context, user *domain.User) (string, error)
	ResetPassword(ctx context.Context, user *domain.User, token, newPassword string) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
	CheckPassword(user *domain.User, password string) bool
	EnsureAdmin(ctx context.Context, email, password string) error
}

type provider struct {
	users repository.UserRepository
	opts  Options
	log   *zap.Logger
	now   func() time.Time
}

// NewProvider creates the identity provider over the user repository.
func NewProvider(users repository.UserRepository, opts Options, log *zap.Logger) Provider {
	if opts.TokenLifetime <= 0 {
		opts.TokenLifetime = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &provider{
		users: users,
		opts:  opts,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser validates the password, hashes it and stores the user. The
// generated ID is written back into user.
func (p *provider) CreateUser(ctx context.Context, user *domain.User, password string) error {
	if violations := PasswordViolations(password); len(violations) > 0 {
		return rejected(violations...)
	}

	taken, err := p.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return emailTaken(user.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	id, err := p.users.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration; the unique index caught it.
		if errors.Is(err, repository.ErrDuplicate) {
			return emailTaken(user.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	return nil
}

func (p *provider) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return p.users.GetByEmail(ctx, email)
}

func (p *provider) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return p.users.GetByID(ctx, id)
}

// AddToRole grants role; granting a role the user already holds is a no-op.
func (p *provider) AddToRole(ctx context.Context, user *domain.User, role domain.Role) error {
	if user.HasRole(role) {
		return nil
	}
	user.Roles = append(user.Roles, role)
	return p.users.Update(ctx, user)
}

func (p *provider) IsEmailConfirmed(user *domain.User) bool {
	return user.EmailConfirmed
}

func (p *provider) ConfirmEmail(ctx context.Context, user *domain.User, token string) error {
	if !p.tokenMatches(user.EmailConfirmationToken, token) {
		return rejected(MsgInvalidToken)
	}
	user.EmailConfirmed = true
	user.EmailConfirmationToken = nil
	return p.users.Update(ctx, user)
}

func (p *provider) GenerateEmailConfirmationToken(ctx context.Context, user *domain.User) (string, error) {
	token, secret := p.newToken()
	user.EmailConfirmationToken = secret
	if err := p.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("store confirmation token: %w", err)
	}
	return token, nil
}

func (p *provider) GeneratePasswordResetToken(ctx context.Context, user *domain.User) (string, error) {
	token, secret := p.newToken()
	user.PasswordResetToken = secret
	if err := p.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// ResetPassword checks the token first, then the password policy. The
// token is consumed only when the new password is accepted.
func (p *provider) ResetPassword(ctx context.Context, user *domain.User, token, newPassword string) error {
	if !p.tokenMatches(user.PasswordResetToken, token) {
		return rejected(MsgInvalidToken)
	}
	if violations := PasswordViolations(newPassword); len(violations) > 0 {
		return rejected(violations...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.PasswordResetToken = nil
	return p.users.Update(ctx, user)
}

func (p *provider) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := p.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return emailTaken(user.Email)
		}
		return err
	}
	return nil
}

func (p *provider) DeleteUser(ctx context.Context, id int64) error {
	return p.users.Delete(ctx, id)
}

// CheckPassword compares password against the stored bcrypt hash.
func (p *provider) CheckPassword(user *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// EnsureAdmin seeds the administrator account. It does nothing when the
// credentials are not configured or the account already exists.
func (p *provider) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		p.log.Info("admin seed skipped: credentials not configured")
		return nil
	}

	existing, err := p.users.GetByEmail(ctx, email)
	if err == nil {
		if !existing.HasRole(domain.RoleAdmin) {
			p.log.Warn("seed admin email belongs to a non-admin account", zap.String("email", email))
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	admin := &domain.User{
		FirstName:      "Admin",
		LastName:       "User",
		Email:          email,
		EmailConfirmed: true,
		Roles:          []domain.Role{domain.RoleAdmin},
	}
	if err := p.CreateUser(ctx, admin, password); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	p.log.Info("admin user created", zap.String("email", email), zap.Int64("userID", admin.ID))
	return nil
}

// newToken returns a fresh random token and the hashed form to persist.
func (p *provider) newToken() (string, *domain.SecretToken) {
	token := uuid.NewString()
	return token, &domain.SecretToken{
		Hash:      hashToken(token),
		ExpiresAt: p.now().Add(p.opts.TokenLifetime),
	}
}

func (p *provider) tokenMatches(stored *domain.SecretToken, token string) bool {
	if stored == nil || token == "" {
		return false
	}
	if !p.now().Before(stored.ExpiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored.Hash), []byte(hashToken(token))) == 1
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
