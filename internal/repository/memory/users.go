package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"errors"
)

type userRepository struct {
	db *Database
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	if user.Email == "" || user.PasswordHash == "" {
		return 0, errors.New("user email and password hash are required")
	}
	defer r.db.lock(ctx)()

	user.NormalizedEmail = domain.NormalizeEmail(user.Email)
	if r.emailTaken(user.NormalizedEmail, 0) {
		return 0, repository.ErrDuplicate
	}
	user.Roles = append([]domain.Role(nil), user.Roles...)
	return r.db.users.insert(user, r.db.now()), nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.users.get(id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	key := domain.NormalizeEmail(email)
	rows := r.db.users.find(func(u *domain.User) bool { return u.NormalizedEmail == key }, nil)
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[int64]*domain.User, len(ids))
	for _, id := range ids {
		if u, err := r.db.users.get(id); err == nil {
			out[id] = u
		}
	}
	return out, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := alive(ctx); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.emailTaken(domain.NormalizeEmail(email), 0), nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()

	user.NormalizedEmail = domain.NormalizeEmail(user.Email)
	if r.emailTaken(user.NormalizedEmail, user.ID) {
		return repository.ErrDuplicate
	}
	return r.db.users.modify(user.ID, r.db.now(), func(u *domain.User) {
		u.FirstName = user.FirstName
		u.LastName = user.LastName
		u.Email = user.Email
		u.NormalizedEmail = user.NormalizedEmail
		u.PhoneNumber = user.PhoneNumber
		u.PasswordHash = user.PasswordHash
		u.EmailConfirmed = user.EmailConfirmed
		u.Roles = append([]domain.Role(nil), user.Roles...)
		u.EmailConfirmationToken = user.EmailConfirmationToken
		u.PasswordResetToken = user.PasswordResetToken
	})
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.users.softDelete(id, r.db.now())
}

// emailTaken reports whether a live user other than self holds the address.
func (r *userRepository) emailTaken(normalized string, self int64) bool {
	rows := r.db.users.find(func(u *domain.User) bool {
		return u.NormalizedEmail == normalized && u.ID != self
	}, nil)
	return len(rows) > 0
}
