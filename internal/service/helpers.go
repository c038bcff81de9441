package service

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"
	"errors"
	"fmt"
	"time"
)

// Messages shared by several services.
const (
	MsgUserNotFound       = "User not found."
	MsgInvalidCredentials = "Invalid email or password."
	MsgEmailNotConfirmed  = "Email not confirmed."
	MsgEndDateBeforeStart = "End date must be after start date."
	MsgEndTimeBeforeStart = "End time must be after start time."
	MsgNegativeNutrition  = "Nutrition values cannot be negative."
	MsgWeightNotPositive  = "Weight must be greater than zero."
	MsgUnsupportedImage   = "Unsupported image type."
	MsgInvalidObjectKey   = "Invalid object key."
	MsgPhotoNotFound      = "Photo not found."
	MsgInvalidTimeOfDay   = "Meal times must fall within a single day."
)

// clock returns the current UTC time; services keep one so tests can pin it.
type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// rejection turns an identity policy error into a BadRequest outcome and
// leaves other errors alone.
func rejection(err error) error {
	var idErr *identity.Error
	if errors.As(err, &idErr) {
		return result.BadRequestOutcome(idErr.Error())
	}
	return err
}

// lookup maps ErrNotFound to a NotFound outcome with message.
func lookup(err error, message, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFoundOutcome(message)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// fail wraps an unexpected store error with the operation that hit it.
func fail[T any](err error, op string) (result.Result[T], error) {
	return result.Propagate[T](fmt.Errorf("%s: %w", op, err))
}

// directory resolves display names for users and dietitians in batches.
type directory struct {
	users      repository.UserRepository
	dietitians repository.DietitianRepository
}

func (d directory) usersByID(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	return d.users.GetByIDs(ctx, uniq(ids))
}

// dietitianUsers maps dietitian IDs to their user accounts. Deleted
// dietitians are left out.
func (d directory) dietitianUsers(ctx context.Context, dietitianIDs []int64) (map[int64]*domain.User, error) {
	profiles := make(map[int64]int64, len(dietitianIDs))
	userIDs := make([]int64, 0, len(dietitianIDs))
	for _, id := range uniq(dietitianIDs) {
		dt, err := d.dietitians.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles[id] = dt.UserID
		userIDs = append(userIDs, dt.UserID)
	}
	users, err := d.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*domain.User, len(profiles))
	for dietitianID, userID := range profiles {
		if u, ok := users[userID]; ok {
			out[dietitianID] = u
		}
	}
	return out, nil
}

func uniq(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func fullName(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.FullName()
}

func emailChanged(u *domain.User, email string) bool {
	return domain.NormalizeEmail(u.Email) != domain.NormalizeEmail(email)
}
