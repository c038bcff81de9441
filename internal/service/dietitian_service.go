package service

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DietitianService manages dietitian profiles. Everything except
// GetProfile is restricted to admins.
type DietitianService interface {
	GetAll(ctx context.Context) (result.Result[[]DietitianResponse], error)
	GetByID(ctx context.Context, id int64) (result.Result[*DietitianResponse], error)
	GetProfile(ctx context.Context) (result.Result[*DietitianResponse], error)
	Create(ctx context.Context, in DietitianInput) (result.Result[*DietitianResponse], error)
	Update(ctx context.Context, id int64, in DietitianUpdateInput) (result.Result[*DietitianResponse], error)
	Delete(ctx context.Context, id int64) (result.Result[bool], error)
}

type dietitianService struct {
	store    repository.Store
	ids      identity.Provider
	resolver *ownership.Resolver
	log      *zap.Logger
}

// NewDietitianService creates a new instance of dietitianService.
func NewDietitianService(store repository.Store, ids identity.Provider, resolver *ownership.Resolver, log *zap.Logger) DietitianService {
	return &dietitianService{store: store, ids: ids, resolver: resolver, log: log}
}

func (s *dietitianService) GetAll(ctx context.Context) (result.Result[[]DietitianResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[[]DietitianResponse](err)
	}
	dietitians, err := s.store.Dietitians.List(ctx)
	if err != nil {
		return fail[[]DietitianResponse](err, "list dietitians")
	}

	userIDs := make([]int64, len(dietitians))
	for i := range dietitians {
		userIDs[i] = dietitians[i].UserID
	}
	users, err := s.store.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return fail[[]DietitianResponse](err, "load dietitian users")
	}

	out := make([]DietitianResponse, 0, len(dietitians))
	for i := range dietitians {
		out = append(out, *toDietitianResponse(&dietitians[i], users[dietitians[i].UserID]))
	}
	return result.OK(out, "Dietitians retrieved successfully."), nil
}

func (s *dietitianService) GetByID(ctx context.Context, id int64) (result.Result[*DietitianResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[*DietitianResponse](err)
	}
	d, err := s.store.Dietitians.GetByID(ctx, id)
	if err != nil {
		return result.Propagate[*DietitianResponse](lookup(err, ownership.MsgDietitianNotFound, "dietitian"))
	}
	return s.respond(ctx, d, "Dietitian retrieved successfully.")
}

// GetProfile returns the caller's own dietitian profile.
func (s *dietitianService) GetProfile(ctx context.Context) (result.Result[*DietitianResponse], error) {
	d, err := s.resolver.Dietitian(ctx)
	if err != nil {
		return result.Propagate[*DietitianResponse](err)
	}
	return s.respond(ctx, d, "Dietitian retrieved successfully.")
}

// Create registers the account, grants the Dietitian role and stores the
// profile in one transaction. Admin-created accounts start confirmed.
func (s *dietitianService) Create(ctx context.Context, in DietitianInput) (result.Result[*DietitianResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[*DietitianResponse](err)
	}

	user := &domain.User{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		EmailConfirmed: true,
	}
	dietitian := &domain.Dietitian{
		Specialization: in.Specialization,
		LicenseNumber:  in.LicenseNumber,
		Education:      in.Education,
		Biography:      in.Biography,
	}

	err := s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ids.CreateUser(ctx, user, in.Password); err != nil {
			return err
		}
		if err := s.ids.AddToRole(ctx, user, domain.RoleDietitian); err != nil {
			return fmt.Errorf("add dietitian role: %w", err)
		}
		dietitian.UserID = user.ID
		id, err := s.store.Dietitians.Create(ctx, dietitian)
		if err != nil {
			return fmt.Errorf("create dietitian: %w", err)
		}
		dietitian.ID = id
		return nil
	})
	if err != nil {
		return result.Propagate[*DietitianResponse](rejection(err))
	}

	s.log.Info("dietitian created", zap.Int64("dietitianID", dietitian.ID), zap.Int64("userID", user.ID))
	return s.respond(ctx, dietitian, "Dietitian created successfully.")
}

// Update rewrites the account and the profile. A changed email must be
// confirmed again.
func (s *dietitianService) Update(ctx context.Context, id int64, in DietitianUpdateInput) (result.Result[*DietitianResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[*DietitianResponse](err)
	}
	d, err := s.store.Dietitians.GetByID(ctx, id)
	if err != nil {
		return result.Propagate[*DietitianResponse](lookup(err, ownership.MsgDietitianNotFound, "dietitian"))
	}
	user, err := s.ids.FindByID(ctx, d.UserID)
	if err != nil {
		return result.Propagate[*DietitianResponse](lookup(err, MsgUserNotFound, "user"))
	}

	if emailChanged(user, in.Email) {
		user.EmailConfirmed = false
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	user.PhoneNumber = in.PhoneNumber

	d.Specialization = in.Specialization
	d.LicenseNumber = in.LicenseNumber
	d.Education = in.Education
	d.Biography = in.Biography

	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ids.UpdateUser(ctx, user); err != nil {
			return err
		}
		return s.store.Dietitians.Update(ctx, d)
	})
	if err != nil {
		return result.Propagate[*DietitianResponse](rejection(err))
	}

	updated, err := s.store.Dietitians.GetByID(ctx, id)
	if err != nil {
		return fail[*DietitianResponse](err, "reload dietitian")
	}
	return s.respond(ctx, updated, "Dietitian updated successfully.")
}

// Delete soft-deletes the profile and its account. The dietitian's clients
// become unassigned; plans it authored stay in place.
func (s *dietitianService) Delete(ctx context.Context, id int64) (result.Result[bool], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[bool](err)
	}
	d, err := s.store.Dietitians.GetByID(ctx, id)
	if err != nil {
		return result.Propagate[bool](lookup(err, ownership.MsgDietitianNotFound, "dietitian"))
	}

	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		clients, err := s.store.Clients.ListByDietitianID(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		for _, c := range clients {
			if err := s.store.Clients.SetDietitian(ctx, c.ID, nil); err != nil {
				return fmt.Errorf("unassign client %d: %w", c.ID, err)
			}
		}
		if err := s.store.Dietitians.Delete(ctx, d.ID); err != nil {
			return fmt.Errorf("delete dietitian: %w", err)
		}
		if err := s.ids.DeleteUser(ctx, d.UserID); err != nil {
			return fmt.Errorf("delete dietitian user: %w", err)
		}
		return nil
	})
	if err != nil {
		return result.Propagate[bool](err)
	}

	s.log.Info("dietitian deleted", zap.Int64("dietitianID", d.ID))
	return result.OK(true, "Dietitian deleted successfully."), nil
}

func (s *dietitianService) respond(ctx context.Context, d *domain.Dietitian, message string) (result.Result[*DietitianResponse], error) {
	user, err := s.ids.FindByID(ctx, d.UserID)
	if err != nil {
		return result.Propagate[*DietitianResponse](lookup(err, MsgUserNotFound, "user"))
	}
	return result.OK(toDietitianResponse(d, user), message), nil
}

func toDietitianResponse(d *domain.Dietitian, u *domain.User) *DietitianResponse {
	resp := &DietitianResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		Specialization: d.Specialization,
		LicenseNumber:  d.LicenseNumber,
		Education:      d.Education,
		Biography:      d.Biography,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if u != nil {
		resp.FirstName = u.FirstName
		resp.LastName = u.LastName
		resp.Email = u.Email
		resp.PhoneNumber = u.PhoneNumber
	}
	return resp
}
