package service

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ClientService manages client profiles. Dietitian-scoped operations act
// on the caller's own roster; admin operations assign freely.
type ClientService interface {
	GetProfile(ctx context.Context) (result.Result[*ClientResponse], error)

	GetClientsForDietitian(ctx context.Context) (result.Result[[]ClientResponse], error)
	GetClientForDietitian(ctx context.Context, clientID int64) (result.Result[*ClientResponse], error)
	CreateClientForDietitian(ctx context.Context, in ClientInput) (result.Result[*ClientResponse], error)
	UpdateClientForDietitian(ctx context.Context, clientID int64, in ClientUpdateInput) (result.Result[*ClientResponse], error)

	GetAllForAdmin(ctx context.Context) (result.Result[[]ClientResponse], error)
	GetByIDForAdmin(ctx context.Context, clientID int64) (result.Result[*ClientResponse], error)
	CreateClientForAdmin(ctx context.Context, in ClientInput) (result.Result[*ClientResponse], error)
	UpdateClientForAdmin(ctx context.Context, clientID int64, in ClientUpdateInput) (result.Result[*ClientResponse], error)
	DeleteClient(ctx context.Context, clientID int64) (result.Result[bool], error)
	AssignClientToDietitian(ctx context.Context, clientID, dietitianID int64) (result.Result[bool], error)
	RemoveClientFromDietitian(ctx context.Context, clientID int64) (result.Result[bool], error)
}

type clientService struct {
	store    repository.Store
	ids      identity.Provider
	resolver *ownership.Resolver
	names    directory
	log      *zap.Logger
	now      clock
}

// NewClientService creates a new instance of clientService.
func NewClientService(store repository.Store, ids identity.Provider, resolver *ownership.Resolver, log *zap.Logger) ClientService {
	return &clientService{
		store:    store,
		ids:      ids,
		resolver: resolver,
		names:    directory{users: store.Users, dietitians: store.Dietitians},
		log:      log,
		now:      systemClock,
	}
}

// GetProfile returns the calling client's own profile.
func (s *clientService) GetProfile(ctx context.Context) (result.Result[*ClientResponse], error) {
	c, err := s.resolver.Client(ctx)
	if err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	return s.one(ctx, c, "Client profile retrieved successfully.")
}

// --- Dietitian scope ---

// GetClientsForDietitian lists the caller's roster. Admins see every client.
func (s *clientService) GetClientsForDietitian(ctx context.Context) (result.Result[[]ClientResponse], error) {
	if auth.IsAdmin(ctx) {
		return s.GetAllForAdmin(ctx)
	}
	d, err := s.resolver.Dietitian(ctx)
	if err != nil {
		return result.Propagate[[]ClientResponse](err)
	}
	clients, err := s.store.Clients.ListByDietitianID(ctx, d.ID)
	if err != nil {
		return fail[[]ClientResponse](err, "list clients")
	}
	return s.many(ctx, clients, "Clients retrieved successfully.")
}

func (s *clientService) GetClientForDietitian(ctx context.Context, clientID int64) (result.Result[*ClientResponse], error) {
	c, _, err := s.resolver.ManagedClient(ctx, clientID, ownership.DenyAccessClient)
	if err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	return s.one(ctx, c, "Client retrieved successfully.")
}

// CreateClientForDietitian always assigns the new client to the caller,
// whatever the input says. Admins fall back to free assignment.
func (s *clientService) CreateClientForDietitian(ctx context.Context, in ClientInput) (result.Result[*ClientResponse], error) {
	if auth.IsAdmin(ctx) {
		return s.CreateClientForAdmin(ctx, in)
	}
	d, err := s.resolver.Dietitian(ctx)
	if err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	dietitianID := d.ID
	return s.create(ctx, in, &dietitianID)
}

// UpdateClientForDietitian keeps the current assignment; only admins move
// clients between dietitians.
func (s *clientService) UpdateClientForDietitian(ctx context.Context, clientID int64, in ClientUpdateInput) (result.Result[*ClientResponse], error) {
	c, _, err := s.resolver.ManagedClient(ctx, clientID, ownership.DenyUpdateClient)
	if err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	return s.update(ctx, c, in, c.DietitianID)
}

// --- Admin scope ---

func (s *clientService) GetAllForAdmin(ctx context.Context) (result.Result[[]ClientResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[[]ClientResponse](err)
	}
	clients, err := s.store.Clients.List(ctx)
	if err != nil {
		return fail[[]ClientResponse](err, "list clients")
	}
	return s.many(ctx, clients, "All clients retrieved successfully.")
}

func (s *clientService) GetByIDForAdmin(ctx context.Context, clientID int64) (result.Result[*ClientResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	c, err := s.store.Clients.GetByID(ctx, clientID)
	if err != nil {
		return result.Propagate[*ClientResponse](lookup(err, ownership.MsgClientNotFound, "client"))
	}
	return s.one(ctx, c, "Client retrieved successfully.")
}

// CreateClientForAdmin assigns the client to in.DietitianID, which must
// exist when given.
func (s *clientService) CreateClientForAdmin(ctx context.Context, in ClientInput) (result.Result[*ClientResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	if err := s.requireDietitian(ctx, in.DietitianID); err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	return s.create(ctx, in, in.DietitianID)
}

// UpdateClientForAdmin reassigns the client to in.DietitianID; nil
// unassigns it.
func (s *clientService) UpdateClientForAdmin(ctx context.Context, clientID int64, in ClientUpdateInput) (result.Result[*ClientResponse], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	c, err := s.store.Clients.GetByID(ctx, clientID)
	if err != nil {
		return result.Propagate[*ClientResponse](lookup(err, ownership.MsgClientNotFound, "client"))
	}
	if err := s.requireDietitian(ctx, in.DietitianID); err != nil {
		return result.Propagate[*ClientResponse](err)
	}
	return s.update(ctx, c, in, in.DietitianID)
}

// DeleteClient soft-deletes the client and its account together.
func (s *clientService) DeleteClient(ctx context.Context, clientID int64) (result.Result[bool], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[bool](err)
	}
	c, err := s.store.Clients.GetByID(ctx, clientID)
	if err != nil {
		return result.Propagate[bool](lookup(err, ownership.MsgClientNotFound, "client"))
	}

	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Clients.Delete(ctx, c.ID); err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		if err := s.ids.DeleteUser(ctx, c.UserID); err != nil {
			return fmt.Errorf("delete client user: %w", err)
		}
		return nil
	})
	if err != nil {
		return result.Propagate[bool](err)
	}

	s.log.Info("client deleted", zap.Int64("clientID", c.ID))
	return result.OK(true, "Client deleted successfully."), nil
}

func (s *clientService) AssignClientToDietitian(ctx context.Context, clientID, dietitianID int64) (result.Result[bool], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[bool](err)
	}
	if _, err := s.store.Clients.GetByID(ctx, clientID); err != nil {
		return result.Propagate[bool](lookup(err, ownership.MsgClientNotFound, "client"))
	}
	if err := s.requireDietitian(ctx, &dietitianID); err != nil {
		return result.Propagate[bool](err)
	}
	if err := s.store.Clients.SetDietitian(ctx, clientID, &dietitianID); err != nil {
		return fail[bool](err, "assign client")
	}
	s.log.Info("client assigned", zap.Int64("clientID", clientID), zap.Int64("dietitianID", dietitianID))
	return result.OK(true, "Client assigned to dietitian successfully."), nil
}

func (s *clientService) RemoveClientFromDietitian(ctx context.Context, clientID int64) (result.Result[bool], error) {
	if err := s.resolver.RequireAdmin(ctx); err != nil {
		return result.Propagate[bool](err)
	}
	if _, err := s.store.Clients.GetByID(ctx, clientID); err != nil {
		return result.Propagate[bool](lookup(err, ownership.MsgClientNotFound, "client"))
	}
	if err := s.store.Clients.SetDietitian(ctx, clientID, nil); err != nil {
		return fail[bool](err, "unassign client")
	}
	return result.OK(true, "Client removed from dietitian successfully."), nil
}

// --- Shared steps ---

// requireDietitian checks that an optional dietitian reference exists.
func (s *clientService) requireDietitian(ctx context.Context, dietitianID *int64) error {
	if dietitianID == nil {
		return nil
	}
	ok, err := s.store.Dietitians.Exists(ctx, *dietitianID)
	if err != nil {
		return fmt.Errorf("check dietitian: %w", err)
	}
	if !ok {
		return result.NotFoundOutcome(ownership.MsgDietitianNotFound)
	}
	return nil
}

// create stores the account, role and profile in one transaction. Staff
// created accounts start confirmed and the current weight starts at the
// initial weight.
func (s *clientService) create(ctx context.Context, in ClientInput, dietitianID *int64) (result.Result[*ClientResponse], error) {
	user := &domain.User{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		EmailConfirmed: true,
	}
	weight := in.InitialWeight
	client := &domain.Client{
		DietitianID:       dietitianID,
		DateOfBirth:       in.DateOfBirth,
		Gender:            in.Gender,
		Height:            in.Height,
		InitialWeight:     in.InitialWeight,
		CurrentWeight:     &weight,
		MedicalConditions: in.MedicalConditions,
		Allergies:         in.Allergies,
	}

	err := s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ids.CreateUser(ctx, user, in.Password); err != nil {
			return err
		}
		if err := s.ids.AddToRole(ctx, user, domain.RoleClient); err != nil {
			return fmt.Errorf("add client role: %w", err)
		}
		client.UserID = user.ID
		id, err := s.store.Clients.Create(ctx, client)
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		client.ID = id
		return nil
	})
	if err != nil {
		return result.Propagate[*ClientResponse](rejection(err))
	}

	s.log.Info("client created", zap.Int64("clientID", client.ID), zap.Int64("userID", user.ID))
	return s.one(ctx, client, "Client created successfully.")
}

// update rewrites the account and profile with dietitianID as the new
// assignment. A changed email must be confirmed again.
func (s *clientService) update(ctx context.Context, c *domain.Client, in ClientUpdateInput, dietitianID *int64) (result.Result[*ClientResponse], error) {
	user, err := s.ids.FindByID(ctx, c.UserID)
	if err != nil {
		return result.Propagate[*ClientResponse](lookup(err, MsgUserNotFound, "user"))
	}

	if emailChanged(user, in.Email) {
		user.EmailConfirmed = false
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email
	user.PhoneNumber = in.PhoneNumber

	c.DietitianID = dietitianID
	c.DateOfBirth = in.DateOfBirth
	c.Gender = in.Gender
	c.Height = in.Height
	if in.CurrentWeight != nil {
		c.CurrentWeight = in.CurrentWeight
	}
	c.MedicalConditions = in.MedicalConditions
	c.Allergies = in.Allergies

	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.ids.UpdateUser(ctx, user); err != nil {
			return err
		}
		return s.store.Clients.Update(ctx, c)
	})
	if err != nil {
		return result.Propagate[*ClientResponse](rejection(err))
	}

	updated, err := s.store.Clients.GetByID(ctx, c.ID)
	if err != nil {
		return fail[*ClientResponse](err, "reload client")
	}
	return s.one(ctx, updated, "Client updated successfully.")
}

func (s *clientService) one(ctx context.Context, c *domain.Client, message string) (result.Result[*ClientResponse], error) {
	out, err := s.responses(ctx, []domain.Client{*c})
	if err != nil {
		return fail[*ClientResponse](err, "build client response")
	}
	return result.OK(&out[0], message), nil
}

func (s *clientService) many(ctx context.Context, clients []domain.Client, message string) (result.Result[[]ClientResponse], error) {
	out, err := s.responses(ctx, clients)
	if err != nil {
		return fail[[]ClientResponse](err, "build client responses")
	}
	return result.OK(out, message), nil
}

// responses joins clients with their accounts and dietitian names.
func (s *clientService) responses(ctx context.Context, clients []domain.Client) ([]ClientResponse, error) {
	userIDs := make([]int64, 0, len(clients))
	dietitianIDs := make([]int64, 0, len(clients))
	for i := range clients {
		userIDs = append(userIDs, clients[i].UserID)
		if clients[i].DietitianID != nil {
			dietitianIDs = append(dietitianIDs, *clients[i].DietitianID)
		}
	}
	users, err := s.names.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	dietitians, err := s.names.dietitianUsers(ctx, dietitianIDs)
	if err != nil {
		return nil, err
	}

	today := s.now()
	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		resp := ClientResponse{
			ID:                c.ID,
			UserID:            c.UserID,
			DateOfBirth:       c.DateOfBirth,
			Age:               c.Age(today),
			Gender:            c.Gender,
			Height:            c.Height,
			InitialWeight:     c.InitialWeight,
			CurrentWeight:     c.CurrentWeight,
			MedicalConditions: c.MedicalConditions,
			Allergies:         c.Allergies,
			DietitianID:       c.DietitianID,
			CreatedAt:         c.CreatedAt,
			UpdatedAt:         c.UpdatedAt,
		}
		if u := users[c.UserID]; u != nil {
			resp.FirstName = u.FirstName
			resp.LastName = u.LastName
			resp.Email = u.Email
			resp.PhoneNumber = u.PhoneNumber
		}
		if c.DietitianID != nil {
			resp.DietitianName = fullName(dietitians[*c.DietitianID])
		}
		out = append(out, resp)
	}
	return out, nil
}
