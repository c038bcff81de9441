package service

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DietPlanService manages diet plans. A dietitian controls the plans it
// authored; a client reads its own.
type DietPlanService interface {
	GetAllForDietitian(ctx context.Context) (result.Result[[]DietPlanResponse], error)
	GetByIDForDietitian(ctx context.Context, planID int64) (result.Result[*DietPlanResponse], error)
	GetByClientIDForDietitian(ctx context.Context, clientID int64) (result.Result[[]DietPlanResponse], error)
	CreateByDietitian(ctx context.Context, in DietPlanInput) (result.Result[*DietPlanResponse], error)
	UpdateByDietitian(ctx context.Context, planID int64, in DietPlanUpdateInput) (result.Result[*DietPlanResponse], error)
	DeleteByDietitian(ctx context.Context, planID int64) (result.Result[bool], error)

	GetAllForClient(ctx context.Context) (result.Result[[]DietPlanResponse], error)
	GetByIDForClient(ctx context.Context, planID int64) (result.Result[*DietPlanResponse], error)
}

type dietPlanService struct {
	store    repository.Store
	resolver *ownership.Resolver
	names    directory
	log      *zap.Logger
}

// NewDietPlanService creates a new instance of dietPlanService.
func NewDietPlanService(store repository.Store, resolver *ownership.Resolver, log *zap.Logger) DietPlanService {
	return &dietPlanService{
		store:    store,
		resolver: resolver,
		names:    directory{users: store.Users, dietitians: store.Dietitians},
		log:      log,
	}
}

// GetAllForDietitian lists the plans the caller authored, whoever the
// client is assigned to today. Admins see every plan.
func (s *dietPlanService) GetAllForDietitian(ctx context.Context) (result.Result[[]DietPlanResponse], error) {
	var (
		plans []domain.DietPlan
		err   error
	)
	if auth.IsAdmin(ctx) {
		plans, err = s.store.DietPlans.List(ctx)
	} else {
		d, derr := s.resolver.Dietitian(ctx)
		if derr != nil {
			return result.Propagate[[]DietPlanResponse](derr)
		}
		plans, err = s.store.DietPlans.ListByDietitianID(ctx, d.ID)
	}
	if err != nil {
		return fail[[]DietPlanResponse](err, "list diet plans")
	}
	return s.many(ctx, plans, "Dietitian diet plans retrieved successfully.")
}

func (s *dietPlanService) GetByIDForDietitian(ctx context.Context, planID int64) (result.Result[*DietPlanResponse], error) {
	p, err := s.resolver.AuthoredPlan(ctx, planID, ownership.DenyAccessPlan)
	if err != nil {
		return result.Propagate[*DietPlanResponse](err)
	}
	return s.one(ctx, p, "Diet plan retrieved successfully.")
}

// GetByClientIDForDietitian lists every plan of a client the caller
// currently manages, including plans other dietitians wrote.
func (s *dietPlanService) GetByClientIDForDietitian(ctx context.Context, clientID int64) (result.Result[[]DietPlanResponse], error) {
	c, _, err := s.resolver.ManagedClient(ctx, clientID, ownership.DenyAccessClientPlans)
	if err != nil {
		return result.Propagate[[]DietPlanResponse](err)
	}
	plans, err := s.store.DietPlans.ListByClientID(ctx, c.ID)
	if err != nil {
		return fail[[]DietPlanResponse](err, "list client diet plans")
	}
	return s.many(ctx, plans, "Client diet plans retrieved successfully.")
}

// CreateByDietitian checks the client's current assignment, then the date
// range. The author is the caller, or the client's dietitian when an admin
// creates the plan.
func (s *dietPlanService) CreateByDietitian(ctx context.Context, in DietPlanInput) (result.Result[*DietPlanResponse], error) {
	// 1. Ownership of the client
	c, d, err := s.resolver.ManagedClient(ctx, in.ClientID, ownership.DenyCreatePlan)
	if err != nil {
		return result.Propagate[*DietPlanResponse](err)
	}

	// 2. Pick the author
	var authorID int64
	switch {
	case d != nil:
		authorID = d.ID
	case c.DietitianID != nil:
		authorID = *c.DietitianID
	default:
		return result.Failure[*DietPlanResponse](result.NotFound, ownership.MsgDietitianNotFound), nil
	}

	// 3. Business rules
	if !in.EndDate.After(in.StartDate) {
		return result.Failure[*DietPlanResponse](result.BadRequest, MsgEndDateBeforeStart), nil
	}

	// 4. Persist
	plan := &domain.DietPlan{
		Title:                in.Title,
		Description:          in.Description,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		InitialWeight:        in.InitialWeight,
		TargetWeight:         in.TargetWeight,
		ClientID:             c.ID,
		CreatedByDietitianID: authorID,
	}
	id, err := s.store.DietPlans.Create(ctx, plan)
	if err != nil {
		return fail[*DietPlanResponse](err, "create diet plan")
	}
	plan.ID = id

	s.log.Info("diet plan created", zap.Int64("planID", id), zap.Int64("clientID", c.ID), zap.Int64("dietitianID", authorID))
	return s.one(ctx, plan, "Diet plan created successfully.")
}

// UpdateByDietitian is allowed for the author only. Client and author are
// never rewritten.
func (s *dietPlanService) UpdateByDietitian(ctx context.Context, planID int64, in DietPlanUpdateInput) (result.Result[*DietPlanResponse], error) {
	p, err := s.resolver.AuthoredPlan(ctx, planID, ownership.DenyUpdatePlan)
	if err != nil {
		return result.Propagate[*DietPlanResponse](err)
	}
	if !in.EndDate.After(in.StartDate) {
		return result.Failure[*DietPlanResponse](result.BadRequest, MsgEndDateBeforeStart), nil
	}

	p.Title = in.Title
	p.Description = in.Description
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	p.InitialWeight = in.InitialWeight
	p.TargetWeight = in.TargetWeight
	if err := s.store.DietPlans.Update(ctx, p); err != nil {
		return fail[*DietPlanResponse](err, "update diet plan")
	}

	updated, err := s.store.DietPlans.GetByID(ctx, p.ID)
	if err != nil {
		return fail[*DietPlanResponse](err, "reload diet plan")
	}
	return s.one(ctx, updated, "Diet plan updated successfully.")
}

// DeleteByDietitian soft-deletes the plan and its meals together.
func (s *dietPlanService) DeleteByDietitian(ctx context.Context, planID int64) (result.Result[bool], error) {
	p, err := s.resolver.AuthoredPlan(ctx, planID, ownership.DenyDeletePlan)
	if err != nil {
		return result.Propagate[bool](err)
	}

	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		meals, err := s.store.Meals.ListByDietPlanID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("list meals: %w", err)
		}
		for _, m := range meals {
			if err := s.store.Meals.Delete(ctx, m.ID); err != nil {
				return fmt.Errorf("delete meal %d: %w", m.ID, err)
			}
		}
		return s.store.DietPlans.Delete(ctx, p.ID)
	})
	if err != nil {
		return fail[bool](err, "delete diet plan")
	}

	s.log.Info("diet plan deleted", zap.Int64("planID", p.ID))
	return result.OK(true, "Diet plan deleted successfully."), nil
}

// --- Client scope ---

func (s *dietPlanService) GetAllForClient(ctx context.Context) (result.Result[[]DietPlanResponse], error) {
	c, err := s.resolver.Client(ctx)
	if err != nil {
		return result.Propagate[[]DietPlanResponse](err)
	}
	plans, err := s.store.DietPlans.ListByClientID(ctx, c.ID)
	if err != nil {
		return fail[[]DietPlanResponse](err, "list client diet plans")
	}
	return s.many(ctx, plans, "Diet plans retrieved successfully.")
}

func (s *dietPlanService) GetByIDForClient(ctx context.Context, planID int64) (result.Result[*DietPlanResponse], error) {
	p, err := s.resolver.ClientPlan(ctx, planID, ownership.DenyAccessPlan)
	if err != nil {
		return result.Propagate[*DietPlanResponse](err)
	}
	return s.one(ctx, p, "Diet plan retrieved successfully.")
}

// --- Responses ---

func (s *dietPlanService) one(ctx context.Context, p *domain.DietPlan, message string) (result.Result[*DietPlanResponse], error) {
	out, err := s.responses(ctx, []domain.DietPlan{*p})
	if err != nil {
		return fail[*DietPlanResponse](err, "build diet plan response")
	}
	return result.OK(&out[0], message), nil
}

func (s *dietPlanService) many(ctx context.Context, plans []domain.DietPlan, message string) (result.Result[[]DietPlanResponse], error) {
	out, err := s.responses(ctx, plans)
	if err != nil {
		return fail[[]DietPlanResponse](err, "build diet plan responses")
	}
	return result.OK(out, message), nil
}

// responses joins plans with client and author names and their meals.
func (s *dietPlanService) responses(ctx context.Context, plans []domain.DietPlan) ([]DietPlanResponse, error) {
	clientUsers := make(map[int64]int64, len(plans))
	authors := make([]int64, 0, len(plans))
	for i := range plans {
		authors = append(authors, plans[i].CreatedByDietitianID)
		if _, seen := clientUsers[plans[i].ClientID]; seen {
			continue
		}
		c, err := s.store.Clients.GetByID(ctx, plans[i].ClientID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		clientUsers[c.ID] = c.UserID
	}

	userIDs := make([]int64, 0, len(clientUsers))
	for _, uid := range clientUsers {
		userIDs = append(userIDs, uid)
	}
	users, err := s.names.usersByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	dietitians, err := s.names.dietitianUsers(ctx, authors)
	if err != nil {
		return nil, err
	}

	out := make([]DietPlanResponse, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		meals, err := s.store.Meals.ListByDietPlanID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		resp := DietPlanResponse{
			ID:                   p.ID,
			Title:                p.Title,
			Description:          p.Description,
			StartDate:            p.StartDate,
			EndDate:              p.EndDate,
			InitialWeight:        p.InitialWeight,
			TargetWeight:         p.TargetWeight,
			ClientID:             p.ClientID,
			CreatedByDietitianID: p.CreatedByDietitianID,
			DietitianName:        fullName(dietitians[p.CreatedByDietitianID]),
			Meals:                meals,
			CreatedAt:            p.CreatedAt,
			UpdatedAt:            p.UpdatedAt,
		}
		if uid, ok := clientUsers[p.ClientID]; ok {
			resp.ClientName = fullName(users[uid])
		}
		out = append(out, resp)
	}
	return out, nil
}
