// Package ownership answers whether the caller may act on an entity of the
// Dietitian → Client → DietPlan → Meal/Progress hierarchy.
//
// Every check runs in the same order:
//  1. resolve the caller's role-scoped entity from the authenticated user
//     id (NotFound when absent);
//  2. fetch the target (NotFound when absent or soft-deleted);
//  3. compare the ownership field (Forbidden on mismatch).
//
// Admins skip steps 1 and 3 but still get NotFound for absent targets.
// Failures are *result.Outcome values; anything else is a store fault.
package ownership

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"
	"errors"
	"fmt"
)

// Resolver performs reads only.
type Resolver struct {
	dietitians repository.DietitianRepository
	clients    repository.ClientRepository
	plans      repository.DietPlanRepository
	meals      repository.MealRepository
	progress   repository.ProgressRepository
}

func NewResolver(store repository.Store) *Resolver {
	return &Resolver{
		dietitians: store.Dietitians,
		clients:    store.Clients,
		plans:      store.DietPlans,
		meals:      store.Meals,
		progress:   store.Progress,
	}
}

// notFound maps the store's ErrNotFound to an outcome and wraps other errors.
func notFound(err error, message, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFoundOutcome(message)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// Dietitian resolves the caller's dietitian profile.
func (r *Resolver) Dietitian(ctx context.Context) (*domain.Dietitian, error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	d, err := r.dietitians.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, MsgDietitianNotFound, "dietitian")
	}
	return d, nil
}

// Client resolves the caller's client profile.
func (r *Resolver) Client(ctx context.Context) (*domain.Client, error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.clients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, MsgClientNotFound, "client")
	}
	return c, nil
}

// RequireAdmin fails unless the caller is an Admin.
func (r *Resolver) RequireAdmin(ctx context.Context) error {
	if _, err := auth.CurrentUserID(ctx); err != nil {
		return err
	}
	if !auth.IsAdmin(ctx) {
		return result.ForbiddenOutcome(DenyAdminOnly)
	}
	return nil
}

// actingDietitian is step 1 for dietitian-scoped checks. It returns nil
// for an Admin caller.
func (r *Resolver) actingDietitian(ctx context.Context) (*domain.Dietitian, error) {
	if _, err := auth.CurrentUserID(ctx); err != nil {
		return nil, err
	}
	if auth.IsAdmin(ctx) {
		return nil, nil
	}
	return r.Dietitian(ctx)
}

// ManagedClient loads a client the calling dietitian currently manages.
// The returned dietitian is nil for an Admin caller.
func (r *Resolver) ManagedClient(ctx context.Context, clientID int64, denial string) (*domain.Client, *domain.Dietitian, error) {
	d, err := r.actingDietitian(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err := r.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, nil, notFound(err, MsgClientNotFound, "client")
	}
	if d != nil && !c.IsManagedBy(d.ID) {
		return nil, nil, result.ForbiddenOutcome(denial)
	}
	return c, d, nil
}

// ProgressClient is ManagedClient for progress operations: a client
// without an assigned dietitian has nobody to record progress against.
func (r *Resolver) ProgressClient(ctx context.Context, clientID int64, denial string) (*domain.Client, error) {
	d, err := r.actingDietitian(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, notFound(err, MsgClientNotFound, "client")
	}
	if c.DietitianID == nil {
		return nil, result.NotFoundOutcome(MsgDietitianNotFound)
	}
	if d != nil && !c.IsManagedBy(d.ID) {
		return nil, result.ForbiddenOutcome(denial)
	}
	return c, nil
}

// AuthoredPlan loads a plan written by the calling dietitian. Authorship
// is permanent, so a plan stays with its author after the client moves.
func (r *Resolver) AuthoredPlan(ctx context.Context, planID int64, denial string) (*domain.DietPlan, error) {
	d, err := r.actingDietitian(ctx)
	if err != nil {
		return nil, err
	}
	p, err := r.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, notFound(err, MsgDietPlanNotFound, "diet plan")
	}
	if d != nil && !p.IsAuthoredBy(d.ID) {
		return nil, result.ForbiddenOutcome(denial)
	}
	return p, nil
}

// PlanMeal loads a meal whose parent plan was written by the calling
// dietitian. Access to a meal is exactly access to its plan.
func (r *Resolver) PlanMeal(ctx context.Context, mealID int64, denial string) (*domain.Meal, *domain.DietPlan, error) {
	d, err := r.actingDietitian(ctx)
	if err != nil {
		return nil, nil, err
	}
	m, err := r.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, nil, notFound(err, MsgMealNotFound, "meal")
	}
	p, err := r.plans.GetByID(ctx, m.DietPlanID)
	if err != nil {
		return nil, nil, notFound(err, MsgDietPlanNotFound, "diet plan")
	}
	if d != nil && !p.IsAuthoredBy(d.ID) {
		return nil, nil, result.ForbiddenOutcome(denial)
	}
	return m, p, nil
}

// ClientPlan loads one of the calling client's own plans.
func (r *Resolver) ClientPlan(ctx context.Context, planID int64, denial string) (*domain.DietPlan, error) {
	if _, err := auth.CurrentUserID(ctx); err != nil {
		return nil, err
	}

	var self *domain.Client
	if !auth.IsAdmin(ctx) {
		c, err := r.Client(ctx)
		if err != nil {
			return nil, err
		}
		self = c
	}

	p, err := r.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, notFound(err, MsgDietPlanNotFound, "diet plan")
	}
	if self != nil && p.ClientID != self.ID {
		return nil, result.ForbiddenOutcome(denial)
	}
	return p, nil
}

// ProgressEntry loads a progress record whose client the calling dietitian
// currently manages.
func (r *Resolver) ProgressEntry(ctx context.Context, progressID int64, denial string) (*domain.ClientProgress, *domain.Client, error) {
	d, err := r.actingDietitian(ctx)
	if err != nil {
		return nil, nil, err
	}
	entry, err := r.progress.GetByID(ctx, progressID)
	if err != nil {
		return nil, nil, notFound(err, MsgProgressNotFound, "progress")
	}
	c, err := r.clients.GetByID(ctx, entry.ClientID)
	if err != nil {
		return nil, nil, notFound(err, MsgClientNotFound, "client")
	}
	if d != nil && !c.IsManagedBy(d.ID) {
		return nil, nil, result.ForbiddenOutcome(denial)
	}
	return entry, c, nil
}
