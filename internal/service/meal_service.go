package service

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"

	"go.uber.org/zap"
)

// MealService manages meals. Access to a meal is access to its plan.
type MealService interface {
	GetByDietPlanIDForDietitian(ctx context.Context, planID int64) (result.Result[[]domain.Meal], error)
	GetByDietPlanIDForClient(ctx context.Context, planID int64) (result.Result[[]domain.Meal], error)
	GetByIDForDietitian(ctx context.Context, mealID int64) (result.Result[*domain.Meal], error)
	CreateByDietitian(ctx context.Context, in MealInput) (result.Result[*domain.Meal], error)
	UpdateByDietitian(ctx context.Context, mealID int64, in MealUpdateInput) (result.Result[*domain.Meal], error)
	DeleteByDietitian(ctx context.Context, mealID int64) (result.Result[bool], error)
}

type mealService struct {
	store    repository.Store
	resolver *ownership.Resolver
	log      *zap.Logger
}

// NewMealService creates a new instance of mealService.
func NewMealService(store repository.Store, resolver *ownership.Resolver, log *zap.Logger) MealService {
	return &mealService{store: store, resolver: resolver, log: log}
}

func (s *mealService) GetByDietPlanIDForDietitian(ctx context.Context, planID int64) (result.Result[[]domain.Meal], error) {
	p, err := s.resolver.AuthoredPlan(ctx, planID, ownership.DenyAccessPlanMeals)
	if err != nil {
		return result.Propagate[[]domain.Meal](err)
	}
	return s.list(ctx, p.ID)
}

func (s *mealService) GetByDietPlanIDForClient(ctx context.Context, planID int64) (result.Result[[]domain.Meal], error) {
	p, err := s.resolver.ClientPlan(ctx, planID, ownership.DenyAccessPlanMeals)
	if err != nil {
		return result.Propagate[[]domain.Meal](err)
	}
	return s.list(ctx, p.ID)
}

func (s *mealService) GetByIDForDietitian(ctx context.Context, mealID int64) (result.Result[*domain.Meal], error) {
	m, _, err := s.resolver.PlanMeal(ctx, mealID, ownership.DenyAccessMeal)
	if err != nil {
		return result.Propagate[*domain.Meal](err)
	}
	return result.OK(m, "Meal retrieved successfully."), nil
}

func (s *mealService) CreateByDietitian(ctx context.Context, in MealInput) (result.Result[*domain.Meal], error) {
	p, err := s.resolver.AuthoredPlan(ctx, in.DietPlanID, ownership.DenyCreateMeal)
	if err != nil {
		return result.Propagate[*domain.Meal](err)
	}

	meal := &domain.Meal{
		Title:         in.Title,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Description:   in.Description,
		Contents:      in.Contents,
		Calories:      in.Calories,
		Proteins:      in.Proteins,
		Carbohydrates: in.Carbohydrates,
		Fats:          in.Fats,
		DietPlanID:    p.ID,
	}
	if o := checkMeal(meal); o != nil {
		return result.Propagate[*domain.Meal](o)
	}

	id, err := s.store.Meals.Create(ctx, meal)
	if err != nil {
		return fail[*domain.Meal](err, "create meal")
	}
	meal.ID = id

	s.log.Info("meal created", zap.Int64("mealID", id), zap.Int64("planID", p.ID))
	return result.OK(meal, "Meal created successfully."), nil
}

// UpdateByDietitian never moves a meal to another plan.
func (s *mealService) UpdateByDietitian(ctx context.Context, mealID int64, in MealUpdateInput) (result.Result[*domain.Meal], error) {
	m, _, err := s.resolver.PlanMeal(ctx, mealID, ownership.DenyUpdateMeal)
	if err != nil {
		return result.Propagate[*domain.Meal](err)
	}

	m.Title = in.Title
	m.StartTime = in.StartTime
	m.EndTime = in.EndTime
	m.Description = in.Description
	m.Contents = in.Contents
	m.Calories = in.Calories
	m.Proteins = in.Proteins
	m.Carbohydrates = in.Carbohydrates
	m.Fats = in.Fats
	if o := checkMeal(m); o != nil {
		return result.Propagate[*domain.Meal](o)
	}

	if err := s.store.Meals.Update(ctx, m); err != nil {
		return fail[*domain.Meal](err, "update meal")
	}
	updated, err := s.store.Meals.GetByID(ctx, m.ID)
	if err != nil {
		return fail[*domain.Meal](err, "reload meal")
	}
	return result.OK(updated, "Meal updated successfully."), nil
}

func (s *mealService) DeleteByDietitian(ctx context.Context, mealID int64) (result.Result[bool], error) {
	m, _, err := s.resolver.PlanMeal(ctx, mealID, ownership.DenyDeleteMeal)
	if err != nil {
		return result.Propagate[bool](err)
	}
	if err := s.store.Meals.Delete(ctx, m.ID); err != nil {
		return fail[bool](err, "delete meal")
	}
	return result.OK(true, "Meal deleted successfully."), nil
}

func (s *mealService) list(ctx context.Context, planID int64) (result.Result[[]domain.Meal], error) {
	meals, err := s.store.Meals.ListByDietPlanID(ctx, planID)
	if err != nil {
		return fail[[]domain.Meal](err, "list meals")
	}
	return result.OK(meals, "Meals retrieved successfully."), nil
}

// checkMeal enforces the time window and nutrition rules.
func checkMeal(m *domain.Meal) *result.Outcome {
	if !m.StartTime.Valid() || !m.EndTime.Valid() {
		return result.BadRequestOutcome(MsgInvalidTimeOfDay)
	}
	if m.EndTime <= m.StartTime {
		return result.BadRequestOutcome(MsgEndTimeBeforeStart)
	}
	if m.HasNegativeNutrition() {
		return result.BadRequestOutcome(MsgNegativeNutrition)
	}
	return nil
}
