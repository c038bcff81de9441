package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
)

type dietPlanRepository struct {
	db *Database
}

func newestPlanFirst(a, b *domain.DietPlan) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r *dietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock(ctx)()
	return r.db.plans.insert(plan, r.db.now()), nil
}

func (r *dietPlanRepository) GetByID(ctx context.Context, id int64) (*domain.DietPlan, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.plans.get(id)
}

func (r *dietPlanRepository) List(ctx context.Context) ([]domain.DietPlan, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.plans.find(nil, newestPlanFirst), nil
}

func (r *dietPlanRepository) ListByDietitianID(ctx context.Context, dietitianID int64) ([]domain.DietPlan, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.plans.find(func(p *domain.DietPlan) bool { return p.IsAuthoredBy(dietitianID) }, newestPlanFirst), nil
}

func (r *dietPlanRepository) ListByClientID(ctx context.Context, clientID int64) ([]domain.DietPlan, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.plans.find(func(p *domain.DietPlan) bool { return p.ClientID == clientID }, newestPlanFirst), nil
}

func (r *dietPlanRepository) LatestByClientID(ctx context.Context, clientID int64) (*domain.DietPlan, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rows := r.db.plans.find(
		func(p *domain.DietPlan) bool { return p.ClientID == clientID },
		func(a, b *domain.DietPlan) bool {
			if !a.StartDate.Equal(b.StartDate) {
				return a.StartDate.After(b.StartDate)
			}
			return a.ID > b.ID
		})
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

func (r *dietPlanRepository) Update(ctx context.Context, plan *domain.DietPlan) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.plans.modify(plan.ID, r.db.now(), func(p *domain.DietPlan) {
		p.Title = plan.Title
		p.Description = plan.Description
		p.StartDate = plan.StartDate
		p.EndDate = plan.EndDate
		p.InitialWeight = plan.InitialWeight
		p.TargetWeight = plan.TargetWeight
	})
}

func (r *dietPlanRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.plans.softDelete(id, r.db.now())
}

type mealRepository struct {
	db *Database
}

func (r *mealRepository) Create(ctx context.Context, meal *domain.Meal) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock(ctx)()
	return r.db.meals.insert(meal, r.db.now()), nil
}

func (r *mealRepository) GetByID(ctx context.Context, id int64) (*domain.Meal, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.meals.get(id)
}

func (r *mealRepository) ListByDietPlanID(ctx context.Context, dietPlanID int64) ([]domain.Meal, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.meals.find(
		func(m *domain.Meal) bool { return m.DietPlanID == dietPlanID },
		func(a, b *domain.Meal) bool {
			if a.StartTime != b.StartTime {
				return a.StartTime < b.StartTime
			}
			return a.ID < b.ID
		}), nil
}

func (r *mealRepository) Update(ctx context.Context, meal *domain.Meal) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.meals.modify(meal.ID, r.db.now(), func(m *domain.Meal) {
		m.Title = meal.Title
		m.StartTime = meal.StartTime
		m.EndTime = meal.EndTime
		m.Description = meal.Description
		m.Contents = meal.Contents
		m.Calories = meal.Calories
		m.Proteins = meal.Proteins
		m.Carbohydrates = meal.Carbohydrates
		m.Fats = meal.Fats
	})
}

func (r *mealRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.meals.softDelete(id, r.db.now())
}
