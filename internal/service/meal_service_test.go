package service

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/result"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mealInput(planID int64, fromHour, toHour int) MealInput {
	return MealInput{
		Title:         "Breakfast",
		StartTime:     domain.NewTimeOfDay(fromHour, 0, 0),
		EndTime:       domain.NewTimeOfDay(toHour, 0, 0),
		Contents:      "Oats, berries",
		Calories:      450,
		Proteins:      20,
		Carbohydrates: 60,
		Fats:          12,
		DietPlanID:    planID,
	}
}

type mealFixture struct {
	*env
	aCtx, bCtx, clientCtx, otherCtx context.Context
	plan                            *DietPlanResponse
}

func newMealFixture(t *testing.T) *mealFixture {
	t.Helper()
	e := newEnv(t)
	_, aCtx := e.newDietitian(t, "a@example.com")
	_, bCtx := e.newDietitian(t, "b@example.com")
	c, clientCtx := e.newClient(t, aCtx, "cleo@example.com")
	_, otherCtx := e.newClient(t, bCtx, "other@example.com")
	plan := do(e.plans.CreateByDietitian(aCtx, planInput(c.ID))).ok(t)
	return &mealFixture{env: e, aCtx: aCtx, bCtx: bCtx, clientCtx: clientCtx, otherCtx: otherCtx, plan: plan}
}

func TestMealService_CreateRules(t *testing.T) {
	f := newMealFixture(t)

	meal := do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 8, 9))).ok(t)
	assert.NotZero(t, meal.ID)
	assert.Equal(t, f.plan.ID, meal.DietPlanID)

	do(f.meals.CreateByDietitian(f.bCtx, mealInput(f.plan.ID, 8, 9))).fails(t, result.Forbidden, ownership.DenyCreateMeal)
	do(f.meals.CreateByDietitian(f.aCtx, mealInput(999, 8, 9))).fails(t, result.NotFound, ownership.MsgDietPlanNotFound)
	do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 9, 9))).fails(t, result.BadRequest, MsgEndTimeBeforeStart)
	do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 10, 9))).fails(t, result.BadRequest, MsgEndTimeBeforeStart)

	negative := mealInput(f.plan.ID, 8, 9)
	negative.Fats = -1
	do(f.meals.CreateByDietitian(f.aCtx, negative)).fails(t, result.BadRequest, MsgNegativeNutrition)

	// rule checks never leak to a foreign dietitian
	do(f.meals.CreateByDietitian(f.bCtx, negative)).fails(t, result.Forbidden, ownership.DenyCreateMeal)
}

func TestMealService_ListOrderedAndScoped(t *testing.T) {
	f := newMealFixture(t)
	do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 19, 20))).ok(t)
	do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 7, 8))).ok(t)
	do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 12, 13))).ok(t)

	meals := do(f.meals.GetByDietPlanIDForDietitian(f.aCtx, f.plan.ID)).ok(t)
	require.Len(t, meals, 3)
	assert.Equal(t, domain.NewTimeOfDay(7, 0, 0), meals[0].StartTime)
	assert.Equal(t, domain.NewTimeOfDay(12, 0, 0), meals[1].StartTime)
	assert.Equal(t, domain.NewTimeOfDay(19, 0, 0), meals[2].StartTime)

	assert.Len(t, do(f.meals.GetByDietPlanIDForClient(f.clientCtx, f.plan.ID)).ok(t), 3)

	do(f.meals.GetByDietPlanIDForDietitian(f.bCtx, f.plan.ID)).fails(t, result.Forbidden, ownership.DenyAccessPlanMeals)
	do(f.meals.GetByDietPlanIDForClient(f.otherCtx, f.plan.ID)).fails(t, result.Forbidden, ownership.DenyAccessPlanMeals)
}

func TestMealService_UpdateAndDelete(t *testing.T) {
	f := newMealFixture(t)
	meal := do(f.meals.CreateByDietitian(f.aCtx, mealInput(f.plan.ID, 8, 9))).ok(t)

	in := MealUpdateInput{
		Title: "Brunch", StartTime: domain.NewTimeOfDay(10, 30, 0), EndTime: domain.NewTimeOfDay(11, 15, 0),
		Contents: "Eggs", Calories: 500, Proteins: 30, Carbohydrates: 20, Fats: 25,
	}
	do(f.meals.UpdateByDietitian(f.bCtx, meal.ID, in)).fails(t, result.Forbidden, ownership.DenyUpdateMeal)

	updated := do(f.meals.UpdateByDietitian(f.aCtx, meal.ID, in)).ok(t)
	assert.Equal(t, "Brunch", updated.Title)
	assert.Equal(t, f.plan.ID, updated.DietPlanID)

	got := do(f.meals.GetByIDForDietitian(f.aCtx, meal.ID)).ok(t)
	assert.Equal(t, domain.NewTimeOfDay(10, 30, 0), got.StartTime)
	do(f.meals.GetByIDForDietitian(f.bCtx, meal.ID)).fails(t, result.Forbidden, ownership.DenyAccessMeal)

	do(f.meals.DeleteByDietitian(f.bCtx, meal.ID)).fails(t, result.Forbidden, ownership.DenyDeleteMeal)
	assert.True(t, do(f.meals.DeleteByDietitian(f.aCtx, meal.ID)).ok(t))
	do(f.meals.GetByIDForDietitian(f.aCtx, meal.ID)).fails(t, result.NotFound, ownership.MsgMealNotFound)
}
