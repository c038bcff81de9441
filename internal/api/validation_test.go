package api

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/service"
	"errors"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, v any) string {
	t.Helper()
	err := binding.Validator.ValidateStruct(v)
	require.Error(t, err)
	return validationMessage(err)
}

func validClient() service.ClientInput {
	return service.ClientInput{
		FirstName:     "Cleo",
		LastName:      "Client",
		Email:         "cleo@dieta.test",
		Password:      goodPassword,
		PhoneNumber:   "+1 (555) 765-4321",
		DateOfBirth:   time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC),
		Gender:        "Female",
		Height:        168,
		InitialWeight: 82,
	}
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"email":             "Email",
		"initialWeight":     "Initial weight",
		"dietitianId":       "Dietitian ID",
		"bodyFatPercentage": "Body fat percentage",
	}
	for in, want := range cases {
		assert.Equal(t, want, humanize(in), in)
	}
}

func TestValidation_ClientInput(t *testing.T) {
	require.NoError(t, binding.Validator.ValidateStruct(validClient()))

	in := validClient()
	in.FirstName = ""
	in.Email = "not-an-email"
	assert.Equal(t, "First name is required. "+msgInvalidEmail, validate(t, in))

	in = validClient()
	in.PhoneNumber = "call me"
	assert.Equal(t, msgInvalidPhone, validate(t, in))

	in = validClient()
	in.DateOfBirth = time.Now().UTC().AddDate(-17, 0, 0)
	assert.Equal(t, msgNotAdult, validate(t, in))

	in = validClient()
	in.InitialWeight = -1
	assert.Equal(t, "Initial weight must be greater than zero.", validate(t, in))
}

func TestValidation_PasswordPolicy(t *testing.T) {
	msg := validate(t, service.RegisterInput{
		FirstName: "Reg",
		LastName:  "User",
		Email:     "reg@dieta.test",
		Password:  "short",
	})
	assert.Contains(t, msg, identity.MsgPasswordTooShort)
	assert.Contains(t, msg, identity.MsgPasswordUppercase)
}

func TestValidation_DietPlanDates(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	plan := service.DietPlanInput{
		Title:         "Cut",
		StartDate:     today.AddDate(0, 0, 1),
		EndDate:       today,
		InitialWeight: 82,
		TargetWeight:  75,
		ClientID:      1,
	}
	assert.Equal(t, "End date must be after start date.", validate(t, plan))

	plan.StartDate = today.AddDate(0, 0, -1)
	plan.EndDate = today.AddDate(0, 1, 0)
	assert.Equal(t, "Start date must be today or in the future.", validate(t, plan))
}

func TestValidation_MealAndProgress(t *testing.T) {
	meal := service.MealInput{
		Title:      "Breakfast",
		StartTime:  domain.NewTimeOfDay(9, 0, 0),
		EndTime:    domain.NewTimeOfDay(8, 0, 0),
		Contents:   "Oats",
		Calories:   -5,
		DietPlanID: 1,
	}
	assert.Equal(t, "End time must be after start time. Calories cannot be negative.", validate(t, meal))

	progress := service.ProgressInput{
		ClientID:     1,
		Weight:       80,
		RecordedDate: time.Now().Add(24 * time.Hour),
	}
	assert.Equal(t, "Recorded date cannot be in the future.", validate(t, progress))
}

func TestValidationMessage_NonFieldError(t *testing.T) {
	assert.Equal(t, msgValidationFailed, validationMessage(errors.New("unexpected EOF")))
}
