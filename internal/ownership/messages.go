package ownership

// Not-found messages.
const (
	MsgDietitianNotFound = "Dietitian not found."
	MsgClientNotFound    = "Client not found."
	MsgDietPlanNotFound  = "Diet plan not found."
	MsgMealNotFound      = "Meal not found."
	MsgProgressNotFound  = "Progress record not found."
)

// Denials, passed to the resolver by the operation being checked.
const (
	DenyAccessClient = "You don't have permission to access this client."
	DenyUpdateClient = "You don't have permission to update this client."

	DenyAccessPlan        = "You don't have permission to access this diet plan."
	DenyUpdatePlan        = "You don't have permission to update this diet plan."
	DenyDeletePlan        = "You don't have permission to delete this diet plan."
	DenyAccessClientPlans = "You don't have permission to access this client's diet plans."
	DenyCreatePlan        = "You don't have permission to create diet plan for this client."

	DenyAccessPlanMeals = "You don't have permission to access meals from this diet plan."
	DenyAccessMeal      = "You don't have permission to access this meal."
	DenyUpdateMeal      = "You don't have permission to update this meal."
	DenyDeleteMeal      = "You don't have permission to delete this meal."
	DenyCreateMeal      = "You don't have permission to create meal for this diet plan."

	DenyAccessProgress = "You don't have permission to access progress for this client."
	DenyRecordProgress = "You don't have permission to record progress for this client."
	DenyUpdateProgress = "You don't have permission to update progress for this client."
	DenyDeleteProgress = "You don't have permission to delete progress for this client."

	DenyAdminOnly = "You don't have permission to perform this action."
)
