package api

import (
	"alcyxob/dieta-core/internal/service"

	"github.com/gin-gonic/gin"
)

// DietitianHandler serves the dietitian workspace: own profile, managed
// clients, authored plans and meals, and client progress with photos.
// Administrators reach the same routes with unrestricted scope.
type DietitianHandler struct {
	dietitianService service.DietitianService
	clientService    service.ClientService
	planService      service.DietPlanService
	mealService      service.MealService
	progressService  service.ProgressService
	out              responder
}

func NewDietitianHandler(
	dietitianService service.DietitianService,
	clientService service.ClientService,
	planService service.DietPlanService,
	mealService service.MealService,
	progressService service.ProgressService,
	out responder,
) *DietitianHandler {
	return &DietitianHandler{
		dietitianService: dietitianService,
		clientService:    clientService,
		planService:      planService,
		mealService:      mealService,
		progressService:  progressService,
		out:              out,
	}
}

// GetProfile godoc
// @Summary Get the calling dietitian's profile
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[service.DietitianResponse]
// @Failure 404 {object} result.Result[any] "Dietitian not found."
// @Router /dietitian/profile [get]
func (h *DietitianHandler) GetProfile(c *gin.Context) {
	r, err := h.dietitianService.GetProfile(c.Request.Context())
	send(c, h.out, r, err)
}

// --- Clients ---

// ListClients godoc
// @Summary List the dietitian's clients
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[[]service.ClientResponse]
// @Failure 404 {object} result.Result[any] "Dietitian not found."
// @Router /dietitian/clients [get]
func (h *DietitianHandler) ListClients(c *gin.Context) {
	r, err := h.clientService.GetClientsForDietitian(c.Request.Context())
	send(c, h.out, r, err)
}

// GetClient godoc
// @Summary Get one of the dietitian's clients
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} result.Result[service.ClientResponse]
// @Failure 403 {object} result.Result[any] "Client belongs to another dietitian"
// @Failure 404 {object} result.Result[any] "Client not found."
// @Router /dietitian/clients/{id} [get]
func (h *DietitianHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.clientService.GetClientForDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// CreateClient godoc
// @Summary Create a client assigned to the calling dietitian
// @Tags Dietitian
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body service.ClientInput true "Client details"
// @Success 200 {object} result.Result[service.ClientResponse] "Client created successfully."
// @Failure 400 {object} result.Result[any] "Validation error"
// @Router /dietitian/clients [post]
func (h *DietitianHandler) CreateClient(c *gin.Context) {
	var req service.ClientInput
	if !bind(c, &req) {
		return
	}
	r, err := h.clientService.CreateClientForDietitian(c.Request.Context(), req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ClientUpdateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.clientService.UpdateClientForDietitian(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) GetClientPlans(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.planService.GetByClientIDForDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// --- Diet plans ---

// ListPlans godoc
// @Summary List the plans authored by the dietitian
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[[]service.DietPlanResponse]
// @Router /dietitian/plans [get]
func (h *DietitianHandler) ListPlans(c *gin.Context) {
	r, err := h.planService.GetAllForDietitian(c.Request.Context())
	send(c, h.out, r, err)
}

func (h *DietitianHandler) GetPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.planService.GetByIDForDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// CreatePlan godoc
// @Summary Create a diet plan for a managed client
// @Tags Dietitian
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body service.DietPlanInput true "Diet plan"
// @Success 200 {object} result.Result[service.DietPlanResponse] "Diet plan created successfully."
// @Failure 400 {object} result.Result[any] "Validation error"
// @Failure 403 {object} result.Result[any] "Client belongs to another dietitian"
// @Failure 404 {object} result.Result[any] "Client not found."
// @Router /dietitian/plans [post]
func (h *DietitianHandler) CreatePlan(c *gin.Context) {
	var req service.DietPlanInput
	if !bind(c, &req) {
		return
	}
	r, err := h.planService.CreateByDietitian(c.Request.Context(), req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) UpdatePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.DietPlanUpdateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.planService.UpdateByDietitian(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

// DeletePlan godoc
// @Summary Delete a diet plan and its meals
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diet plan ID"
// @Success 200 {object} result.Result[bool]
// @Failure 403 {object} result.Result[any] "Plan authored by another dietitian"
// @Failure 404 {object} result.Result[any] "Diet plan not found."
// @Router /dietitian/plans/{id} [delete]
func (h *DietitianHandler) DeletePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.planService.DeleteByDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// --- Meals ---

func (h *DietitianHandler) ListPlanMeals(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.mealService.GetByDietPlanIDForDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) GetMeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.mealService.GetByIDForDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// CreateMeal godoc
// @Summary Add a meal to an authored plan
// @Tags Dietitian
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meal body service.MealInput true "Meal"
// @Success 200 {object} result.Result[domain.Meal] "Meal created successfully."
// @Failure 400 {object} result.Result[any] "Invalid times or negative nutrition values"
// @Failure 403 {object} result.Result[any] "Plan authored by another dietitian"
// @Router /dietitian/meals [post]
func (h *DietitianHandler) CreateMeal(c *gin.Context) {
	var req service.MealInput
	if !bind(c, &req) {
		return
	}
	r, err := h.mealService.CreateByDietitian(c.Request.Context(), req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) UpdateMeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.MealUpdateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.mealService.UpdateByDietitian(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) DeleteMeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.mealService.DeleteByDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// --- Progress ---

// GetClientProgress godoc
// @Summary List a client's progress entries, newest first
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} result.Result[[]domain.ClientProgress]
// @Failure 403 {object} result.Result[any] "Client belongs to another dietitian"
// @Router /dietitian/clients/{id}/progress [get]
func (h *DietitianHandler) GetClientProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.progressService.GetClientProgress(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// GetProgressSummary godoc
// @Summary Summarise a client's weight progress
// @Tags Dietitian
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} result.Result[service.ProgressSummary]
// @Router /dietitian/clients/{id}/progress/summary [get]
func (h *DietitianHandler) GetProgressSummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.progressService.GetSummary(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// RecordProgress godoc
// @Summary Record a progress entry for a managed client
// @Description Also updates the client's current weight.
// @Tags Dietitian
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param progress body service.ProgressInput true "Progress entry"
// @Success 200 {object} result.Result[domain.ClientProgress] "Progress recorded successfully."
// @Failure 400 {object} result.Result[any] "Validation error"
// @Failure 403 {object} result.Result[any] "Client belongs to another dietitian"
// @Router /dietitian/progress [post]
func (h *DietitianHandler) RecordProgress(c *gin.Context) {
	var req service.ProgressInput
	if !bind(c, &req) {
		return
	}
	r, err := h.progressService.CreateProgress(c.Request.Context(), req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) UpdateProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ProgressUpdateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.progressService.UpdateProgress(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) DeleteProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.progressService.DeleteProgress(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// --- Progress photos ---

// RequestPhotoUpload godoc
// @Summary Get a presigned URL for uploading a progress photo
// @Description Upload the image with PUT to uploadUrl, then confirm it with the returned objectKey.
// @Tags Dietitian
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Progress entry ID"
// @Param body body service.PhotoUploadInput true "File name and content type"
// @Success 200 {object} result.Result[service.PhotoUploadResponse]
// @Failure 400 {object} result.Result[any] "Unsupported image type."
// @Router /dietitian/progress/{id}/photos/upload-url [post]
func (h *DietitianHandler) RequestPhotoUpload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.PhotoUploadInput
	if !bind(c, &req) {
		return
	}
	r, err := h.progressService.RequestPhotoUpload(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

// ConfirmPhotoUpload godoc
// @Summary Attach an uploaded photo to a progress entry
// @Tags Dietitian
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Progress entry ID"
// @Param body body service.ConfirmPhotoInput true "Uploaded object"
// @Success 200 {object} result.Result[domain.ProgressPhoto]
// @Failure 400 {object} result.Result[any] "Invalid object key."
// @Router /dietitian/progress/{id}/photos [post]
func (h *DietitianHandler) ConfirmPhotoUpload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ConfirmPhotoInput
	if !bind(c, &req) {
		return
	}
	r, err := h.progressService.ConfirmPhotoUpload(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) GetPhotos(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.progressService.GetPhotos(c.Request.Context(), id)
	send(c, h.out, r, err)
}

func (h *DietitianHandler) DeletePhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.progressService.DeletePhoto(c.Request.Context(), id)
	send(c, h.out, r, err)
}
