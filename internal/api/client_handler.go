package api

import (
	"alcyxob/dieta-core/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler serves a client's read-only view of their own data.
type ClientHandler struct {
	clientService service.ClientService
	planService   service.DietPlanService
	mealService   service.MealService
	out           responder
}

func NewClientHandler(clientService service.ClientService, planService service.DietPlanService, mealService service.MealService, out responder) *ClientHandler {
	return &ClientHandler{clientService: clientService, planService: planService, mealService: mealService, out: out}
}

// GetMyProfile godoc
// @Summary Get the calling client's profile
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[service.ClientResponse]
// @Failure 401 {object} result.Result[any] "Unauthorized"
// @Failure 404 {object} result.Result[any] "Client not found."
// @Router /client/profile [get]
func (h *ClientHandler) GetMyProfile(c *gin.Context) {
	r, err := h.clientService.GetProfile(c.Request.Context())
	send(c, h.out, r, err)
}

// GetMyDietPlans godoc
// @Summary List the calling client's diet plans
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[[]service.DietPlanResponse]
// @Failure 404 {object} result.Result[any] "Client not found."
// @Router /client/plans [get]
func (h *ClientHandler) GetMyDietPlans(c *gin.Context) {
	r, err := h.planService.GetAllForClient(c.Request.Context())
	send(c, h.out, r, err)
}

// GetMyDietPlan godoc
// @Summary Get one of the calling client's diet plans
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diet plan ID"
// @Success 200 {object} result.Result[service.DietPlanResponse]
// @Failure 403 {object} result.Result[any] "Plan belongs to another client"
// @Failure 404 {object} result.Result[any] "Diet plan not found."
// @Router /client/plans/{id} [get]
func (h *ClientHandler) GetMyDietPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.planService.GetByIDForClient(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// GetPlanMeals godoc
// @Summary List the meals of one of the calling client's plans
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param id path int true "Diet plan ID"
// @Success 200 {object} result.Result[[]domain.Meal]
// @Failure 403 {object} result.Result[any] "Plan belongs to another client"
// @Router /client/plans/{id}/meals [get]
func (h *ClientHandler) GetPlanMeals(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.mealService.GetByDietPlanIDForClient(c.Request.Context(), id)
	send(c, h.out, r, err)
}
