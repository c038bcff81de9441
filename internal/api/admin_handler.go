package api

import (
	"alcyxob/dieta-core/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrator's dietitian and client management.
type AdminHandler struct {
	dietitianService service.DietitianService
	clientService    service.ClientService
	out              responder
}

func NewAdminHandler(dietitianService service.DietitianService, clientService service.ClientService, out responder) *AdminHandler {
	return &AdminHandler{dietitianService: dietitianService, clientService: clientService, out: out}
}

// ListDietitians godoc
// @Summary List all dietitians
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[[]service.DietitianResponse]
// @Failure 403 {object} result.Result[any] "Forbidden"
// @Router /admin/dietitians [get]
func (h *AdminHandler) ListDietitians(c *gin.Context) {
	r, err := h.dietitianService.GetAll(c.Request.Context())
	send(c, h.out, r, err)
}

// GetDietitian godoc
// @Summary Get a dietitian
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dietitian ID"
// @Success 200 {object} result.Result[service.DietitianResponse]
// @Failure 404 {object} result.Result[any] "Dietitian not found."
// @Router /admin/dietitians/{id} [get]
func (h *AdminHandler) GetDietitian(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.dietitianService.GetByID(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// CreateDietitian godoc
// @Summary Create a dietitian account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dietitian body service.DietitianInput true "Dietitian details"
// @Success 200 {object} result.Result[service.DietitianResponse] "Dietitian created successfully."
// @Failure 400 {object} result.Result[any] "Validation error or email already taken"
// @Router /admin/dietitians [post]
func (h *AdminHandler) CreateDietitian(c *gin.Context) {
	var req service.DietitianInput
	if !bind(c, &req) {
		return
	}
	r, err := h.dietitianService.Create(c.Request.Context(), req)
	send(c, h.out, r, err)
}

// UpdateDietitian godoc
// @Summary Update a dietitian
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dietitian ID"
// @Param dietitian body service.DietitianUpdateInput true "Dietitian details"
// @Success 200 {object} result.Result[service.DietitianResponse] "Dietitian updated successfully."
// @Failure 404 {object} result.Result[any] "Dietitian not found."
// @Router /admin/dietitians/{id} [put]
func (h *AdminHandler) UpdateDietitian(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.DietitianUpdateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.dietitianService.Update(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

// DeleteDietitian godoc
// @Summary Delete a dietitian
// @Description Unassigns the dietitian's clients, then removes the profile and the account.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dietitian ID"
// @Success 200 {object} result.Result[bool]
// @Failure 404 {object} result.Result[any] "Dietitian not found."
// @Router /admin/dietitians/{id} [delete]
func (h *AdminHandler) DeleteDietitian(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.dietitianService.Delete(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// ListClients godoc
// @Summary List all clients
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[[]service.ClientResponse]
// @Router /admin/clients [get]
func (h *AdminHandler) ListClients(c *gin.Context) {
	r, err := h.clientService.GetAllForAdmin(c.Request.Context())
	send(c, h.out, r, err)
}

func (h *AdminHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.clientService.GetByIDForAdmin(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// CreateClient godoc
// @Summary Create a client account
// @Description The dietitianId field is optional for administrators.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body service.ClientInput true "Client details"
// @Success 200 {object} result.Result[service.ClientResponse] "Client created successfully."
// @Failure 400 {object} result.Result[any] "Validation error"
// @Failure 404 {object} result.Result[any] "Dietitian not found."
// @Router /admin/clients [post]
func (h *AdminHandler) CreateClient(c *gin.Context) {
	var req service.ClientInput
	if !bind(c, &req) {
		return
	}
	r, err := h.clientService.CreateClientForAdmin(c.Request.Context(), req)
	send(c, h.out, r, err)
}

func (h *AdminHandler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ClientUpdateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.clientService.UpdateClientForAdmin(c.Request.Context(), id, req)
	send(c, h.out, r, err)
}

func (h *AdminHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.clientService.DeleteClient(c.Request.Context(), id)
	send(c, h.out, r, err)
}

// AssignClient godoc
// @Summary Assign a client to a dietitian
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param dietitianId path int true "Dietitian ID"
// @Success 200 {object} result.Result[bool] "Client assigned to dietitian successfully."
// @Failure 404 {object} result.Result[any] "Client or dietitian not found"
// @Router /admin/clients/{id}/dietitian/{dietitianId} [post]
func (h *AdminHandler) AssignClient(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	dietitianID, ok := pathID(c, "dietitianId")
	if !ok {
		return
	}
	r, err := h.clientService.AssignClientToDietitian(c.Request.Context(), clientID, dietitianID)
	send(c, h.out, r, err)
}

// UnassignClient godoc
// @Summary Remove a client from their dietitian
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} result.Result[bool]
// @Failure 404 {object} result.Result[any] "Client not found."
// @Router /admin/clients/{id}/dietitian [delete]
func (h *AdminHandler) UnassignClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.clientService.RemoveClientFromDietitian(c.Request.Context(), id)
	send(c, h.out, r, err)
}
