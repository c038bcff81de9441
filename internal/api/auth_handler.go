package api

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/result"
	"alcyxob/dieta-core/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and the credential token flows.
type AuthHandler struct {
	authService service.AuthService
	out         responder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, out responder) *AuthHandler {
	return &AuthHandler{authService: authService, out: out}
}

// Register godoc
// @Summary Register a new client account
// @Description Creates a Client account with an unconfirmed email and returns an access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body service.RegisterInput true "Registration details"
// @Success 200 {object} result.Result[service.AuthResponse] "User registered successfully."
// @Failure 400 {object} result.Result[any] "Validation error or email already taken"
// @Failure 500 {object} result.Result[any] "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bind(c, &req) {
		return
	}
	r, err := h.authService.Register(c.Request.Context(), req)
	send(c, h.out, r, err)
}

// Login godoc
// @Summary Log in
// @Description Authenticates a user with a confirmed email and returns a JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body service.LoginInput true "Login credentials"
// @Success 200 {object} result.Result[service.AuthResponse] "Login successful."
// @Failure 400 {object} result.Result[any] "Wrong password or email not confirmed"
// @Failure 404 {object} result.Result[any] "Unknown email"
// @Failure 429 {object} result.Result[any] "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if !bind(c, &req) {
		return
	}
	r, err := h.authService.Login(c.Request.Context(), req)
	send(c, h.out, r, err)
}

// GenerateConfirmationToken godoc
// @Summary Issue an email confirmation token
// @Description Issues a fresh confirmation token for the authenticated user.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[string] "Email confirmation token generated successfully."
// @Failure 401 {object} result.Result[any] "Unauthorized"
// @Failure 404 {object} result.Result[any] "User not found."
// @Router /auth/confirmation-token [post]
func (h *AuthHandler) GenerateConfirmationToken(c *gin.Context) {
	userID, err := auth.CurrentUserID(c.Request.Context())
	if err != nil {
		r, err := result.Propagate[string](err)
		send(c, h.out, r, err)
		return
	}
	r, err := h.authService.GenerateEmailConfirmationToken(c.Request.Context(), userID)
	send(c, h.out, r, err)
}

// ConfirmEmail godoc
// @Summary Confirm an email address
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body service.ConfirmEmailInput true "User ID and token"
// @Success 200 {object} result.Result[bool] "Email confirmed successfully."
// @Failure 400 {object} result.Result[any] "Invalid token."
// @Failure 404 {object} result.Result[any] "User not found."
// @Router /auth/confirm-email [post]
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req service.ConfirmEmailInput
	if !bind(c, &req) {
		return
	}
	r, err := h.authService.ConfirmEmail(c.Request.Context(), req.UserID, req.Token)
	send(c, h.out, r, err)
}

// ForgotPassword godoc
// @Summary Issue a password reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body service.ForgotPasswordInput true "Account email"
// @Success 200 {object} result.Result[string] "Password reset token generated successfully."
// @Failure 404 {object} result.Result[any] "User not found."
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordInput
	if !bind(c, &req) {
		return
	}
	r, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	send(c, h.out, r, err)
}

// ResetPassword godoc
// @Summary Reset a password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body service.ResetPasswordInput true "Email, token and new password"
// @Success 200 {object} result.Result[bool] "Password reset successfully."
// @Failure 400 {object} result.Result[any] "Invalid token or password policy violation"
// @Failure 404 {object} result.Result[any] "User not found."
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordInput
	if !bind(c, &req) {
		return
	}
	r, err := h.authService.ResetPassword(c.Request.Context(), req)
	send(c, h.out, r, err)
}

// Me godoc
// @Summary Get the authenticated user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} result.Result[service.UserResponse]
// @Failure 401 {object} result.Result[any] "Unauthorized"
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	r, err := h.authService.Me(c.Request.Context())
	send(c, h.out, r, err)
}
