package api

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/metrics"
	"alcyxob/dieta-core/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Services groups the application services the handlers call.
type Services struct {
	Auth      service.AuthService
	Dietitian service.DietitianService
	Client    service.ClientService
	DietPlan  service.DietPlanService
	Meal      service.MealService
	Progress  service.ProgressService
}

// Deps carries everything SetupRoutes wires together. Recorder defaults
// to a no-op; Gatherer, when set, exposes /metrics.
type Deps struct {
	Services     Services
	Tokens       *auth.TokenManager
	LoginLimiter *LoginLimiter
	Recorder     metrics.Recorder
	Gatherer     prometheus.Gatherer
	Logger       *zap.Logger
	// TrustedProxies are the only peers whose X-Forwarded-For is believed
	// when resolving the client IP. Nil trusts no proxy.
	TrustedProxies []string
	// DetailedErrors exposes fault messages in responses (development only).
	DetailedErrors bool
}

func SetupRoutes(router *gin.Engine, deps Deps) error {
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return err
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.Nop{}
	}
	out := responder{log: deps.Logger, detailed: deps.DetailedErrors}

	authHandler := NewAuthHandler(deps.Services.Auth, out)
	adminHandler := NewAdminHandler(deps.Services.Dietitian, deps.Services.Client, out)
	dietitianHandler := NewDietitianHandler(
		deps.Services.Dietitian,
		deps.Services.Client,
		deps.Services.DietPlan,
		deps.Services.Meal,
		deps.Services.Progress,
		out,
	)
	clientHandler := NewClientHandler(deps.Services.Client, deps.Services.DietPlan, deps.Services.Meal, out)

	// Recovery sits innermost so a panicking request still reaches the
	// request log and metrics with its 500.
	router.Use(
		RequestID(),
		RequestLogger(deps.Logger),
		Metrics(deps.Recorder),
		Recovery(deps.Logger),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		if deps.LoginLimiter != nil {
			authGroup.POST("/login", deps.LoginLimiter.Middleware(), authHandler.Login)
		} else {
			authGroup.POST("/login", authHandler.Login)
		}
		authGroup.POST("/confirm-email", authHandler.ConfirmEmail)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	protected := apiV1.Group("")
	protected.Use(Authenticate(deps.Tokens))
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/auth/confirmation-token", authHandler.GenerateConfirmationToken)

		admin := protected.Group("/admin")
		admin.Use(RequireRoles(domain.RoleAdmin))
		{
			admin.GET("/dietitians", adminHandler.ListDietitians)
			admin.GET("/dietitians/:id", adminHandler.GetDietitian)
			admin.POST("/dietitians", adminHandler.CreateDietitian)
			admin.PUT("/dietitians/:id", adminHandler.UpdateDietitian)
			admin.DELETE("/dietitians/:id", adminHandler.DeleteDietitian)

			admin.GET("/clients", adminHandler.ListClients)
			admin.GET("/clients/:id", adminHandler.GetClient)
			admin.POST("/clients", adminHandler.CreateClient)
			admin.PUT("/clients/:id", adminHandler.UpdateClient)
			admin.DELETE("/clients/:id", adminHandler.DeleteClient)
			admin.POST("/clients/:id/dietitian/:dietitianId", adminHandler.AssignClient)
			admin.DELETE("/clients/:id/dietitian", adminHandler.UnassignClient)
		}

		dietitian := protected.Group("/dietitian")
		dietitian.Use(RequireRoles(domain.RoleDietitian, domain.RoleAdmin))
		{
			dietitian.GET("/profile", dietitianHandler.GetProfile)

			dietitian.GET("/clients", dietitianHandler.ListClients)
			dietitian.GET("/clients/:id", dietitianHandler.GetClient)
			dietitian.POST("/clients", dietitianHandler.CreateClient)
			dietitian.PUT("/clients/:id", dietitianHandler.UpdateClient)
			dietitian.GET("/clients/:id/plans", dietitianHandler.GetClientPlans)
			dietitian.GET("/clients/:id/progress", dietitianHandler.GetClientProgress)
			dietitian.GET("/clients/:id/progress/summary", dietitianHandler.GetProgressSummary)

			dietitian.GET("/plans", dietitianHandler.ListPlans)
			dietitian.GET("/plans/:id", dietitianHandler.GetPlan)
			dietitian.POST("/plans", dietitianHandler.CreatePlan)
			dietitian.PUT("/plans/:id", dietitianHandler.UpdatePlan)
			dietitian.DELETE("/plans/:id", dietitianHandler.DeletePlan)
			dietitian.GET("/plans/:id/meals", dietitianHandler.ListPlanMeals)

			dietitian.GET("/meals/:id", dietitianHandler.GetMeal)
			dietitian.POST("/meals", dietitianHandler.CreateMeal)
			dietitian.PUT("/meals/:id", dietitianHandler.UpdateMeal)
			dietitian.DELETE("/meals/:id", dietitianHandler.DeleteMeal)

			dietitian.POST("/progress", dietitianHandler.RecordProgress)
			dietitian.PUT("/progress/:id", dietitianHandler.UpdateProgress)
			dietitian.DELETE("/progress/:id", dietitianHandler.DeleteProgress)
			dietitian.POST("/progress/:id/photos/upload-url", dietitianHandler.RequestPhotoUpload)
			dietitian.POST("/progress/:id/photos", dietitianHandler.ConfirmPhotoUpload)
			dietitian.GET("/progress/:id/photos", dietitianHandler.GetPhotos)
			dietitian.DELETE("/photos/:id", dietitianHandler.DeletePhoto)
		}

		client := protected.Group("/client")
		client.Use(RequireRoles(domain.RoleClient, domain.RoleAdmin))
		{
			client.GET("/profile", clientHandler.GetMyProfile)
			client.GET("/plans", clientHandler.GetMyDietPlans)
			client.GET("/plans/:id", clientHandler.GetMyDietPlan)
			client.GET("/plans/:id/meals", clientHandler.GetPlanMeals)
		}
	}
	return nil
}
