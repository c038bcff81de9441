package main

import (
	"alcyxob/dieta-core/internal/api"
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/config"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/logger"
	"alcyxob/dieta-core/internal/metrics"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/repository/memory"
	"alcyxob/dieta-core/internal/repository/mongo"
	"alcyxob/dieta-core/internal/service"
	"alcyxob/dieta-core/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title Dieta Core API
// @version 1.0
// @description API for dietitians managing clients, diet plans, meals and progress.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zlog *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	zlog.Info("starting dieta-core",
		zap.String("environment", cfg.Server.Environment),
		zap.String("driver", cfg.Database.Driver),
	)
	for _, w := range cfg.Warnings() {
		zlog.Warn(w)
	}

	// --- Storage ---
	store, closeStore, err := openStore(cfg.Database, zlog)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, zlog)
	if err != nil {
		return fmt.Errorf("init S3 storage: %w", err)
	}

	// --- Identity ---
	ids := identity.NewProvider(store.Users, identity.Options{
		TokenLifetime: cfg.Identity.TokenLifetime,
		BcryptCost:    cfg.Identity.BcryptCost,
	}, zlog)
	if err := ids.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer, cfg.JWT.Audience)

	// --- Services ---
	resolver := ownership.NewResolver(store)
	services := api.Services{
		Auth:      service.NewAuthService(ids, tokens, store.Tx, zlog),
		Dietitian: service.NewDietitianService(store, ids, resolver, zlog),
		Client:    service.NewClientService(store, ids, resolver, zlog),
		DietPlan:  service.NewDietPlanService(store, resolver, zlog),
		Meal:      service.NewMealService(store, resolver, zlog),
		Progress:  service.NewProgressService(store, resolver, fileStorage, cfg.S3.PresignExpiry, zlog),
	}

	// --- Metrics ---
	var recorder metrics.Recorder = metrics.Nop{}
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(reg)
		gatherer = reg
	}

	limiter := api.NewLoginLimiter(api.LoginLimiterConfig{
		PerMinute: cfg.RateLimit.LoginPerMinute,
		Burst:     cfg.RateLimit.LoginBurst,
	}, recorder, zlog)
	defer limiter.Stop()

	// --- HTTP ---
	if err := api.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	err = api.SetupRoutes(router, api.Deps{
		Services:       services,
		Tokens:         tokens,
		LoginLimiter:   limiter,
		Recorder:       recorder,
		Gatherer:       gatherer,
		Logger:         zlog,
		TrustedProxies: cfg.Server.TrustedProxies,
		DetailedErrors: cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("setup routes: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		zlog.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	zlog.Info("server exiting")
	return nil
}

// openStore builds the repository set for the configured driver and
// returns a function that releases it.
func openStore(cfg config.DatabaseConfig, zlog *zap.Logger) (repository.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		zlog.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return repository.Store{}, nil, fmt.Errorf("connect MongoDB: %w", err)
	}
	db := client.Database(cfg.Name)
	zlog.Info("database connection established", zap.String("database", cfg.Name))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	mongo.EnsureIndexes(ctx, db, zlog)
	cancel()

	closeFn := func() {
		if err := mongo.DisconnectDB(client); err != nil {
			zlog.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}
	return mongo.NewStore(client, db, cfg.Transactions), closeFn, nil
}
