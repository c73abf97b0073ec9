package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-api/internal/app"
	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/handler/appointment"
	"github.com/jwalitptl/dental-api/internal/handler/auth"
	"github.com/jwalitptl/dental-api/internal/handler/catalog"
	"github.com/jwalitptl/dental-api/internal/handler/health"
	"github.com/jwalitptl/dental-api/internal/handler/medical"
	"github.com/jwalitptl/dental-api/internal/handler/patient"
	"github.com/jwalitptl/dental-api/internal/handler/request"
	"github.com/jwalitptl/dental-api/internal/handler/user"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/internal/router"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv("DENTAL_CONFIG_FILE"))
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load configuration")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal(err, "Failed to initialize application")
	}
	defer a.Close()

	if cfg.Server.AutoMigrate {
		applied, err := postgres.Migrate(ctx, a.DB)
		if err != nil {
			log.Fatal(err, "Failed to apply migrations")
		}
		log.Info("Migrations applied", "count", len(applied))
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(a.Services.Auth)

	var intake []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		intake = append(intake, limiter.RateLimit())
	}

	checks := map[string]health.Check{
		"database": a.DB.PingContext,
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}

	// Initialize handlers
	handlers := []router.Handler{
		health.NewHandler(checks, prometheus.DefaultGatherer),
		auth.NewHandler(a.Services.Auth, a.Services.Users, authMiddleware),
		appointment.NewHandler(a.Services.Appointments, authMiddleware, a.Location),
		request.NewHandler(a.Services.Requests, authMiddleware, intake...),
		patient.NewHandler(a.Services.Patients, authMiddleware),
		user.NewHandler(a.Services.Users, authMiddleware),
		catalog.NewHandler(a.Services.Catalog, authMiddleware),
		medical.NewHandler(a.Services.Records, authMiddleware),
	}

	// Setup router
	r, err := router.NewRouter(
		log,
		middleware.NewHTTPMetrics(app.MetricsNamespace, prometheus.DefaultRegisterer),
		router.RouterConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			HSTS:           !cfg.IsDevelopment(),
		},
		handlers...,
	)
	if err != nil {
		log.Fatal(err, "Failed to build router")
	}
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "clinic", cfg.Clinic.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited properly")
}
