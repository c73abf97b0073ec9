package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/dental-api/internal/app"
	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/email"
	"github.com/jwalitptl/dental-api/internal/handler/health"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/worker"
)

type runner interface {
	Start(ctx context.Context)
}

func main() {
	// Load config
	cfg, err := config.LoadConfig(os.Getenv("DENTAL_CONFIG_FILE"))
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load config")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig()).WithFields(map[string]interface{}{"component": "worker"})
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal(err, "Failed to initialize application")
	}
	defer a.Close()

	// Initialize and start outbox processor
	workerConfig := cfg.Outbox.ToWorkerConfig()
	workerConfig.Channel = cfg.Redis.Channel
	processor, err := worker.NewOutboxProcessor(a.Repos.Outbox, a.Broker, workerConfig, log, a.Metrics)
	if err != nil {
		log.Fatal(err, "Failed to create outbox processor")
	}

	sender, err := email.NewSender(email.Config{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		User:          cfg.SMTP.User,
		Password:      cfg.SMTP.Password,
		From:          cfg.SMTP.From,
		FromName:      cfg.SMTP.FromName,
		ClinicName:    cfg.Clinic.Name,
		ClinicAddress: cfg.Clinic.Address,
		ClinicPhone:   cfg.Clinic.Phone,
		FrontendURL:   cfg.Clinic.FrontendURL,
		Location:      a.Location,
	}, a.QR, log)
	if err != nil {
		log.Fatal(err, "Failed to create email sender")
	}
	notification.NewDispatcher(a.Repos.Appointments, sender, log, a.Metrics).Register(processor)

	runners := []runner{
		processor,
		worker.NewOutboxCleanupWorker(a.Repos.Outbox, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, log),
	}
	if cfg.Reminders.Enabled {
		runners = append(runners, worker.NewPeriodicJob("reminders", cfg.Reminders.Interval, true, func(ctx context.Context) error {
			_, err := a.Services.Reminders.Run(ctx)
			return err
		}, log))
	}

	srv := healthServer(a, cfg.Server.WorkerPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Health check server failed")
		}
	}()

	var wg sync.WaitGroup
	for _, r := range runners {
		wg.Add(1)
		go func(r runner) {
			defer wg.Done()
			r.Start(ctx)
		}(r)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutting down...")

	cancel()
	wg.Wait()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error(err, "Health check server forced to shutdown")
	}
}

func healthServer(a *app.App, port int) *http.Server {
	checks := map[string]health.Check{
		"database": a.DB.PingContext,
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks, prometheus.DefaultGatherer).RegisterRoutes(engine.Group(""))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}
}
