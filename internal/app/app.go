// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	appointmentService "github.com/jwalitptl/dental-api/internal/service/appointment"
	authService "github.com/jwalitptl/dental-api/internal/service/auth"
	catalogService "github.com/jwalitptl/dental-api/internal/service/catalog"
	medicalService "github.com/jwalitptl/dental-api/internal/service/medical"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	patientService "github.com/jwalitptl/dental-api/internal/service/patient"
	requestService "github.com/jwalitptl/dental-api/internal/service/request"
	userService "github.com/jwalitptl/dental-api/internal/service/user"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/lock"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/messaging/redis"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/qrcode"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const MetricsNamespace = "dental"

type Repositories struct {
	Users        repository.UserRepository
	Patients     repository.PatientRepository
	Services     repository.ServiceRepository
	Appointments repository.AppointmentRepository
	Requests     repository.AppointmentRequestRepository
	Records      repository.MedicalRecordRepository
	Outbox       repository.OutboxRepository
}

type Services struct {
	Auth         *authService.Service
	Users        *userService.Service
	Catalog      *catalogService.Service
	Patients     *patientService.Service
	Records      *medicalService.Service
	Appointments *appointmentService.Service
	Requests     *requestService.Service
	Reminders    *appointmentService.ReminderJob
}

// App holds everything a binary needs. Redis is nil when no URL is set.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *sqlx.DB
	Redis    *goredis.Client
	Broker   messaging.Broker
	Metrics  *metrics.Metrics
	Location *time.Location
	QR       qrcode.Generator
	Repos    Repositories
	Services Services
}

// New connects to Postgres (and Redis when configured) and builds the
// service graph. Metrics are registered on reg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*App, error) {
	loc, err := cfg.Clinic.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid clinic timezone: %w", err)
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Metrics:  metrics.NewMetrics(MetricsNamespace, reg),
		Location: loc,
		QR:       qrcode.NewGenerator(cfg.Clinic.QRSize, log),
	}

	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
		if err != nil {
			db.Close()
			return nil, err
		}
		a.Redis = client
		a.Broker = redis.NewRedisBroker(client, log)
	} else {
		log.Warn("Redis not configured, slot locking falls back to the database constraint")
	}

	a.wire()
	return a, nil
}

func (a *App) wire() {
	base := postgres.NewBaseRepository(a.DB)
	a.Repos = Repositories{
		Users:        postgres.NewUserRepository(base),
		Patients:     postgres.NewPatientRepository(base),
		Services:     postgres.NewServiceRepository(base),
		Appointments: postgres.NewAppointmentRepository(base),
		Requests:     postgres.NewAppointmentRequestRepository(base),
		Records:      postgres.NewMedicalRecordRepository(base),
		Outbox:       postgres.NewOutboxRepository(base),
	}

	cfg := a.Config
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	var locker lock.Locker
	if a.Redis != nil {
		locker = lock.NewRedisLocker(a.Redis, cfg.Redis.LockTTL)
	}

	notifier := notification.NewOutboxNotifier(a.Repos.Outbox, a.Logger, a.Metrics)

	users := userService.NewService(a.Repos.Users, hasher, cfg.Cache.TTL, cfg.Cache.CleanupInterval, a.Logger)
	catalog := catalogService.NewService(a.Repos.Services, cfg.Cache.TTL, cfg.Cache.CleanupInterval, a.Logger)
	appointments := appointmentService.NewService(
		a.Repos.Appointments,
		a.Repos.Patients,
		users,
		catalog,
		notifier,
		locker,
		a.QR,
		appointmentService.Config{Location: a.Location, FrontendURL: cfg.Clinic.FrontendURL},
		a.Logger,
		a.Metrics,
	)

	a.Services = Services{
		Auth:         authService.NewService(a.Repos.Users, jwtSvc, hasher, a.Logger),
		Users:        users,
		Catalog:      catalog,
		Patients:     patientService.NewService(a.Repos.Patients, a.Logger),
		Records:      medicalService.NewService(a.Repos.Records, a.Logger),
		Appointments: appointments,
		Requests:     requestService.NewService(a.Repos.Requests, a.Repos.Patients, users, catalog, appointments, a.Location, a.Logger),
		Reminders:    appointmentService.NewReminderJob(a.Repos.Appointments, notifier, a.Location, a.Logger),
	}
}

func (a *App) Close() {
	// the broker owns the Redis client
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			a.Logger.Error(err, "Failed to close Redis")
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error(err, "Failed to close database")
	}
}
