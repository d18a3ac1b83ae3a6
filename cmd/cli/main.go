// Package main is the entry point for the interactive training
// management CLI. It wires storage, caches, the event bus and the
// application layer, then hands control to the menu loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hbini/training-management-system/config"
	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"
	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
	"github.com/Hbini/training-management-system/internal/infrastructure/messaging"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/memory"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/postgres"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/redis"
	"github.com/Hbini/training-management-system/internal/interface/cli"
	"github.com/Hbini/training-management-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// storage groups the repository set so both backends wire identically.
type storage struct {
	students     student.Repository
	courses      course.Repository
	enrollments  enrollment.Repository
	certificates certificate.Repository
	auditLog     audit.Repository
	atomic       enrollment.Atomic
	close        func()
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting training management CLI",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("storage", string(cfg.App.Storage)),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS AND AUDIT TRAIL
	// ─────────────────────────────────────────────────────────────────────────
	eventBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode: cfg.Features.IsEnabled(config.FeatureAsyncEvents),
		Logger:    log,
	})
	defer func() {
		_ = eventBus.Close()
	}()

	recorder := audit.NewRecorder(store.auditLog, log)
	if err := recorder.Attach(eventBus); err != nil {
		return fmt.Errorf("failed to attach audit recorder: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. CACHES (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var statsCache query.StatsCache
	var certLookup query.CertificateLookup
	var certInvalidator command.CertificateInvalidator

	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		cache, cacheErr := redis.NewCache(redisCfg)
		if cacheErr != nil {
			log.Warn("redis unavailable, caching disabled", logger.Err(cacheErr))
		} else {
			defer cache.Close()
			if cfg.Features.IsEnabled(config.FeatureStatsCache) {
				statsCache = redis.NewStatsCache(cache, log)
			}
			if cfg.Features.IsEnabled(config.FeatureCertificateCache) {
				certCache := redis.NewCertificateCache(cache, log)
				certLookup = certCache
				certInvalidator = certCache
			}
			log.Info("redis connection established", logger.String("addr", redisCfg.Addr()))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	registerStudent := command.NewRegisterStudentHandler(store.students, eventBus, log)
	createCourse := command.NewCreateCourseHandler(store.courses, eventBus, log)
	enrollStudent := command.NewEnrollStudentHandler(
		store.enrollments, store.courses, store.students, store.atomic, eventBus, log)
	transition := command.NewTransitionEnrollmentHandler(store.enrollments, store.atomic, eventBus, log)
	recordAttendance := command.NewRecordAttendanceHandler(store.enrollments, store.atomic, eventBus, log)
	recordGrade := command.NewRecordGradeHandler(store.enrollments, store.atomic, eventBus, log)
	completeEnrollment := command.NewCompleteEnrollmentHandler(
		store.enrollments, store.certificates, store.atomic, eventBus, log)
	updateProgress := command.NewUpdateProgressHandler(
		store.enrollments, store.atomic, eventBus, log,
		cfg.Features.IsEnabled(config.FeatureAutoComplete), completeEnrollment)
	issueCertificate := command.NewIssueCertificateHandler(
		store.enrollments, store.certificates, eventBus, log)
	revokeCertificate := command.NewRevokeCertificateHandler(store.certificates, certInvalidator, log)

	listEnrollments := query.NewListEnrollmentsHandler(store.enrollments, log)
	courseStats := query.NewGetCourseStatsHandler(store.courses, store.enrollments, statsCache, log)
	verifyCertificate := query.NewVerifyCertificateHandler(store.certificates, certLookup, log)
	exportEnrollments := query.NewExportEnrollmentsHandler(store.enrollments, store.certificates, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. INTERFACE LAYER
	// ─────────────────────────────────────────────────────────────────────────
	actor := operatorActor()
	prompt := cli.NewPrompter(os.Stdin, os.Stdout)

	app := cli.NewApp(
		cli.NewStudentHandler(registerStudent, store.students, prompt, os.Stdout, log),
		cli.NewCourseHandler(createCourse, store.courses, prompt, os.Stdout, log),
		cli.NewEnrollmentHandler(
			enrollStudent, transition, recordAttendance, recordGrade,
			updateProgress, completeEnrollment, listEnrollments,
			actor, prompt, os.Stdout, log),
		cli.NewReportHandler(
			courseStats, verifyCertificate, exportEnrollments,
			issueCertificate, revokeCertificate, store.auditLog,
			actor, prompt, os.Stdout, log),
		prompt, os.Stdout, log,
	)

	return app.Run(ctx)
}

// openStorage builds the repository set for the configured backend.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.App.Storage {
	case config.StoragePostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := conn.Ping(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}

		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database ready")

		return &storage{
			students:     postgres.NewStudentRepository(conn),
			courses:      postgres.NewCourseRepository(conn),
			enrollments:  postgres.NewEnrollmentRepository(conn),
			certificates: postgres.NewCertificateRepository(conn),
			auditLog:     postgres.NewAuditRepository(conn),
			atomic:       postgres.NewAtomic(conn),
			close:        conn.Close,
		}, nil

	default:
		store := memory.NewStore()
		log.Info("using in-memory storage, data is not persisted")

		return &storage{
			students:     memory.NewStudentRepository(store),
			courses:      memory.NewCourseRepository(store),
			enrollments:  memory.NewEnrollmentRepository(store),
			certificates: memory.NewCertificateRepository(store),
			auditLog:     memory.NewAuditRepository(store),
			atomic:       store,
			close:        func() {},
		}, nil
	}
}

// operatorActor identifies who is driving the session in the audit log.
func operatorActor() shared.Actor {
	if name := os.Getenv("OPERATOR_NAME"); name != "" {
		return shared.Actor(name)
	}
	if u := os.Getenv("USER"); u != "" {
		return shared.Actor(u)
	}
	return "operator"
}
