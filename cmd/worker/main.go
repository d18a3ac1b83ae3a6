// Package main is the entry point for the background worker. It runs
// the scheduled jobs: expiring stale pending enrollments and warming
// the course statistics cache.
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
	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
	"github.com/Hbini/training-management-system/internal/infrastructure/messaging"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/postgres"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/redis"
	"github.com/Hbini/training-management-system/internal/infrastructure/scheduler"
	"github.com/Hbini/training-management-system/internal/infrastructure/scheduler/jobs"
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

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, set SCHEDULER_ENABLED=true")
	}
	if cfg.App.Storage != config.StoragePostgres {
		return fmt.Errorf("the worker requires postgres storage, set APP_STORAGE=postgres")
	}

	log := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting training management worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.Duration("expire_interval", cfg.Scheduler.ExpirePendingInterval),
		logger.Duration("warm_interval", cfg.Scheduler.WarmStatsInterval),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	enrollmentRepo := postgres.NewEnrollmentRepository(conn)
	courseRepo := postgres.NewCourseRepository(conn)
	auditRepo := postgres.NewAuditRepository(conn)

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

	recorder := audit.NewRecorder(auditRepo, log)
	if err := recorder.Attach(eventBus); err != nil {
		return fmt.Errorf("failed to attach audit recorder: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. CACHE (optional, used by the stats warmer)
	// ─────────────────────────────────────────────────────────────────────────
	var statsCache query.StatsCache
	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureStatsCache) {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		cache, cacheErr := redis.NewCache(redisCfg)
		if cacheErr != nil {
			log.Warn("redis unavailable, stats warming will recompute only", logger.Err(cacheErr))
		} else {
			defer cache.Close()
			statsCache = redis.NewStatsCache(cache, log)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. JOBS AND SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	expireHandler := command.NewExpirePendingHandler(enrollmentRepo, eventBus, log)
	statsHandler := query.NewGetCourseStatsHandler(courseRepo, enrollmentRepo, statsCache, log)

	sched := scheduler.NewScheduler(log, cfg.App.Location)

	err = sched.Register(
		jobs.NewExpirePendingJob(expireHandler, log),
		scheduler.NewIntervalSchedule(cfg.Scheduler.ExpirePendingInterval),
	)
	if err != nil {
		return fmt.Errorf("failed to register expire job: %w", err)
	}

	if statsCache != nil {
		err = sched.Register(
			jobs.NewWarmStatsJob(courseRepo, statsHandler, log),
			scheduler.NewIntervalSchedule(cfg.Scheduler.WarmStatsInterval),
		)
		if err != nil {
			return fmt.Errorf("failed to register stats job: %w", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. WAIT FOR SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutting down", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sched.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("scheduler stop: %w", err)
		}
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout exceeded, exiting with jobs still running")
	}

	log.Info("worker stopped")
	return nil
}
