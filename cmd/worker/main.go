// Package main - точка входа для фоновых процессов (Worker) Mentor Bridge Hub.
//
// Worker отвечает за периодические задачи:
// - Рассылка напоминаний о подтверждённых сессиях (за 24 часа и за 1 час)
// - Отмена просроченных pending-запросов, на которые ментор не ответил
//
// Worker пишет в ту же базу, что и API, и публикует события в тот же
// брокер уведомлений. Запускается отдельным процессом.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Infrastructure layer
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/messaging"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/notifier"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/persistence/postgres"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/scheduler"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/scheduler/jobs"

	// Packages
	"github.com/mentor-bridge/mentor-bridge-hub/config"

	"github.com/joho/godotenv"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, nothing to run (set SCHEDULER_ENABLED=true)")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Mentor Bridge Hub Worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"reminder_sweep_interval", cfg.Scheduler.ReminderSweepInterval.String(),
		"expire_pending_interval", cfg.Scheduler.ExpirePendingInterval.String(),
		"pending_ttl", cfg.Scheduler.PendingTTL.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// Миграции запускает API-процесс. Worker только проверяет, что схема
	// уже на месте, и отказывается стартовать против пустой базы.
	migrator := postgres.NewMigrator(dbConn)
	status, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	for _, m := range status {
		if !m.IsApplied {
			return fmt.Errorf("migration %d (%s) is not applied, start the API service first", m.Version, m.Name)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ИНИЦИАЛИЗАЦИЯ EVENT BUS И БРОКЕРА УВЕДОМЛЕНИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if !cfg.NATS.Disabled && cfg.NATS.URL != "" {
		log.Info("connecting to NATS...", "url", cfg.NATS.URL)
		notifierConfig := notifier.DefaultConfig()
		notifierConfig.URL = cfg.NATS.URL
		notifierConfig.SubjectPrefix = cfg.NATS.SubjectPrefix
		notifierConfig.FailureThreshold = cfg.NATS.CircuitBreakerThreshold
		notifierConfig.BreakerTimeout = cfg.NATS.CircuitBreakerTimeout
		notifierConfig.Logger = log

		natsNotifier, err := notifier.New(notifierConfig)
		if err != nil {
			log.Warn("failed to connect to NATS, notifications disabled", "error", err)
		} else {
			defer natsNotifier.Close()
			if err := natsNotifier.AttachTo(eventBus); err != nil {
				return fmt.Errorf("failed to attach notifier: %w", err)
			}
			log.Info("NATS notifier attached")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. РЕГИСТРАЦИЯ ДЖОБОВ
	// ─────────────────────────────────────────────────────────────────────────
	sessionRepo := postgres.NewSessionRepository(dbConn)

	schedulerConfig := scheduler.DefaultSchedulerConfig()
	schedulerConfig.Logger = log
	schedulerConfig.Timezone = cfg.App.Location
	sched := scheduler.NewScheduler(schedulerConfig)

	reminderConfig := jobs.DefaultReminderSweepConfig()
	reminderConfig.Timeout = cfg.Scheduler.JobTimeout
	reminderJob := jobs.NewReminderSweepJob(sessionRepo, eventBus, log, reminderConfig)
	if err := sched.Register(reminderJob, scheduler.NewIntervalSchedule(cfg.Scheduler.ReminderSweepInterval)); err != nil {
		return fmt.Errorf("failed to register reminder sweep job: %w", err)
	}

	expireConfig := jobs.DefaultExpirePendingConfig()
	expireConfig.TTL = cfg.Scheduler.PendingTTL
	expireConfig.Timeout = cfg.Scheduler.JobTimeout
	expireJob := jobs.NewExpirePendingJob(sessionRepo, eventBus, log, expireConfig)
	if err := sched.Register(expireJob, scheduler.NewIntervalSchedule(cfg.Scheduler.ExpirePendingInterval)); err != nil {
		return fmt.Errorf("failed to register expire pending job: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Mentor Bridge Hub Worker is running",
		"jobs", len(sched.ListJobs()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug || cfg.Observability.LogLevel == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
