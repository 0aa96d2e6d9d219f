// Package main - точка входа HTTP API сервиса Mentor Bridge Hub.
//
// Сервис подбирает студентам менторов по анкетам и ведёт жизненный цикл
// сессий: запрос, подтверждение, перенос, отмена, завершение.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: репозитории, кэш, брокер уведомлений
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	// Application layer
	"github.com/mentor-bridge/mentor-bridge-hub/internal/application/command"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/application/query"

	// Domain layer
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/matching"

	// Infrastructure layer
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/messaging"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/notifier"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/persistence/postgres"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/mentor-bridge/mentor-bridge-hub/internal/interface/http"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/interface/http/handlers"

	// Packages
	"github.com/mentor-bridge/mentor-bridge-hub/config"
	"github.com/mentor-bridge/mentor-bridge-hub/pkg/logger"

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
	// .env опционален: в контейнерах конфигурация приходит из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Mentor Bridge Hub API",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
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

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var matchCache query.MatchCache
	var matchInvalidator command.MatchCacheInvalidator

	if !cfg.Redis.Disabled && cfg.Redis.URL != "" {
		log.Info("connecting to Redis...")
		redisCache, err = redis.NewCacheFromURL(cfg.Redis.URL)
		if err != nil {
			log.Warn("failed to connect to Redis, match caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			rmc := redis.NewMatchCache(redisCache, cfg.Redis.MatchCacheTTL)
			matchCache = rmc
			matchInvalidator = rmc
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	studentRepo := postgres.NewStudentProfileRepository(dbConn)
	mentorRepo := postgres.NewMentorProfileRepository(dbConn)
	availabilityRepo := postgres.NewAvailabilityRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn)
	noteRepo := postgres.NewSessionNoteRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS И БРОКЕРА УВЕДОМЛЕНИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	var natsNotifier *notifier.Notifier
	if !cfg.NATS.Disabled && cfg.NATS.URL != "" {
		log.Info("connecting to NATS...", "url", cfg.NATS.URL)
		notifierConfig := notifier.DefaultConfig()
		notifierConfig.URL = cfg.NATS.URL
		notifierConfig.SubjectPrefix = cfg.NATS.SubjectPrefix
		notifierConfig.FailureThreshold = cfg.NATS.CircuitBreakerThreshold
		notifierConfig.BreakerTimeout = cfg.NATS.CircuitBreakerTimeout
		notifierConfig.Logger = log

		natsNotifier, err = notifier.New(notifierConfig)
		if err != nil {
			// Доставка уведомлений best-effort: сервис работает и без брокера.
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
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	weights, err := matching.Weights{
		Goals:           cfg.Matching.GoalsWeight,
		Communication:   cfg.Matching.CommunicationWeight,
		Availability:    cfg.Matching.AvailabilityWeight,
		Style:           cfg.Matching.StyleWeight,
		Neurodivergence: cfg.Matching.NeurodivergenceWeight,
	}.Normalized()
	if err != nil {
		log.Warn("configured matching weights are unusable, using defaults", "error", err)
		weights = matching.DefaultWeights()
	}

	findMatchesQuery := query.NewFindMatchesHandler(mentorRepo, matchCache, weights)
	slotsQuery := query.NewGetAvailableSlotsHandler(availabilityRepo, sessionRepo)
	listSessionsQuery := query.NewListSessionsHandler(sessionRepo)
	sessionNotesQuery := query.NewGetSessionNotesHandler(sessionRepo, noteRepo)

	bookSessionCmd := command.NewBookSessionHandler(studentRepo, mentorRepo, availabilityRepo, sessionRepo, eventBus)
	transitionCmd := command.NewTransitionSessionHandler(sessionRepo, eventBus)
	saveAvailabilityCmd := command.NewSaveAvailabilityHandler(availabilityRepo, eventBus, matchInvalidator)
	addNoteCmd := command.NewAddSessionNoteHandler(sessionRepo, noteRepo)
	registerProfileCmd := command.NewRegisterProfileHandler(studentRepo, mentorRepo, matchInvalidator)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if natsNotifier != nil {
		healthChecker.AddCheck("broker", handlers.NewBrokerCheck(natsNotifier))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Addr = cfg.HTTP.Addr
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.APIKeyHash = cfg.HTTP.APIKeyHash

	apiLogger := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	httpDeps := httpserver.Dependencies{
		FindMatchesHandler:       findMatchesQuery,
		GetAvailableSlotsHandler: slotsQuery,
		ListSessionsHandler:      listSessionsQuery,
		GetSessionNotesHandler:   sessionNotesQuery,
		BookSessionHandler:       bookSessionCmd,
		TransitionSessionHandler: transitionCmd,
		SaveAvailabilityHandler:  saveAvailabilityCmd,
		AddSessionNoteHandler:    addNoteCmd,
		RegisterProfileHandler:   registerProfileCmd,
		Logger:                   apiLogger,
		HealthChecker:            healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("Mentor Bridge Hub API is running", "address", httpServer.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.HTTP.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
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
