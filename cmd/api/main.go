package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/jira-digest/internal/api/http"
	"github.com/spec-kit/jira-digest/internal/api/http/handlers"
	"github.com/spec-kit/jira-digest/internal/auth"
	"github.com/spec-kit/jira-digest/internal/config"
	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/notify"
	"github.com/spec-kit/jira-digest/internal/observability"
	"github.com/spec-kit/jira-digest/internal/persistence"
	"github.com/spec-kit/jira-digest/internal/repository"
	"github.com/spec-kit/jira-digest/internal/secret"
	"github.com/spec-kit/jira-digest/internal/service"
	"github.com/spec-kit/jira-digest/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	publishers := notify.Configured(cfg.Notification, redis.Client())
	notifications := worker.NewNotificationWorker(service.NewNotificationService(dispatcher, logger, publishers...), 64, logger)
	notifications.Subscribe(dispatcher)
	notificationsDone := make(chan struct{})
	go func() {
		defer close(notificationsDone)
		_ = notifications.Start(ctx)
	}()

	connDeps := service.ConnectionDependencies{
		Verify:     service.JiraVerifier(*cfg, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	if pool := pg.Pool(); pool != nil {
		connDeps.Repo = repository.NewConnectionRepository(pool)
	}
	if cfg.Secret.KeyHex != "" {
		sealer, err := secret.NewSealer(cfg.Secret.KeyHex)
		if err != nil {
			logger.Fatal("invalid SECRET_KEY", zap.Error(err))
		}
		connDeps.Sealer = sealer
	}
	connectionService := service.NewConnectionService(connDeps)

	digestService := service.NewDigestService(*cfg, service.DigestDependencies{
		Connections: connectionService,
		Gateways:    service.JiraGateways(*cfg, redis.Client(), logger),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	schedulerDone := make(chan struct{})
	if cfg.Schedule.File == "" {
		close(schedulerDone)
	} else {
		schedules, err := worker.LoadSchedules(cfg.Schedule.File)
		if err != nil {
			logger.Fatal("failed to load schedules", zap.Error(err))
		}
		scheduler := worker.NewScheduler(digestService, cfg.App.RequestTimeout(), logger)
		if err := scheduler.Register(schedules); err != nil {
			logger.Fatal("failed to register schedules", zap.Error(err))
		}
		go func() {
			defer close(schedulerDone)
			_ = scheduler.Start(schedulerCtx)
		}()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Digests:        handlers.NewDigestHandler(digestService),
		Connections:    handlers.NewConnectionHandler(connectionService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	// scheduled builds publish digest_built, so they finish before the
	// notification worker drains
	stopScheduler()
	<-schedulerDone
	cancel()
	<-notificationsDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
