package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/crm-service/internal/api/http"
	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/persistence"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/service"
	"github.com/spec-kit/crm-service/internal/session"
	"github.com/spec-kit/crm-service/internal/store"
	"github.com/spec-kit/crm-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var backend store.CollectionStore
	if pool := pg.PoolHandle(); pool != nil {
		backend = store.NewPostgresStore(pool)
	} else {
		logger.Warn("running on in-memory record store; data will not survive restarts")
		backend = store.NewMemoryStore()
	}
	repos := repository.New(backend)

	var slot session.Slot
	var resets service.ResetTokenStore
	if cfg.Redis.Addr != "" && redis.Ping(ctx) == nil {
		sessionTTL := time.Duration(cfg.Auth.AccessTokenTTLMinutes) * time.Minute
		slot = session.NewRedisSlot(redis.Client, sessionTTL)
		resets = service.NewRedisResetTokenStore(redis.Client)
	} else {
		slot = session.NewMemorySlot()
		resets = service.NewMemoryResetTokenStore()
	}

	dispatcher := events.NewInMemoryDispatcher()

	auditService := service.NewAuditService(repos, slot, logger)
	identityService := service.NewIdentityService(*cfg, service.IdentityDependencies{
		Repos:      repos,
		Slot:       slot,
		Audit:      auditService,
		Resets:     resets,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	clientService := service.NewClientService(repos, auditService)
	projectService := service.NewProjectService(service.ProjectDependencies{
		Repos:      repos,
		Identity:   identityService,
		Audit:      auditService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	developerService := service.NewDeveloperService(repos, identityService, auditService, logger)
	workService := service.NewWorkService(repos, auditService, dispatcher)
	messageService := service.NewMessageService(repos)
	viewService := service.NewViewService(repos)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	if err := identityService.Bootstrap(ctx); err != nil {
		logger.Fatal("failed to bootstrap owner account", zap.Error(err))
	}

	worker.StartNotificationWorker(notificationService)

	if cfg.Metrics.Enabled {
		observability.ServeMetrics(cfg.Metrics.Addr, logger)
	}

	authMiddleware := auth.NewMiddleware(identityService.TokenManager(), slot)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(identityService),
		Users:          handlers.NewUsersHandler(identityService),
		Clients:        handlers.NewClientsHandler(clientService),
		Projects:       handlers.NewProjectsHandler(projectService, viewService),
		Developers:     handlers.NewDevelopersHandler(developerService, viewService),
		Work:           handlers.NewWorkHandler(workService, viewService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Audit:          handlers.NewAuditHandler(auditService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
