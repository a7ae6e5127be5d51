package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/notify-service/internal/api/http"
	"github.com/spec-kit/notify-service/internal/api/http/handlers"
	"github.com/spec-kit/notify-service/internal/auth"
	"github.com/spec-kit/notify-service/internal/config"
	"github.com/spec-kit/notify-service/internal/hub"
	"github.com/spec-kit/notify-service/internal/observability"
	"github.com/spec-kit/notify-service/internal/persistence"
	"github.com/spec-kit/notify-service/internal/registry"
	"github.com/spec-kit/notify-service/internal/repository"
	"github.com/spec-kit/notify-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
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

	metrics := observability.NewMetrics()

	tokenMgr, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, cfg.Auth.AccessTokenTTLMinutes)
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	authService := service.NewAuthService(userRepo, tokenMgr, cfg.Auth.BcryptCost, logger)
	authMiddleware := auth.NewAuthMiddleware(tokenMgr)
	loginLimiter := auth.NewRedisLoginLimiter(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger)

	deviceRegistry := registry.NewInMemoryDeviceRegistry()
	connectionHub := hub.NewHub(logger, metrics)
	realtimeHandler := hub.NewHandler(connectionHub, cfg.Hub.WriteTimeout(), logger)
	dispatcher := service.NewNotificationDispatcher(connectionHub, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, loginLimiter),
		Devices:        handlers.NewDevicesHandler(deviceRegistry),
		Notifications:  handlers.NewNotificationsHandler(dispatcher),
		Realtime:       realtimeHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	connectionHub.CloseAll()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
