package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/cardshare/internal/auth"
	"github.com/octobees/cardshare/internal/config"
	"github.com/octobees/cardshare/internal/extract"
	"github.com/octobees/cardshare/internal/handler"
	"github.com/octobees/cardshare/internal/logging"
	"github.com/octobees/cardshare/internal/metrics"
	middlewarepkg "github.com/octobees/cardshare/internal/middleware"
	"github.com/octobees/cardshare/internal/notify"
	"github.com/octobees/cardshare/internal/repository"
	"github.com/octobees/cardshare/internal/router"
	"github.com/octobees/cardshare/internal/service"
	"github.com/octobees/cardshare/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, closeStore, err := storage.Open(openCtx, cfg.Storage, logger)
	cancel()
	if err != nil {
		return err
	}
	defer closeStore()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.OwnerPasswordHash == "" {
		logger.Warn("OWNER_PASSWORD_HASH is empty, /auth/login is disabled")
	}

	profileRepo := repository.NewProfileRepository(store, cfg.Storage.Slot, logger, m)
	profiles := service.NewProfileService(profileRepo, logger, m)
	authService := service.NewAuthService(cfg.OwnerEmail, cfg.OwnerPasswordHash, jwtManager)

	scanner, err := extract.NewFromConfig(ctx, cfg.Vision, extract.WithLogger(logger), extract.WithMetrics(m))
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := newNotifier(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger, m))
	e.Use(echoMiddleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))

	router.Register(e, cfg, jwtManager, m, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, jwtManager.TTL()),
		Profile: handler.NewProfileHandler(profiles, cfg.PhoneRegion, logger),
		Scan:    handler.NewScanHandler(scanner),
		Notify:  handler.NewNotifyHandler(notifier, m, logger),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api listening", "port", cfg.Port, "storage", cfg.Storage.Driver)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := profiles.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("profile watch stopped", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func newNotifier(cfg config.KafkaConfig, logger *slog.Logger) (notify.Notifier, func(), error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, contact notifications are only logged")
		return notify.NewLogNotifier(logger), func() {}, nil
	}
	client, err := notify.NewKafkaClient(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, func() {}, err
	}
	return notify.NewKafkaNotifier(client, cfg.Topic, logger), client.Close, nil
}

// bodyLimit leaves headroom for the base64 expansion of an upload.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		return "8M"
	}
	kb := (maxUpload*4/3)/1024 + 64
	return strconv.FormatInt(kb, 10) + "K"
}
