package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/partyroom-backend/internal/config"
	"github.com/DoyleJ11/partyroom-backend/internal/httpapi"
	"github.com/DoyleJ11/partyroom-backend/internal/hub"
	"github.com/DoyleJ11/partyroom-backend/internal/sentences"
	"github.com/DoyleJ11/partyroom-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := sentences.Default()
	if err != nil {
		return err
	}

	h := hub.NewHub(context.WithoutCancel(ctx), hub.Options{
		Config: hub.Config{
			Voting:          hub.KindConfig(cfg.Voting),
			Race:            hub.KindConfig(cfg.Race),
			InactiveTimeout: cfg.InactiveTimeout,
			SweepInterval:   cfg.SweepInterval,
			RoomCallTimeout: cfg.RoomCallTimeout,
		},
		Sentences: src,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(h, httpapi.Options{
			CORSOrigins: cfg.CORSOrigins,
			WS: ws.Options{
				OutboxSize:   cfg.WS.OutboxSize,
				WriteTimeout: cfg.WS.WriteTimeout,
				PingInterval: cfg.WS.PingInterval,
			},
			Logger: logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Rooms push room_closed before the listener stops taking frames.
		if err := h.Shutdown(sctx); err != nil {
			logger.Warn("hub shutdown", zap.Error(err))
		}
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development() {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}
