package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/harkirat155/tictac-realtime/internal/config"
	"github.com/harkirat155/tictac-realtime/internal/feedback"
	"github.com/harkirat155/tictac-realtime/internal/httpapi"
	"github.com/harkirat155/tictac-realtime/internal/hub"
	"github.com/harkirat155/tictac-realtime/internal/lobby"
	"github.com/harkirat155/tictac-realtime/internal/registry"
	"github.com/harkirat155/tictac-realtime/internal/session"
	"github.com/harkirat155/tictac-realtime/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	logger := setupLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	reg := registry.New(cfg.RoomLimit, cfg.RoomTTL, logger.Named("registry"))
	lob := lobby.New()
	h := hub.New(logger.Named("hub"))
	binder := hub.NewBinder()
	svc := session.NewService(reg, lob, h, binder, logger.Named("session"))

	store := feedback.NewStore(feedback.DefaultMaxEntries)
	var sink feedback.Sink
	if cfg.FeedbackDSN != "" {
		ps, err := feedback.OpenPostgresSink(cfg.FeedbackDSN)
		if err != nil {
			// The sink is best-effort; run without it rather than refusing
			// to start.
			logger.Warn("feedback sink unavailable", zap.Error(err))
		} else {
			sink = ps
		}
	}

	handler := httpapi.SetupRoutes(
		ws.Handler(svc, h, logger.Named("ws")),
		store, sink, logger.Named("feedback"),
	)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
		// No read/write timeouts: websocket connections are long-lived.
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg.Run(ctx, cfg.GCInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("listening",
			zap.Int("port", cfg.Port),
			zap.Int("room_limit", cfg.RoomLimit),
			zap.Duration("room_ttl", cfg.RoomTTL))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func setupLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
