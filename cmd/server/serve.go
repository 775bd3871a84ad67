package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

func serveAction(ctx context.Context, _ *cli.Command) error {
	cfg, logFile, err := boot()
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("app init failed", slog.Any("error", err))
		return err
	}
	defer a.close(context.Background())

	e, err := a.newServer(ctx)
	if err != nil {
		slog.Error("server init failed", slog.Any("error", err))
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		slog.Info("http server starting", slog.String("addr", addr), slog.Bool("production", cfg.Server.Production))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", slog.Any("error", err))
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", slog.Any("error", err))
	}
	return nil
}
