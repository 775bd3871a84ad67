package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"kanbanApi/internal/config"
	"kanbanApi/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}

	cmd := &cli.Command{
		Name:   "kanban",
		Usage:  "Kanban board API with realtime socket updates",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP and socket server",
				Action: serveAction,
			},
			{
				Name:  "seed",
				Usage: "Import boards and users from JSON files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "boards",
						Value:   "data/boards.json",
						Sources: cli.EnvVars("SEED_BOARDS_FILE"),
						Usage:   "JSON array of boards",
					},
					&cli.StringFlag{
						Name:    "users",
						Value:   "data/users.json",
						Sources: cli.EnvVars("SEED_USERS_FILE"),
						Usage:   "JSON array of users with plaintext passwords",
					},
				},
				Action: seedAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// boot loads configuration and installs the process logger.
func boot() (*config.Config, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config load error: %w", err)
	}
	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("logging setup error: %w", err)
	}
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	return cfg, logFile, nil
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
