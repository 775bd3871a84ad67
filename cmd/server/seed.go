package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	authusecase "kanbanApi/internal/modules/auth/application/usecase"
	boarddomain "kanbanApi/internal/modules/boards/domain"
)

func seedAction(ctx context.Context, c *cli.Command) error {
	cfg, logFile, err := boot()
	if err != nil {
		return err
	}
	defer logFile.Close()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if path := c.String("users"); path != "" {
		n, err := a.seedUsers(ctx, path)
		if err != nil {
			return err
		}
		slog.Info("users seeded", slog.String("file", path), slog.Int("count", n))
	}
	if path := c.String("boards"); path != "" {
		n, err := a.seedBoards(ctx, path)
		if err != nil {
			return err
		}
		slog.Info("boards seeded", slog.String("file", path), slog.Int("count", n))
	}
	return nil
}

// seedUsers signs every entry up so passwords are stored hashed.
// Entries whose email already exists are skipped.
func (a *app) seedUsers(ctx context.Context, path string) (int, error) {
	var reqs []authusecase.SignupRequest
	if err := readJSON(path, &reqs); err != nil {
		return 0, err
	}
	count := 0
	for _, req := range reqs {
		if _, err := a.auth.Signup(ctx, req); err != nil {
			slog.Warn("seed user skipped", slog.String("email", req.Email), slog.Any("error", err))
			continue
		}
		count++
	}
	return count, nil
}

// seedBoards inserts boards with fresh ids. Exported dumps carry the
// previous database ids, which are dropped before decoding.
func (a *app) seedBoards(ctx context.Context, path string) (int, error) {
	var raw []map[string]any
	if err := readJSON(path, &raw); err != nil {
		return 0, err
	}
	count := 0
	for i, doc := range raw {
		delete(doc, "_id")
		body, err := json.Marshal(doc)
		if err != nil {
			return count, fmt.Errorf("board %d: %w", i, err)
		}
		var board boarddomain.Board
		if err := json.Unmarshal(body, &board); err != nil {
			return count, fmt.Errorf("board %d: %w", i, err)
		}
		board.Normalize()
		if err := a.boardRepo.Insert(ctx, &board); err != nil {
			return count, fmt.Errorf("insert board %q: %w", board.Title, err)
		}
		count++
	}
	return count, nil
}

func readJSON(path string, v any) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
