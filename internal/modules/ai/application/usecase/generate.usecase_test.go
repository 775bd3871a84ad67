package usecase

import (
	"context"
	"errors"
	"testing"

	"kanbanApi/internal/modules/ai/domain"
	"kanbanApi/internal/shared/apperr"
)

type stubGenerator struct {
	board *domain.GeneratedBoard
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, string) (*domain.GeneratedBoard, error) {
	s.calls++
	return s.board, s.err
}

func TestExecuteShapesBoardLikeTemplate(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{board: &domain.GeneratedBoard{
		Title: "Wedding",
		Groups: []domain.GeneratedGroup{
			{Title: "Venue", Tasks: []domain.GeneratedTask{{Title: "Visit halls", Priority: "High"}}},
			{Title: "Guests", Color: "#000000", Tasks: []domain.GeneratedTask{{Title: "Invites"}}},
		},
	}}
	board, err := NewGenerateBoardUseCase(gen).Execute(context.Background(), " plan my wedding ")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if board.Title != "Wedding" || board.Description != "plan my wedding" || len(board.CmpsOrder) == 0 {
		t.Fatalf("unexpected board header %+v", board)
	}
	if len(board.Groups) != 2 || board.Groups[0].ID == "" {
		t.Fatalf("unexpected groups %+v", board.Groups)
	}
	if got := board.Groups[0].Style["backgroundColor"]; got != "#579bfc" {
		t.Fatalf("expected palette color, got %q", got)
	}
	if got := board.Groups[1].Style["backgroundColor"]; got != "#000000" {
		t.Fatalf("expected generated color, got %q", got)
	}
	task := board.Groups[0].Tasks[0]
	if task.ID == "" || task.Status != "Not Started" || task.Priority != "High" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestExecuteErrors(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{}
	if _, err := NewGenerateBoardUseCase(gen).Execute(context.Background(), "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not be called without a description")
	}

	gen.err = errors.New("boom")
	if _, err := NewGenerateBoardUseCase(gen).Execute(context.Background(), "x"); !errors.Is(err, apperr.ErrExternalService) {
		t.Fatalf("expected external error, got %v", err)
	}
	if _, err := NewGenerateBoardUseCase(nil).Execute(context.Background(), "x"); !errors.Is(err, apperr.ErrExternalService) {
		t.Fatalf("expected external error without generator, got %v", err)
	}
}
