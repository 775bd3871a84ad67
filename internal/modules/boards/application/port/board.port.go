package port

import (
	"context"

	"kanbanApi/internal/modules/boards/domain"
)

// BoardRepository persists boards as whole documents.
type BoardRepository interface {
	Query(ctx context.Context, filter domain.BoardFilter) ([]domain.Board, error)
	Get(ctx context.Context, id string) (*domain.Board, error)
	Insert(ctx context.Context, board *domain.Board) error
	Replace(ctx context.Context, board *domain.Board) error
	Delete(ctx context.Context, id string) error
	Activities(ctx context.Context, id string) ([]domain.Activity, error)
}

// MemberDirectory lists the users that every new board starts with.
type MemberDirectory interface {
	Members(ctx context.Context) ([]domain.MiniUser, error)
}
