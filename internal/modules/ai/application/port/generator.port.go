package port

import (
	"context"

	"kanbanApi/internal/modules/ai/domain"
)

// BoardGenerator turns a free-text description into a board structure.
type BoardGenerator interface {
	Generate(ctx context.Context, description string) (*domain.GeneratedBoard, error)
}
