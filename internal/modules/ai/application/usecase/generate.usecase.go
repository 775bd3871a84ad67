package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"kanbanApi/internal/modules/ai/application/port"
	"kanbanApi/internal/modules/ai/domain"
	boarddomain "kanbanApi/internal/modules/boards/domain"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/logging"
)

var groupPalette = []string{"#579bfc", "#a25ddc", "#00c875", "#fdab3d", "#e2445c"}

type GenerateBoardUseCase struct {
	generator port.BoardGenerator
}

func NewGenerateBoardUseCase(generator port.BoardGenerator) *GenerateBoardUseCase {
	return &GenerateBoardUseCase{generator: generator}
}

// Execute asks the generator for a board and shapes the answer like the
// starter template. The board is not stored.
func (uc *GenerateBoardUseCase) Execute(ctx context.Context, description string) (*boarddomain.Board, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	if uc.generator == nil {
		return nil, apperr.External("generate board", errors.New("board generator not configured"))
	}

	generated, err := uc.generator.Generate(ctx, description)
	if err != nil {
		logging.FromContext(ctx).Error("board generation failed", slog.Any("error", err))
		if errors.Is(err, apperr.ErrExternalService) {
			return nil, err
		}
		return nil, apperr.External("generate board", err)
	}
	board := toBoard(generated, description)
	return &board, nil
}

func toBoard(g *domain.GeneratedBoard, description string) boarddomain.Board {
	label := strings.TrimSpace(g.Label)
	if label == "" {
		label = "Item"
	}
	board := boarddomain.EmptyBoard(strings.TrimSpace(g.Title), label, nil)
	if d := strings.TrimSpace(g.Description); d != "" {
		board.Description = d
	} else {
		board.Description = description
	}

	board.Groups = make([]boarddomain.Group, 0, len(g.Groups))
	for i, gg := range g.Groups {
		color := strings.TrimSpace(gg.Color)
		if color == "" {
			color = groupPalette[i%len(groupPalette)]
		}
		tasks := make([]boarddomain.Task, 0, len(gg.Tasks))
		for _, gt := range gg.Tasks {
			task := boarddomain.EmptyTask(strings.TrimSpace(gt.Title))
			task.Description = strings.TrimSpace(gt.Description)
			if s := strings.TrimSpace(gt.Status); s != "" {
				task.Status = s
			}
			if p := strings.TrimSpace(gt.Priority); p != "" {
				task.Priority = p
			}
			tasks = append(tasks, task)
		}
		board.Groups = append(board.Groups, boarddomain.EmptyGroup(strings.TrimSpace(gg.Title), map[string]string{"backgroundColor": color}, tasks))
	}
	return board
}
