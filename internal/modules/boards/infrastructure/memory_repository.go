package infrastructure

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"kanbanApi/internal/modules/boards/application/port"
	"kanbanApi/internal/modules/boards/domain"
	"kanbanApi/internal/platform/mongodb"
	"kanbanApi/internal/shared/apperr"
)

// MemoryBoardRepository keeps boards as encoded documents so callers never
// share memory with stored state. Used when no MONGO_URI is configured.
type MemoryBoardRepository struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID][]byte
	order []primitive.ObjectID
}

func NewMemoryBoardRepository() *MemoryBoardRepository {
	return &MemoryBoardRepository{docs: make(map[primitive.ObjectID][]byte)}
}

func (r *MemoryBoardRepository) Query(_ context.Context, filter domain.BoardFilter) ([]domain.Board, error) {
	r.mu.RLock()
	boards := make([]domain.Board, 0, len(r.order))
	for _, id := range r.order {
		b, err := decodeBoard(r.docs[id])
		if err != nil {
			r.mu.RUnlock()
			return nil, err
		}
		boards = append(boards, *b)
	}
	r.mu.RUnlock()

	if txt := strings.ToLower(strings.TrimSpace(filter.Txt)); txt != "" {
		matched := boards[:0]
		for _, b := range boards {
			if strings.Contains(strings.ToLower(b.Title), txt) || strings.Contains(strings.ToLower(b.Description), txt) {
				matched = append(matched, b)
			}
		}
		boards = matched
	}

	if less := boardLess(filter.SortField); less != nil {
		sort.SliceStable(boards, func(i, j int) bool {
			if filter.SortDir < 0 {
				return less(boards[j], boards[i])
			}
			return less(boards[i], boards[j])
		})
	}

	if filter.PageIdx != nil && *filter.PageIdx >= 0 {
		start := *filter.PageIdx * domain.PageSize
		if start >= len(boards) {
			return []domain.Board{}, nil
		}
		end := min(start+domain.PageSize, len(boards))
		boards = boards[start:end]
	}
	return boards, nil
}

func boardLess(field string) func(a, b domain.Board) bool {
	switch field {
	case "title":
		return func(a, b domain.Board) bool { return a.Title < b.Title }
	case "label":
		return func(a, b domain.Board) bool { return a.Label < b.Label }
	case "isStarred":
		return func(a, b domain.Board) bool { return !a.IsStarred && b.IsStarred }
	case "_id":
		return func(a, b domain.Board) bool { return a.ID.Hex() < b.ID.Hex() }
	default:
		return nil
	}
}

func (r *MemoryBoardRepository) Get(_ context.Context, id string) (*domain.Board, error) {
	oid, err := mongodb.ObjectID("board", id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	raw, ok := r.docs[oid]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("board", id)
	}
	return decodeBoard(raw)
}

func (r *MemoryBoardRepository) Insert(_ context.Context, board *domain.Board) error {
	if board.ID.IsZero() {
		board.ID = primitive.NewObjectID()
	}
	raw, err := bson.Marshal(board)
	if err != nil {
		return apperr.Store("encode board", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[board.ID]; exists {
		return apperr.Validation("board %q already exists", board.ID.Hex())
	}
	r.docs[board.ID] = raw
	r.order = append(r.order, board.ID)
	board.Normalize()
	return nil
}

func (r *MemoryBoardRepository) Replace(_ context.Context, board *domain.Board) error {
	raw, err := bson.Marshal(board)
	if err != nil {
		return apperr.Store("encode board", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[board.ID]; !ok {
		return apperr.NotFound("board", board.ID.Hex())
	}
	r.docs[board.ID] = raw
	return nil
}

func (r *MemoryBoardRepository) Delete(_ context.Context, id string) error {
	oid, err := mongodb.ObjectID("board", id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[oid]; !ok {
		return apperr.NotFound("board", id)
	}
	delete(r.docs, oid)
	for i, existing := range r.order {
		if existing == oid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryBoardRepository) Activities(ctx context.Context, id string) ([]domain.Activity, error) {
	b, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Activities, nil
}

func decodeBoard(raw []byte) (*domain.Board, error) {
	var b domain.Board
	if err := bson.Unmarshal(raw, &b); err != nil {
		return nil, apperr.Store("decode board", err)
	}
	b.Normalize()
	return &b, nil
}

var _ port.BoardRepository = (*MemoryBoardRepository)(nil)
