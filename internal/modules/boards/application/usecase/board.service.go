package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kanbanApi/internal/modules/boards/application/port"
	"kanbanApi/internal/modules/boards/domain"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/logging"
	"kanbanApi/internal/shared/session"
)

const (
	defaultBoardTitle = "New Board"
	defaultBoardLabel = "Item"
)

// BoardService owns every board, group, task and comment mutation. Nested
// edits rewrite the whole board document; concurrent edits of one board are
// last-writer-wins.
type BoardService struct {
	repo    port.BoardRepository
	members port.MemberDirectory
	now     func() time.Time
}

func NewBoardService(repo port.BoardRepository, members port.MemberDirectory) *BoardService {
	return &BoardService{repo: repo, members: members, now: time.Now}
}

// change names the activity a mutation produces.
type change struct {
	action   domain.Action
	entity   domain.EntityType
	entityID string
}

func (s *BoardService) Query(ctx context.Context, filter domain.BoardFilter) ([]domain.Board, error) {
	boards, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, "cannot query boards", err)
	}
	return boards, nil
}

func (s *BoardService) GetByID(ctx context.Context, boardID string) (*domain.Board, error) {
	board, err := s.repo.Get(ctx, boardID)
	if err != nil {
		return nil, s.fail(ctx, "cannot get board", err, slog.String("boardId", boardID))
	}
	return board, nil
}

// Add creates a board from the starter template, overlays the draft and
// makes every registered user a member.
func (s *BoardService) Add(ctx context.Context, draft domain.BoardPatch) (*domain.Board, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(draft.Title.Value)
	if title == "" {
		title = defaultBoardTitle
	}
	label := strings.TrimSpace(draft.Label.Value)
	if label == "" {
		label = defaultBoardLabel
	}
	creator := miniUser(actor)
	board := domain.EmptyBoard(title, label, &creator)
	if s.members != nil {
		members, err := s.members.Members(ctx)
		if err != nil {
			return nil, s.fail(ctx, "cannot list board members", err)
		}
		board.Members = members
	}
	draft.Apply(&board)

	if err := s.repo.Insert(ctx, &board); err != nil {
		return nil, s.fail(ctx, "cannot add board", err)
	}
	if err := s.record(ctx, &board, actor, change{domain.ActionCreate, domain.EntityBoard, board.ID.Hex()}); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *BoardService) Update(ctx context.Context, boardID string, patch domain.BoardPatch) (*domain.Board, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "update board", boardID, func(b *domain.Board) (change, error) {
		patch.Apply(b)
		return change{domain.ActionUpdate, domain.EntityBoard, boardID}, nil
	})
}

func (s *BoardService) Remove(ctx context.Context, boardID string) error {
	if _, err := actorFrom(ctx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, boardID); err != nil {
		return s.fail(ctx, "cannot remove board", err, slog.String("boardId", boardID))
	}
	return nil
}

func (s *BoardService) AddGroup(ctx context.Context, boardID string, patch domain.GroupPatch) (*domain.Group, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var added *domain.Group
	_, err := s.mutate(ctx, "add group", boardID, func(b *domain.Board) (change, error) {
		group := domain.EmptyGroup(patch.Title.Value, nil, nil)
		patch.Apply(b, &group)
		b.Groups = append(b.Groups, group)
		added = &b.Groups[len(b.Groups)-1]
		return change{domain.ActionCreate, domain.EntityGroup, group.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *BoardService) UpdateGroup(ctx context.Context, boardID, groupID string, patch domain.GroupPatch) (*domain.Group, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Group
	_, err := s.mutate(ctx, "update group", boardID, func(b *domain.Board) (change, error) {
		group, err := b.Group(groupID)
		if err != nil {
			return change{}, err
		}
		patch.Apply(b, group)
		updated = group
		return change{domain.ActionUpdate, domain.EntityGroup, groupID}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BoardService) RemoveGroup(ctx context.Context, boardID, groupID string) (*domain.Group, error) {
	var removed domain.Group
	_, err := s.mutate(ctx, "remove group", boardID, func(b *domain.Board) (change, error) {
		var err error
		removed, err = b.RemoveGroup(groupID)
		return change{domain.ActionDelete, domain.EntityGroup, groupID}, err
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func (s *BoardService) AddTask(ctx context.Context, boardID, groupID string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var added *domain.Task
	_, err := s.mutate(ctx, "add task", boardID, func(b *domain.Board) (change, error) {
		group, err := b.Group(groupID)
		if err != nil {
			return change{}, err
		}
		task := domain.EmptyTask(patch.Title.Value)
		patch.Apply(&task)
		group.Tasks = append(group.Tasks, task)
		added = &group.Tasks[len(group.Tasks)-1]
		return change{domain.ActionCreate, domain.EntityTask, task.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *BoardService) UpdateTask(ctx context.Context, boardID, groupID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Task
	_, err := s.mutate(ctx, "update task", boardID, func(b *domain.Board) (change, error) {
		group, err := b.Group(groupID)
		if err != nil {
			return change{}, err
		}
		task, err := group.Task(taskID)
		if err != nil {
			return change{}, err
		}
		patch.Apply(task)
		updated = task
		return change{domain.ActionUpdate, domain.EntityTask, taskID}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BoardService) RemoveTask(ctx context.Context, boardID, groupID, taskID string) (*domain.Task, error) {
	var removed domain.Task
	_, err := s.mutate(ctx, "remove task", boardID, func(b *domain.Board) (change, error) {
		group, err := b.Group(groupID)
		if err != nil {
			return change{}, err
		}
		removed, err = group.RemoveTask(taskID)
		return change{domain.ActionDelete, domain.EntityTask, taskID}, err
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func (s *BoardService) Comments(ctx context.Context, boardID string, target domain.CommentTarget) ([]domain.Comment, error) {
	board, err := s.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	list, err := board.CommentList(target)
	if err != nil {
		return nil, err
	}
	if *list == nil {
		return []domain.Comment{}, nil
	}
	return *list, nil
}

func (s *BoardService) AddComment(ctx context.Context, boardID string, target domain.CommentTarget, patch domain.CommentPatch) (*domain.Comment, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	var added *domain.Comment
	_, err = s.mutate(ctx, "add comment", boardID, func(b *domain.Board) (change, error) {
		list, err := b.CommentList(target)
		if err != nil {
			return change{}, err
		}
		comment := domain.Comment{
			ID:        domain.NewID(),
			CreatedAt: s.now().UnixMilli(),
			ByMember:  miniUser(actor),
		}
		patch.Apply(&comment)
		*list = append(*list, comment)
		added = &(*list)[len(*list)-1]
		return change{domain.ActionCreate, domain.EntityComment, comment.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateComment edits a comment; only its author may do so.
func (s *BoardService) UpdateComment(ctx context.Context, boardID string, target domain.CommentTarget, commentID string, patch domain.CommentPatch) (*domain.Comment, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	var updated *domain.Comment
	_, err = s.mutate(ctx, "update comment", boardID, func(b *domain.Board) (change, error) {
		comment, err := b.Comment(target, commentID)
		if err != nil {
			return change{}, err
		}
		if comment.ByMember.ID != actor.ID {
			return change{}, apperr.Authorization("only the author can edit comment %q", commentID)
		}
		patch.Apply(comment)
		updated = comment
		return change{domain.ActionUpdate, domain.EntityComment, commentID}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes a comment; only its author may do so.
func (s *BoardService) DeleteComment(ctx context.Context, boardID string, target domain.CommentTarget, commentID string) (*domain.Comment, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	var removed domain.Comment
	_, err = s.mutate(ctx, "delete comment", boardID, func(b *domain.Board) (change, error) {
		comment, err := b.Comment(target, commentID)
		if err != nil {
			return change{}, err
		}
		if comment.ByMember.ID != actor.ID {
			return change{}, apperr.Authorization("only the author can delete comment %q", commentID)
		}
		removed, err = b.RemoveComment(target, commentID)
		return change{domain.ActionDelete, domain.EntityComment, commentID}, err
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// LogActivity appends an activity record on behalf of the caller without
// any other change to the board.
func (s *BoardService) LogActivity(ctx context.Context, boardID string, action domain.Action, entity domain.EntityType, entityID string) error {
	if err := domain.ValidateActivity(action, entity, entityID); err != nil {
		return err
	}
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	board, err := s.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	return s.record(ctx, board, actor, change{action, entity, entityID})
}

func (s *BoardService) Activities(ctx context.Context, boardID string) ([]domain.Activity, error) {
	activities, err := s.repo.Activities(ctx, boardID)
	if err != nil {
		return nil, s.fail(ctx, "cannot get board activities", err, slog.String("boardId", boardID))
	}
	return activities, nil
}

// mutate loads the board, applies fn, persists the whole document, then
// appends the activity and persists again.
func (s *BoardService) mutate(ctx context.Context, op, boardID string, fn func(*domain.Board) (change, error)) (*domain.Board, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	board, err := s.repo.Get(ctx, boardID)
	if err != nil {
		return nil, s.fail(ctx, "cannot "+op, err, slog.String("boardId", boardID))
	}
	ch, err := fn(board)
	if err != nil {
		return nil, s.fail(ctx, "cannot "+op, err, slog.String("boardId", boardID))
	}
	if err := s.repo.Replace(ctx, board); err != nil {
		return nil, s.fail(ctx, "cannot "+op, err, slog.String("boardId", boardID))
	}
	if err := s.record(ctx, board, actor, ch); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *BoardService) record(ctx context.Context, board *domain.Board, actor *session.Identity, ch change) error {
	board.RecordActivity(domain.NewActivity(actor.ID, ch.action, ch.entity, ch.entityID, s.now()))
	if err := s.repo.Replace(ctx, board); err != nil {
		return s.fail(ctx, "cannot log activity", err,
			slog.String("boardId", board.ID.Hex()),
			slog.String("entity", string(ch.entity)),
			slog.String("entityId", ch.entityID),
		)
	}
	return nil
}

func (s *BoardService) fail(ctx context.Context, msg string, err error, attrs ...any) error {
	attrs = append(attrs, slog.Any("error", err))
	logger := logging.FromContext(ctx)
	if errors.Is(err, apperr.ErrStore) {
		logger.Error(msg, attrs...)
	} else {
		logger.Warn(msg, attrs...)
	}
	return err
}

func actorFrom(ctx context.Context) (*session.Identity, error) {
	id, ok := session.FromContext(ctx)
	if !ok {
		return nil, apperr.Authentication("login required")
	}
	return id, nil
}

func miniUser(id *session.Identity) domain.MiniUser {
	return domain.MiniUser{ID: id.ID, Fullname: id.Fullname, ImgURL: id.ImgURL}
}
