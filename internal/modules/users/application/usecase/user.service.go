package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kanbanApi/internal/modules/users/application/port"
	"kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/logging"
)

type UserService struct {
	repo port.UserRepository
	now  func() time.Time
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) Query(ctx context.Context, filter domain.Filter) ([]domain.User, error) {
	users, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, "cannot find users", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "cannot find user", err, slog.String("userId", id))
	}
	return user, nil
}

// GetByEmail returns the stored account including its password hash. Only
// the auth service should call it.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Add stores a new account. The password must already be hashed.
func (s *UserService) Add(ctx context.Context, user domain.User) (*domain.User, error) {
	user.ID = primitive.NilObjectID
	if err := s.repo.Insert(ctx, &user); err != nil {
		return nil, s.fail(ctx, "cannot add user", err)
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail(ctx, "cannot update user", err, slog.String("userId", id))
	}
	return user, nil
}

func (s *UserService) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, "cannot remove user", err, slog.String("userId", id))
	}
	return nil
}

func (s *UserService) AddActivity(ctx context.Context, id, action, description string) error {
	activity := domain.Activity{Action: action, Description: description, Timestamp: s.now().UTC()}
	if err := s.repo.AddActivity(ctx, id, activity); err != nil {
		return s.fail(ctx, "cannot add user activity", err, slog.String("userId", id))
	}
	return nil
}

func (s *UserService) fail(ctx context.Context, msg string, err error, attrs ...any) error {
	attrs = append(attrs, slog.Any("error", err))
	if errors.Is(err, apperr.ErrStore) {
		logging.FromContext(ctx).Error(msg, attrs...)
	} else {
		logging.FromContext(ctx).Warn(msg, attrs...)
	}
	return err
}
