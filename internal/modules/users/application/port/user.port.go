package port

import (
	"context"

	"kanbanApi/internal/modules/users/domain"
)

type UserRepository interface {
	Query(ctx context.Context, filter domain.Filter) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail returns the stored user including the password hash.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	AddActivity(ctx context.Context, id string, activity domain.Activity) error
}
