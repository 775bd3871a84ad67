package infrastructure

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kanbanApi/internal/modules/users/application/port"
	"kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/platform/mongodb"
	"kanbanApi/internal/shared/apperr"
)

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
	order []primitive.ObjectID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *MemoryUserRepository) Query(_ context.Context, filter domain.Filter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []domain.User{}
	for _, id := range r.order {
		u := clone(r.users[id])
		if !u.Matches(filter.Txt) {
			continue
		}
		u.Password = ""
		users = append(users, u)
	}
	return users, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[oid]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	out := clone(u)
	out.Password = ""
	return &out, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.users[id]; u.Email == email {
			out := clone(u)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (r *MemoryUserRepository) Insert(_ context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperr.Validation("email already exists")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Normalize()
	r.users[user.ID] = clone(*user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error) {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	u, ok := r.users[oid]
	if !ok {
		r.mu.Unlock()
		return nil, apperr.NotFound("user", id)
	}
	patch.Apply(&u)
	r.users[oid] = u
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[oid]; !ok {
		return apperr.NotFound("user", id)
	}
	delete(r.users, oid)
	for i, existing := range r.order {
		if existing == oid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryUserRepository) AddActivity(_ context.Context, id string, activity domain.Activity) error {
	oid, err := mongodb.ObjectID("user", id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[oid]
	if !ok {
		return apperr.NotFound("user", id)
	}
	u.Activities = append(clone(u).Activities, activity)
	r.users[oid] = u
	return nil
}

func clone(u domain.User) domain.User {
	u.Activities = append([]domain.Activity(nil), u.Activities...)
	return u
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
