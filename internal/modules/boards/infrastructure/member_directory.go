package infrastructure

import (
	"context"

	"kanbanApi/internal/modules/boards/application/port"
	"kanbanApi/internal/modules/boards/domain"
	userdomain "kanbanApi/internal/modules/users/domain"
)

// UserLister is the slice of the user service boards depend on.
type UserLister interface {
	Query(ctx context.Context, filter userdomain.Filter) ([]userdomain.User, error)
}

// UserDirectory projects registered users into board members.
type UserDirectory struct {
	users UserLister
}

func NewUserDirectory(users UserLister) *UserDirectory {
	return &UserDirectory{users: users}
}

func (d *UserDirectory) Members(ctx context.Context) ([]domain.MiniUser, error) {
	users, err := d.users.Query(ctx, userdomain.Filter{})
	if err != nil {
		return nil, err
	}
	members := make([]domain.MiniUser, 0, len(users))
	for _, u := range users {
		members = append(members, domain.MiniUser{ID: u.ID.Hex(), Fullname: u.Fullname, ImgURL: u.ImgURL})
	}
	return members, nil
}

var _ port.MemberDirectory = (*UserDirectory)(nil)
