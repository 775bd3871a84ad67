package usecase

import (
	"context"
	"errors"
	"testing"

	"kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/modules/users/infrastructure"
	"kanbanApi/internal/shared/apperr"
)

func seeded(t *testing.T) (*UserService, *domain.User) {
	t.Helper()
	svc := NewUserService(infrastructure.NewMemoryUserRepository())
	user, err := svc.Add(context.Background(), domain.User{Email: " Ada@Example.com ", Password: "hash", Fullname: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if _, err := svc.Add(context.Background(), domain.User{Email: "bob@example.com", Password: "hash", Fullname: "Bob"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return svc, user
}

func TestAddNormalizesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	svc, user := seeded(t)
	if user.Email != "ada@example.com" || user.ID.IsZero() {
		t.Fatalf("unexpected user %+v", user)
	}
	_, err := svc.Add(context.Background(), domain.User{Email: "ADA@example.com", Password: "x", Fullname: "Other"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQueryHidesPasswords(t *testing.T) {
	t.Parallel()

	svc, _ := seeded(t)
	cases := map[string]int{"": 2, "ada": 1, "EXAMPLE": 2, "lovelace": 1, "zed": 0}
	for txt, want := range cases {
		users, err := svc.Query(context.Background(), domain.Filter{Txt: txt})
		if err != nil {
			t.Fatalf("query %q: %v", txt, err)
		}
		if len(users) != want {
			t.Fatalf("query %q: expected %d users, got %d", txt, want, len(users))
		}
		for _, u := range users {
			if u.Password != "" {
				t.Fatalf("password leaked for %s", u.Email)
			}
		}
	}

	stored, err := svc.GetByEmail(context.Background(), "ada@example.com")
	if err != nil || stored.Password != "hash" {
		t.Fatalf("GetByEmail must keep the hash: %+v, %v", stored, err)
	}
}

func TestUpdateOnlyTouchesAllowedFields(t *testing.T) {
	t.Parallel()

	svc, user := seeded(t)
	name, score := "Countess", 7
	updated, err := svc.Update(context.Background(), user.ID.Hex(), domain.Patch{Fullname: &name, Score: &score})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Fullname != "Countess" || updated.Score != 7 || updated.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v", updated)
	}

	empty := " "
	if _, err := svc.Update(context.Background(), user.ID.Hex(), domain.Patch{Fullname: &empty}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveAndActivity(t *testing.T) {
	t.Parallel()

	svc, user := seeded(t)
	ctx := context.Background()
	if err := svc.AddActivity(ctx, user.ID.Hex(), "login", ""); err != nil {
		t.Fatalf("add activity: %v", err)
	}
	got, _ := svc.GetByID(ctx, user.ID.Hex())
	if len(got.Activities) != 1 || got.Activities[0].Action != "login" {
		t.Fatalf("unexpected activities %+v", got.Activities)
	}

	if err := svc.Remove(ctx, user.ID.Hex()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.GetByID(ctx, user.ID.Hex()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Remove(ctx, "bad-id"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}
