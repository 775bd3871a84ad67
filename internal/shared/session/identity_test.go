package session

import (
	"context"
	"sync"
	"testing"
)

func TestWithIdentityRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithIdentity(context.Background(), &Identity{ID: "u1", Email: "a@a.com", Fullname: "A"})
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected identity")
	}
	if got.ID != "u1" || got.Fullname != "A" {
		t.Fatalf("unexpected identity %#v", got)
	}
	if UserID(ctx) != "u1" {
		t.Fatalf("unexpected user id %q", UserID(ctx))
	}
}

func TestAnonymousContext(t *testing.T) {
	t.Parallel()

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no identity")
	}
	ctx := WithIdentity(context.Background(), &Identity{ID: "  "})
	if _, ok := FromContext(ctx); ok {
		t.Fatal("blank identity should not be stored")
	}
	if UserID(nil) != "" {
		t.Fatal("expected empty user id for nil context")
	}
}

func TestIdentityIsIsolatedPerContext(t *testing.T) {
	t.Parallel()

	base := context.Background()
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			ctx := WithIdentity(base, &Identity{ID: userID})
			for i := 0; i < 100; i++ {
				if got := UserID(ctx); got != userID {
					t.Errorf("expected %s, got %s", userID, got)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	original := &Identity{ID: "x"}
	ctx := WithIdentity(base, original)
	original.ID = "mutated"
	if UserID(ctx) != "x" {
		t.Fatal("stored identity must not alias the caller's value")
	}
}
