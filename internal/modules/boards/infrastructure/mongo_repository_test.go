package infrastructure

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kanbanApi/internal/modules/boards/domain"
	"kanbanApi/internal/platform/mongodb"
	"kanbanApi/internal/shared/apperr"
)

// Runs against a live server only when MONGO_TEST_URI is set.
func newMongoRepo(t *testing.T) *MongoBoardRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, db, err := mongodb.Connect(ctx, uri, "kanban_test_"+primitive.NewObjectID().Hex(), 5*time.Second)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoBoardRepository(db)
}

func TestMongoBoardRepositoryRoundTrip(t *testing.T) {
	repo := newMongoRepo(t)
	ctx := context.Background()

	board := domain.EmptyBoard("Roadmap", "Item", &domain.MiniUser{ID: "u1", Fullname: "Ada"})
	if err := repo.Insert(ctx, &board); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if board.ID.IsZero() {
		t.Fatalf("expected generated id")
	}

	got, err := repo.Get(ctx, board.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Roadmap" || len(got.Groups) != 2 || len(got.Groups[0].Tasks) != 3 {
		t.Fatalf("unexpected board: %+v", got)
	}

	got.Title = "Roadmap v2"
	got.RecordActivity(domain.NewActivity("u1", domain.ActionUpdate, domain.EntityBoard, got.ID.Hex(), time.Now()))
	if err := repo.Replace(ctx, got); err != nil {
		t.Fatalf("replace: %v", err)
	}
	activities, err := repo.Activities(ctx, board.ID.Hex())
	if err != nil {
		t.Fatalf("activities: %v", err)
	}
	if len(activities) != 1 || activities[0].Action != domain.ActionUpdate {
		t.Fatalf("unexpected activities: %+v", activities)
	}

	found, err := repo.Query(ctx, domain.BoardFilter{Txt: "v2"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected one match, got %d", len(found))
	}

	if err := repo.Delete(ctx, board.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, board.ID.Hex()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
