package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"kanbanApi/internal/modules/realtime/domain"
)

type recordingBroadcaster struct {
	events []domain.ChangeEvent
	toUser []string
	toLbl  []string
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, evt domain.ChangeEvent) int {
	r.events = append(r.events, evt)
	return 1
}

func (r *recordingBroadcaster) EmitToTopic(context.Context, string, string, any) int { return 0 }

func (r *recordingBroadcaster) EmitToUser(_ context.Context, userID, _ string, _ any) int {
	r.toUser = append(r.toUser, userID)
	return 1
}

func (r *recordingBroadcaster) EmitTo(_ context.Context, label, _ string, _ any) int {
	r.toLbl = append(r.toLbl, label)
	return 1
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, domain.ChangeEvent) error {
	p.calls++
	return errors.New("broker down")
}

func TestBroadcastUseCaseStampsAndPublishes(t *testing.T) {
	t.Parallel()

	b := &recordingBroadcaster{}
	pub := &failingPublisher{}
	uc := NewBroadcastUseCase(b, pub)
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	uc.Execute(context.Background(), domain.ChangeEvent{Kind: domain.TaskChanged, Topic: "b1", ActingUserID: "u1"})

	if len(b.events) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(b.events))
	}
	if !b.events[0].OccurredAt.Equal(fixed) {
		t.Fatalf("expected timestamp to be stamped, got %v", b.events[0].OccurredAt)
	}
	if pub.calls != 1 {
		t.Fatalf("expected publisher call, got %d", pub.calls)
	}
}

func TestBroadcastUseCaseWithoutPublisher(t *testing.T) {
	t.Parallel()

	b := &recordingBroadcaster{}
	NewBroadcastUseCase(b, nil).Execute(context.Background(), domain.ChangeEvent{Kind: domain.BoardAdded})
	if len(b.events) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(b.events))
	}
}

func TestBroadcastUseCaseNotifyRouting(t *testing.T) {
	t.Parallel()

	b := &recordingBroadcaster{}
	uc := NewBroadcastUseCase(b, nil)

	uc.Notify(context.Background(), domain.Notification{Type: "mention", UserID: " u1 "})
	uc.Notify(context.Background(), domain.Notification{Type: "user-updated", Label: "u2"})
	uc.Notify(context.Background(), domain.Notification{Type: "maintenance"})
	if n := uc.Notify(context.Background(), domain.Notification{UserID: "u1"}); n != 0 {
		t.Fatalf("notification without type should be dropped, got %d", n)
	}

	if len(b.toUser) != 1 || b.toUser[0] != "u1" {
		t.Fatalf("unexpected user routing %v", b.toUser)
	}
	if len(b.toLbl) != 2 || b.toLbl[0] != "u2" || b.toLbl[1] != "" {
		t.Fatalf("unexpected label routing %v", b.toLbl)
	}
}
