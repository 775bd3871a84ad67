package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"kanbanApi/internal/modules/realtime/application/port"
	"kanbanApi/internal/modules/realtime/domain"
	"kanbanApi/internal/shared/logging"
)

// BroadcastUseCase is what request handlers call after a successful mutation.
// It fans the change out to sockets and mirrors it to the event stream.
type BroadcastUseCase struct {
	broadcaster port.Broadcaster
	publisher   port.EventPublisher
	now         func() time.Time
}

func NewBroadcastUseCase(b port.Broadcaster, publisher port.EventPublisher) *BroadcastUseCase {
	return &BroadcastUseCase{broadcaster: b, publisher: publisher, now: time.Now}
}

// Execute broadcasts evt. Publisher failures are logged and never returned.
func (uc *BroadcastUseCase) Execute(ctx context.Context, evt domain.ChangeEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = uc.now().UTC()
	}
	uc.broadcaster.Broadcast(ctx, evt)
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx).Warn("change event publish failed", slog.String("type", evt.Kind), slog.String("topic", evt.Topic), slog.Any("error", err))
	}
}

// Notify routes an external notification to a user, to a label's watchers or to everyone.
func (uc *BroadcastUseCase) Notify(ctx context.Context, n domain.Notification) int {
	eventType := strings.TrimSpace(n.Type)
	if eventType == "" {
		logging.FromContext(ctx).Warn("notification without type dropped")
		return 0
	}
	if userID := strings.TrimSpace(n.UserID); userID != "" {
		return uc.broadcaster.EmitToUser(ctx, userID, eventType, n.Data)
	}
	return uc.broadcaster.EmitTo(ctx, n.Label, eventType, n.Data)
}
