package port

import (
	"context"

	"kanbanApi/internal/modules/realtime/domain"
)

// Broadcaster fans events out to live socket connections. Delivery never
// fails from the caller's point of view: missing receivers are a no-op and
// the returned count is informational.
type Broadcaster interface {
	Broadcast(ctx context.Context, evt domain.ChangeEvent) int
	EmitToTopic(ctx context.Context, topic, eventType string, payload any) int
	EmitToUser(ctx context.Context, userID, eventType string, payload any) int
	EmitTo(ctx context.Context, label, eventType string, payload any) int
}

// EventPublisher forwards change events to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.ChangeEvent) error
}

// TopicHandler handles notifications consumed from one broker topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, n domain.Notification) error
}
