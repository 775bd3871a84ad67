package infrastructure

import (
	"context"
	"log/slog"

	"kanbanApi/internal/modules/realtime/application/port"
	"kanbanApi/internal/modules/realtime/domain"
)

type HandlerRegistry struct {
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.handlers[h.Topic()] = h
}

// Topics lists the broker topics that have a handler.
func (r *HandlerRegistry) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, topic string, n domain.Notification) error {
	if handler, ok := r.handlers[topic]; ok {
		return handler.Handle(ctx, n)
	}
	slog.Debug("no handler for topic", slog.String("topic", topic))
	return nil
}
