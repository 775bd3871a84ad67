package handler

import (
	"context"

	"kanbanApi/internal/modules/realtime/application/port"
	"kanbanApi/internal/modules/realtime/application/usecase"
	"kanbanApi/internal/modules/realtime/domain"
)

// NotificationHandler forwards notifications consumed from a broker topic to
// the addressed sockets.
type NotificationHandler struct {
	topic   string
	useCase *usecase.BroadcastUseCase
}

func NewNotificationHandler(topic string, uc *usecase.BroadcastUseCase) *NotificationHandler {
	return &NotificationHandler{topic: topic, useCase: uc}
}

func (h *NotificationHandler) Topic() string { return h.topic }

func (h *NotificationHandler) Handle(ctx context.Context, n domain.Notification) error {
	h.useCase.Notify(ctx, n)
	return nil
}

var _ port.TopicHandler = (*NotificationHandler)(nil)
