package broker

import (
	"context"

	"kanbanApi/internal/modules/realtime/domain"
	"kanbanApi/internal/modules/realtime/infrastructure"
)

// StartKafkaConsumers starts one consumer per registered topic. Without
// brokers nothing is started.
func StartKafkaConsumers(
	ctx context.Context,
	registry *infrastructure.HandlerRegistry,
	brokers []string,
	groupID string,
) {
	if len(brokers) == 0 {
		return
	}
	for _, topic := range registry.Topics() {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			_ = consumer.Consume(ctx, func(topic string, n domain.Notification) error {
				return registry.Dispatch(ctx, topic, n)
			})
		}(topic)
	}
}
