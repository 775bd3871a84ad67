package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"kanbanApi/internal/modules/realtime/application/port"
	"kanbanApi/internal/modules/realtime/domain"
)

// KafkaPublisher mirrors change events to a Kafka topic, keyed by board id so
// events of one board stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			slog.Warn("kafka writer error", slog.String("detail", fmt.Sprintf(msg, args...)))
		}),
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt domain.ChangeEvent) error {
	msg, err := encodeChangeEvent(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeChangeEvent(evt domain.ChangeEvent) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode change event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(evt.Topic),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Kind)},
		},
	}, nil
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, evt domain.ChangeEvent) error {
	slog.Debug("change event", slog.String("type", evt.Kind), slog.String("topic", evt.Topic), slog.String("actingUserId", evt.ActingUserID))
	return nil
}

var (
	_ port.EventPublisher = (*KafkaPublisher)(nil)
	_ port.EventPublisher = (*LogPublisher)(nil)
)
