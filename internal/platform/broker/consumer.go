package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"

	"kanbanApi/internal/modules/realtime/domain"
)

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
	}
}

// Consume reads notifications until ctx is cancelled. Undecodable messages
// and handler errors are logged and skipped.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(topic string, n domain.Notification) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			continue
		}
		n, err := decodeNotification(m.Value)
		if err != nil {
			slog.Warn("kafka notification decode failed", slog.String("topic", m.Topic), slog.Int64("offset", m.Offset), slog.Any("error", err))
			continue
		}
		slog.Info("kafka notification consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("type", n.Type),
			slog.String("userId", n.UserID),
			slog.String("label", n.Label),
		)
		if err := handler(m.Topic, n); err != nil {
			slog.Warn("kafka handler error", slog.Any("error", err))
		}
	}
}

func decodeNotification(value []byte) (domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return domain.Notification{}, err
	}
	n.Type = strings.TrimSpace(n.Type)
	n.UserID = strings.TrimSpace(n.UserID)
	n.Label = strings.TrimSpace(n.Label)
	if n.Type == "" {
		return domain.Notification{}, errors.New("notification type is required")
	}
	return n, nil
}
