package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"kanbanApi/internal/modules/realtime/domain"
)

type CommandHandler func(ctx context.Context, conn *Connection, frame domain.InboundFrame)

// CommandProcessor dispatches client frames to handlers keyed by frame type.
type CommandProcessor struct {
	hub      *Hub
	handlers map[string]CommandHandler
}

// NewCommandProcessor registers the socket protocol: topic selection, user
// binding, user watching, topic relays (chat and change notices) and ping.
func NewCommandProcessor(hub *Hub) *CommandProcessor {
	processor := &CommandProcessor{
		hub:      hub,
		handlers: make(map[string]CommandHandler),
	}
	processor.Register(domain.EventSetTopic, processor.handleSetTopic)
	processor.Register(domain.EventSetUserSocket, processor.handleSetUser)
	processor.Register(domain.EventUnsetUserSocket, processor.handleUnsetUser)
	processor.Register(domain.EventUserWatch, processor.handleUserWatch)
	for inbound, outbound := range domain.TopicRelays {
		processor.Register(inbound, processor.relayToTopic(outbound))
	}
	processor.Register(domain.EventPing, processor.handlePing)
	return processor
}

func (p *CommandProcessor) Register(eventType string, handler CommandHandler) {
	if handler == nil {
		return
	}
	key := normalizeType(eventType)
	if key == "" {
		return
	}
	p.handlers[key] = handler
}

func (p *CommandProcessor) Process(conn *Connection, frame domain.InboundFrame) {
	if conn == nil {
		return
	}
	eventType := normalizeType(frame.Type)
	handler, ok := p.handlers[eventType]
	if !ok {
		slog.Debug("socket event ignored", slog.String("connId", conn.id), slog.String("type", eventType))
		return
	}
	handler(context.Background(), conn, frame)
}

func (p *CommandProcessor) handleSetTopic(_ context.Context, conn *Connection, frame domain.InboundFrame) {
	topic, ok := decodeID(frame.Data)
	if !ok {
		conn.Send(domain.EventError, "set-topic requires a topic")
		return
	}
	p.hub.Subscribe(conn, topic)
}

func (p *CommandProcessor) handleSetUser(_ context.Context, conn *Connection, frame domain.InboundFrame) {
	userID, ok := decodeID(frame.Data)
	if !ok {
		conn.Send(domain.EventError, "set-user-socket requires a user id")
		return
	}
	p.hub.BindUser(conn, userID)
}

func (p *CommandProcessor) handleUnsetUser(_ context.Context, conn *Connection, _ domain.InboundFrame) {
	p.hub.UnbindUser(conn)
}

func (p *CommandProcessor) handleUserWatch(_ context.Context, conn *Connection, frame domain.InboundFrame) {
	userID, ok := decodeID(frame.Data)
	if !ok {
		return
	}
	slog.Info("socket watching user", slog.String("connId", conn.id), slog.String("userId", userID))
	p.hub.Watch(conn, userID)
}

// relayToTopic re-emits the frame payload as outType to every member of the
// sender's topic, sender included. Without a topic the frame is dropped.
func (p *CommandProcessor) relayToTopic(outType string) CommandHandler {
	return func(ctx context.Context, conn *Connection, frame domain.InboundFrame) {
		topic := p.hub.TopicOf(conn)
		if topic == "" {
			slog.Debug("relay without topic", slog.String("connId", conn.id), slog.String("type", frame.Type))
			return
		}
		var payload any
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				conn.Send(domain.EventError, "invalid "+normalizeType(frame.Type)+" payload")
				return
			}
		}
		slog.Info("socket relay", slog.String("connId", conn.id), slog.String("topic", topic), slog.String("type", outType))
		p.hub.EmitToTopic(ctx, topic, outType, payload)
	}
}

func (p *CommandProcessor) handlePing(_ context.Context, conn *Connection, _ domain.InboundFrame) {
	conn.Send(domain.EventPong, nil)
}

// decodeID accepts either a JSON string or an object carrying "_id".
func decodeID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err == nil {
		value = strings.TrimSpace(value)
		return value, value != ""
	}
	var ref struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &ref); err == nil {
		ref.ID = strings.TrimSpace(ref.ID)
		return ref.ID, ref.ID != ""
	}
	return "", false
}

func normalizeType(eventType string) string {
	return strings.ToLower(strings.TrimSpace(eventType))
}
